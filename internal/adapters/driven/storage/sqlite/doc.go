// Package sqlite is the default PlanStore: a single database file under
// ~/.houseplan/data, opened with the pure Go modernc.org/sqlite driver.
//
// Embeddings are BLOBs. The package registers a vec_cosine SQL function so
// that TopNSimilar ranks every segment in one ORDER BY ... LIMIT query.
//
// The schema version is kept in PRAGMA user_version and advanced by the
// scripts in the migrations package when the store is opened.
package sqlite
