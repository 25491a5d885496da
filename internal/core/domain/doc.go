// Package domain defines the core business entities for houseplan.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - FloorPlanSegment: An embedded text segment of an uploaded plan document
//   - CustomerRequest: A household's housing requirements
//   - RetrievedPlan: A similarity hit, deduplicated by storage path
//   - ConversationTurn: One entry of a session transcript
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
