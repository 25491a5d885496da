// Package services holds the houseplan workflow: ingesting plan documents,
// drafting proposals from similar plans and running chat sessions on top of
// a proposal. Every remote dependency is reached through a driven port.
package services
