// Package analytics holds the scoring arithmetic behind quiz selection,
// recommendations and the learner dashboard. Everything here is a pure
// function over already-loaded attempts and questions so it can be tested
// without a database.
package analytics
