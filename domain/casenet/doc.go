// Package casenet models the fraud-case network shown to reviewers: typed
// vertices and relationships with their risk classification, visual weights,
// and aggregate statistics. Every value here is built fresh per request and is
// never written back to the graph store.
package casenet
