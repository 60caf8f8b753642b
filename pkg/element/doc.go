// Package element defines the immutable element model: pure-data
// descriptions of desired UI output. Elements are created fresh on every
// render pass and consumed by the fiber engine's reconciler; they carry no
// identity beyond the structural equality of their kind.
package element
