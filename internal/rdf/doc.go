// Package rdf provides the term model consumed by the evaluation core.
//
// This package contains value types only. Every other internal package
// may import rdf; rdf imports nothing internal.
//
// Key design constraints:
//   - Terms are comparable Go values and can be used directly as map keys
//   - Term is a sealed interface (marker method), like Node
//   - No value ordering or typed-literal comparison lives here; two terms are
//     equal exactly when their Go values are equal
//   - Canonical JSON (canonical.go) is the only encoding used for hashing
//     and golden snapshots
package rdf
