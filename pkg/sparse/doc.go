// Package sparse provides a compressed 2-D matrix that behaves like a dense
// array under a shared random-access and iteration contract while storing
// only nonzero entries.
//
// A Matrix carries a tagged Layout (Dense, CSR, or CSC). Compressed layouts
// keep three parallel buffers: the nonzero values, the coordinate of each
// value along the leading dimension, and per-slice offsets into the first
// two. CSR and CSC only differ in which axis is the leading dimension; all
// access paths share one implementation.
//
// Matrices are immutable after construction. Backing buffers may be shared
// read-only across any number of cursors; the cursors themselves carry
// mutable position state and are not safe for concurrent use.
package sparse
