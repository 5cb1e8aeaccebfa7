// Package anndata (module github.com/JaneliaSciComp/go-anndata) reads,
// writes, and validates AnnData containers stored as compressed array
// hierarchies on the filesystem or in memory.
//
// An AnnData container is an annotated data matrix: a central matrix X of
// observations by variables, per-axis annotation tables (obs, var),
// per-axis multi-dimensional annotations (obsm, varm), pairwise matrices
// (obsp, varp), alternative matrix layers (layers), and unstructured
// metadata (uns). Every node carries "encoding-type"/"encoding-version"
// attributes that identify how it is laid out on disk.
//
// # Quick Start
//
// Create a container and write a sparse expression matrix:
//
//	import (
//	    "github.com/JaneliaSciComp/go-anndata/pkg/anndata"
//	    "github.com/JaneliaSciComp/go-anndata/pkg/sparse"
//	    "github.com/JaneliaSciComp/go-anndata/pkg/store"
//	)
//
//	fs, _ := store.NewFS("pbmc.n5", nil)
//	_ = anndata.Initialize(fs, obsNames, varNames)
//
//	m, _ := sparse.NewCSR(nVar, nObs, data, indices, indptr)
//	_ = anndata.WriteMatrix[float64](fs, anndata.NewPath(anndata.FieldX),
//	    m, anndata.Strict, anndata.TypeCSRMatrix)
//
//	got, _ := anndata.ReadMatrix[float64](fs, anndata.NewPath(anndata.FieldX))
//
// # Key Packages
//
//	pkg/anndata     - Container layout, paths, field types, and validation policies
//	pkg/sparse      - Dense/CSR/CSC matrices with random and sequential access
//	pkg/store       - Hierarchical array stores (filesystem and in-memory)
//	pkg/compression - Block codecs for dataset storage (gzip, zstd, lz4, ...)
//	pkg/config      - Configuration from defaults, files, and environment
//	pkg/errors      - Structured error handling
//	pkg/logger      - Structured logging
//
// # Validation
//
// Write operations take a Checker policy that constrains encoding types
// and dimensions per field: X and layers must match nObs x nVar, obsm and
// varm rows match their axis, obsp and varp must be square, and data
// frame columns must match the frame's index. Strict enforces both types
// and dimensions; TypeOnly, DimensionOnly, and NoChecks relax them.
package anndata
