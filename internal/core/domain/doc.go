// Package domain defines the core business entities for wikistats.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: The raw text of the stats page and its Sections
//   - Snapshot: Metric values taken from one wiki at one point in time
//   - Row: A formatted statistics table row
//   - Config: The run configuration built once at startup
//   - RunRecord: The outcome of one statistics pass
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
