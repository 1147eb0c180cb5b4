// Package domain contains the core types of the FormFlow model: form
// sections and fields, the logic graph (nodes, edges, rules), answers
// collected during a run, and the terminal outcomes a run can reach.
//
// The package is dependency-free by design. Engines, stores and adapters
// all speak in these types.
package domain
