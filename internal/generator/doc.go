// Package generator runs one documentation generation for a configured
// version: it resolves the source tree, builds the node tree, publishes the
// build plan to the destination store, writes the manifests and signals
// completion.
//
// All entry points (generate command, watch loop, daemon schedule) route
// through Generator.Generate.
package generator
