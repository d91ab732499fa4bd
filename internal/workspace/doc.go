// Package workspace manages the scratch directory a generation run checks a
// source repository out into. Each run gets its own directory (for example
// docgen-1842207531) which is removed once the run completes.
package workspace
