// Package registry provides capability registry implementations. The
// in-memory registry backs tests, examples and the CLI; production callers
// can supply their own core.Registry.
package registry
