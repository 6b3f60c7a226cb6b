// Package memory provides in-process implementations of the storage ports.
// State is lost when the process exits; they back tests and the "memory"
// store and index backends.
package memory
