// Package logging configures slog for daqgen.
//
// By default records go to stderr as text at the configured level. With
// --debug they are also written as JSON to a size-rotated file under
// ~/.daqgen/logs/, which `daqgen logs` reads back.
package logging
