// Package connectors provides implementations of the ExportSource
// interface. Each connector knows how to discover chat export files
// from a specific location type.
//
// The filesystem connector is the only source today; it scans a
// directory for export files and can watch it for changes.
package connectors
