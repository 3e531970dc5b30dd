// Package normalisers provides implementations of the Normaliser
// interface for chat export formats. Each normaliser knows how to
// parse one export layout into timestamped messages.
//
// Normalisers are registered with the Registry at startup.
package normalisers
