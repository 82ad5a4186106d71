// Package mcerrors defines the error kinds shared across the simulation
// engine family.
package mcerrors

import "errors"

// Sentinel errors identifying the kinds from the error handling design.
var (
	// ErrInvalidParameter is returned when an engine or histogram is
	// constructed or run with a parameter outside its valid domain.
	ErrInvalidParameter = errors.New("mcsim: invalid parameter")

	// ErrDimensionMismatch is returned by observable arithmetic when
	// operands have incompatible lengths or key sets.
	ErrDimensionMismatch = errors.New("mcsim: dimension mismatch")

	// ErrCheckpointIO is returned when a checkpoint cannot be created,
	// moved, or read.
	ErrCheckpointIO = errors.New("mcsim: checkpoint I/O failure")

	// ErrLoadFormat is returned when a checkpoint archive or CSV file is
	// corrupt or malformed.
	ErrLoadFormat = errors.New("mcsim: load format error")
)
