package hierarchy

import "errors"

var (
	// ErrBadShape is returned when the labels and data do not describe an
	// n_hiers × n_bottom matrix with n_hiers >= n_bottom > 0.
	ErrBadShape = errors.New("hierarchy: invalid summing matrix shape")

	// ErrNonBinary is returned when a summing matrix entry is neither 0 nor 1.
	ErrNonBinary = errors.New("hierarchy: summing matrix entries must be 0 or 1")

	// ErrDuplicateNode is returned when a node or bottom label repeats.
	ErrDuplicateNode = errors.New("hierarchy: duplicate node")

	// ErrUnknownBottom is returned when a bottom series is not among the nodes.
	ErrUnknownBottom = errors.New("hierarchy: bottom series is not a node")
)
