package board

import "errors"

// Sentinel errors. Contract violations inside the state machine panic
// with one of these wrapped, so a recovering caller can classify them
// with errors.Is.
var (
	ErrInvalidFEN   = errors.New("board: invalid FEN")
	ErrCorrupt      = errors.New("board: position invariant violated")
	ErrUndoBoundary = errors.New("board: undo past copy boundary")
	ErrInCheck      = errors.New("board: null move while in check")
	ErrIllegalMove  = errors.New("board: illegal move")
)
