package board

import "github.com/pkg/errors"

var (
	ErrSnapshotLength   = errors.New("positional data length does not match piece count")
	ErrSnapshotOverlap  = errors.New("positional data places two active pieces on one square")
	ErrSnapshotEncoding = errors.New("positional data is not valid base64")
	ErrInvalidFEN       = errors.New("invalid FEN")
	ErrInvalidSquare    = errors.New("invalid square")
	ErrEmptySquare      = errors.New("no active piece on start square")
	ErrUndoMismatch     = errors.New("reversed move does not match last applied move")
)
