// Package notation converts between the board's moves and text: PGN game
// records, SAN and coordinate notation ("e2e4", "e7e8q"). PGN and SAN go
// through notnil/chess, which also validates them.
package notation

import (
	"io"
	"strings"

	"github.com/notnil/chess"
	"github.com/pkg/errors"

	"github.com/hailam/chesscore/internal/board"
)

var (
	// ErrUnsupportedMove is returned for en passant captures and
	// promotions to anything but a queen.
	ErrUnsupportedMove = errors.New("move not supported by board")
	// ErrIllegalMove is returned when a move is not among the board's
	// candidate moves.
	ErrIllegalMove = errors.New("illegal move")
	// ErrInvalidNotation is returned for text that does not parse.
	ErrInvalidNotation = errors.New("invalid notation")
)

// Game is a parsed PGN game: the starting position and the moves that
// follow it.
type Game struct {
	StartFEN string
	Moves    []board.Move
	Tags     map[string]string
}

// ReadPGN parses a single PGN game.
func ReadPGN(r io.Reader) (*Game, error) {
	opt, err := chess.PGN(r)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidNotation, err.Error())
	}
	g := chess.NewGame(opt)

	positions := g.Positions()
	out := &Game{
		StartFEN: positions[0].String(),
		Tags:     make(map[string]string),
	}
	for _, pair := range g.TagPairs() {
		out.Tags[pair.Key] = pair.Value
	}

	for i, mv := range g.Moves() {
		m, err := fromChess(mv)
		if err != nil {
			return nil, errors.Wrapf(err, "ply %d", i+1)
		}
		out.Moves = append(out.Moves, m)
	}
	return out, nil
}

// ParsePGN returns the moves of a single PGN game.
func ParsePGN(r io.Reader) ([]board.Move, error) {
	g, err := ReadPGN(r)
	if err != nil {
		return nil, err
	}
	return g.Moves, nil
}

// ReplayPGN plays every move of a PGN game on b, switching turns after each.
// Each move must be a candidate move of b when its turn comes. On error b
// holds the moves played so far.
func ReplayPGN(r io.Reader, b *board.Board) error {
	moves, err := ParsePGN(r)
	if err != nil {
		return err
	}
	return Replay(b, moves)
}

// Replay plays moves on b, switching turns after each.
func Replay(b *board.Board, moves []board.Move) error {
	for i, m := range moves {
		if !isCandidate(b, m) {
			return errors.Wrapf(ErrIllegalMove, "ply %d: %v", i+1, m)
		}
		b.Play(m)
	}
	return nil
}

// LoadPGN builds a fresh board from the game's starting position and replays
// the game on it.
func LoadPGN(r io.Reader) (*board.Board, error) {
	g, err := ReadPGN(r)
	if err != nil {
		return nil, err
	}

	var b *board.Board
	if g.StartFEN == board.StartFEN {
		b = board.NewBoard()
	} else if b, err = board.ParseFEN(g.StartFEN); err != nil {
		return nil, err
	}
	if err := Replay(b, g.Moves); err != nil {
		return nil, err
	}
	return b, nil
}

func fromChess(mv *chess.Move) (board.Move, error) {
	if mv.HasTag(chess.EnPassant) {
		return board.NoMove, errors.Wrapf(ErrUnsupportedMove, "en passant %s", mv)
	}

	s1, s2 := mv.S1(), mv.S2()
	sx, sy := int(s1.File()), int(s1.Rank())
	ex, ey := int(s2.File()), int(s2.Rank())

	switch {
	case mv.HasTag(chess.KingSideCastle), mv.HasTag(chess.QueenSideCastle):
		return board.NewCastling(sx, sy, ex, ey), nil
	case mv.Promo() == chess.Queen:
		return board.NewPromotion(sx, sy, ex, ey), nil
	case mv.Promo() != chess.NoPieceType:
		return board.NoMove, errors.Wrapf(ErrUnsupportedMove, "under-promotion %s", mv)
	}
	return board.NewMove(sx, sy, ex, ey), nil
}

func isCandidate(b *board.Board, m board.Move) bool {
	sx, sy := m.Start()
	if p := b.PieceAt(sx, sy); p == board.NoPiece || p.Color() != b.CurrentTurn() {
		return false
	}
	for _, c := range b.GetPossibleMovesForPiece(sx, sy) {
		if c == m {
			return true
		}
	}
	return false
}

// ParseCoordinateMove resolves coordinate notation against the candidate
// moves of the side to move. A promotion suffix is optional; only "q" is
// accepted.
func ParseCoordinateMove(s string, b *board.Board) (board.Move, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) != 4 && len(s) != 5 {
		return board.NoMove, errors.Wrapf(ErrInvalidNotation, "%q", s)
	}

	sx, sy, err := board.ParseCoord(s[0:2])
	if err != nil {
		return board.NoMove, errors.Wrap(ErrInvalidNotation, err.Error())
	}
	ex, ey, err := board.ParseCoord(s[2:4])
	if err != nil {
		return board.NoMove, errors.Wrap(ErrInvalidNotation, err.Error())
	}
	if len(s) == 5 {
		switch s[4] {
		case 'q':
		case 'r', 'b', 'n':
			return board.NoMove, errors.Wrapf(ErrUnsupportedMove, "under-promotion %s", s)
		default:
			return board.NoMove, errors.Wrapf(ErrInvalidNotation, "%q", s)
		}
	}

	if p := b.PieceAt(sx, sy); p == board.NoPiece || p.Color() != b.CurrentTurn() {
		return board.NoMove, errors.Wrapf(ErrIllegalMove, "%s: no %v piece on %s", s, b.CurrentTurn(), s[0:2])
	}
	for _, m := range b.GetPossibleMovesForPiece(sx, sy) {
		if x, y := m.End(); x == ex && y == ey {
			if len(s) == 5 && !m.IsPromoting {
				break
			}
			return m, nil
		}
	}
	return board.NoMove, errors.Wrapf(ErrIllegalMove, "%s", s)
}

// ParseSAN resolves a SAN move ("Nf3", "exd5", "O-O", "e8=Q") in b's
// position.
func ParseSAN(s string, b *board.Board) (board.Move, error) {
	pos, err := position(b)
	if err != nil {
		return board.NoMove, err
	}
	mv, err := chess.AlgebraicNotation{}.Decode(pos, s)
	if err != nil {
		return board.NoMove, errors.Wrap(ErrInvalidNotation, err.Error())
	}
	return fromChess(mv)
}

// SAN renders m as standard algebraic notation in b's position. Moves that
// leave the mover in check have no SAN and return ErrIllegalMove.
func SAN(b *board.Board, m board.Move) (string, error) {
	pos, err := position(b)
	if err != nil {
		return "", err
	}
	mv, err := chess.UCINotation{}.Decode(pos, m.String())
	if err != nil {
		return "", errors.Wrapf(ErrIllegalMove, "%v: %v", m, err)
	}
	for _, valid := range pos.ValidMoves() {
		if valid.String() == mv.String() {
			return chess.AlgebraicNotation{}.Encode(pos, mv), nil
		}
	}
	return "", errors.Wrapf(ErrIllegalMove, "%v", m)
}

func position(b *board.Board) (*chess.Position, error) {
	opt, err := chess.FEN(b.ToFEN())
	if err != nil {
		return nil, errors.Wrap(ErrInvalidNotation, err.Error())
	}
	return chess.NewGame(opt).Position(), nil
}
