package board

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// StartFEN is the FEN string for the starting position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN builds a board from a FEN string. Pieces enter the arena in FEN
// scan order (rank 8 to rank 1, a to h), which fixes the positional data
// layout for boards built this way. Castling rights become has-moved flags on
// kings and rooks; pawns off their home rank count as moved. The en passant
// field is accepted and ignored. The repetition history starts empty.
func ParseFEN(fen string) (*Board, error) {
	parts := strings.Fields(fen)
	if len(parts) < 4 {
		return nil, errors.Wrapf(ErrInvalidFEN, "need at least 4 fields, got %d", len(parts))
	}

	b := NewEmptyBoard()
	if err := parsePiecePlacement(b, parts[0]); err != nil {
		return nil, err
	}

	switch parts[1] {
	case "w":
		b.turn = White
	case "b":
		b.turn = Black
	default:
		return nil, errors.Wrapf(ErrInvalidFEN, "invalid side to move: %s", parts[1])
	}

	if err := applyCastlingRights(b, parts[2]); err != nil {
		return nil, err
	}

	// Full-move number (field 5, optional) maps onto the ply-based turn counter.
	if len(parts) > 5 {
		fmn, err := strconv.Atoi(parts[5])
		if err != nil || fmn < 1 {
			return nil, errors.Wrapf(ErrInvalidFEN, "invalid full-move number: %s", parts[5])
		}
		b.turnNumber = (fmn-1)*2 + 1
		if b.turn == Black {
			b.turnNumber++
		}
	}

	b.rebind()
	return b, nil
}

// parsePiecePlacement parses the piece placement section of a FEN string.
func parsePiecePlacement(b *Board, placement string) error {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return errors.Wrapf(ErrInvalidFEN, "need 8 ranks, got %d", len(ranks))
	}

	for i, rankStr := range ranks {
		y := 7 - i
		x := 0

		for _, c := range rankStr {
			if x > 7 {
				return errors.Wrapf(ErrInvalidFEN, "too many squares in rank %d", y+1)
			}

			if c >= '1' && c <= '8' {
				x += int(c - '0')
				continue
			}
			piece := PieceFromChar(byte(c))
			if piece == NoPiece {
				return errors.Wrapf(ErrInvalidFEN, "invalid piece character: %c", c)
			}
			ref := b.AddPiece(x, y, piece)
			if piece.Type() == Pawn {
				home := 1
				if piece.Color() == Black {
					home = 6
				}
				ref.SetHasMoved(y != home)
			}
			x++
		}

		if x != 8 {
			return errors.Wrapf(ErrInvalidFEN, "rank %d has %d squares", y+1, x)
		}
	}
	return nil
}

// applyCastlingRights marks kings and rooks as moved unless a castling right
// keeps them unmoved.
func applyCastlingRights(b *Board, castling string) error {
	var rights [2][2]bool // [color][kingSide]
	if castling != "-" {
		for _, c := range castling {
			switch c {
			case 'K':
				rights[White][1] = true
			case 'Q':
				rights[White][0] = true
			case 'k':
				rights[Black][1] = true
			case 'q':
				rights[Black][0] = true
			default:
				return errors.Wrapf(ErrInvalidFEN, "invalid castling character: %c", c)
			}
		}
	}

	for i := range b.pieces {
		p := &b.pieces[i]
		c := p.piece.Color()
		switch p.piece.Type() {
		case King:
			p.hasMoved = !(rights[c][0] || rights[c][1]) || !onHome(p, c, 4)
		case Rook:
			switch {
			case onHome(p, c, 7):
				p.hasMoved = !rights[c][1]
			case onHome(p, c, 0):
				p.hasMoved = !rights[c][0]
			default:
				p.hasMoved = true
			}
		}
	}
	return nil
}

func onHome(p *pieceState, c Color, x int) bool {
	home := int8(0)
	if c == Black {
		home = 7
	}
	return p.active && p.y == home && p.x == int8(x)
}

// castlingRights derives the FEN castling field from has-moved flags.
func (b *Board) castlingRights() string {
	s := ""
	for _, c := range []Color{White, Black} {
		home := 0
		if c == Black {
			home = 7
		}
		king := b.PieceAt(4, home)
		if king != NewPiece(King, c) || b.pieces[b.squares[4][home].occupant].hasMoved {
			continue
		}
		k, q := "K", "Q"
		if c == Black {
			k, q = "k", "q"
		}
		if b.rookReady(7, home, c) {
			s += k
		}
		if b.rookReady(0, home, c) {
			s += q
		}
	}
	if s == "" {
		return "-"
	}
	return s
}

// ToFEN returns the FEN representation of the board with the current side to
// move. En passant is always "-" and the half-move clock 0.
func (b *Board) ToFEN() string {
	return b.ToFENFor(b.turn)
}

// ToFENFor is ToFEN with the side to move forced to c.
func (b *Board) ToFENFor(c Color) string {
	var sb strings.Builder

	for y := 7; y >= 0; y-- {
		empty := 0
		for x := 0; x < 8; x++ {
			piece := b.PieceAt(x, y)
			if piece == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			sb.WriteString(piece.String())
		}
		if empty > 0 {
			sb.WriteString(strconv.Itoa(empty))
		}
		if y > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if c == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}

	sb.WriteByte(' ')
	sb.WriteString(b.castlingRights())
	sb.WriteString(" - 0 ")
	sb.WriteString(strconv.Itoa((b.turnNumber + 1) / 2))

	return sb.String()
}
