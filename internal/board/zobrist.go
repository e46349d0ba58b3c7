package board

// Zobrist keys, one per (x, y, slot). The table is filled once at package
// initialisation from a fixed seed and is read-only afterwards, so concurrent
// readers need no locking.
var zobristTable [8][8][12]uint64

func init() {
	initZobrist()
}

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

func initZobrist() {
	rng := newPRNG(0x98F107A2BEEF1234)

	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			for slot := 0; slot < 12; slot++ {
				zobristTable[x][y][slot] = rng.next()
			}
		}
	}
}

// ZobristKey returns the key for a piece type and color on (x, y).
func ZobristKey(x, y int, pt PieceType, c Color) uint64 {
	return pieceKey(x, y, NewPiece(pt, c))
}

func pieceKey(x, y int, p Piece) uint64 {
	return zobristTable[x][y][p.slot()]
}

// ComputeHash recomputes the position hash from scratch over current occupancy.
func (b *Board) ComputeHash() uint64 {
	var h uint64
	for x := 0; x < 8; x++ {
		for y := 0; y < 8; y++ {
			if idx := b.squares[x][y].occupant; idx != noOccupant {
				h ^= pieceKey(x, y, b.pieces[idx].piece)
			}
		}
	}
	return h
}
