package board

// SwitchTurn passes the move to the other side, advances the turn counter and
// records the current hash in the repetition history. The third sighting of
// a hash sets the threefold flag, which stays set.
func (b *Board) SwitchTurn() {
	b.turn = b.turn.Other()

	b.history[b.hash]++
	if b.history[b.hash] == 3 {
		b.threefold = true
	}
	b.turnNumber++
}

// RevertTurn undoes one SwitchTurn. It must run before the move that preceded
// the switch is reversed, while the recorded hash is still current. The
// threefold flag is left as it is.
func (b *Board) RevertTurn() {
	b.turn = b.turn.Other()
	b.turnNumber--

	if n := b.history[b.hash]; n > 1 {
		b.history[b.hash] = n - 1
	} else {
		delete(b.history, b.hash)
	}
}

// ThreefoldRepetition reports whether any position has been recorded three
// times since history tracking began.
func (b *Board) ThreefoldRepetition() bool {
	return b.threefold
}

// Repetitions returns how many times hash has been recorded.
func (b *Board) Repetitions(hash uint64) int {
	return b.history[hash]
}

// History returns a copy of the hash -> occurrence map.
func (b *Board) History() map[uint64]int {
	out := make(map[uint64]int, len(b.history))
	for h, n := range b.history {
		out[h] = n
	}
	return out
}

// SetHistory replaces the repetition history. The threefold flag is set if
// any count has already reached three.
func (b *Board) SetHistory(h map[uint64]int) {
	b.history = make(map[uint64]int, len(h))
	for k, n := range h {
		b.history[k] = n
		if n >= 3 {
			b.threefold = true
		}
	}
}

// MarkThreefold sets the sticky threefold flag, for restoring a saved game
// whose history counts no longer show the repetition.
func (b *Board) MarkThreefold() {
	b.threefold = true
}

// ResetHistory clears the repetition history and the threefold flag.
func (b *Board) ResetHistory() {
	b.history = make(map[uint64]int)
	b.threefold = false
}
