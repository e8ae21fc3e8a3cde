package engine

// quarterTurns maps a direction to the number of counter-clockwise quarter
// turns that make it a move to the left.
func quarterTurns(d Direction) int {
	switch d {
	case Up:
		return 1
	case Right:
		return 2
	case Down:
		return 3
	}
	return 0
}

// Move slides every tile in direction d and merges equal neighbours. It never
// spawns a tile and never modifies b; the returned board is always a new value.
func Move(b Board, d Direction) MoveResult {
	k := quarterTurns(d)
	rotated := rotate(b, k)

	result := MoveResult{Board: make(Board, len(rotated))}
	for i, row := range rotated {
		compressed, gained := compressRow(row)
		if !rowsEqual(row, compressed) {
			result.Changed = true
		}
		result.Board[i] = compressed
		result.Gained += gained
	}

	result.Board = rotate(result.Board, (4-k)%4)
	return result
}

// compressRow packs the nonzero values of row to the left and merges equal
// pairs. A merged tile is not merged again in the same pass, so [2 2 2 2]
// becomes [4 4 0 0].
func compressRow(row []int) ([]int, int) {
	tiles := make([]int, 0, len(row))
	for _, v := range row {
		if v != 0 {
			tiles = append(tiles, v)
		}
	}

	out := make([]int, 0, len(row))
	gained := 0
	for i := 0; i < len(tiles); i++ {
		if i+1 < len(tiles) && tiles[i] == tiles[i+1] {
			merged := tiles[i] * 2
			out = append(out, merged)
			gained += merged
			i++
			continue
		}
		out = append(out, tiles[i])
	}

	for len(out) < len(row) {
		out = append(out, 0)
	}
	return out, gained
}

// rotate returns b turned k quarter turns counter-clockwise. With k == 0 it
// returns a copy.
func rotate(b Board, k int) Board {
	out := b.Clone()
	for ; k > 0; k-- {
		out = rotateOnce(out)
	}
	return out
}

func rotateOnce(b Board) Board {
	n := len(b)
	out := NewBoard(n)
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			out[n-1-c][r] = b[r][c]
		}
	}
	return out
}

func rowsEqual(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
