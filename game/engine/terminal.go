package engine

// IsTerminal reports whether no move in any direction could change b: the
// board is full and no two orthogonal neighbours hold the same value.
func IsTerminal(b Board) bool {
	n := len(b)
	for r := 0; r < n; r++ {
		for c := 0; c < len(b[r]); c++ {
			v := b[r][c]
			if v == 0 {
				return false
			}
			if c+1 < len(b[r]) && b[r][c+1] == v {
				return false
			}
			if r+1 < n && c < len(b[r+1]) && b[r+1][c] == v {
				return false
			}
		}
	}
	return true
}
