package gen

// Total doubles n.
func Total(n int) int {
	n = n
	return n * 2
}
