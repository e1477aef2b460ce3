// Package grid maps linear indices onto fixed-width rows, as used to lay out
// memory cells in the debugger panel.
package grid

// GetGridCoords returns the column and row of index in a grid cols wide.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}
