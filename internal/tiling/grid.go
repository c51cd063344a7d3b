// Package tiling holds the icon grid math shared by snap and arrange.
package tiling

import "fmt"

// Rect represents a cell position and size.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Grid is a desktop of Width x Height pixels divided into cells.
type Grid struct {
	CellWidth  int
	CellHeight int
	Width      int
	Height     int
}

// Valid reports whether the grid has positive cells and area.
func (g Grid) Valid() bool {
	return g.CellWidth > 0 && g.CellHeight > 0 && g.Width > 0 && g.Height > 0
}

// Capacity returns how many whole cells fit across and down.
func (g Grid) Capacity() (cols, rows int) {
	if !g.Valid() {
		return 0, 0
	}
	cols = max(g.Width/g.CellWidth, 1)
	rows = max(g.Height/g.CellHeight, 1)
	return cols, rows
}

// SnapAxis rounds v to the nearest multiple of step. Ties round up.
func SnapAxis(v, step int) int {
	if step <= 0 {
		return v
	}
	q := v / step
	r := v - q*step
	if r < 0 {
		q--
		r += step
	}
	if 2*r >= step {
		q++
	}
	return q * step
}

// ClampAxis steps v back by whole cells until it lies in [0, limit).
func ClampAxis(v, step, limit int) int {
	if step <= 0 || limit <= 0 {
		return v
	}
	if v >= limit {
		v -= ((v-limit)/step + 1) * step
	}
	if v < 0 {
		v = 0
	}
	return v
}

// Snap moves (x, y) to the nearest cell origin that stays on the desktop.
func (g Grid) Snap(x, y int) (int, int) {
	return ClampAxis(SnapAxis(x, g.CellWidth), g.CellWidth, g.Width),
		ClampAxis(SnapAxis(y, g.CellHeight), g.CellHeight, g.Height)
}

// Arrange lays out n cells. With cols <= 0 cells fill each column top to
// bottom before moving right; otherwise they fill rows of cols cells.
func (g Grid) Arrange(n, cols int) ([]Rect, error) {
	if n == 0 {
		return nil, nil
	}
	if !g.Valid() {
		return nil, fmt.Errorf("invalid grid: cell %dx%d on %dx%d", g.CellWidth, g.CellHeight, g.Width, g.Height)
	}

	maxCols, maxRows := g.Capacity()
	if cols > maxCols {
		return nil, fmt.Errorf("%d columns do not fit: desktop holds %d", cols, maxCols)
	}

	columnMajor := cols <= 0
	if columnMajor {
		cols = maxCols
	}
	if n > cols*maxRows {
		return nil, fmt.Errorf("%d icons do not fit in a %dx%d grid", n, cols, maxRows)
	}

	positions := make([]Rect, n)
	for i := 0; i < n; i++ {
		var row, col int
		if columnMajor {
			row, col = i%maxRows, i/maxRows
		} else {
			row, col = i/cols, i%cols
		}
		positions[i] = Rect{
			X:      col * g.CellWidth,
			Y:      row * g.CellHeight,
			Width:  g.CellWidth,
			Height: g.CellHeight,
		}
	}
	return positions, nil
}
