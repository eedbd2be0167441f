package render

import (
	"math"

	"github.com/mattn/go-runewidth"
)

// Cell is one terminal character of the raster
type Cell struct {
	Rune  rune
	Fg    RGB
	Depth float32
}

var emptyCell = Cell{Rune: ' ', Fg: RgbBackground, Depth: float32(math.Inf(1))}

// Raster is a depth-tested character buffer with dirty tracking
type Raster struct {
	cells   []Cell
	touched []bool
	width   int
	height  int
}

// NewRaster creates a raster with the specified dimensions
func NewRaster(width, height int) *Raster {
	r := &Raster{}
	r.Resize(width, height)
	return r
}

// Resize adjusts raster dimensions, reallocates only if capacity insufficient
func (r *Raster) Resize(width, height int) {
	size := max(width, 0) * max(height, 0)
	if cap(r.cells) < size {
		r.cells = make([]Cell, size)
		r.touched = make([]bool, size)
	} else {
		r.cells = r.cells[:size]
		r.touched = r.touched[:size]
	}
	r.width = width
	r.height = height
	r.Clear()
}

// Size returns raster dimensions
func (r *Raster) Size() (int, int) {
	return r.width, r.height
}

// Clear resets all cells to empty using exponential copy
func (r *Raster) Clear() {
	if len(r.cells) == 0 {
		return
	}
	r.cells[0] = emptyCell
	r.touched[0] = false
	for filled := 1; filled < len(r.cells); filled *= 2 {
		copy(r.cells[filled:], r.cells[:filled])
	}
	for filled := 1; filled < len(r.touched); filled *= 2 {
		copy(r.touched[filled:], r.touched[:filled])
	}
}

// inBounds returns true if in raster bounds
func (r *Raster) inBounds(x, y int) bool {
	return x >= 0 && x < r.width && y >= 0 && y < r.height
}

// Plot writes a cell when depth is nearer than the stored depth
func (r *Raster) Plot(x, y int, depth float32, ch rune, fg RGB) bool {
	if !r.inBounds(x, y) {
		return false
	}
	idx := y*r.width + x
	dst := &r.cells[idx]
	if depth >= dst.Depth {
		return false
	}
	dst.Rune = ch
	dst.Fg = fg
	dst.Depth = depth
	r.touched[idx] = true
	return true
}

// Text writes an overlay string ignoring depth; returns the columns consumed
// Wide runes occupy two columns, zero-width runes are dropped
func (r *Raster) Text(x, y int, s string, fg RGB) int {
	col := x
	for _, ch := range s {
		cw := runewidth.RuneWidth(ch)
		if cw == 0 {
			continue
		}
		for k := 0; k < cw; k++ {
			if !r.inBounds(col+k, y) {
				continue
			}
			idx := y*r.width + col + k
			r.cells[idx] = Cell{Fg: fg, Depth: float32(math.Inf(-1))}
			if k == 0 {
				r.cells[idx].Rune = ch
			}
			r.touched[idx] = true
		}
		col += cw
	}
	return col - x
}

// Get returns the cell at x, y
func (r *Raster) Get(x, y int) Cell {
	if !r.inBounds(x, y) {
		return emptyCell
	}
	return r.cells[y*r.width+x]
}

// Touched counts cells written since the last Clear
func (r *Raster) Touched() int {
	n := 0
	for _, t := range r.touched {
		if t {
			n++
		}
	}
	return n
}
