package render

import "github.com/gdamore/tcell/v2"

// FlushToScreen writes the raster to a tcell screen and shows it
// Untouched cells are painted with the background color
func (r *Raster) FlushToScreen(screen tcell.Screen) {
	bg := tcell.StyleDefault.Background(RgbBackground.ToTcell())
	for y := 0; y < r.height; y++ {
		for x := 0; x < r.width; x++ {
			idx := y*r.width + x
			if !r.touched[idx] {
				screen.SetContent(x, y, ' ', nil, bg)
				continue
			}
			c := r.cells[idx]
			if c.Rune == 0 {
				// Trailing half of a wide rune
				continue
			}
			screen.SetContent(x, y, c.Rune, nil, bg.Foreground(c.Fg.ToTcell()))
		}
	}
	screen.Show()
}
