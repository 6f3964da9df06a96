package ui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/vanderheijden86/constellation/pkg/graph"
)

// Layout units per terminal cell. The simulation works in a pixel-like unit
// space; a cell is 8 units wide and 16 tall, which also corrects for
// terminal cells being roughly twice as tall as they are wide.
const (
	cellUnitsX = 8.0
	cellUnitsY = 16.0
)

// Canvas is a rune grid the graph view paints into before composing the
// final frame. View-space coordinates are layout units; the canvas projects
// them to cells.
type Canvas struct {
	width  int
	height int
	runes  []rune
	styles []lipgloss.Style
	styled []bool
}

func NewCanvas(width, height int) *Canvas {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	c := &Canvas{
		width:  width,
		height: height,
		runes:  make([]rune, width*height),
		styles: make([]lipgloss.Style, width*height),
		styled: make([]bool, width*height),
	}
	for i := range c.runes {
		c.runes[i] = ' '
	}
	return c
}

func (c *Canvas) Width() int  { return c.width }
func (c *Canvas) Height() int { return c.height }

// Cell converts a view-space point to a cell coordinate.
func (c *Canvas) Cell(v graph.Vec) (col, row int) {
	return int(math.Floor(v.X / cellUnitsX)), int(math.Floor(v.Y / cellUnitsY))
}

// ViewAt converts a cell coordinate to the view-space point at its center.
func (c *Canvas) ViewAt(col, row int) graph.Vec {
	return graph.Vec{X: (float64(col) + 0.5) * cellUnitsX, Y: (float64(row) + 0.5) * cellUnitsY}
}

// Set writes one styled rune. Out-of-bounds writes are dropped.
func (c *Canvas) Set(col, row int, r rune, style lipgloss.Style) {
	if col < 0 || col >= c.width || row < 0 || row >= c.height {
		return
	}
	i := row*c.width + col
	c.runes[i] = r
	c.styles[i] = style
	c.styled[i] = true
}

// RuneAt returns the rune currently at the cell, or space when out of bounds.
func (c *Canvas) RuneAt(col, row int) rune {
	if col < 0 || col >= c.width || row < 0 || row >= c.height {
		return ' '
	}
	return c.runes[row*c.width+col]
}

// SetString writes a horizontal run of cells starting at col, truncated to
// the canvas edge. Wide runes occupy their full width.
func (c *Canvas) SetString(col, row int, s string, style lipgloss.Style) {
	for _, r := range s {
		if col >= c.width {
			return
		}
		c.Set(col, row, r, style)
		col += runewidth.RuneWidth(r)
	}
}

// DrawPoint plots one view-space point.
func (c *Canvas) DrawPoint(v graph.Vec, r rune, style lipgloss.Style) {
	col, row := c.Cell(v)
	c.Set(col, row, r, style)
}

// DrawLine plots a view-space segment with Bresenham stepping in cell space.
func (c *Canvas) DrawLine(a, b graph.Vec, r rune, style lipgloss.Style) {
	x0, y0 := c.Cell(a)
	x1, y1 := c.Cell(b)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		c.Set(x0, y0, r, style)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// DrawRingGuide plots a dotted circle of the given view-space radius.
func (c *Canvas) DrawRingGuide(center graph.Vec, radius float64, style lipgloss.Style) {
	if radius <= 0 {
		return
	}
	// Enough samples that adjacent dots land in neighboring cells, thinned
	// to every third sample for the dotted look.
	steps := int(2 * math.Pi * radius / cellUnitsX)
	if steps < 12 {
		steps = 12
	}
	for i := 0; i < steps; i += 3 {
		a := 2 * math.Pi * float64(i) / float64(steps)
		c.DrawPoint(graph.Vec{
			X: center.X + radius*math.Cos(a),
			Y: center.Y + radius*math.Sin(a),
		}, '·', style)
	}
}

// String renders the grid, one styled rune at a time. Unstyled cells pass
// through bare to keep the frame small.
func (c *Canvas) String() string {
	var sb strings.Builder
	sb.Grow(c.width * c.height * 2)
	for row := 0; row < c.height; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		for col := 0; col < c.width; col++ {
			i := row*c.width + col
			if c.styled[i] {
				sb.WriteString(c.styles[i].Render(string(c.runes[i])))
			} else {
				sb.WriteRune(c.runes[i])
			}
		}
	}
	return sb.String()
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
