package universe

import (
	"math/rand/v2"
	"strings"
)

//default grid geometry
const (
	Rows = 30
	Cols = 50
)

//Cell is the binary state of one grid position
type Cell uint8

const (
	Dead  Cell = 0
	Alive Cell = 1
)

//NeighborOffsets is the Moore neighbourhood as (row, col) deltas
var NeighborOffsets = [8][2]int{
	{0, 1},   //right
	{1, 1},   //down-right
	{1, 0},   //down
	{1, -1},  //down-left
	{0, -1},  //left
	{-1, -1}, //up-left
	{-1, 0},  //up
	{-1, 1},  //up-right
}

//Grid is a rectangular matrix of cells, Cells[row][col]
type Grid struct {
	Rows  int
	Cols  int
	Cells [][]Cell
}

//NewEmptyGrid returns the Rows x Cols grid with every cell dead
func NewEmptyGrid() Grid {
	return NewGrid(Rows, Cols)
}

//NewGrid allocates the all-dead grid with the given dimensions
//all rows share one backing slice
func NewGrid(rows int, cols int) Grid {
	g := Grid{Rows: rows, Cols: cols, Cells: make([][]Cell, rows)}
	b := make([]Cell, rows*cols)
	for i := range g.Cells {
		start := cols * i
		g.Cells[i] = b[start : start+cols : start+cols]
	}
	return g
}

//RandomGrid returns the grid where every cell is alive with probability density
func RandomGrid(rows int, cols int, density float64, r *rand.Rand) Grid {
	g := NewGrid(rows, cols)
	g.walk(func(row int, col int, _ Cell) {
		if r.Float64() < density {
			g.Cells[row][col] = Alive
		}
	})
	return g
}

//InBounds reports whether (row, col) lies inside the grid
func (g Grid) InBounds(row int, col int) bool {
	return row >= 0 && row < g.Rows && col >= 0 && col < g.Cols
}

//Clone returns a deep copy of the grid
func (g Grid) Clone() Grid {
	c := NewGrid(g.Rows, g.Cols)
	for i := range g.Cells {
		copy(c.Cells[i], g.Cells[i])
	}
	return c
}

//Equal reports whether both grids have the same dimensions and cells
func (g Grid) Equal(o Grid) bool {
	if g.Rows != o.Rows || g.Cols != o.Cols {
		return false
	}
	for i := range g.Cells {
		for j := range g.Cells[i] {
			if g.Cells[i][j] != o.Cells[i][j] {
				return false
			}
		}
	}
	return true
}

//LiveCells calculates the count of live cells
func (g Grid) LiveCells() int {
	n := 0
	g.walk(func(_ int, _ int, c Cell) {
		if c == Alive {
			n++
		}
	})
	return n
}

//String renders the grid with '#' for live and '.' for dead cells, one line per row
func (g Grid) String() string {
	var b strings.Builder
	b.Grow(g.Rows * (g.Cols + 1))
	for i, row := range g.Cells {
		if i != 0 {
			b.WriteByte('\n')
		}
		for _, c := range row {
			if c == Alive {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}

//walk calls cb for each cell in row-major order
func (g Grid) walk(cb func(row int, col int, c Cell)) {
	for i := range g.Cells {
		for j := range g.Cells[i] {
			cb(i, j, g.Cells[i][j])
		}
	}
}

//NextGeneration computes the following generation of g into a new grid
//cells outside the grid are not counted: edges are clamped, not wrapped
func NextGeneration(g Grid) Grid {
	next := NewGrid(g.Rows, g.Cols)
	g.walk(func(row int, col int, c Cell) {
		next.Cells[row][col] = cellNextState(c, g.liveNeighbours(row, col))
	})
	return next
}

//liveNeighbours counts the live cells around (row, col)
func (g Grid) liveNeighbours(row int, col int) int {
	n := 0
	for _, d := range NeighborOffsets {
		r, c := row+d[0], col+d[1]
		//skip coordinates outside the grid
		if !g.InBounds(r, c) {
			continue
		}
		if g.Cells[r][c] == Alive {
			n++
		}
	}
	return n
}

//cellNextState applies the Life rule to one cell
func cellNextState(c Cell, liveNeighbours int) Cell {
	if liveNeighbours < 2 || liveNeighbours > 3 {
		return Dead
	}
	if c == Dead && liveNeighbours == 3 {
		return Alive
	}
	return c
}
