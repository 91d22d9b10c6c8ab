package model

// ZoneType classifies a coarse grid zone. The host downsamples its full map
// so the engine can answer pathing and sight questions without a pathfinder.
type ZoneType byte

const (
	Open  ZoneType = 0 // passable ground
	Water ZoneType = 1 // impassable for ground pawns
	Wall  ZoneType = 2 // impassable, blocks sight, usable as cover
	Door  ZoneType = 3 // passable corridor through walls
)

// TerrainGrid is a fixed coarse grid regardless of map size. Each zone covers
// CellW x CellH map cells and stores a single ZoneType.
type TerrainGrid struct {
	Cols  int        // grid columns (typically 32)
	Rows  int        // grid rows (typically 32)
	CellW int        // map cells per grid column
	CellH int        // map cells per grid row
	Grid  []ZoneType // row-major: Grid[row*Cols + col]
}

// At returns the zone type at grid coordinates (col, row).
// Returns Open for out-of-bounds coordinates.
func (g *TerrainGrid) At(col, row int) ZoneType {
	if col < 0 || col >= g.Cols || row < 0 || row >= g.Rows {
		return Open
	}
	return g.Grid[row*g.Cols+col]
}

// AtMapPos converts map coordinates to coarse grid coordinates and returns
// the zone type. Returns Open for out-of-bounds or zero-sized cells.
func (g *TerrainGrid) AtMapPos(mapX, mapY int) ZoneType {
	if g.CellW <= 0 || g.CellH <= 0 {
		return Open
	}
	col := mapX / g.CellW
	row := mapY / g.CellH
	return g.At(col, row)
}

// ZoneCenter returns the map coordinates of the center of the grid zone
// at (col, row).
func (g *TerrainGrid) ZoneCenter(col, row int) (int, int) {
	x := col*g.CellW + g.CellW/2
	y := row*g.CellH + g.CellH/2
	return x, y
}

func (g *TerrainGrid) zoneOf(p Point) (int, int) {
	if g.CellW <= 0 || g.CellH <= 0 {
		return 0, 0
	}
	return p.X / g.CellW, p.Y / g.CellH
}

func passable(z ZoneType) bool { return z == Open || z == Door }

// LineOfSight walks the coarse grid between two map positions and reports
// whether any Wall zone blocks the line. A nil grid always has sight; the
// engine degrades to distance-only decisions without terrain data.
func (g *TerrainGrid) LineOfSight(from, to Point) bool {
	if g == nil || len(g.Grid) == 0 {
		return true
	}
	c0, r0 := g.zoneOf(from)
	c1, r1 := g.zoneOf(to)

	// Bresenham over zones. Endpoints never block: a pawn reported inside
	// a wall zone is the host's inconsistency to resolve, not ours.
	dc := abs(c1 - c0)
	dr := abs(r1 - r0)
	sc, sr := 1, 1
	if c0 > c1 {
		sc = -1
	}
	if r0 > r1 {
		sr = -1
	}
	err := dc - dr
	c, r := c0, r0
	for {
		if (c != c0 || r != r0) && (c != c1 || r != r1) && g.At(c, r) == Wall {
			return false
		}
		if c == c1 && r == r1 {
			return true
		}
		e2 := 2 * err
		if e2 > -dr {
			err -= dr
			c += sc
		}
		if e2 < dc {
			err += dc
			r += sr
		}
	}
}

// Reachable reports whether a ground pawn at from can reach to, by flood
// fill over passable zones. A nil grid is treated as fully connected.
func (g *TerrainGrid) Reachable(from, to Point) bool {
	if g == nil || len(g.Grid) == 0 {
		return true
	}
	c0, r0 := g.zoneOf(from)
	c1, r1 := g.zoneOf(to)
	if c0 == c1 && r0 == r1 {
		return true
	}
	if !passable(g.At(c0, r0)) || !passable(g.At(c1, r1)) {
		return false
	}

	type zone struct{ c, r int }
	seen := make(map[zone]bool, g.Cols*g.Rows/4)
	queue := []zone{{c0, r0}}
	seen[zone{c0, r0}] = true
	for len(queue) > 0 {
		z := queue[0]
		queue = queue[1:]
		for _, d := range [4]zone{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			n := zone{z.c + d.c, z.r + d.r}
			if n.c < 0 || n.c >= g.Cols || n.r < 0 || n.r >= g.Rows || seen[n] {
				continue
			}
			if !passable(g.At(n.c, n.r)) {
				continue
			}
			if n.c == c1 && n.r == r1 {
				return true
			}
			seen[n] = true
			queue = append(queue, n)
		}
	}
	return false
}

// NeighborCenters returns the map-coordinate centers of passable zones
// within radius zones of p's own zone, excluding it. Candidate cells for
// repositioning; nil grid has no candidates.
func (g *TerrainGrid) NeighborCenters(p Point, radius int) []Point {
	if g == nil || len(g.Grid) == 0 || radius <= 0 {
		return nil
	}
	c0, r0 := g.zoneOf(p)
	var out []Point
	for r := r0 - radius; r <= r0+radius; r++ {
		for c := c0 - radius; c <= c0+radius; c++ {
			if c < 0 || c >= g.Cols || r < 0 || r >= g.Rows {
				continue
			}
			if c == c0 && r == r0 {
				continue
			}
			if !passable(g.At(c, r)) {
				continue
			}
			x, y := g.ZoneCenter(c, r)
			out = append(out, Point{X: x, Y: y})
		}
	}
	return out
}

// CoverNear reports whether the zone at p has an adjacent Wall zone a pawn
// could duck behind.
func (g *TerrainGrid) CoverNear(p Point) bool {
	if g == nil || len(g.Grid) == 0 {
		return false
	}
	c, r := g.zoneOf(p)
	for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
		nc, nr := c+d[0], r+d[1]
		if nc < 0 || nc >= g.Cols || nr < 0 || nr >= g.Rows {
			continue
		}
		if g.At(nc, nr) == Wall {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
