package model

import "testing"

func TestTerrainGridAt(t *testing.T) {
	grid := &TerrainGrid{
		Cols:  4,
		Rows:  4,
		CellW: 8,
		CellH: 8,
		Grid: []ZoneType{
			Open, Open, Water, Water,
			Open, Open, Water, Water,
			Wall, Door, Open, Open,
			Wall, Open, Open, Open,
		},
	}

	tests := []struct {
		col, row int
		want     ZoneType
	}{
		{0, 0, Open},
		{2, 0, Water},
		{0, 2, Wall},
		{1, 2, Door},
		{3, 3, Open},
	}
	for _, tc := range tests {
		got := grid.At(tc.col, tc.row)
		if got != tc.want {
			t.Errorf("At(%d, %d) = %d, want %d", tc.col, tc.row, got, tc.want)
		}
	}
}

func TestTerrainGridAtOutOfBounds(t *testing.T) {
	grid := &TerrainGrid{
		Cols:  2,
		Rows:  2,
		CellW: 4,
		CellH: 4,
		Grid:  []ZoneType{Water, Water, Water, Water},
	}

	// Out-of-bounds should return Open (safe default).
	if got := grid.At(-1, 0); got != Open {
		t.Errorf("At(-1, 0) = %d, want Open", got)
	}
	if got := grid.At(0, -1); got != Open {
		t.Errorf("At(0, -1) = %d, want Open", got)
	}
	if got := grid.At(2, 0); got != Open {
		t.Errorf("At(2, 0) = %d, want Open", got)
	}
	if got := grid.At(0, 2); got != Open {
		t.Errorf("At(0, 2) = %d, want Open", got)
	}
}

func TestTerrainGridAtMapPos(t *testing.T) {
	grid := &TerrainGrid{
		Cols:  4,
		Rows:  4,
		CellW: 8,
		CellH: 8,
		Grid: []ZoneType{
			Open, Open, Water, Water,
			Open, Open, Water, Water,
			Wall, Door, Open, Open,
			Wall, Open, Open, Open,
		},
	}

	tests := []struct {
		mapX, mapY int
		want       ZoneType
	}{
		{0, 0, Open},   // col=0, row=0
		{4, 0, Open},   // col=0, row=0 (just inside)
		{16, 0, Water}, // col=2, row=0
		{24, 16, Open}, // col=3, row=2
		{0, 16, Wall},  // col=0, row=2
		{8, 16, Door},  // col=1, row=2
	}
	for _, tc := range tests {
		got := grid.AtMapPos(tc.mapX, tc.mapY)
		if got != tc.want {
			t.Errorf("AtMapPos(%d, %d) = %d, want %d", tc.mapX, tc.mapY, got, tc.want)
		}
	}
}

func TestTerrainGridZeroCells(t *testing.T) {
	grid := &TerrainGrid{
		Cols:  2,
		Rows:  2,
		CellW: 0,
		CellH: 0,
		Grid:  []ZoneType{Water, Water, Water, Water},
	}
	// Zero cell size should return Open (safe default).
	if got := grid.AtMapPos(5, 5); got != Open {
		t.Errorf("AtMapPos with zero cells = %d, want Open", got)
	}
}

func TestTerrainGridZoneCenter(t *testing.T) {
	grid := &TerrainGrid{
		Cols:  4,
		Rows:  4,
		CellW: 8,
		CellH: 8,
	}

	x, y := grid.ZoneCenter(0, 0)
	if x != 4 || y != 4 {
		t.Errorf("ZoneCenter(0,0) = (%d,%d), want (4,4)", x, y)
	}

	x, y = grid.ZoneCenter(1, 2)
	if x != 12 || y != 20 {
		t.Errorf("ZoneCenter(1,2) = (%d,%d), want (12,20)", x, y)
	}
}

func TestLineOfSightBlockedByWall(t *testing.T) {
	// Vertical wall column between the left and right halves.
	grid := &TerrainGrid{
		Cols:  5,
		Rows:  3,
		CellW: 4,
		CellH: 4,
		Grid: []ZoneType{
			Open, Open, Wall, Open, Open,
			Open, Open, Wall, Open, Open,
			Open, Open, Wall, Open, Open,
		},
	}

	left := Point{X: 2, Y: 6}   // zone (0,1)
	right := Point{X: 18, Y: 6} // zone (4,1)
	if grid.LineOfSight(left, right) {
		t.Error("expected sight blocked by wall column")
	}

	nearer := Point{X: 6, Y: 6} // zone (1,1), same side
	if !grid.LineOfSight(left, nearer) {
		t.Error("expected clear sight on the same side of the wall")
	}
}

func TestLineOfSightNilGrid(t *testing.T) {
	var grid *TerrainGrid
	if !grid.LineOfSight(Point{0, 0}, Point{100, 100}) {
		t.Error("nil grid should never block sight")
	}
}

func TestLineOfSightEndpointsNeverBlock(t *testing.T) {
	grid := &TerrainGrid{
		Cols:  3,
		Rows:  1,
		CellW: 4,
		CellH: 4,
		Grid:  []ZoneType{Wall, Open, Wall},
	}
	// Both endpoints sit in Wall zones; only intermediate zones block.
	if !grid.LineOfSight(Point{X: 2, Y: 2}, Point{X: 10, Y: 2}) {
		t.Error("endpoint zones must not block sight")
	}
}

func TestReachableFloodFill(t *testing.T) {
	// Wall column with a door in the middle row.
	grid := &TerrainGrid{
		Cols:  5,
		Rows:  3,
		CellW: 4,
		CellH: 4,
		Grid: []ZoneType{
			Open, Open, Wall, Open, Open,
			Open, Open, Door, Open, Open,
			Open, Open, Wall, Open, Open,
		},
	}

	left := Point{X: 2, Y: 2}   // zone (0,0)
	right := Point{X: 18, Y: 2} // zone (4,0)
	if !grid.Reachable(left, right) {
		t.Error("expected path through the door")
	}

	sealed := &TerrainGrid{
		Cols:  5,
		Rows:  3,
		CellW: 4,
		CellH: 4,
		Grid: []ZoneType{
			Open, Open, Wall, Open, Open,
			Open, Open, Wall, Open, Open,
			Open, Open, Wall, Open, Open,
		},
	}
	if sealed.Reachable(left, right) {
		t.Error("expected no path through a solid wall")
	}
}

func TestReachableWaterTarget(t *testing.T) {
	grid := &TerrainGrid{
		Cols:  2,
		Rows:  1,
		CellW: 4,
		CellH: 4,
		Grid:  []ZoneType{Open, Water},
	}
	if grid.Reachable(Point{X: 2, Y: 2}, Point{X: 6, Y: 2}) {
		t.Error("water zone should be unreachable for ground pawns")
	}
}

func TestNeighborCenters(t *testing.T) {
	grid := &TerrainGrid{
		Cols:  4,
		Rows:  4,
		CellW: 10,
		CellH: 10,
		Grid: []ZoneType{
			Wall, Open, Open, Open,
			Open, Open, Open, Open,
			Open, Open, Water, Open,
			Open, Open, Open, Open,
		},
	}

	// Zone (1,1); of its 8 neighbors, (0,0) is wall and (2,2) is water.
	got := grid.NeighborCenters(Point{X: 15, Y: 15}, 1)
	if len(got) != 6 {
		t.Fatalf("got %d candidate cells, want 6: %v", len(got), got)
	}
	for _, p := range got {
		if z := grid.AtMapPos(p.X, p.Y); z != Open && z != Door {
			t.Errorf("candidate %v sits in impassable zone %d", p, z)
		}
		if p == (Point{X: 15, Y: 15}) {
			t.Errorf("own zone returned as candidate")
		}
	}

	var nilGrid *TerrainGrid
	if nilGrid.NeighborCenters(Point{}, 2) != nil {
		t.Error("nil grid should yield no candidates")
	}
}

func TestCoverNear(t *testing.T) {
	grid := &TerrainGrid{
		Cols:  3,
		Rows:  1,
		CellW: 4,
		CellH: 4,
		Grid:  []ZoneType{Open, Open, Wall},
	}
	if !grid.CoverNear(Point{X: 6, Y: 2}) {
		t.Error("zone adjacent to wall should count as cover")
	}
	if grid.CoverNear(Point{X: 2, Y: 2}) {
		t.Error("zone with no adjacent wall should not count as cover")
	}
}
