package entities

// Ship is one vessel of a fleet: its canonical name, required size, the
// cells it occupies and the indices of cells already hit.
type Ship struct {
	Name  string  `dynamodbav:"Name" json:"name"`
	Size  int     `dynamodbav:"Size" json:"size"`
	Cells []Coord `dynamodbav:"Cells" json:"positions"`
	Hits  []int   `dynamodbav:"Hits" json:"hits"`
}

// CellIndex returns the index of the given coordinate in the ship's cell
// list, or -1 if the ship does not occupy it.
func (s *Ship) CellIndex(c Coord) int {
	for i, cell := range s.Cells {
		if cell == c {
			return i
		}
	}
	return -1
}

// RegisterHit records a hit on the cell at the given index. Duplicate hits
// on the same index are ignored.
func (s *Ship) RegisterHit(index int) {
	for _, hit := range s.Hits {
		if hit == index {
			return
		}
	}
	s.Hits = append(s.Hits, index)
}

// IsSunk reports whether every cell of the ship has been hit.
func (s *Ship) IsSunk() bool {
	return len(s.Hits) == s.Size
}

// Fleet is the full five-ship layout a player commits for a match.
type Fleet []Ship

// ShipAt returns the ship occupying the given coordinate, if any.
func (f Fleet) ShipAt(c Coord) (*Ship, int) {
	for i := range f {
		if idx := f[i].CellIndex(c); idx != -1 {
			return &f[i], idx
		}
	}
	return nil, -1
}

// Clone returns a deep copy sharing no cell or hit memory with the
// original.
func (f Fleet) Clone() Fleet {
	if f == nil {
		return nil
	}
	out := make(Fleet, len(f))
	for i, ship := range f {
		ship.Cells = append([]Coord(nil), ship.Cells...)
		ship.Hits = append([]int(nil), ship.Hits...)
		out[i] = ship
	}
	return out
}

// AllSunk reports whether every ship of the fleet has been eliminated.
func (f Fleet) AllSunk() bool {
	for i := range f {
		if !f[i].IsSunk() {
			return false
		}
	}
	return len(f) > 0
}
