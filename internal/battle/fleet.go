package battle

import (
	"sort"

	"github.com/seabattle-vn/slbattle/internal/domains/entities"
)

// RequiredShips is the canonical fleet composition. Two ships share size 3;
// both must be present.
var RequiredShips = []struct {
	Name string
	Size int
}{
	{"Carrier", 5},
	{"Battleship", 4},
	{"Cruiser", 3},
	{"Submarine", 3},
	{"Destroyer", 2},
}

// ValidateFleet checks a proposed fleet layout. All rules must hold or the
// whole fleet is rejected with ErrInvalidFleet:
//
//  1. exactly one ship per required name/size pair
//  2. each ship's cell list length equals its size
//  3. every cell lies on the board
//  4. no cell is shared between ships
//  5. each ship is contiguous and axis-aligned
func ValidateFleet(fleet entities.Fleet) error {
	if len(fleet) != len(RequiredShips) {
		return ErrInvalidFleet
	}

	seen := make(map[string]bool, len(RequiredShips))
	for _, required := range RequiredShips {
		found := false
		for i := range fleet {
			ship := &fleet[i]
			if ship.Name == required.Name && !seen[ship.Name] {
				if ship.Size != required.Size {
					return ErrInvalidFleet
				}
				seen[ship.Name] = true
				found = true
				break
			}
		}
		if !found {
			return ErrInvalidFleet
		}
	}

	var occupied [entities.BoardSize][entities.BoardSize]bool
	for i := range fleet {
		ship := &fleet[i]
		if len(ship.Cells) != ship.Size {
			return ErrInvalidFleet
		}
		for _, cell := range ship.Cells {
			if !cell.InBounds() {
				return ErrInvalidFleet
			}
			if occupied[cell.X][cell.Y] {
				return ErrInvalidFleet
			}
			occupied[cell.X][cell.Y] = true
		}
		if !isStraightLine(ship.Cells) {
			return ErrInvalidFleet
		}
	}
	return nil
}

// isStraightLine reports whether the cells, once sorted, sit on one row with
// consecutive columns or one column with consecutive rows.
func isStraightLine(cells []entities.Coord) bool {
	sorted := make([]entities.Coord, len(cells))
	copy(sorted, cells)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	horizontal := true
	vertical := true
	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if cur.X != prev.X || cur.Y != prev.Y+1 {
			horizontal = false
		}
		if cur.Y != prev.Y || cur.X != prev.X+1 {
			vertical = false
		}
	}
	return horizontal || vertical
}
