package entities

// BoardSize is the side length of the square attack grid.
const BoardSize = 10

type CellState uint8

const (
	CellEmpty CellState = iota
	CellShip
	CellMiss
	CellHit
)

// Coord addresses one cell of a board. X is the row, Y the column,
// both in [0, BoardSize).
type Coord struct {
	X int `dynamodbav:"X" json:"x"`
	Y int `dynamodbav:"Y" json:"y"`
}

// InBounds reports whether the coordinate lies on the board.
func (c Coord) InBounds() bool {
	return c.X >= 0 && c.X < BoardSize && c.Y >= 0 && c.Y < BoardSize
}

// Board tracks the attacks resolved against one player.
// Cells start EMPTY and are marked MISS or HIT at most once.
type Board [BoardSize][BoardSize]CellState

func (b *Board) At(c Coord) CellState {
	return b[c.X][c.Y]
}

func (b *Board) Mark(c Coord, state CellState) {
	b[c.X][c.Y] = state
}

func (s CellState) String() string {
	switch s {
	case CellEmpty:
		return "EMPTY"
	case CellShip:
		return "SHIP"
	case CellMiss:
		return "MISS"
	case CellHit:
		return "HIT"
	default:
		return "UNKNOWN"
	}
}
