package entity

// Mark is a player symbol stored in a board cell. Empty marks a free cell.
type Mark string

const (
	Empty   Mark = ""
	PlayerX Mark = "X"
	PlayerO Mark = "O"

	// FirstMover always opens the game.
	FirstMover = PlayerX

	BoardSize = 9
)

// WinCombos - rows, columns and diagonals of the 3x3 grid.
var WinCombos = [8][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Opponent - returns the other player's mark.
func (that Mark) Opponent() Mark {
	if that == PlayerX {
		return PlayerO
	}
	return PlayerX
}

func (that Mark) IsPlayer() bool {
	return that == PlayerX || that == PlayerO
}

// ParseMark - validates an external mark value.
func ParseMark(value string) (Mark, error) {
	mark := Mark(value)
	if !mark.IsPlayer() {
		return Empty, ErrInvalidMark
	}
	return mark, nil
}

// Board is the 3x3 grid in row-major order.
type Board [BoardSize]Mark

func IsValidCell(index int) bool {
	return index >= 0 && index < BoardSize
}

// IsWin - true if any win combo is fully occupied by mark.
func (that Board) IsWin(mark Mark) bool {
	if !mark.IsPlayer() {
		return false
	}

	for _, combo := range WinCombos {
		if that[combo[0]] == mark && that[combo[1]] == mark && that[combo[2]] == mark {
			return true
		}
	}

	return false
}

// IsDraw - true when no cell is empty. Callers check IsWin first.
func (that Board) IsDraw() bool {
	for _, cell := range that {
		if cell == Empty {
			return false
		}
	}
	return true
}

// IsEmpty - index must be a valid cell.
func (that Board) IsEmpty(index int) bool {
	return that[index] == Empty
}

func (that *Board) Place(index int, mark Mark) {
	that[index] = mark
}

func (that *Board) Clear(index int) {
	that[index] = Empty
}

// EmptyCells - free indices in ascending order.
func (that Board) EmptyCells() []int {
	cells := make([]int, 0, BoardSize)
	for i, cell := range that {
		if cell == Empty {
			cells = append(cells, i)
		}
	}
	return cells
}

// MoveCount - number of marks placed so far.
func (that Board) MoveCount() int {
	return BoardSize - len(that.EmptyCells())
}
