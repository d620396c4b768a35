package engine

import (
	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

// mistakeThreshold - on medium, draws above this value play a random cell.
const mistakeThreshold = 0.7

// Random is the randomness the selector consumes. *rand.Rand satisfies it.
type Random interface {
	Intn(n int) int
	Float64() float64
}

// ChooseMove - picks the AI's next cell for the given difficulty.
// It returns NoMove on a full board and never mutates the board.
func ChooseMove(board entity.Board, difficulty entity.Difficulty, aiMark, humanMark entity.Mark, rnd Random) int {
	switch difficulty {
	case entity.DifficultyEasy:
		return RandomMove(board, rnd)
	case entity.DifficultyMedium:
		if rnd.Float64() > mistakeThreshold {
			return RandomMove(board, rnd)
		}
		return BestMove(&board, aiMark, humanMark)
	default:
		return BestMove(&board, aiMark, humanMark)
	}
}

// RandomMove - uniformly picks one of the empty cells.
func RandomMove(board entity.Board, rnd Random) int {
	availableCells := board.EmptyCells()
	if len(availableCells) == 0 {
		return NoMove
	}

	return availableCells[rnd.Intn(len(availableCells))]
}
