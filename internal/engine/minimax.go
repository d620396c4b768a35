// Package engine picks the AI's moves: an exhaustive minimax search and the
// difficulty-dependent selector built on top of it.
package engine

import (
	"math"

	"github.com/rocketscienceinc/tictactoe-ai/internal/entity"
)

const (
	// NoMove is returned when the board has no free cell.
	NoMove = -1

	winScore = 10
)

// BestMove - returns the optimal cell for aiMark. The board is used for
// simulation and is restored before returning.
func BestMove(board *entity.Board, aiMark, humanMark entity.Mark) int {
	bestScore := math.MinInt
	move := NoMove

	for index := range board {
		if !board.IsEmpty(index) {
			continue
		}

		board.Place(index, aiMark)
		score := minimax(board, 0, false, aiMark, humanMark)
		board.Clear(index)

		// strict comparison keeps the lowest index among equal scores
		if score > bestScore {
			bestScore = score
			move = index
		}
	}

	return move
}

// minimax - scores the board for aiMark. depth counts plies below the root move.
func minimax(board *entity.Board, depth int, isMaximizing bool, aiMark, humanMark entity.Mark) int {
	if board.IsWin(aiMark) {
		return winScore - depth
	}
	if board.IsWin(humanMark) {
		return depth - winScore
	}
	if board.IsDraw() {
		return 0
	}

	if isMaximizing {
		bestScore := math.MinInt
		for index := range board {
			if !board.IsEmpty(index) {
				continue
			}

			board.Place(index, aiMark)
			bestScore = max(bestScore, minimax(board, depth+1, false, aiMark, humanMark))
			board.Clear(index)
		}
		return bestScore
	}

	bestScore := math.MaxInt
	for index := range board {
		if !board.IsEmpty(index) {
			continue
		}

		board.Place(index, humanMark)
		bestScore = min(bestScore, minimax(board, depth+1, true, aiMark, humanMark))
		board.Clear(index)
	}
	return bestScore
}
