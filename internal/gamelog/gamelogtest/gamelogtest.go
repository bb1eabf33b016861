// Package gamelogtest builds synthetic game logs for tests.
package gamelogtest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/discochess/movequality/internal/gamelog"
)

// Decisive returns n decisive games of plies positions each, all with White
// to move. Even-numbered games are won by White with White a queen or two
// up; odd-numbered games are won by Black, who has the queens instead.
// Every third game ends in checkmate.
func Decisive(n, plies int) []gamelog.Game {
	games := make([]gamelog.Game, n)
	for g := range games {
		whiteWins := g%2 == 0
		queen := byte('Q')
		result := gamelog.WhiteWins
		if !whiteWins {
			queen = 'q'
			result = gamelog.BlackWins
		}

		game := gamelog.Game{ID: fmt.Sprintf("synthetic-%d", g), Result: result, Reason: "resign"}
		if g%3 == 0 {
			game.Reason = gamelog.ReasonCheckmate
		}
		for p := 0; p < plies; p++ {
			var board [8][8]byte
			board[0][g%8] = 'k'
			board[7][(g+3)%8] = 'K'

			qRow, qCol := 1+(g+p)%6, (g*3+p)%8
			board[qRow][qCol] = queen
			board[1+(g+p+3)%6][(g+2*p+5)%8] = queen

			game.Moves = append(game.Moves, gamelog.MoveRecord{
				FEN: FEN(board, "w"),
				Move: &gamelog.Move{
					From: gamelog.Coord{X: qCol, Y: qRow},
					To:   gamelog.Coord{X: (qCol + 1) % 8, Y: qRow},
				},
			})
		}
		games[g] = game
	}
	return games
}

// FEN renders a board, indexed [row][col] from the 8th rank and the a-file
// with zero for empty squares, as a full FEN with no castling rights.
func FEN(board [8][8]byte, side string) string {
	var b strings.Builder
	for r, row := range board {
		if r > 0 {
			b.WriteByte('/')
		}
		empty := 0
		for _, sq := range row {
			if sq == 0 {
				empty++
				continue
			}
			if empty > 0 {
				b.WriteString(strconv.Itoa(empty))
				empty = 0
			}
			b.WriteByte(sq)
		}
		if empty > 0 {
			b.WriteString(strconv.Itoa(empty))
		}
	}
	b.WriteString(" " + side + " - - 0 1")
	return b.String()
}

// WinLike returns a White-to-move position with White two queens up.
func WinLike() string {
	return "k7/8/2Q5/8/8/5Q2/8/7K w - - 0 1"
}

// LoseLike returns a White-to-move position with Black two queens up.
func LoseLike() string {
	return "k7/8/2q5/8/8/5q2/8/7K w - - 0 1"
}
