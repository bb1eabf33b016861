package dataset

import (
	"fmt"

	"github.com/discochess/movequality/internal/errkind"
	"github.com/discochess/movequality/internal/gamelog"
)

// OutcomeRow holds the per-game scalar features of the classical trainer.
type OutcomeRow struct {
	NumMoves    int
	IsCheckmate int
	AIWin       int
	AILose      int
}

// OutcomeRows derives one row per game. A game without a result is an error;
// a missing move list counts as zero moves and a missing reason as "not
// checkmate".
func OutcomeRows(games []gamelog.Game) ([]OutcomeRow, error) {
	rows := make([]OutcomeRow, 0, len(games))
	for i, g := range games {
		if g.Result == "" {
			return nil, fmt.Errorf("game %d (%s): result: %w", i, g.ID, errkind.ErrMissingField)
		}
		rows = append(rows, OutcomeRow{
			NumMoves:    len(g.Moves),
			IsCheckmate: boolInt(g.IsCheckmate()),
			AIWin:       boolInt(g.Result == gamelog.WhiteWins),
			AILose:      boolInt(g.Result == gamelog.BlackWins),
		})
	}
	return rows, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
