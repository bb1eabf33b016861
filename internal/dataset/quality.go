package dataset

import (
	"fmt"

	"github.com/discochess/movequality/internal/errkind"
	"github.com/discochess/movequality/internal/fen"
	"github.com/discochess/movequality/internal/gamelog"
)

// Encoder turns a FEN into a board vector.
type Encoder interface {
	BoardVector(fen string) ([]int, error)
}

// EncoderFunc adapts a function to Encoder.
type EncoderFunc func(fen string) ([]int, error)

// BoardVector calls f.
func (f EncoderFunc) BoardVector(fen string) ([]int, error) { return f(fen) }

// QualitySet is the training data of the move-quality network.
type QualitySet struct {
	Inputs [][]int
	// Labels are 1 when the side to move went on to win the game.
	Labels []int
	FENs   []string
	// Games counts the decisive games the samples were taken from.
	Games int
}

// QualitySamples labels every position of every decisive game with the final
// result seen from the side to move: 1 if that side won, 0 if it lost.
// Undecided games are ignored. The label is the game outcome, not a measure
// of the move played from the position.
func QualitySamples(games []gamelog.Game, enc Encoder) (*QualitySet, error) {
	if enc == nil {
		enc = EncoderFunc(fen.BoardVector)
	}

	set := &QualitySet{}
	for i, g := range games {
		if !g.IsDecisive() {
			continue
		}
		if len(g.Moves) == 0 {
			return nil, fmt.Errorf("game %d (%s): moves: %w", i, g.ID, errkind.ErrMissingField)
		}
		winner := g.Winner()
		for j, rec := range g.Moves {
			if rec.FEN == "" {
				return nil, fmt.Errorf("game %d (%s) move %d: fen: %w", i, g.ID, j, errkind.ErrMissingField)
			}
			vec, err := enc.BoardVector(rec.FEN)
			if err != nil {
				return nil, fmt.Errorf("game %d (%s) move %d: %w", i, g.ID, j, err)
			}
			side, err := fen.SideToMove(rec.FEN)
			if err != nil {
				return nil, fmt.Errorf("game %d (%s) move %d: %w", i, g.ID, j, err)
			}
			set.Inputs = append(set.Inputs, vec)
			set.Labels = append(set.Labels, boolInt(side == winner))
			set.FENs = append(set.FENs, rec.FEN)
		}
		set.Games++
	}
	return set, nil
}
