package dataset

import (
	"fmt"
	"sort"

	"github.com/discochess/movequality/internal/errkind"
	"github.com/discochess/movequality/internal/fen"
	"github.com/discochess/movequality/internal/gamelog"
)

// MoveSet is the training data of the move-identifier network.
type MoveSet struct {
	// Inputs are the character codes of each FEN, zero-padded to MaxLen.
	Inputs [][]int
	// Labels index into Vocabulary.
	Labels []int
	// Vocabulary is the sorted set of distinct move labels.
	Vocabulary []string
	MaxLen     int
	// Skipped counts move records without a FEN or a move.
	Skipped int
}

// Classes returns the number of distinct moves.
func (s *MoveSet) Classes() int { return len(s.Vocabulary) }

// MoveSamples collects every (FEN, move) pair of games. Records missing
// either part are skipped. A move that lacks one of its coordinates is a
// MissingField error.
func MoveSamples(games []gamelog.Game) (*MoveSet, error) {
	set := &MoveSet{}
	var labels []string
	for i, g := range games {
		for j, rec := range g.Moves {
			if rec.FEN == "" || rec.Move == nil {
				set.Skipped++
				continue
			}
			if field := rec.Move.Missing(); field != "" {
				return nil, fmt.Errorf("game %d (%s) move %d: move.%s: %w", i, g.ID, j, field, errkind.ErrMissingField)
			}
			set.Inputs = append(set.Inputs, fen.CharCodes(rec.FEN))
			labels = append(labels, gamelog.MoveLabel(*rec.Move))
		}
	}

	set.MaxLen = fen.MaxLen(set.Inputs)
	for i, v := range set.Inputs {
		set.Inputs[i] = fen.Pad(v, set.MaxLen)
	}

	set.Vocabulary = unique(labels)
	index := make(map[string]int, len(set.Vocabulary))
	for i, l := range set.Vocabulary {
		index[l] = i
	}
	set.Labels = make([]int, len(labels))
	for i, l := range labels {
		set.Labels[i] = index[l]
	}
	return set, nil
}

func unique(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	out := make([]string, 0)
	for _, l := range labels {
		if _, ok := seen[l]; ok {
			continue
		}
		seen[l] = struct{}{}
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
