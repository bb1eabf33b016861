// Package pgnimport converts PGN games into game logs.
package pgnimport

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/notnil/chess"
	"go.uber.org/zap"

	"github.com/discochess/movequality/internal/errkind"
	"github.com/discochess/movequality/internal/gamelog"
)

// ErrInvalidPGN is returned when the PGN stream cannot be parsed.
var ErrInvalidPGN = fmt.Errorf("pgnimport: invalid PGN: %w", errkind.ErrMalformedInput)

// Option configures Import.
type Option interface {
	apply(*options)
}

type options struct {
	maxGames int
	logger   *zap.Logger
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) { f(o) }

// WithMaxGames stops after n games. Zero means no limit.
func WithMaxGames(n int) Option {
	return optionFunc(func(o *options) { o.maxGames = n })
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) { o.logger = l })
}

// Import reads every game of a PGN stream. Each ply becomes a move record
// holding the FEN before the move and the move itself.
func Import(r io.Reader, opts ...Option) ([]gamelog.Game, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt.apply(&o)
	}

	var games []gamelog.Game
	scanner := chess.NewScanner(r)
	for scanner.Scan() {
		if o.maxGames > 0 && len(games) >= o.maxGames {
			break
		}
		game := scanner.Next()
		// Blank input scans as one game without tags or moves.
		if len(game.Moves()) == 0 && len(game.TagPairs()) == 0 {
			continue
		}
		g := convert(game, len(games))
		o.logger.Debug("game imported",
			zap.String("id", g.ID),
			zap.Int("moves", len(g.Moves)),
			zap.String("result", g.Result),
			zap.String("reason", g.Reason),
		)
		games = append(games, g)
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: game %d: %v", ErrInvalidPGN, len(games)+1, err)
	}
	return games, nil
}

func convert(game *chess.Game, n int) gamelog.Game {
	g := gamelog.Game{
		ID:     gameID(game, n),
		Result: result(game),
		Reason: reason(game),
		Moves:  []gamelog.MoveRecord{},
	}

	positions := game.Positions()
	for i, m := range game.Moves() {
		mv := &gamelog.Move{
			From:      coord(m.S1()),
			To:        coord(m.S2()),
			Promotion: promotion(m.Promo()),
		}
		g.Moves = append(g.Moves, gamelog.MoveRecord{FEN: positions[i].String(), Move: mv})
	}
	return g
}

func gameID(game *chess.Game, n int) string {
	for _, key := range []string{"GameId", "Site"} {
		if tp := game.GetTagPair(key); tp != nil && tp.Value != "" && tp.Value != "?" {
			return tp.Value
		}
	}
	return fmt.Sprintf("pgn-%d", n+1)
}

// coord converts a square to x = file (0 = a), y = 7 - rank index, so
// y = 0 is the 8th rank as in the board vector.
func coord(sq chess.Square) gamelog.Coord {
	return gamelog.Coord{X: int(sq.File()), Y: 7 - int(sq.Rank())}
}

func promotion(p chess.PieceType) string {
	switch p {
	case chess.Queen:
		return "q"
	case chess.Rook:
		return "r"
	case chess.Bishop:
		return "b"
	case chess.Knight:
		return "n"
	default:
		return ""
	}
}

func result(game *chess.Game) string {
	switch game.Outcome() {
	case chess.WhiteWon:
		return gamelog.WhiteWins
	case chess.BlackWon:
		return gamelog.BlackWins
	case chess.Draw:
		return gamelog.Draw
	}
	if tp := game.GetTagPair("Result"); tp != nil && tp.Value != "*" {
		return tp.Value
	}
	return ""
}

func reason(game *chess.Game) string {
	switch game.Method() {
	case chess.Checkmate:
		return gamelog.ReasonCheckmate
	case chess.Resignation:
		return "resign"
	case chess.DrawOffer:
		return "agreement"
	case chess.Stalemate:
		return "stalemate"
	case chess.ThreefoldRepetition, chess.FivefoldRepetition:
		return "repetition"
	case chess.FiftyMoveRule, chess.SeventyFiveMoveRule:
		return "fifty-move"
	case chess.InsufficientMaterial:
		return "insufficient-material"
	}
	if tp := game.GetTagPair("Termination"); tp != nil {
		return strings.ToLower(tp.Value)
	}
	return ""
}
