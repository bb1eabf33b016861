// Package gamelog reads and writes JSON game logs.
//
// A game log is a JSON array of game records. Each record carries the
// positions visited during the game, the move played from each of them, the
// result ("1-0", "0-1" or anything else for undecided games) and the reason
// the game ended.
package gamelog

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/discochess/movequality/internal/fen"
)

// Results and reasons with special meaning.
const (
	WhiteWins = "1-0"
	BlackWins = "0-1"
	Draw      = "1/2-1/2"

	ReasonCheckmate = "checkmate"
)

// Coord is a board coordinate: x is the file (0 = a) and y the row counted
// from the 8th rank (0 = rank 8).
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Move is a move between two squares.
type Move struct {
	From      Coord  `json:"from"`
	To        Coord  `json:"to"`
	Promotion string `json:"promotion,omitempty"`

	// missing names the first coordinate absent from the decoded JSON.
	missing string
}

// Missing returns the first of "from", "from.x", "from.y", "to", "to.x" and
// "to.y" that was absent when m was decoded, or "" if the move is complete.
func (m Move) Missing() string { return m.missing }

// UnmarshalJSON decodes a move and records which coordinates were absent.
func (m *Move) UnmarshalJSON(b []byte) error {
	var raw struct {
		From      *rawCoord `json:"from"`
		To        *rawCoord `json:"to"`
		Promotion string    `json:"promotion"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	*m = Move{Promotion: raw.Promotion}
	var missingTo string
	m.From, m.missing = raw.From.coord("from")
	m.To, missingTo = raw.To.coord("to")
	if m.missing == "" {
		m.missing = missingTo
	}
	return nil
}

type rawCoord struct {
	X *int `json:"x"`
	Y *int `json:"y"`
}

// coord returns the decoded coordinate, or the name of its first absent part.
func (c *rawCoord) coord(name string) (Coord, string) {
	switch {
	case c == nil:
		return Coord{}, name
	case c.X == nil:
		return Coord{}, name + ".x"
	case c.Y == nil:
		return Coord{}, name + ".y"
	}
	return Coord{X: *c.X, Y: *c.Y}, ""
}

// MoveRecord is one ply of a game: the position before the move, and the move.
type MoveRecord struct {
	FEN  string `json:"fen,omitempty"`
	Move *Move  `json:"move,omitempty"`
}

// Game is a single game record.
type Game struct {
	ID     string       `json:"id"`
	Moves  []MoveRecord `json:"moves"`
	Result string       `json:"result,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

// MoveLabel serializes a move as the concatenation of its four coordinates.
// For on-board coordinates (0-7) the label is unique per (from, to) pair.
func MoveLabel(m Move) string {
	return strconv.Itoa(m.From.X) + strconv.Itoa(m.From.Y) +
		strconv.Itoa(m.To.X) + strconv.Itoa(m.To.Y)
}

// IsDecisive reports whether one side won the game.
func (g Game) IsDecisive() bool {
	return g.Result == WhiteWins || g.Result == BlackWins
}

// IsCheckmate reports whether the game ended in checkmate.
func (g Game) IsCheckmate() bool {
	return g.Reason == ReasonCheckmate
}

// Winner returns the side that won the game, fen.White or fen.Black.
// It returns an empty string for games that are not decisive.
func (g Game) Winner() string {
	switch g.Result {
	case WhiteWins:
		return fen.White
	case BlackWins:
		return fen.Black
	default:
		return ""
	}
}

// String returns a short description of the game for log and error messages.
func (g Game) String() string {
	id := g.ID
	if id == "" {
		id = "<no id>"
	}
	return fmt.Sprintf("game %s (%d moves, result %q)", id, len(g.Moves), g.Result)
}
