package gamelog

// Filter returns the games for which keep returns true.
func Filter(games []Game, keep func(Game) bool) []Game {
	var out []Game
	for _, g := range games {
		if keep(g) {
			out = append(out, g)
		}
	}
	return out
}

// Checkmates returns the games that ended in checkmate.
func Checkmates(games []Game) []Game {
	return Filter(games, Game.IsCheckmate)
}

// Decisive returns the games won by one side.
func Decisive(games []Game) []Game {
	return Filter(games, Game.IsDecisive)
}

// Summary holds the counts reported by the checkmate analysis.
type Summary struct {
	Total             int      `json:"total"`
	Checkmates        int      `json:"checkmates"`
	NonCheckmates     int      `json:"non_checkmates"`
	CheckmateIDs      []string `json:"checkmate_ids"`
	WinsByCheckmate   int      `json:"wins_by_checkmate"`
	LossesByCheckmate int      `json:"losses_by_checkmate"`
}

// Summarize counts checkmates in games. A win is a "1-0" result and a loss
// a "0-1" result, seen from the side the log was recorded for.
func Summarize(games []Game) Summary {
	s := Summary{Total: len(games), CheckmateIDs: []string{}}
	for _, g := range games {
		if !g.IsCheckmate() {
			s.NonCheckmates++
			continue
		}
		s.Checkmates++
		s.CheckmateIDs = append(s.CheckmateIDs, g.ID)
		switch g.Result {
		case WhiteWins:
			s.WinsByCheckmate++
		case BlackWins:
			s.LossesByCheckmate++
		}
	}
	return s
}
