package movequality

import "strconv"

// Prediction is the score of one position.
type Prediction struct {
	FEN   string  `json:"fen"`
	Score float64 `json:"score"`
}

// String formats the score at single precision, the way predict prints it.
func (p Prediction) String() string {
	return FormatScore(p.Score)
}

// FormatScore formats a score with the shortest single-precision
// representation, e.g. "0.73412335".
func FormatScore(score float64) string {
	s := strconv.FormatFloat(score, 'f', -1, 32)
	if s == "0" || s == "1" {
		s += ".0"
	}
	return s
}
