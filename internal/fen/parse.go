// Package fen encodes FEN (Forsyth-Edwards Notation) positions into the
// integer feature vectors the models are trained on.
package fen

import (
	"fmt"
	"strings"

	"github.com/discochess/movequality/internal/errkind"
)

// ErrInvalidFEN indicates the FEN string is malformed.
var ErrInvalidFEN = fmt.Errorf("invalid FEN notation: %w", errkind.ErrMalformedInput)

// Side-to-move values as they appear in the second FEN field.
const (
	White = "w"
	Black = "b"
)

// Placement returns the piece placement field of a FEN string.
func Placement(fen string) (string, error) {
	parts := strings.Fields(fen)
	if len(parts) == 0 {
		return "", ErrInvalidFEN
	}
	if !isValidPiecePlacement(parts[0]) {
		return "", ErrInvalidFEN
	}
	return parts[0], nil
}

// SideToMove returns "w" or "b" from a FEN string.
func SideToMove(fen string) (string, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return "", ErrInvalidFEN
	}
	if parts[1] != White && parts[1] != Black {
		return "", ErrInvalidFEN
	}
	return parts[1], nil
}

// isValidPiecePlacement validates the piece placement part of a FEN.
func isValidPiecePlacement(placement string) bool {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return false
	}

	for _, rank := range ranks {
		squares := 0
		for _, ch := range rank {
			switch {
			case ch >= '1' && ch <= '8':
				squares += int(ch - '0')
			case strings.ContainsRune("PNBRQKpnbrqk", ch):
				squares++
			default:
				return false
			}
		}
		if squares != 8 {
			return false
		}
	}

	return true
}
