package fen

import (
	"fmt"

	"github.com/notnil/chess"
)

// BoardSize is the length of a board encoding.
const BoardSize = 64

// PieceOrdinal maps a piece kind to its code in the board encoding:
// pawn 1, knight 2, bishop 3, rook 4, queen 5, king 6.
// notnil/chess numbers piece types differently, so the mapping is explicit.
func PieceOrdinal(t chess.PieceType) int {
	switch t {
	case chess.Pawn:
		return 1
	case chess.Knight:
		return 2
	case chess.Bishop:
		return 3
	case chess.Rook:
		return 4
	case chess.Queen:
		return 5
	case chess.King:
		return 6
	default:
		return 0
	}
}

// BoardVector encodes a position as 64 signed piece codes.
//
// Index i = row*8 + col, where row 0 is the 8th rank and col 0 is the a-file.
// White pieces are positive, black pieces negative and empty squares zero.
func BoardVector(fenStr string) ([]int, error) {
	var pos chess.Position
	if err := pos.UnmarshalText([]byte(fenStr)); err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrInvalidFEN, fenStr, err)
	}

	vec := make([]int, BoardSize)
	for sq, piece := range pos.Board().SquareMap() {
		if piece == chess.NoPiece {
			continue
		}
		row := 7 - int(sq.Rank())
		col := int(sq.File())

		v := PieceOrdinal(piece.Type())
		if piece.Color() == chess.Black {
			v = -v
		}
		vec[row*8+col] = v
	}
	return vec, nil
}

// CharCodes encodes the raw FEN text as one code point per character.
// It never fails: the FEN is not parsed.
func CharCodes(fen string) []int {
	codes := make([]int, 0, len(fen))
	for _, r := range fen {
		codes = append(codes, int(r))
	}
	return codes
}

// Pad returns v zero-padded to length n. Longer vectors are cut to n.
func Pad(v []int, n int) []int {
	out := make([]int, n)
	copy(out, v)
	return out
}

// MaxLen returns the length of the longest vector.
func MaxLen(vs [][]int) int {
	longest := 0
	for _, v := range vs {
		if len(v) > longest {
			longest = len(v)
		}
	}
	return longest
}
