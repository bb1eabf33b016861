package dataset

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/discochess/movequality/internal/errkind"
	"github.com/discochess/movequality/internal/fen"
	"github.com/discochess/movequality/internal/gamelog"
)

const (
	startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	e4FEN    = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		n         int
		wantTrain int
		wantTest  int
	}{
		{2, 1, 1},
		{5, 4, 1},
		{10, 8, 2},
		{11, 8, 3},
		{100, 80, 20},
	}

	for _, tt := range tests {
		train, test, err := Split(tt.n, DefaultTestFraction, DefaultSeed)
		if err != nil {
			t.Fatalf("Split(%d) error = %v", tt.n, err)
		}
		if len(train) != tt.wantTrain || len(test) != tt.wantTest {
			t.Errorf("Split(%d) sizes = %d/%d, want %d/%d", tt.n, len(train), len(test), tt.wantTrain, tt.wantTest)
		}

		all := append(append([]int(nil), train...), test...)
		sort.Ints(all)
		for i, v := range all {
			if v != i {
				t.Fatalf("Split(%d) is not a partition of 0..n-1: %v", tt.n, all)
			}
		}
	}
}

func TestSplit_Deterministic(t *testing.T) {
	train1, test1, err := Split(50, 0.2, 42)
	if err != nil {
		t.Fatal(err)
	}
	train2, test2, err := Split(50, 0.2, 42)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(train1, train2) || !reflect.DeepEqual(test1, test2) {
		t.Error("Split() with the same seed gave different splits")
	}

	_, test3, err := Split(50, 0.2, 7)
	if err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(test1, test3) {
		t.Error("Split() with different seeds gave the same test rows")
	}
}

func TestSplit_Errors(t *testing.T) {
	if _, _, err := Split(1, 0.2, 42); !errors.Is(err, ErrTooFewRows) {
		t.Errorf("Split(1) error = %v, want ErrTooFewRows", err)
	}
	if _, _, err := Split(0, 0.2, 42); !errors.Is(err, ErrTooFewRows) {
		t.Errorf("Split(0) error = %v, want ErrTooFewRows", err)
	}
	for _, f := range []float64{0, 1, -0.5, 1.5} {
		if _, _, err := Split(10, f, 42); err == nil {
			t.Errorf("Split(10, %v) should return error", f)
		}
	}
}

func TestOutcomeRows(t *testing.T) {
	fiveMoves := make([]gamelog.MoveRecord, 5)
	games := []gamelog.Game{
		{ID: "win", Result: "1-0", Moves: fiveMoves},
		{ID: "mate-loss", Result: "0-1", Reason: "checkmate", Moves: make([]gamelog.MoveRecord, 3)},
		{ID: "draw", Result: "1/2-1/2"},
	}

	rows, err := OutcomeRows(games)
	if err != nil {
		t.Fatalf("OutcomeRows() error = %v", err)
	}
	want := []OutcomeRow{
		{NumMoves: 5, IsCheckmate: 0, AIWin: 1, AILose: 0},
		{NumMoves: 3, IsCheckmate: 1, AIWin: 0, AILose: 1},
		{NumMoves: 0, IsCheckmate: 0, AIWin: 0, AILose: 0},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("OutcomeRows() = %+v, want %+v", rows, want)
	}
}

func TestOutcomeRows_MissingResult(t *testing.T) {
	_, err := OutcomeRows([]gamelog.Game{{ID: "x", Moves: make([]gamelog.MoveRecord, 2)}})
	if errkind.Of(err) != errkind.MissingField {
		t.Errorf("OutcomeRows() error = %v, want kind %v", err, errkind.MissingField)
	}
}

func TestMoveSamples(t *testing.T) {
	games := []gamelog.Game{
		{ID: "g1", Moves: []gamelog.MoveRecord{
			{FEN: startFEN, Move: &gamelog.Move{From: gamelog.Coord{X: 4, Y: 6}, To: gamelog.Coord{X: 4, Y: 4}}},
			{FEN: e4FEN, Move: &gamelog.Move{From: gamelog.Coord{X: 1, Y: 0}, To: gamelog.Coord{X: 2, Y: 2}}},
			{FEN: e4FEN},
		}},
		{ID: "g2", Moves: []gamelog.MoveRecord{
			{Move: &gamelog.Move{}},
			{FEN: "8/8/8/8/8/8/8/4K3 w - - 0 1", Move: &gamelog.Move{From: gamelog.Coord{X: 4, Y: 6}, To: gamelog.Coord{X: 4, Y: 4}}},
		}},
	}

	set, err := MoveSamples(games)
	if err != nil {
		t.Fatalf("MoveSamples() error = %v", err)
	}

	if set.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", set.Skipped)
	}
	if want := []string{"1022", "4644"}; !reflect.DeepEqual(set.Vocabulary, want) {
		t.Errorf("Vocabulary = %v, want %v", set.Vocabulary, want)
	}
	if want := []int{1, 0, 1}; !reflect.DeepEqual(set.Labels, want) {
		t.Errorf("Labels = %v, want %v", set.Labels, want)
	}
	if set.MaxLen != len(e4FEN) {
		t.Errorf("MaxLen = %d, want %d", set.MaxLen, len(e4FEN))
	}
	for i, v := range set.Inputs {
		if len(v) != set.MaxLen {
			t.Errorf("len(Inputs[%d]) = %d, want %d", i, len(v), set.MaxLen)
		}
	}

	short := "8/8/8/8/8/8/8/4K3 w - - 0 1"
	last := set.Inputs[2]
	if !reflect.DeepEqual(last[:len(short)], fen.CharCodes(short)) {
		t.Error("short FEN codes were altered by padding")
	}
	for _, v := range last[len(short):] {
		if v != 0 {
			t.Fatalf("padding = %v, want zeros", last[len(short):])
		}
	}
	if set.Classes() != 2 {
		t.Errorf("Classes() = %d, want 2", set.Classes())
	}
}

func TestMoveSamples_Empty(t *testing.T) {
	set, err := MoveSamples(nil)
	if err != nil {
		t.Fatalf("MoveSamples(nil) error = %v", err)
	}
	if len(set.Inputs) != 0 || set.Classes() != 0 || set.MaxLen != 0 {
		t.Errorf("MoveSamples(nil) = %+v, want empty set", set)
	}
}

func TestMoveSamples_MissingCoordinate(t *testing.T) {
	tests := []struct {
		name string
		move string
		want string
	}{
		{"no from", `{"to":{"x":1,"y":2}}`, "move.from"},
		{"no to", `{"from":{"x":1,"y":2}}`, "move.to"},
		{"no x", `{"from":{"y":2},"to":{"x":1,"y":2}}`, "move.from.x"},
		{"no y", `{"from":{"x":1,"y":2},"to":{"x":1}}`, "move.to.y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := `[{"id":"g1","result":"1-0","moves":[{"fen":"` + startFEN + `","move":` + tt.move + `}]}]`
			games, err := gamelog.Decode([]byte(data))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			_, err = MoveSamples(games)
			if errkind.Of(err) != errkind.MissingField {
				t.Fatalf("MoveSamples() error = %v, want kind %v", err, errkind.MissingField)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("MoveSamples() error = %v, want it to name %s", err, tt.want)
			}
		})
	}
}

func TestQualitySamples(t *testing.T) {
	games := []gamelog.Game{
		{ID: "white-wins", Result: "1-0", Moves: []gamelog.MoveRecord{{FEN: startFEN}, {FEN: e4FEN}}},
		{ID: "draw", Result: "1/2-1/2", Moves: []gamelog.MoveRecord{{FEN: startFEN}}},
		{ID: "black-wins", Result: "0-1", Moves: []gamelog.MoveRecord{{FEN: startFEN}}},
	}

	set, err := QualitySamples(games, nil)
	if err != nil {
		t.Fatalf("QualitySamples() error = %v", err)
	}
	if want := []int{1, 0, 0}; !reflect.DeepEqual(set.Labels, want) {
		t.Errorf("Labels = %v, want %v", set.Labels, want)
	}
	if set.Games != 2 {
		t.Errorf("Games = %d, want 2", set.Games)
	}
	want, _ := fen.BoardVector(startFEN)
	if !reflect.DeepEqual(set.Inputs[0], want) {
		t.Errorf("Inputs[0] = %v, want %v", set.Inputs[0], want)
	}
	if set.FENs[1] != e4FEN {
		t.Errorf("FENs[1] = %q, want %q", set.FENs[1], e4FEN)
	}
}

func TestQualitySamples_Errors(t *testing.T) {
	tests := []struct {
		name string
		game gamelog.Game
		kind errkind.Kind
	}{
		{"no moves", gamelog.Game{Result: "1-0"}, errkind.MissingField},
		{"move without fen", gamelog.Game{Result: "0-1", Moves: []gamelog.MoveRecord{{}}}, errkind.MissingField},
		{"bad fen", gamelog.Game{Result: "1-0", Moves: []gamelog.MoveRecord{{FEN: "bogus"}}}, errkind.MalformedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := QualitySamples([]gamelog.Game{tt.game}, nil)
			if errkind.Of(err) != tt.kind {
				t.Errorf("QualitySamples() error = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

func TestQualitySamples_CustomEncoder(t *testing.T) {
	calls := 0
	enc := EncoderFunc(func(s string) ([]int, error) {
		calls++
		return fen.BoardVector(s)
	})
	games := []gamelog.Game{{Result: "1-0", Moves: []gamelog.MoveRecord{{FEN: startFEN}, {FEN: e4FEN}}}}
	if _, err := QualitySamples(games, enc); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("encoder calls = %d, want 2", calls)
	}
}

func TestMatrixHelpers(t *testing.T) {
	rows := [][]int{{1, 2}, {3, 4}, {5, 6}}

	m := Matrix(rows, []int{2, 0})
	if r, c := m.Dims(); r != 2 || c != 2 {
		t.Fatalf("Matrix() dims = %dx%d, want 2x2", r, c)
	}
	if m.At(0, 1) != 6 || m.At(1, 0) != 1 {
		t.Errorf("Matrix() = %v", m.RawMatrix().Data)
	}

	all := Matrix(rows, nil)
	if r, _ := all.Dims(); r != 3 {
		t.Errorf("Matrix(nil idx) rows = %d, want 3", r)
	}

	col := Column([]int{0, 1, 1}, []int{1, 0})
	if col.At(0, 0) != 1 || col.At(1, 0) != 0 {
		t.Errorf("Column() = %v", col.RawMatrix().Data)
	}

	oh := OneHot([]int{2, 0}, nil, 3)
	want := []float64{0, 0, 1, 1, 0, 0}
	if !reflect.DeepEqual(oh.RawMatrix().Data, want) {
		t.Errorf("OneHot() = %v, want %v", oh.RawMatrix().Data, want)
	}

	if got := Select([]string{"a", "b", "c"}, []int{2, 1}); !reflect.DeepEqual(got, []string{"c", "b"}) {
		t.Errorf("Select() = %v", got)
	}
	if Matrix(nil, nil) != nil {
		t.Error("Matrix() of no rows should be nil")
	}
}
