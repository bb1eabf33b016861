package gamelog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/discochess/movequality/internal/errkind"
	"github.com/discochess/movequality/internal/fen"
)

func TestMoveLabel(t *testing.T) {
	got := MoveLabel(Move{From: Coord{X: 1, Y: 2}, To: Coord{X: 3, Y: 4}})
	if got != "1234" {
		t.Errorf("MoveLabel() = %q, want %q", got, "1234")
	}
}

func TestMoveLabel_Injective(t *testing.T) {
	seen := make(map[string]Move, 8*8*8*8)
	for fx := 0; fx < 8; fx++ {
		for fy := 0; fy < 8; fy++ {
			for tx := 0; tx < 8; tx++ {
				for ty := 0; ty < 8; ty++ {
					m := Move{From: Coord{fx, fy}, To: Coord{tx, ty}}
					label := MoveLabel(m)
					if prev, ok := seen[label]; ok {
						t.Fatalf("MoveLabel(%v) = %q collides with %v", m, label, prev)
					}
					seen[label] = m
				}
			}
		}
	}
	if len(seen) != 4096 {
		t.Errorf("distinct labels = %d, want 4096", len(seen))
	}
}

func TestGame_Winner(t *testing.T) {
	tests := []struct {
		result      string
		want        string
		wantDecisve bool
	}{
		{WhiteWins, fen.White, true},
		{BlackWins, fen.Black, true},
		{Draw, "", false},
		{"*", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		g := Game{Result: tt.result}
		if got := g.Winner(); got != tt.want {
			t.Errorf("Game{Result: %q}.Winner() = %q, want %q", tt.result, got, tt.want)
		}
		if got := g.IsDecisive(); got != tt.wantDecisve {
			t.Errorf("Game{Result: %q}.IsDecisive() = %v, want %v", tt.result, got, tt.wantDecisve)
		}
	}
}

func sampleGames() []Game {
	return []Game{
		{ID: "a", Result: WhiteWins, Reason: ReasonCheckmate},
		{ID: "b", Result: BlackWins, Reason: ReasonCheckmate},
		{ID: "c", Result: Draw, Reason: "stalemate"},
		{ID: "d", Result: WhiteWins, Reason: "resign"},
		{ID: "e", Result: WhiteWins, Reason: ReasonCheckmate},
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(sampleGames())
	want := Summary{
		Total:             5,
		Checkmates:        3,
		NonCheckmates:     2,
		CheckmateIDs:      []string{"a", "b", "e"},
		WinsByCheckmate:   2,
		LossesByCheckmate: 1,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}

	empty := Summarize(nil)
	if empty.Total != 0 || len(empty.CheckmateIDs) != 0 || empty.CheckmateIDs == nil {
		t.Errorf("Summarize(nil) = %+v, want zero counts and empty IDs", empty)
	}
}

func TestFilters(t *testing.T) {
	games := sampleGames()

	var ids []string
	for _, g := range Checkmates(games) {
		ids = append(ids, g.ID)
	}
	if want := []string{"a", "b", "e"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("Checkmates() ids = %v, want %v", ids, want)
	}

	ids = nil
	for _, g := range Decisive(games) {
		ids = append(ids, g.ID)
	}
	if want := []string{"a", "b", "d", "e"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("Decisive() ids = %v, want %v", ids, want)
	}
}

func TestDecode(t *testing.T) {
	data := []byte(`[
		{"id": "g1", "result": "1-0", "reason": "checkmate",
		 "moves": [
			{"fen": "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
			 "move": {"from": {"x": 4, "y": 6}, "to": {"x": 4, "y": 4}}},
			{"fen": "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"}
		 ]},
		{"id": "g2", "extra": true}
	]`)

	games, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("len(games) = %d, want 2", len(games))
	}

	g := games[0]
	if len(g.Moves) != 2 {
		t.Fatalf("len(Moves) = %d, want 2", len(g.Moves))
	}
	if g.Moves[0].Move == nil || MoveLabel(*g.Moves[0].Move) != "4644" {
		t.Errorf("first move = %+v, want label 4644", g.Moves[0].Move)
	}
	if g.Moves[1].Move != nil {
		t.Errorf("second move = %+v, want nil", g.Moves[1].Move)
	}
	if games[1].Moves != nil {
		t.Errorf("game without moves decoded Moves = %v, want nil", games[1].Moves)
	}
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "games"},
		{"object", `{"id": "x"}`},
		{"wrong type", `[{"moves": 5}]`},
		{"truncated", `[{"id": "x"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			if !errors.Is(err, ErrMalformedLog) {
				t.Fatalf("Decode() error = %v, want ErrMalformedLog", err)
			}
			if errkind.Of(err) != errkind.MalformedInput {
				t.Errorf("errkind.Of() = %v, want %v", errkind.Of(err), errkind.MalformedInput)
			}
		})
	}
}

func TestWriteLoad(t *testing.T) {
	games := sampleGames()
	games[0].Moves = []MoveRecord{{
		FEN:  "8/8/8/8/8/8/8/4K3 w - - 0 1",
		Move: &Move{From: Coord{4, 7}, To: Coord{4, 6}},
	}}

	for _, name := range []string{"games.json", "games.json.zst", "games.json.gz"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), name)
			if err := Write(path, games); err != nil {
				t.Fatalf("Write() error = %v", err)
			}
			got, err := Load(context.Background(), path)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !reflect.DeepEqual(got, games) {
				t.Errorf("Load() = %+v, want %+v", got, games)
			}
			if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
				t.Errorf("temporary file left behind: %v", err)
			}
		})
	}
}

func TestWrite_Indented(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.json")
	if err := Write(path, []Game{{ID: "x", Result: WhiteWins}}); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "[\n  {\n    \"id\": \"x\",\n    \"moves\": null,\n    \"result\": \"1-0\"\n  }\n]"
	if string(data) != want {
		t.Errorf("Write() wrote %q, want %q", data, want)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load() error = %v, want os.ErrNotExist", err)
	}
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.json")
	second := filepath.Join(dir, "b.json.zst")
	if err := Write(first, []Game{{ID: "1"}, {ID: "2"}}); err != nil {
		t.Fatal(err)
	}
	if err := Write(second, []Game{{ID: "3"}}); err != nil {
		t.Fatal(err)
	}

	games, err := LoadAll(context.Background(), []string{first, second})
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	var ids []string
	for _, g := range games {
		ids = append(ids, g.ID)
	}
	if want := []string{"1", "2", "3"}; !reflect.DeepEqual(ids, want) {
		t.Errorf("LoadAll() ids = %v, want %v", ids, want)
	}

	if _, err := LoadAll(context.Background(), []string{first, filepath.Join(dir, "missing.json")}); err == nil {
		t.Error("LoadAll() with a missing file should return error")
	}
}
