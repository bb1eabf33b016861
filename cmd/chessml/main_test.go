package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/discochess/movequality/internal/errkind"
	"github.com/discochess/movequality/internal/gamelog"
	"github.com/discochess/movequality/internal/gamelog/gamelogtest"
)

const testConfig = `outcome:
  forest_size: 5
moves:
  hidden: [8]
  epochs: 2
  batch_size: 16
quality:
  hidden: [8]
  epochs: 3
  batch_size: 16
`

// execute runs the CLI with args and returns what it printed on stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

// sliceFlags maps each command to the variable behind its --games flag.
// pflag slice values append once they have been set, so they are rebuilt
// instead of reset.
var sliceFlags = map[*cobra.Command]*[]string{
	trainOutcomeCmd:     &gamesPaths,
	trainMovesCmd:       &gamesPaths,
	trainQualityCmd:     &gamesPaths,
	exportCheckmateCmd:  &exportGames,
	analyzeCheckmateCmd: &analyzeGames,
}

// resetFlags restores every flag to its default so that runs do not leak
// into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if _, ok := f.Value.(pflag.SliceValue); ok {
			dest, ok := sliceFlags[cmd]
			if !ok {
				panic("resetFlags: no variable registered for " + cmd.Name() + " --" + f.Name)
			}
			def := strings.Trim(f.DefValue, "[]")
			var vals []string
			if def != "" {
				vals = strings.Split(def, ",")
			}
			fresh := pflag.NewFlagSet(cmd.Name(), pflag.ContinueOnError)
			fresh.StringSliceVar(dest, f.Name, vals, f.Usage)
			f.Value = fresh.Lookup(f.Name).Value
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeGames(t *testing.T, path string, games []gamelog.Game) string {
	t.Helper()
	if err := gamelog.Write(path, games); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPredict_NoArgs(t *testing.T) {
	out, err := execute(t, "predict")
	if !errors.Is(err, errNoPosition) {
		t.Errorf("predict error = %v, want %v", err, errNoPosition)
	}
	if out != "0.0\n" {
		t.Errorf("predict output = %q, want %q", out, "0.0\n")
	}
}

func TestPredict_NoArgsExitStatus(t *testing.T) {
	if os.Getenv("CHESSML_MAIN") == "1" {
		os.Args = []string{"chessml", "predict"}
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=^TestPredict_NoArgsExitStatus$")
	cmd.Env = append(os.Environ(), "CHESSML_MAIN=1")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("chessml predict error = %v, want exit status 1", err)
	}
	if code := exitErr.ExitCode(); code != 1 {
		t.Errorf("exit status = %d, want 1", code)
	}
	if got := stdout.String(); got != "0.0\n" {
		t.Errorf("stdout = %q, want %q", got, "0.0\n")
	}
	if strings.Contains(stderr.String(), "chessml:") {
		t.Errorf("stderr = %q, want no error message", stderr.String())
	}
}

func TestPredict_TooManyArgs(t *testing.T) {
	if _, err := execute(t, "predict", "a", "b"); err == nil {
		t.Error("predict with two arguments succeeded, want error")
	}
}

func TestPredict_MissingArtifact(t *testing.T) {
	dir := t.TempDir()
	for _, missing := range []string{
		filepath.Join(dir, "missing.zst"),
		filepath.Join(dir, "missing_dir", "model.zst"),
	} {
		_, err := execute(t, "predict", "--artifact", missing, "8/8/8/8/8/8/8/K6k w - - 0 1")
		if got := errkind.Of(err); got != errkind.ArtifactNotFound {
			t.Errorf("predict --artifact %s: errkind.Of(%v) = %v, want %v", missing, err, got, errkind.ArtifactNotFound)
		}
	}
}

func TestTrainQualityPredictInspect(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, filepath.Join(dir, "config.yaml"), testConfig)
	gamesPath := writeGames(t, filepath.Join(dir, "games.json"), gamelogtest.Decisive(30, 4))
	model := filepath.Join(dir, "out", "model.zst")
	report := filepath.Join(dir, "report.md")

	out, err := execute(t, "train-quality", "--config", cfgPath, "--games", gamesPath,
		"--artifact", model, "--report", report)
	if err != nil {
		t.Fatalf("train-quality error = %v", err)
	}
	if !strings.Contains(out, "Move quality accuracy: ") {
		t.Errorf("train-quality output = %q, want accuracy line", out)
	}
	if _, err := os.Stat(report); err != nil {
		t.Errorf("report not written: %v", err)
	}

	out, err = execute(t, "predict", "--artifact", model, gamelogtest.WinLike())
	if err != nil {
		t.Fatalf("predict error = %v", err)
	}
	score, err := strconv.ParseFloat(strings.TrimSpace(out), 64)
	if err != nil {
		t.Fatalf("predict output %q is not a number: %v", out, err)
	}
	if score < 0 || score > 1 {
		t.Errorf("score = %v, want within [0, 1]", score)
	}

	out, err = execute(t, "predict", "--json", "--artifact", model, gamelogtest.LoseLike())
	if err != nil {
		t.Fatalf("predict --json error = %v", err)
	}
	var p struct {
		FEN   string  `json:"fen"`
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("predict --json output %q: %v", out, err)
	}
	if p.FEN != gamelogtest.LoseLike() {
		t.Errorf("fen = %q, want %q", p.FEN, gamelogtest.LoseLike())
	}

	_, err = execute(t, "predict", "--artifact", model, "not a fen")
	if got := errkind.Of(err); got != errkind.MalformedInput {
		t.Errorf("errkind.Of(%v) = %v, want %v", err, got, errkind.MalformedInput)
	}

	out, err = execute(t, "inspect", model)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	for _, want := range []string{"Kind:          move-quality", "64 -> 8 relu -> 1 sigmoid"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestTrainOutcome(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, filepath.Join(dir, "config.yaml"), testConfig)
	gamesPath := writeGames(t, filepath.Join(dir, "games.json"), gamelogtest.Decisive(30, 2))

	out, err := execute(t, "train-outcome", "--config", cfgPath, "--games", gamesPath)
	if err != nil {
		t.Fatalf("train-outcome error = %v", err)
	}
	for _, want := range []string{"Decision Tree accuracy: ", "Random Forest accuracy: "} {
		if !strings.Contains(out, want) {
			t.Errorf("train-outcome output missing %q:\n%s", want, out)
		}
	}
}

func TestTrainOutcome_MalformedLog(t *testing.T) {
	dir := t.TempDir()
	gamesPath := writeFile(t, filepath.Join(dir, "games.json"), `{"not": "an array"}`)

	_, err := execute(t, "train-outcome", "--games", gamesPath)
	if got := errkind.Of(err); got != errkind.MalformedInput {
		t.Errorf("errkind.Of(%v) = %v, want %v", err, got, errkind.MalformedInput)
	}
}

func TestTrainMoves(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, filepath.Join(dir, "config.yaml"), testConfig)
	gamesPath := writeGames(t, filepath.Join(dir, "games.json"), gamelogtest.Decisive(10, 4))
	saved := filepath.Join(dir, "moves.zst")

	out, err := execute(t, "train-moves", "--config", cfgPath, "--games", gamesPath,
		"--epochs", "1", "--save", saved)
	if err != nil {
		t.Fatalf("train-moves error = %v", err)
	}
	if !strings.HasPrefix(out, "Neural Network move prediction accuracy: ") {
		t.Errorf("train-moves output = %q", out)
	}

	out, err = execute(t, "inspect", saved)
	if err != nil {
		t.Fatalf("inspect error = %v", err)
	}
	if !strings.Contains(out, "Kind:          move-id") {
		t.Errorf("inspect output = %q, want move-id kind", out)
	}

	// A move-id artifact cannot be used for scoring.
	_, err = execute(t, "predict", "--artifact", saved, gamelogtest.WinLike())
	if got := errkind.Of(err); got != errkind.ArtifactIncompatible {
		t.Errorf("errkind.Of(%v) = %v, want %v", err, got, errkind.ArtifactIncompatible)
	}
}

func TestExportAndAnalyzeCheckmate(t *testing.T) {
	dir := t.TempDir()
	games := gamelogtest.Decisive(9, 1)
	gamesPath := writeGames(t, filepath.Join(dir, "games.json"), games)
	output := filepath.Join(dir, "checkmate.json")

	out, err := execute(t, "export-checkmate", "--games", gamesPath, "--output", output)
	if err != nil {
		t.Fatalf("export-checkmate error = %v", err)
	}
	want := len(gamelog.Checkmates(games))
	if !strings.Contains(out, "Exported "+strconv.Itoa(want)+" checkmate games") {
		t.Errorf("export-checkmate output = %q, want %d games", out, want)
	}

	exported, err := gamelog.Load(t.Context(), output)
	if err != nil {
		t.Fatal(err)
	}
	if len(exported) != want {
		t.Errorf("exported %d games, want %d", len(exported), want)
	}

	out, err = execute(t, "analyze-checkmate", "--games", gamesPath, "--json")
	if err != nil {
		t.Fatalf("analyze-checkmate error = %v", err)
	}
	var s gamelog.Summary
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatalf("analyze-checkmate output %q: %v", out, err)
	}
	if s.Total != 9 || s.Checkmates != want || s.NonCheckmates != 9-want {
		t.Errorf("summary = %+v, want total 9, %d checkmates", s, want)
	}
}

func TestImportPGN(t *testing.T) {
	dir := t.TempDir()
	pgn := writeFile(t, filepath.Join(dir, "games.pgn"), `[Event "Casual"]
[Site "fool"]
[Result "0-1"]

1. f3 e5 2. g4 Qh4# 0-1
`)
	output := filepath.Join(dir, "games.json.zst")

	out, err := execute(t, "import-pgn", "--pgn", pgn, "--output", output)
	if err != nil {
		t.Fatalf("import-pgn error = %v", err)
	}
	if !strings.Contains(out, "Imported 1 games") {
		t.Errorf("import-pgn output = %q", out)
	}

	games, err := gamelog.Load(t.Context(), output)
	if err != nil {
		t.Fatal(err)
	}
	if len(games) != 1 || !games[0].IsCheckmate() || len(games[0].Moves) != 4 {
		t.Errorf("imported games = %+v", games)
	}
}

func TestMetricsFile(t *testing.T) {
	dir := t.TempDir()
	gamesPath := writeGames(t, filepath.Join(dir, "games.json"), gamelogtest.Decisive(3, 1))
	metricsPath := filepath.Join(dir, "metrics.prom")

	if _, err := execute(t, "analyze-checkmate", "--games", gamesPath, "--metrics-file", metricsPath); err != nil {
		t.Fatalf("analyze-checkmate error = %v", err)
	}
	b, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("metrics file not written: %v", err)
	}
	if !strings.Contains(string(b), "movequality_games_loaded_total 3") {
		t.Errorf("metrics file = %q, want games loaded counter", b)
	}
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "analyze-checkmate", "--log-level", "loud")
	if got := errkind.Of(err); got != errkind.MalformedInput {
		t.Errorf("errkind.Of(%v) = %v, want %v", err, got, errkind.MalformedInput)
	}
}

func TestInvalidConfig(t *testing.T) {
	cfgPath := writeFile(t, filepath.Join(t.TempDir(), "config.yaml"), "unknown_key: 1\n")
	_, err := execute(t, "analyze-checkmate", "--config", cfgPath)
	if got := errkind.Of(err); got != errkind.MalformedInput {
		t.Errorf("errkind.Of(%v) = %v, want %v", err, got, errkind.MalformedInput)
	}
}
