package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/movequality/internal/config"
	"github.com/discochess/movequality/internal/gamelog"
	"github.com/discochess/movequality/internal/pgnimport"
	"github.com/discochess/movequality/internal/stats"
	"github.com/discochess/movequality/internal/train"
)

var exportCheckmateCmd = &cobra.Command{
	Use:   "export-checkmate",
	Short: "Write the games that ended in checkmate to a new game log",
	Long: `Filter a game log down to the games whose reason is "checkmate".
The result is the default training set of train-quality.`,
	Args: cobra.NoArgs,
	RunE: runExportCheckmate,
}

var analyzeCheckmateCmd = &cobra.Command{
	Use:   "analyze-checkmate",
	Short: "Count the games that ended in checkmate",
	Args:  cobra.NoArgs,
	RunE:  runAnalyzeCheckmate,
}

var importPGNCmd = &cobra.Command{
	Use:   "import-pgn",
	Short: "Convert PGN games into a game log",
	Long: `Read every game of a PGN file and write a game log recording, for each
ply, the position before the move and the move itself.

Examples:
  chessml import-pgn --pgn games.pgn --output data/games.json
  chessml import-pgn --pgn games.pgn --output data/games.json.zst --max-games 1000`,
	Args: cobra.NoArgs,
	RunE: runImportPGN,
}

var (
	exportGames  []string
	exportOutput string
	analyzeGames []string
	analyzeJSON  bool
	pgnPath      string
	pgnOutput    string
	pgnMaxGames  int
)

func init() {
	exportCheckmateCmd.Flags().StringSliceVar(&exportGames, "games", []string{config.DefaultGames}, "game log files")
	exportCheckmateCmd.Flags().StringVarP(&exportOutput, "output", "o", config.DefaultCheckmateGames, "output game log")

	analyzeCheckmateCmd.Flags().StringSliceVar(&analyzeGames, "games", []string{config.DefaultGames}, "game log files")
	analyzeCheckmateCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output result as JSON")

	importPGNCmd.Flags().StringVar(&pgnPath, "pgn", "", "PGN file to import")
	importPGNCmd.Flags().StringVarP(&pgnOutput, "output", "o", config.DefaultGames, "output game log")
	importPGNCmd.Flags().IntVar(&pgnMaxGames, "max-games", 0, "stop after this many games (0 = all)")
	_ = importPGNCmd.MarkFlagRequired("pgn")

	rootCmd.AddCommand(exportCheckmateCmd, analyzeCheckmateCmd, importPGNCmd)
}

func runExportCheckmate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	games, err := train.LoadGames(ctx, exportGames, env())
	if err != nil {
		return err
	}

	mates := gamelog.Checkmates(games)
	if err := gamelog.Write(exportOutput, mates); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d checkmate games to %s\n", len(mates), exportOutput)
	return nil
}

func runAnalyzeCheckmate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	games, err := train.LoadGames(ctx, analyzeGames, env())
	if err != nil {
		return err
	}

	s := gamelog.Summarize(games)
	out := cmd.OutOrStdout()
	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Fprintf(out, "Total games: %d\n", s.Total)
	fmt.Fprintf(out, "Checkmate games: %d\n", s.Checkmates)
	fmt.Fprintf(out, "Non-checkmate games: %d\n", s.NonCheckmates)
	fmt.Fprintf(out, "Checkmate game IDs: [%s]\n", strings.Join(s.CheckmateIDs, ", "))
	fmt.Fprintf(out, "Wins by checkmate: %d\n", s.WinsByCheckmate)
	fmt.Fprintf(out, "Losses by checkmate: %d\n", s.LossesByCheckmate)
	return nil
}

func runImportPGN(cmd *cobra.Command, args []string) error {
	f, err := os.Open(pgnPath)
	if err != nil {
		return fmt.Errorf("opening PGN: %w", err)
	}
	defer f.Close()

	games, err := pgnimport.Import(f,
		pgnimport.WithMaxGames(pgnMaxGames),
		pgnimport.WithLogger(logger.Named("pgnimport")),
	)
	if err != nil {
		return err
	}
	collector.IncCounter(stats.MetricGamesLoaded, int64(len(games)))

	if err := gamelog.Write(pgnOutput, games); err != nil {
		return err
	}
	logger.Info("game log written", zap.String("path", pgnOutput), zap.Int("games", len(games)))
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d games to %s\n", len(games), pgnOutput)
	return nil
}
