package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/movequality/internal/config"
	"github.com/discochess/movequality/internal/train"
)

var trainOutcomeCmd = &cobra.Command{
	Use:   "train-outcome",
	Short: "Train the decision tree and random forest outcome classifiers",
	Long: `Fit a decision tree and a random forest predicting whether White won a
game from its number of moves and whether it ended in checkmate.

The games are split 80/20 with a fixed seed and the accuracy of each
classifier on the held-out games is printed. Nothing is saved.`,
	Args: cobra.NoArgs,
	RunE: runTrainOutcome,
}

var trainMovesCmd = &cobra.Command{
	Use:   "train-moves",
	Short: "Train the move-identifier network",
	Long: `Fit a network mapping the character codes of a FEN to the move played
from it, and print its accuracy on held-out positions.

The output layer has one unit per distinct move in the games, so the
network only applies to the vocabulary it was trained on. It is discarded
unless --save is given.`,
	Args: cobra.NoArgs,
	RunE: runTrainMoves,
}

var trainQualityCmd = &cobra.Command{
	Use:   "train-quality",
	Short: "Train the move-quality network and save its artifact",
	Long: `Fit a network scoring a board by how likely the side to move is to win.
Every position of every decisive game is labelled with the final result
from the side to move.

The artifact is written to --artifact, replacing any previous one. The
location may be a local path, s3://bucket/key or gs://bucket/key.

Examples:
  chessml train-quality --games data/games_checkmate.json
  chessml train-quality --artifact s3://models/model_move_quality.zst --report report.md`,
	Args: cobra.NoArgs,
	RunE: runTrainQuality,
}

var (
	gamesPaths     []string
	forestSize     int
	epochs         int
	batchSize      int
	savePath       string
	artifactOutput string
	reportPath     string
)

func init() {
	trainOutcomeCmd.Flags().StringSliceVar(&gamesPaths, "games", []string{config.DefaultGames}, "game log files")
	trainOutcomeCmd.Flags().IntVar(&forestSize, "forest-size", 100, "number of trees in the random forest")

	trainMovesCmd.Flags().StringSliceVar(&gamesPaths, "games", []string{config.DefaultGames}, "game log files")
	trainMovesCmd.Flags().IntVar(&epochs, "epochs", 10, "training epochs")
	trainMovesCmd.Flags().IntVar(&batchSize, "batch-size", 64, "mini-batch size")
	trainMovesCmd.Flags().StringVar(&savePath, "save", "", "save the trained network to this location")

	trainQualityCmd.Flags().StringSliceVar(&gamesPaths, "games", []string{config.DefaultCheckmateGames}, "game log files")
	trainQualityCmd.Flags().IntVar(&epochs, "epochs", 10, "training epochs")
	trainQualityCmd.Flags().IntVar(&batchSize, "batch-size", 64, "mini-batch size")
	trainQualityCmd.Flags().StringVar(&artifactOutput, "artifact", config.DefaultArtifact, "artifact location")
	trainQualityCmd.Flags().StringVar(&reportPath, "report", "", "write a Markdown training report to this file")

	rootCmd.AddCommand(trainOutcomeCmd, trainMovesCmd, trainQualityCmd)
}

// games returns the game log paths: the --games flag when given, else the
// configured path.
func games(cmd *cobra.Command, configured string) []string {
	if cmd.Flags().Changed("games") || configured == "" {
		return gamesPaths
	}
	return []string{configured}
}

// applyNetworkFlags overrides the configured network settings with the
// flags given on the command line.
func applyNetworkFlags(cmd *cobra.Command, nc *config.NetworkConfig) {
	if cmd.Flags().Changed("epochs") {
		nc.Epochs = epochs
	}
	if cmd.Flags().Changed("batch-size") {
		nc.BatchSize = batchSize
	}
}

func runTrainOutcome(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	if cmd.Flags().Changed("forest-size") {
		cfg.Outcome.ForestSize = forestSize
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	g, err := train.LoadGames(ctx, games(cmd, cfg.Outcome.Games), env())
	if err != nil {
		return err
	}
	res, err := train.Outcome(ctx, g, cfg, env())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Decision Tree accuracy:", res.DecisionTreeAccuracy)
	fmt.Fprintln(out, "Random Forest accuracy:", res.RandomForestAccuracy)
	if verbose {
		for name, summary := range res.Summaries {
			fmt.Fprintf(out, "\n%s\n%s\n", name, summary)
		}
	}
	return nil
}

func runTrainMoves(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	applyNetworkFlags(cmd, &cfg.Moves.NetworkConfig)
	if cmd.Flags().Changed("save") {
		cfg.Moves.Save = savePath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	g, err := train.LoadGames(ctx, games(cmd, cfg.Moves.Games), env())
	if err != nil {
		return err
	}
	res, err := train.Moves(ctx, g, cfg, env())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Neural Network move prediction accuracy: %.4f\n", res.Accuracy)
	return nil
}

func runTrainQuality(cmd *cobra.Command, args []string) error {
	ctx, cancel := signalContext(cmd)
	defer cancel()

	applyNetworkFlags(cmd, &cfg.Quality.NetworkConfig)
	if cmd.Flags().Changed("artifact") {
		cfg.Quality.Artifact = artifactOutput
	}
	if cmd.Flags().Changed("report") {
		cfg.Quality.Report = reportPath
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	g, err := train.LoadGames(ctx, games(cmd, cfg.Quality.Games), env())
	if err != nil {
		return err
	}
	res, err := train.Quality(ctx, g, cfg, env())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Move quality accuracy: %.4f\n", res.Accuracy)
	fmt.Fprintf(out, "Saved model to %s\n", cfg.Quality.Artifact)
	if verbose {
		fmt.Fprintln(out, res.Separation.Summary())
	}
	return nil
}
