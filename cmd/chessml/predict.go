package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/discochess/movequality"
)

var predictCmd = &cobra.Command{
	Use:   "predict [FEN]",
	Short: "Score a position with the move-quality network",
	Long: `Print the probability, between 0 and 1, that the side to move in the
given position wins the game.

Without a position, prints 0.0 and exits with status 1.

Examples:
  chessml predict "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
  chessml predict --json --artifact gs://models/model_move_quality.zst "8/8/8/8/8/8/8/K6k w - - 0 1"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPredict,
}

// errNoPosition is returned by predict when no FEN is given. The fallback
// score has already been printed, so main exits without a message.
var errNoPosition = errors.New("no position given")

var (
	predictArtifact string
	predictJSON     bool
)

func init() {
	predictCmd.Flags().StringVar(&predictArtifact, "artifact", "", "artifact location (default from configuration)")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(predictCmd)
}

func runPredict(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if len(args) == 0 {
		fmt.Fprintln(out, "0.0")
		return errNoPosition
	}

	location := cfg.Quality.Artifact
	if predictArtifact != "" {
		location = predictArtifact
	}

	ctx := cmd.Context()
	scorer, err := movequality.New(ctx,
		movequality.WithArtifactPath(location),
		movequality.WithLogger(logger),
		movequality.WithStats(collector),
	)
	if err != nil {
		return err
	}
	defer scorer.Close()

	score, err := scorer.Score(ctx, args[0])
	if err != nil {
		return err
	}
	p := movequality.Prediction{FEN: args[0], Score: score}

	if predictJSON {
		b, err := json.Marshal(p)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(b))
		return nil
	}
	fmt.Fprintln(out, p)
	return nil
}
