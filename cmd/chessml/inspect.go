package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/discochess/movequality/internal/artifact"
	"github.com/discochess/movequality/internal/store/storeuri"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [artifact]",
	Short: "Show the metadata of a trained artifact",
	Long: `Load an artifact and print its metadata and network shape. This checks
that the artifact can be read by this version.

The artifact defaults to the configured move-quality artifact.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

var inspectJSON bool

func init() {
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "output metadata as JSON")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	location := cfg.Quality.Artifact
	if len(args) == 1 {
		location = args[0]
	}

	ctx := cmd.Context()
	s, key, err := storeuri.Open(ctx, location)
	if err != nil {
		return err
	}
	defer s.Close()

	a, err := artifact.Load(ctx, s, key, artifact.WithStats(collector))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if inspectJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(a.Metadata)
	}

	m := a.Metadata
	fmt.Fprintf(out, "Location:      %s\n", location)
	fmt.Fprintf(out, "ID:            %s\n", m.ID)
	fmt.Fprintf(out, "Kind:          %s\n", m.Kind)
	fmt.Fprintf(out, "Created:       %s\n", m.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(out, "Layers:        %s\n", layers(a))
	fmt.Fprintf(out, "Train samples: %d\n", m.TrainSamples)
	fmt.Fprintf(out, "Test samples:  %d\n", m.TestSamples)
	fmt.Fprintf(out, "Test accuracy: %.4f\n", m.TestAccuracy)
	if len(m.Labels) > 0 {
		fmt.Fprintf(out, "Moves:         %d\n", len(m.Labels))
		fmt.Fprintf(out, "FEN length:    %d\n", m.MaxLen)
	}
	return nil
}

// layers describes the network shape, e.g. "64 -> 128 relu -> 1 sigmoid".
func layers(a *artifact.Artifact) string {
	parts := []string{fmt.Sprint(a.Network.Inputs())}
	for _, l := range a.Network.Layers {
		parts = append(parts, fmt.Sprintf("%d %s", l.Units(), l.Activation))
	}
	return strings.Join(parts, " -> ")
}
