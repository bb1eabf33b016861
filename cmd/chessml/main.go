// Package main provides the chessml CLI for training the chess move models
// and scoring positions with them.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/discochess/movequality/internal/errkind"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errNoPosition) {
			fmt.Fprintf(os.Stderr, "chessml: %s: %v\n", errkind.Of(err), err)
		}
		os.Exit(1)
	}
}
