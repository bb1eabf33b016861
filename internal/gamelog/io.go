package gamelog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/discochess/movequality/internal/codec"
	"github.com/discochess/movequality/internal/errkind"
)

// ErrMalformedLog is returned when a game log is not a JSON array of games.
var ErrMalformedLog = fmt.Errorf("gamelog: malformed game log: %w", errkind.ErrMalformedInput)

// Load reads the game log at path. Paths ending in .zst or .gz are
// decompressed first.
func Load(ctx context.Context, path string) ([]Game, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading game log: %w", err)
	}

	data, err := codec.Decompress(codec.ForPath(path), raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedLog, path, err)
	}
	return Decode(data)
}

// Decode parses a JSON game log.
func Decode(data []byte) ([]Game, error) {
	var games []Game
	if err := json.Unmarshal(data, &games); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLog, err)
	}
	return games, nil
}

// LoadAll loads several game logs concurrently and concatenates them in the
// order of paths.
func LoadAll(ctx context.Context, paths []string) ([]Game, error) {
	parts := make([][]Game, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			games, err := Load(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			parts[i] = games
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []Game
	for _, p := range parts {
		all = append(all, p...)
	}
	return all, nil
}

// Write stores games at path as indented JSON, compressed according to the
// path extension. An existing file is replaced.
func Write(path string, games []Game) error {
	if games == nil {
		games = []Game{}
	}
	data, err := json.MarshalIndent(games, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding games: %w", err)
	}

	data, err = codec.Compress(codec.ForPath(path), data)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing game log: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming game log: %w", err)
	}
	return nil
}
