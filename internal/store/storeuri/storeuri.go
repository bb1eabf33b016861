// Package storeuri opens the store addressed by an artifact location.
//
// Locations are "s3://bucket/key", "gs://bucket/key" or a local file path.
package storeuri

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/discochess/movequality/internal/store"
	"github.com/discochess/movequality/internal/store/diskstore"
	"github.com/discochess/movequality/internal/store/gcsstore"
	"github.com/discochess/movequality/internal/store/s3store"
)

// Schemes understood by Parse.
const (
	SchemeFile = "file"
	SchemeS3   = "s3"
	SchemeGCS  = "gs"
)

// Location is a parsed artifact location.
type Location struct {
	Scheme string
	// Bucket is the bucket for remote schemes and the directory for files.
	Bucket string
	Key    string
}

// String returns the location in the form accepted by Parse.
func (l Location) String() string {
	if l.Scheme == SchemeFile {
		return filepath.Join(l.Bucket, l.Key)
	}
	return l.Scheme + "://" + l.Bucket + "/" + l.Key
}

// Parse splits a location into store and key parts.
func Parse(location string) (Location, error) {
	if location == "" {
		return Location{}, fmt.Errorf("%w: empty location", store.ErrInvalidKey)
	}

	for _, scheme := range []string{SchemeS3, SchemeGCS} {
		prefix := scheme + "://"
		if !strings.HasPrefix(location, prefix) {
			continue
		}
		bucket, key, ok := strings.Cut(strings.TrimPrefix(location, prefix), "/")
		key = strings.TrimPrefix(path.Clean("/"+key), "/")
		if !ok || bucket == "" || key == "" {
			return Location{}, fmt.Errorf("%w: %q needs a bucket and an object key", store.ErrInvalidKey, location)
		}
		return Location{Scheme: scheme, Bucket: bucket, Key: key}, nil
	}

	if strings.Contains(location, "://") {
		return Location{}, fmt.Errorf("%w: unsupported scheme in %q", store.ErrInvalidKey, location)
	}

	location = strings.TrimPrefix(location, "file:")
	dir, file := filepath.Split(filepath.Clean(location))
	if dir == "" {
		dir = "."
	}
	return Location{Scheme: SchemeFile, Bucket: dir, Key: file}, nil
}

// Open parses location and opens its store. The caller closes the store.
func Open(ctx context.Context, location string) (store.Store, string, error) {
	loc, err := Parse(location)
	if err != nil {
		return nil, "", err
	}

	var s store.Store
	switch loc.Scheme {
	case SchemeS3:
		s, err = s3store.New(ctx, loc.Bucket)
	case SchemeGCS:
		s, err = gcsstore.New(ctx, loc.Bucket)
	default:
		s, err = diskstore.New(loc.Bucket)
	}
	if err != nil {
		return nil, "", fmt.Errorf("opening %s store: %w", loc.Scheme, err)
	}
	return s, loc.Key, nil
}
