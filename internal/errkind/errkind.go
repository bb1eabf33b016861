// Package errkind classifies the failures a training or inference run can end with.
package errkind

import "errors"

// Kind identifies a class of failure.
type Kind uint8

const (
	Unknown Kind = iota
	MalformedInput
	MissingField
	ArtifactNotFound
	ArtifactIncompatible
)

// Sentinel errors, one per kind. Wrap them with fmt.Errorf("...: %w", ...).
var (
	ErrMalformedInput       = errors.New("malformed input")
	ErrMissingField         = errors.New("missing field")
	ErrArtifactNotFound     = errors.New("artifact not found")
	ErrArtifactIncompatible = errors.New("artifact incompatible")
)

var sentinels = []struct {
	kind Kind
	err  error
}{
	{MalformedInput, ErrMalformedInput},
	{MissingField, ErrMissingField},
	{ArtifactNotFound, ErrArtifactNotFound},
	{ArtifactIncompatible, ErrArtifactIncompatible},
}

// Of returns the kind of err, or Unknown if err does not wrap any kind sentinel.
func Of(err error) Kind {
	if err == nil {
		return Unknown
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	return Unknown
}

// String returns the kebab-case name of the kind.
func (k Kind) String() string {
	switch k {
	case MalformedInput:
		return "malformed-input"
	case MissingField:
		return "missing-field"
	case ArtifactNotFound:
		return "artifact-not-found"
	case ArtifactIncompatible:
		return "artifact-incompatible"
	default:
		return "unknown"
	}
}
