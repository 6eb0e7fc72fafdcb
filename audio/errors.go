package audio

import "errors"

var (
	ErrUnknownFormat = errors.New("audio: unknown format")
	ErrEmptySource   = errors.New("audio: source has no samples")
)
