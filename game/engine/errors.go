package engine

import "errors"

var (
	ErrMalformedGrid   = errors.New("malformed grid")
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	ErrPlaybackBusy    = errors.New("playback in progress")
	ErrInvalidConfig   = errors.New("invalid configuration")
)
