package renderer

import "errors"

var (
	ErrSceneNotDefined  = errors.New("renderer: no scene defined")
	ErrInvalidFrameSize = errors.New("renderer: frame dimensions must be non-zero")
	ErrInvalidOptions   = errors.New("renderer: invalid options")
	ErrWorkerFailed     = errors.New("renderer: tracing worker failed")
)
