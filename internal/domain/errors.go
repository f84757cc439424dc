package domain

import "errors"

var (
	ErrNotFound          = errors.New("job not found")
	ErrNotReady          = errors.New("job not completed yet")
	ErrGone              = errors.New("artifact no longer available")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidTransition = errors.New("invalid job transition")
	ErrBusy              = errors.New("too many active downloads")
)
