package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrFlowNotFound is returned when a flow ID cannot be found in the store.
var ErrFlowNotFound = errors.New("flow not found")

// ErrSessionTerminated is returned when an operation other than reading
// the outcome is attempted on a finished run.
var ErrSessionTerminated = errors.New("session already terminated")

// ErrNotHydrated is returned when a preview session is queried before its
// flow data has finished loading.
var ErrNotHydrated = errors.New("session not hydrated yet")
