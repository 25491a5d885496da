package tui

import "errors"

// ErrMissingSessionService is returned when the session service is not provided.
var ErrMissingSessionService = errors.New("tui: session service is required")

// ErrMissingSession is returned when the app is started without a session.
var ErrMissingSession = errors.New("tui: session ID is required")
