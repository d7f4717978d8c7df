package client

import "github.com/pkg/errors"

// ErrUsernameUnavailable indicates that the server already has a user with this name.
var ErrUsernameUnavailable = errors.New("username not available")

// ErrServerFull indicates that the server has no room for another user.
var ErrServerFull = errors.New("server full")

// ErrUnknownMessage indicates that the server received a command it did not recognise
// and dropped the session.
var ErrUnknownMessage = errors.New("server received an unknown command")

// ErrMissingUsername indicates that the client was configured without a username.
var ErrMissingUsername = errors.New("missing username")

// errQuit ends the input loop after the user quits.
var errQuit = errors.New("quit")
