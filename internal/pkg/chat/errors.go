package chat

import "github.com/pkg/errors"

// ErrMalformedMessage indicates that a known command is missing or has invalid fields.
var ErrMalformedMessage = errors.New("malformed message")

// ErrUnknownCommand indicates that the command is not part of the protocol.
var ErrUnknownCommand = errors.New("unknown command")

// ErrIncorrectInput indicates that a line typed by the user is not a valid command.
var ErrIncorrectInput = errors.New("incorrect userinput format")
