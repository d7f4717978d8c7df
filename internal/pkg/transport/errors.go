package transport

import "github.com/pkg/errors"

// ErrDeliveryFailed indicates that a packet was not acknowledged within the retry budget.
var ErrDeliveryFailed = errors.New("delivery failed")

// ErrClosed indicates that the connection was closed.
var ErrClosed = errors.New("connection closed")
