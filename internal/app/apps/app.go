// Package apps holds the runnable chat applications wired from configuration.
package apps

import (
	"context"
	"time"

	"rudpchat/internal/pkg/transport"

	"github.com/sirupsen/logrus"
)

var logger logrus.FieldLogger = logrus.StandardLogger()

// App is a runnable application.
type App interface {
	Run(ctx context.Context, args []string) error
}

// Transport holds the reliable delivery settings shared by both applications.
type Transport struct {
	Timeout    time.Duration `validate:"gt=0"`
	MaxRetries int           `validate:"min=0"`
	BufferTTL  time.Duration `validate:"min=0"`
	Window     int           `validate:"min=1"`
}

// DefaultTransport returns the transport package defaults.
func DefaultTransport() Transport {
	return Transport{
		Timeout:    transport.DefaultRetransmitTimeout,
		MaxRetries: transport.DefaultMaxRetries,
		BufferTTL:  transport.DefaultBufferTTL,
		Window:     transport.DefaultWindowSize,
	}
}

func (t Transport) cfgs() []transport.Cfg {
	return []transport.Cfg{
		transport.WithRetransmitTimeout(t.Timeout),
		transport.WithMaxRetries(t.MaxRetries),
		transport.WithBufferTTL(t.BufferTTL),
		transport.WithWindowSize(t.Window),
	}
}
