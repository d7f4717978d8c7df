package cfg

import (
	"time"

	"rudpchat/internal"
	"rudpchat/internal/app/apps"
)

// TransportCfg is configuration for reliable delivery.
type TransportCfg struct {
	transport apps.Transport
}

// NewTransportCfg creates a new TransportCfg.
func NewTransportCfg(t apps.Transport) *TransportCfg {
	return &TransportCfg{transport: t}
}

// TransportFromEnv creates a new TransportCfg from the current environment.
func TransportFromEnv() *TransportCfg {
	return &TransportCfg{
		transport: apps.Transport{
			Timeout:    time.Duration(internal.TimeoutMS) * time.Millisecond,
			MaxRetries: internal.MaxRetries,
			BufferTTL:  time.Duration(internal.BufferTTLMS) * time.Millisecond,
			Window:     internal.Window,
		},
	}
}

// ApplyClientApp applies the TransportCfg to a ClientApp.
func (cfg TransportCfg) ApplyClientApp(app *apps.ClientApp) error {
	app.Transport = cfg.transport
	return nil
}

// ApplyServerApp applies the TransportCfg to a ServerApp.
func (cfg TransportCfg) ApplyServerApp(app *apps.ServerApp) error {
	app.Transport = cfg.transport
	return nil
}
