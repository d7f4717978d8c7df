package cfg

import (
	"rudpchat/internal"
	"rudpchat/internal/app/apps"

	"github.com/pkg/errors"
)

// MaxClientsCfg is configuration for the number of users a server admits.
type MaxClientsCfg struct {
	n int
}

// NewMaxClientsCfg creates a new MaxClientsCfg.
func NewMaxClientsCfg(n int) *MaxClientsCfg {
	return &MaxClientsCfg{n: n}
}

// MaxClientsFromEnv creates a new MaxClientsCfg from the current environment.
func MaxClientsFromEnv() *MaxClientsCfg {
	return &MaxClientsCfg{n: internal.MaxClients}
}

// ApplyServerApp applies the MaxClientsCfg to a ServerApp.
func (cfg MaxClientsCfg) ApplyServerApp(app *apps.ServerApp) error {
	if cfg.n < 1 {
		return errors.Errorf("max clients must be at least 1, got %d", cfg.n)
	}
	app.MaxClients = cfg.n
	return nil
}
