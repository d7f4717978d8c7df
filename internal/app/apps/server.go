package apps

import (
	"context"
	"net"
	"strconv"

	"rudpchat/internal"
	"rudpchat/internal/pkg/server"
	"rudpchat/internal/pkg/session"
	"rudpchat/internal/pkg/transport"
	"rudpchat/internal/pkg/validate"

	"github.com/pkg/errors"
)

// ServerAppCfg configures a ServerApp.
type ServerAppCfg interface {
	ApplyServerApp(*ServerApp) error
}

// ServerApp is the chat server application.
type ServerApp struct {
	Address    string `validate:"required"`
	Port       uint16 `validate:"required"`
	MaxClients int    `validate:"min=1"`
	Transport  Transport
}

// NewServerApp creates a new ServerApp.
func NewServerApp(cfgs ...ServerAppCfg) (*ServerApp, error) {
	app := &ServerApp{
		MaxClients: session.DefaultCapacity,
		Transport:  DefaultTransport(),
	}
	for _, cfg := range cfgs {
		if err := cfg.ApplyServerApp(app); err != nil {
			return nil, errors.Wrap(err, "apply ServerApp cfg failed")
		}
	}
	if app.Port == 0 {
		app.Port = uint16(internal.Port)
	}
	if app.Address == "" {
		app.Address = internal.Address
	}
	if err := validate.Validate().Struct(app); err != nil {
		return nil, errors.Wrap(err, "validate ServerApp failed")
	}
	return app, nil
}

// Run serves chat clients until ctx is cancelled.
func (app *ServerApp) Run(ctx context.Context, args []string) error {
	address := net.JoinHostPort(app.Address, strconv.Itoa(int(app.Port)))
	conn, err := transport.Listen(address, app.Transport.cfgs()...)
	if err != nil {
		return errors.Wrap(err, "open server socket failed")
	}
	defer conn.Close()

	s, err := server.NewServer(
		server.WithConn(conn),
		server.WithSessionStore(session.NewMemoryStore(session.WithCapacity(app.MaxClients))),
	)
	if err != nil {
		return errors.Wrap(err, "create server failed")
	}
	return errors.Wrap(s.Run(ctx), "run server failed")
}
