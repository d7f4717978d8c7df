package apps

import (
	"context"
	"io"
	"os"

	"rudpchat/internal"
	"rudpchat/internal/pkg/client"
	"rudpchat/internal/pkg/transport"
	"rudpchat/internal/pkg/validate"

	"github.com/pkg/errors"
)

// ClientAppCfg configures a ClientApp.
type ClientAppCfg interface {
	ApplyClientApp(*ClientApp) error
}

// ClientApp is the interactive chat client application.
type ClientApp struct {
	Username  string `validate:"required"`
	Address   string `validate:"required"`
	Port      uint16 `validate:"required"`
	Transport Transport

	Input  io.Reader `validate:"-"`
	Output io.Writer `validate:"-"`
}

// NewClientApp creates a new ClientApp.
func NewClientApp(cfgs ...ClientAppCfg) (*ClientApp, error) {
	app := &ClientApp{
		Transport: DefaultTransport(),
		Input:     os.Stdin,
		Output:    os.Stdout,
	}
	for _, cfg := range cfgs {
		if err := cfg.ApplyClientApp(app); err != nil {
			return nil, errors.Wrap(err, "apply ClientApp cfg failed")
		}
	}
	if app.Port == 0 {
		app.Port = uint16(internal.Port)
	}
	if app.Address == "" {
		app.Address = internal.Address
	}
	if err := validate.Validate().Struct(app); err != nil {
		return nil, errors.Wrap(err, "validate ClientApp failed")
	}
	return app, nil
}

// Run joins the server and runs the chat session until the user quits.
func (app *ClientApp) Run(ctx context.Context, args []string) error {
	conn, err := transport.Listen(":0", app.Transport.cfgs()...)
	if err != nil {
		return errors.Wrap(err, "open client socket failed")
	}
	defer conn.Close()

	c, err := client.NewClient(
		client.WithUsername(app.Username),
		client.WithServerAddr(app.Address, app.Port),
		client.WithConn(conn),
		client.WithOutput(app.Output),
	)
	if err != nil {
		return errors.Wrap(err, "create client failed")
	}
	logger.WithField("username", app.Username).WithField("local", conn.LocalAddr().String()).Debug("client started")
	if err := c.Run(ctx, app.Input); err != nil {
		return errors.Wrap(err, "run client failed")
	}
	return nil
}
