package cfg

import (
	"io"

	"rudpchat/internal"
	"rudpchat/internal/app/apps"
)

// UsernameCfg is configuration for the client username.
type UsernameCfg struct {
	username string
}

// NewUsernameCfg creates a new UsernameCfg.
func NewUsernameCfg(username string) *UsernameCfg {
	return &UsernameCfg{username: username}
}

// UsernameFromEnv creates a new UsernameCfg from the current environment.
func UsernameFromEnv() *UsernameCfg {
	return &UsernameCfg{username: internal.Username}
}

// ApplyClientApp applies the UsernameCfg to a ClientApp.
func (cfg UsernameCfg) ApplyClientApp(app *apps.ClientApp) error {
	app.Username = cfg.username
	return nil
}

// TerminalCfg replaces the standard input and output of a ClientApp.
type TerminalCfg struct {
	in  io.Reader
	out io.Writer
}

// NewTerminalCfg creates a new TerminalCfg.
func NewTerminalCfg(in io.Reader, out io.Writer) *TerminalCfg {
	return &TerminalCfg{in: in, out: out}
}

// ApplyClientApp applies the TerminalCfg to a ClientApp.
func (cfg TerminalCfg) ApplyClientApp(app *apps.ClientApp) error {
	app.Input = cfg.in
	app.Output = cfg.out
	return nil
}
