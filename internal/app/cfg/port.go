// Package cfg implements functionality to configure an app.
//
// The configuration objects defined here need only be implemented once,
// but can be applied to multiple types.
//
// In order to add support for a new type, the configuration
// need only implement an ApplyX method.
package cfg

import (
	"rudpchat/internal"
	"rudpchat/internal/app/apps"
)

// PortCfg is configuration for the chat server port.
type PortCfg struct {
	port uint16
}

// NewPortCfg creates a new PortCfg from the given config.
func NewPortCfg(port uint16) *PortCfg {
	return &PortCfg{
		port: port,
	}
}

// PortFromEnv creates a new PortCfg from the current environment.
func PortFromEnv() *PortCfg {
	return &PortCfg{
		port: uint16(internal.Port),
	}
}

// ApplyClientApp applies the PortCfg to a ClientApp.
func (cfg PortCfg) ApplyClientApp(app *apps.ClientApp) error {
	app.Port = cfg.port
	return nil
}

// ApplyServerApp applies the PortCfg to a ServerApp.
func (cfg PortCfg) ApplyServerApp(app *apps.ServerApp) error {
	app.Port = cfg.port
	return nil
}

// AddressCfg is configuration for the server host. The client sends to it, the server
// binds to it.
type AddressCfg struct {
	address string
}

// NewAddressCfg creates a new AddressCfg.
func NewAddressCfg(address string) *AddressCfg {
	return &AddressCfg{address: address}
}

// AddressFromEnv creates a new AddressCfg from the current environment.
func AddressFromEnv() *AddressCfg {
	return &AddressCfg{address: internal.Address}
}

// ApplyClientApp applies the AddressCfg to a ClientApp.
func (cfg AddressCfg) ApplyClientApp(app *apps.ClientApp) error {
	app.Address = cfg.address
	return nil
}

// ApplyServerApp applies the AddressCfg to a ServerApp.
func (cfg AddressCfg) ApplyServerApp(app *apps.ServerApp) error {
	app.Address = cfg.address
	return nil
}
