package cfg

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"rudpchat/internal/app/apps"

	"github.com/stretchr/testify/require"
)

func TestClientAppCfgs(t *testing.T) {
	in := strings.NewReader("quit\n")
	out := &bytes.Buffer{}
	tr := apps.Transport{Timeout: time.Second, MaxRetries: 3, BufferTTL: time.Minute, Window: 5}
	app, err := apps.NewClientApp(
		NewUsernameCfg("alice"),
		NewAddressCfg("127.0.0.1"),
		NewPortCfg(16000),
		NewTransportCfg(tr),
		NewTerminalCfg(in, out),
	)
	require.NoError(t, err)
	require.Equal(t, "alice", app.Username)
	require.Equal(t, "127.0.0.1", app.Address)
	require.Equal(t, uint16(16000), app.Port)
	require.Equal(t, tr, app.Transport)
	require.Equal(t, in, app.Input)
	require.Equal(t, out, app.Output)
}

func TestServerAppCfgs(t *testing.T) {
	app, err := apps.NewServerApp(
		NewAddressCfg("0.0.0.0"),
		NewPortCfg(16000),
		NewMaxClientsCfg(2),
	)
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0", app.Address)
	require.Equal(t, 2, app.MaxClients)
	require.Equal(t, apps.DefaultTransport(), app.Transport)

	_, err = apps.NewServerApp(NewPortCfg(16000), NewAddressCfg("localhost"), NewMaxClientsCfg(0))
	require.Error(t, err)
}

func TestInvalidTransport(t *testing.T) {
	_, err := apps.NewServerApp(
		NewAddressCfg("localhost"),
		NewPortCfg(16000),
		NewTransportCfg(apps.Transport{Timeout: 0, Window: 3}),
	)
	require.Error(t, err)
}
