// Package main is the chat application entrypoint.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"rudpchat/internal"
	"rudpchat/internal/app/apps"
	"rudpchat/internal/app/cfg"
	"rudpchat/internal/pkg/log"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CLI command definitions.
var (
	logger logrus.FieldLogger = logrus.StandardLogger()

	rootCmd = &cobra.Command{
		Use:          "rudpchat",
		Short:        "Chat over reliable UDP.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	clientCmd = &cobra.Command{
		Use:   "client",
		Short: "Starts an interactive chat client.",
		Args:  cobra.NoArgs,
		RunE:  runCmd,
	}

	serverCmd = &cobra.Command{
		Use:   "server",
		Short: "Starts a chat server.",
		Args:  cobra.NoArgs,
		RunE:  runCmd,
	}
)

func newApp(_ context.Context, cmd *cobra.Command) (apps.App, error) {
	switch cmd.Name() {
	case "client":
		app, err := apps.NewClientApp(
			cfg.AddressFromEnv(),
			cfg.PortFromEnv(),
			cfg.UsernameFromEnv(),
			cfg.TransportFromEnv(),
		)
		if err != nil {
			return nil, errors.Wrap(err, "new client app failed")
		}
		return app, nil
	case "server":
		app, err := apps.NewServerApp(
			cfg.AddressFromEnv(),
			cfg.PortFromEnv(),
			cfg.MaxClientsFromEnv(),
			cfg.TransportFromEnv(),
		)
		if err != nil {
			return nil, errors.Wrap(err, "new server app failed")
		}
		return app, nil
	default:
		return nil, fmt.Errorf("unknown command: %s", cmd.Name())
	}
}

func runCmd(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := chainedCheck(
		ctx,
		configCheck(cmd),
		envCheck,
	); err != nil {
		return errors.Wrap(err, "chained check failed")
	}
	app, err := newApp(ctx, cmd)
	if err != nil {
		return errors.Wrapf(err, "new %s app failed", cmd.Name())
	}
	return errors.Wrap(app.Run(ctx, args), "run app failed")
}

func configCheck(cmd *cobra.Command) func(context.Context) error {
	return func(context.Context) error {
		return errors.Wrap(internal.Resolve(cmd), "resolve config failed")
	}
}

func envCheck(ctx context.Context) error {
	err := internal.ValidateEnv()
	if err != nil {
		return errors.Wrap(err, "validate env failed")
	}
	log.SetLogger(internal.LogLevel)
	return nil
}

func chainedCheck(ctx context.Context, checks ...func(context.Context) error) error {
	for _, check := range checks {
		err := check(ctx)
		if err != nil {
			return err
		}
	}
	return nil
}

func init() {
	err := internal.RegisterCommandFlags(rootCmd, []*internal.Flag{
		&internal.LogLevelFlag,
		&internal.ConfigFileFlag,

		&internal.AddressFlag,
		&internal.PortFlag,
		&internal.WindowFlag,

		&internal.TimeoutMSFlag,
		&internal.MaxRetriesFlag,
		&internal.BufferTTLMSFlag,
	})
	if err != nil {
		logger.Fatalln(err)
	}

	err = internal.RegisterCommandFlags(clientCmd, []*internal.Flag{
		&internal.UsernameFlag,
	})
	if err != nil {
		logger.Fatalln(err)
	}

	err = internal.RegisterCommandFlags(serverCmd, []*internal.Flag{
		&internal.MaxClientsFlag,
	})
	if err != nil {
		logger.Fatalln(err)
	}

	rootCmd.AddCommand(
		clientCmd,
		serverCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logger.Fatal(errors.Wrap(err, "execute root command failed"))
	}
}
