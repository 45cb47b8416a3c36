package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"casegraph/interfaces/http/client"
	pkgerrors "casegraph/pkg/errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	serverURL string
	token     string
	timeout   time.Duration
	verbose   bool
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "casegraph",
		Short: "Explore fraud case networks from the terminal",
		Long: brand.Sprint("casegraph") + " queries a running casegraph server\n" +
			subtle.Sprint("Fetch case networks, related transactions, and rendered graphs"),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultServer := os.Getenv("CASEGRAPH_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8080"
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&serverURL, "server", defaultServer, "casegraph server base URL")
	flags.StringVar(&token, "token", os.Getenv("CASEGRAPH_TOKEN"), "bearer token for authenticated servers")
	flags.DurationVar(&timeout, "timeout", client.DefaultTimeout, "request timeout")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log request details to stderr")

	rootCmd.AddCommand(
		networkCmd(),
		relatedCmd(),
		renderCmd(),
		inspectCmd(),
	)
	return rootCmd
}

func newClient() *client.Client {
	opts := []client.Option{client.WithHTTPClient(&http.Client{Timeout: timeout})}
	if token != "" {
		opts = append(opts, client.WithToken(token))
	}
	return client.New(serverURL, opts...)
}

func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		bad.Fprintf(os.Stderr, "casegraph: %v\n", err)
		os.Exit(1)
	}
}

// describe turns a client error into the message shown to the user. The
// server's own message is used when there is one.
func describe(err error) error {
	if pkgerrors.IsUnavailable(err) {
		return fmt.Errorf("cannot reach %s: %w", serverURL, err)
	}
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		return errors.New(appErr.Message)
	}
	return err
}
