package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bromq-dev/mqttc/pkg/client"
	"github.com/bromq-dev/mqttc/pkg/credstore"
	"github.com/bromq-dev/mqttc/pkg/transport"
)

// options are the flags shared by every command.
type options struct {
	server        string
	clientID      string
	username      string
	password      string
	redisAddr     string
	keepAlive     uint16
	sessionExpiry uint32
	timeout       time.Duration
	verbose       bool
}

func main() {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:   "mqttc",
		Short: "A small MQTT 5.0 client",
		Long: `mqttc connects to an MQTT 5.0 server over TCP or WebSocket and
sends single commands: connect, publish, or ping.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.server, "server", "s", "tcp://localhost:1883", "Server URL (tcp://, ws:// or wss://)")
	flags.StringVarP(&opts.clientID, "id", "i", "mqttc", "Client identifier")
	flags.StringVarP(&opts.username, "username", "u", "", "Username")
	flags.StringVarP(&opts.password, "password", "P", "", "Password")
	flags.StringVar(&opts.redisAddr, "redis", "", "Load credentials from Redis at this address")
	flags.Uint16Var(&opts.keepAlive, "keepalive", 60, "Keep alive interval in seconds")
	flags.Uint32Var(&opts.sessionExpiry, "session-expiry", 0, "Session expiry interval in seconds")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Timeout for each command")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		connectCmd(opts),
		publishCmd(opts),
		pingCmd(opts),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func (o *options) logger() *slog.Logger {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// session dials the server and completes CONNECT. The caller closes the
// returned client.
func (o *options) session(ctx context.Context, cfg *client.Config) (*client.Client, error) {
	logger := o.logger()
	if cfg == nil {
		cfg = client.DefaultConfig()
	}
	cfg.KeepAlive = o.keepAlive
	cfg.SessionExpiry = o.sessionExpiry
	cfg.CommandTimeout = o.timeout
	cfg.Logger = logger

	if o.redisAddr != "" {
		store := credstore.NewRedis(&credstore.Config{Addr: o.redisAddr, Logger: logger})
		defer store.Close()
		cfg.Credentials = store
	}

	dialCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	conn, err := transport.Dial(dialCtx, o.server, nil)
	if err != nil {
		return nil, err
	}
	logger.Debug("transport connected", "server", o.server)

	c := client.New(conn, cfg)
	if o.username != "" || o.password != "" {
		c.SetAuth(o.username, o.password)
	}
	if err := c.Connect(ctx, o.clientID); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

// finish sends DISCONNECT, keeping the first error.
func finish(ctx context.Context, c *client.Client, err error) error {
	if derr := c.Disconnect(ctx); err == nil {
		err = derr
	}
	return err
}
