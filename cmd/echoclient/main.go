package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sanverite/echo-client/internal/api"
	"github.com/sanverite/echo-client/internal/config"
	"github.com/sanverite/echo-client/internal/core"
	"github.com/sanverite/echo-client/internal/transport"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var (
		host         string
		port         int
		dialTimeout  time.Duration
		stopGrace    time.Duration
		statusListen string
		autoConnect  bool
		flagSpecs    []string
	)

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		cfg = &config.Config{Host: "127.0.0.1", DialTimeout: transport.DefaultDialTimeout}
	}

	cmd := &cobra.Command{
		Use:           "echoclient",
		Short:         "Interactive client for a line-oriented echo server",
		Long:          "Compose messages with modifiers, send them to an echo server and read the echoes back. Type 'help' at the prompt for commands.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfgErr != nil {
				return cfgErr
			}
			flags := core.DefaultFlags()
			for _, spec := range flagSpecs {
				if err := applyFlagSpec(&flags, spec); err != nil {
					return err
				}
			}

			if autoConnect && port == 0 {
				fmt.Fprintln(os.Stdout, "! no port configured; use 'port <n>' then 'connect'")
				autoConnect = false
			}

			logger := log.Default()
			sess := core.NewSession(core.Options{
				Host:      host,
				Port:      port,
				Flags:     &flags,
				Transport: transport.Config{DialTimeout: dialTimeout, Logger: logger},
				StopGrace: stopGrace,
				Output:    os.Stdout,
				Logger:    logger,
			})
			return run(cmd.Context(), sess, logger, statusListen, autoConnect)
		},
	}

	cmd.Flags().StringVar(&host, "host", cfg.Host, "echo server host ("+config.EnvHost+")")
	cmd.Flags().IntVar(&port, "port", cfg.Port, "echo server port ("+config.EnvPort+")")
	cmd.Flags().DurationVar(&dialTimeout, "dial-timeout", cfg.DialTimeout, "connect timeout ("+config.EnvDialTimeout+")")
	cmd.Flags().DurationVar(&stopGrace, "stop-grace", 0, "max wait for the receiver on disconnect before interrupting it (0 waits)")
	cmd.Flags().StringVar(&statusListen, "status-listen", cfg.StatusListen, "serve the HTTP status API on this address ("+config.EnvStatusListen+")")
	cmd.Flags().BoolVar(&autoConnect, "connect", cfg.AutoConnect, "connect on startup ("+config.EnvAutoConnect+")")
	cmd.Flags().StringSliceVar(&flagSpecs, "set", nil, "initial behavior flags as name=on|off (e.g. rawread=on,instantread=off)")
	return cmd
}

// applyFlagSpec parses one name=on|off pair into flags.
func applyFlagSpec(flags *core.Flags, spec string) error {
	name, value, ok := strings.Cut(spec, "=")
	if !ok {
		return fmt.Errorf("--set %q: want name=on|off", spec)
	}
	var on bool
	switch strings.ToLower(value) {
	case "on", "true", "1":
		on = true
	case "off", "false", "0":
	default:
		return fmt.Errorf("--set %q: want on or off", spec)
	}
	return flags.Set(strings.ToLower(name), on)
}

// run owns the session for the life of the process. A panic in the shell
// is recovered, the session is shut down and a non-zero exit follows.
func run(parent context.Context, sess *core.Session, logger *log.Logger, statusListen string, autoConnect bool) (err error) {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var srv *api.Server
	if statusListen != "" {
		srv = api.NewServer(sess, api.ServerOptions{Addr: statusListen, Logger: logger})
		srv.Start()
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Printf("echoclient: panic: %v", r)
			err = fmt.Errorf("echoclient: aborted after panic: %v", r)
		}
		if serr := sess.Shutdown(); serr != nil {
			logger.Printf("echoclient: shutdown: %v", serr)
		}
		if srv != nil {
			if serr := srv.Stop(context.Background()); serr != nil {
				logger.Printf("echoclient: status server shutdown: %v", serr)
			}
		}
	}()

	if autoConnect {
		if cerr := sess.Connect(ctx); cerr != nil {
			fmt.Fprintf(os.Stdout, "! %v\n", cerr)
		}
	}

	prompt := ""
	if term.IsTerminal(int(os.Stdin.Fd())) {
		prompt = "> "
	}
	return runShell(ctx, sess, os.Stdin, os.Stdout, prompt)
}
