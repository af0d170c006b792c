package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xaenox/assistant-bot/internal/app"
	"github.com/xaenox/assistant-bot/internal/assistant"
	"github.com/xaenox/assistant-bot/internal/formatter"
	"github.com/xaenox/assistant-bot/internal/httpapi"
	"github.com/xaenox/assistant-bot/pkg/config"
)

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "assistant",
		Short:        "Personal assistant that answers plain-text commands",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "config.yaml", "path to the config file")

	cmd.AddCommand(newAskCmd(opts), newReplCmd(opts), newServeCmd(opts))
	return cmd
}

// setup loads config and builds the application for a subcommand.
func setup(ctx context.Context, opts *rootOptions) (*app.App, *config.Config, *zap.Logger, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	logger, err := app.NewLogger(cfg.Log)
	if err != nil {
		return nil, nil, nil, err
	}
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, nil, nil, err
	}
	return a, cfg, logger, nil
}

func newAskCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <text...>",
		Short: "Answer a single command and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, _, logger, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer a.Close()

			ctx = assistant.WithRequestID(ctx, uuid.New().String())
			fmt.Fprintln(cmd.OutOrStdout(), a.Assistant.ProcessCommand(ctx, strings.Join(args, " ")))
			return nil
		},
	}
}

func newReplCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Read commands line by line from stdin",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, _, logger, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer a.Close()

			return repl(ctx, a.Assistant, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
}

// repl answers each input line and shows reminders that fell due meanwhile.
// "exit" or "quit" ends the session.
func repl(ctx context.Context, a *assistant.Assistant, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "exit", "quit", "bye", "goodbye":
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}

		reqCtx := assistant.WithRequestID(ctx, uuid.New().String())
		fmt.Fprintln(out, a.ProcessCommand(reqCtx, line))

		if due, err := a.DueReminders(ctx); err == nil && len(due) > 0 {
			fmt.Fprintln(out, formatter.DueReminders(due))
		}
		fmt.Fprint(out, "> ")
	}
	return scanner.Err()
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the assistant over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, cfg, logger, err := setup(ctx, opts)
			if err != nil {
				return err
			}
			defer logger.Sync()
			defer a.Close()

			if addr == "" {
				addr = cfg.Server.Addr
			}
			srv := &http.Server{
				Addr:    addr,
				Handler: httpapi.New(a.Assistant, a.Metrics, logger.Named("http")).Router(),
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				logger.Info("HTTP server listening", zap.String("addr", addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
				defer cancel()
				logger.Info("Shutting down HTTP server")
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
