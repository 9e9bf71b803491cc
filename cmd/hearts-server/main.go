package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"hearts-lite/internal/admin"
	"hearts-lite/internal/audit"
	"hearts-lite/internal/config"
	"hearts-lite/internal/deal"
	"hearts-lite/internal/game"
	"hearts-lite/internal/gateway"
	"hearts-lite/internal/table"
)

var rootCmd = &cobra.Command{
	Use:          "hearts-server",
	Short:        "four-seat trick-taking card game server",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	flags := rootCmd.Flags()
	flags.String("deals", "deals.txt", "deal file, one round block per round")
	flags.Int("port", 0, "listen port (0 = ephemeral)")
	flags.Duration("timeout", table.DefaultTurnTimeout, "per-turn play timeout")
	flags.String("audit-mode", "nop", "audit store: nop, sqlite or postgres")
	flags.String("audit-dsn", "", "audit sqlite path or postgres DSN")
	flags.String("admin-addr", "", "admin HTTP listen address (empty disables)")
}

func run(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	cfg, err := config.LoadServer(cmd.Flags())
	if err != nil {
		return err
	}
	logger := log.WithPrefix("server")

	sink, err := audit.NewSink(cfg.AuditMode, cfg.AuditDSN)
	if err != nil {
		return err
	}
	defer sink.Close()

	src, err := deal.Open(cfg.Deals)
	if err != nil {
		return err
	}
	defer src.Close()

	tbl := table.New(cfg.TurnTimeout)
	gw, err := gateway.Listen(cfg.Port, tbl, sink)
	if err != nil {
		return err
	}
	logger.Info("ready", "port", gw.Port(), "deals", cfg.Deals,
		"timeout", cfg.TurnTimeout, "audit", cfg.AuditMode)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loop := game.New(tbl, src)
	if cfg.AdminAddr != "" {
		adminSrv, err := admin.New(cfg.AdminAddr, sink, admin.NewHub())
		if err != nil {
			return err
		}
		loop.Watch = adminSrv.Hub().Broadcast
		go func() {
			if err := adminSrv.Serve(ctx); err != nil {
				logger.Error("admin server failed", "err", err)
			}
		}()
	}
	go func() {
		if err := gw.Serve(ctx); err != nil {
			logger.Error("gateway failed", "err", err)
		}
	}()

	err = loop.Run(ctx)
	if errors.Is(err, context.Canceled) {
		logger.Info("shutting down")
		return nil
	}
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
