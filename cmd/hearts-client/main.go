package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"hearts-lite/internal/client"
	"hearts-lite/internal/config"
)

var rootCmd = &cobra.Command{
	Use:          "hearts-client",
	Short:        "reference player for the card game server",
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	flags := rootCmd.Flags()
	flags.String("host", "localhost", "server host")
	flags.Int("port", 0, "server port")
	flags.String("seat", "N", "seat to claim: N, E, S or W")
	flags.Bool("auto", false, "play automatically instead of prompting")
}

func run(cmd *cobra.Command, _ []string) error {
	_ = godotenv.Load()
	cfg, err := config.LoadClient(cmd.Flags())
	if err != nil {
		return err
	}

	sess, err := client.Dial(client.Config{
		Host: cfg.Host,
		Port: cfg.Port,
		Seat: cfg.Seat,
		Auto: cfg.Auto,
		In:   os.Stdin,
		Out:  os.Stdout,
	})
	if err != nil {
		return err
	}
	return sess.Run()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
