// Package config resolves runtime settings for both binaries. Values
// come from flags, the HEARTS_* environment (optionally seeded from a
// .env file by main), and defaults, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"hearts-lite/hearts"
	"hearts-lite/internal/table"
)

// Server holds the game server's knobs.
type Server struct {
	Deals       string
	Port        int
	TurnTimeout time.Duration
	AuditMode   string
	AuditDSN    string
	AdminAddr   string
}

// Client holds the reference client's knobs.
type Client struct {
	Host string
	Port int
	Seat hearts.Seat
	Auto bool
}

func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("HEARTS")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// LoadServer resolves the server configuration against the given flag
// set (usually the cobra command's).
func LoadServer(flags *pflag.FlagSet) (Server, error) {
	v, err := newViper(flags)
	if err != nil {
		return Server{}, err
	}
	v.SetDefault("deals", "deals.txt")
	v.SetDefault("port", 0)
	v.SetDefault("timeout", table.DefaultTurnTimeout)
	v.SetDefault("audit-mode", "nop")
	v.SetDefault("audit-dsn", "")
	v.SetDefault("admin-addr", "")

	cfg := Server{
		Deals:       v.GetString("deals"),
		Port:        v.GetInt("port"),
		TurnTimeout: v.GetDuration("timeout"),
		AuditMode:   v.GetString("audit-mode"),
		AuditDSN:    v.GetString("audit-dsn"),
		AdminAddr:   v.GetString("admin-addr"),
	}
	if cfg.Deals == "" {
		return cfg, fmt.Errorf("deal file path must not be empty")
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("port %d out of range", cfg.Port)
	}
	if cfg.TurnTimeout <= 0 {
		return cfg, fmt.Errorf("turn timeout must be positive, got %s", cfg.TurnTimeout)
	}
	return cfg, nil
}

// LoadClient resolves the client configuration.
func LoadClient(flags *pflag.FlagSet) (Client, error) {
	v, err := newViper(flags)
	if err != nil {
		return Client{}, err
	}
	v.SetDefault("host", "localhost")
	v.SetDefault("port", 0)
	v.SetDefault("seat", "N")
	v.SetDefault("auto", false)

	raw := strings.ToUpper(strings.TrimSpace(v.GetString("seat")))
	if len(raw) != 1 {
		return Client{}, fmt.Errorf("invalid seat %q", v.GetString("seat"))
	}
	seat, err := hearts.ParseSeat(raw[0])
	if err != nil {
		return Client{}, err
	}

	cfg := Client{
		Host: v.GetString("host"),
		Port: v.GetInt("port"),
		Seat: seat,
		Auto: v.GetBool("auto"),
	}
	if cfg.Host == "" {
		return cfg, fmt.Errorf("host must not be empty")
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return cfg, fmt.Errorf("port %d out of range", cfg.Port)
	}
	return cfg, nil
}
