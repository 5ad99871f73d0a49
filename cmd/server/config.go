// cmd/server/config.go
package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	bind              string
	port              int
	wordsFile         string
	teams             []string
	numRounds         int
	turnSeconds       int
	publicURL         string
	redisAddr         string
	redisDB           int
	redisQueue        string
	videosdkKey       string
	videosdkSecret    string
	broadcastOnReject bool
	roundFailsafe     time.Duration
	verbose           bool
}

func (c *Config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	if c.wordsFile == "" {
		return errors.New("--words is required")
	}
	if len(c.teams) < 2 {
		return fmt.Errorf("need at least 2 teams, got %d", len(c.teams))
	}
	if c.numRounds < 1 {
		return fmt.Errorf("invalid round count: %d", c.numRounds)
	}
	if (c.videosdkKey == "") != (c.videosdkSecret == "") {
		return errors.New("both --videosdk-key and --videosdk-secret must be provided together")
	}
	return nil
}

func newCmd(cfg *Config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TABOOO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "tabooo",
		Short:         "Relay server for a taboo-style party word game over WebSockets.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: TABOOO_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 8080, "port to listen on (env: TABOOO_PORT)")
	fs.StringVarP(&cfg.wordsFile, "words", "w", "words.csv", "path to the word deck CSV (env: TABOOO_WORDS)")
	fs.StringSliceVar(&cfg.teams, "teams", []string{"A", "B"}, "team names (env: TABOOO_TEAMS)")
	fs.IntVarP(&cfg.numRounds, "rounds", "r", 4, "rounds per game (env: TABOOO_ROUNDS)")
	fs.IntVar(&cfg.turnSeconds, "turn-seconds", 60, "seconds per guessing turn, advisory for clients (env: TABOOO_TURN_SECONDS)")
	fs.StringVar(&cfg.publicURL, "public-url", "", "externally reachable join URL, enables the QR endpoint (env: TABOOO_PUBLIC_URL)")
	fs.StringVar(&cfg.redisAddr, "redis-addr", "", "redis address for the transition journal, empty disables it (env: TABOOO_REDIS_ADDR)")
	fs.IntVar(&cfg.redisDB, "redis-db", 0, "redis database index (env: TABOOO_REDIS_DB)")
	fs.StringVar(&cfg.redisQueue, "redis-queue", "", "journal queue name, defaults to tabooo_transitions (env: TABOOO_REDIS_QUEUE)")
	fs.StringVar(&cfg.videosdkKey, "videosdk-key", "", "VideoSDK api key for audio chat tokens (env: TABOOO_VIDEOSDK_KEY)")
	fs.StringVar(&cfg.videosdkSecret, "videosdk-secret", "", "VideoSDK secret for audio chat tokens (env: TABOOO_VIDEOSDK_SECRET)")
	fs.BoolVar(&cfg.broadcastOnReject, "broadcast-on-reject", true, "rebroadcast state even when an event is rejected (env: TABOOO_BROADCAST_ON_REJECT)")
	fs.DurationVar(&cfg.roundFailsafe, "round-failsafe", 0, "server-side bound on a guessing turn, 0 disables (env: TABOOO_ROUND_FAILSAFE)")
	fs.BoolVarP(&cfg.verbose, "verbose", "v", false, "display additional output (env: TABOOO_VERBOSE)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})

	return cmd
}
