// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/parlorgames/tabooo/internal/deck"
	"github.com/parlorgames/tabooo/internal/handlers"
	"github.com/parlorgames/tabooo/internal/journal"
	"github.com/parlorgames/tabooo/internal/middleware"
	"github.com/parlorgames/tabooo/internal/words"
)

func main() {
	cfg := &Config{}
	if err := newCmd(cfg).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *Config) error {
	logger := logrus.New()
	if cfg.verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	cards, err := words.LoadFile(cfg.wordsFile)
	if err != nil {
		return fmt.Errorf("load word deck: %w", err)
	}
	d := deck.New()
	if err := d.Load(cards); err != nil {
		return fmt.Errorf("load word deck: %w", err)
	}
	logger.Infof("loaded %d word cards from %s", d.Size(), cfg.wordsFile)

	var jnl *journal.Journal
	if cfg.redisAddr != "" {
		jnl, err = journal.Connect(cfg.redisAddr, cfg.redisQueue, cfg.redisDB)
		if err != nil {
			return fmt.Errorf("connect transition journal: %w", err)
		}
		defer jnl.Close()
		logger.Infof("transition journal connected at %s", cfg.redisAddr)
	}

	srv := handlers.NewGameServer(logger, d, handlers.ServerOptions{
		Teams:             cfg.teams,
		NumRounds:         cfg.numRounds,
		BroadcastOnReject: cfg.broadcastOnReject,
		RoundFailsafe:     cfg.roundFailsafe,
		Journal:           jnl,
	})

	mux := http.NewServeMux()

	mux.Handle("/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.GameWSHandler(logger, srv),
	)))

	if cfg.videosdkKey != "" {
		mux.Handle("/audiochat/token", middleware.LogMiddleware(logger)(http.HandlerFunc(
			handlers.AudioChatTokenHandler(logger, cfg.videosdkKey, cfg.videosdkSecret),
		)))
	}

	if cfg.publicURL != "" {
		mux.Handle("/join/qr", middleware.LogMiddleware(logger)(http.HandlerFunc(
			handlers.JoinQRHandler(logger, cfg.publicURL),
		)))
	}

	mux.Handle("/session/config", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.SessionConfigHandler(handlers.SessionConfig{
			Teams:       cfg.teams,
			NumRounds:   cfg.numRounds,
			TurnSeconds: cfg.turnSeconds,
		}),
	)))

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	addr := net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port))
	logger.Infof("Running on %s", addr)

	httpSrv := &http.Server{
		Addr:        addr,
		Handler:     mux,
		BaseContext: func(net.Listener) context.Context { return ctx },
	}
	return httpSrv.ListenAndServe()
}
