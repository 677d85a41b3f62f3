package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/lazarofl/payment-gateway/gateway"
	"golang.org/x/exp/slog"
)

func main() {
	// Optional .env for local development; environment wins.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout))

	app := gateway.NewApp(logger, gateway.ConfigFromEnv())
	if err := app.Start(); err != nil {
		logger.Error("starting app", "err", err)
		os.Exit(1)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	app.Shutdown()
}
