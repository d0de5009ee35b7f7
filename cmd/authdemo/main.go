// Package main wires configuration, logging, storage, the auth services and
// the interactive shell of the authdemo terminal application.
package main

import (
	"cmp"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/atinyakov/authdemo/internal/client/shell"
	"github.com/atinyakov/authdemo/internal/client/storage"
	"github.com/atinyakov/authdemo/internal/config"
	"github.com/atinyakov/authdemo/internal/logger"
	"github.com/atinyakov/authdemo/internal/repository"
	"github.com/atinyakov/authdemo/internal/service"
	"github.com/atinyakov/authdemo/internal/validation"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options, err := config.Parse(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.InitWithFile(options.LogLevel, options.LogFile); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	rules, err := validation.ByName(options.Rules)
	if err != nil {
		zapLogger.Fatal("invalid rules", zap.Error(err))
	}

	store, err := storage.Open(options.Store, options.StorePath, zapLogger)
	if err != nil {
		zapLogger.Fatal("cannot open store", zap.String("backend", options.Store), zap.Error(err))
	}
	defer func() {
		if err := store.Close(); err != nil {
			zapLogger.Error("close store", zap.Error(err))
		}
	}()

	users := repository.NewUserDirectory(store, zapLogger)
	sessions := repository.NewSessionManager(store, zapLogger)

	authService := service.NewAuthService(users, sessions, validation.NewChecker(rules),
		service.WithLogger(zapLogger),
		service.WithDelay(options.Delay.Std()),
		service.WithAutoLogin(options.AutoLogin),
	)
	prefs := service.NewPreferences(store)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zapLogger.Info("starting shell",
		zap.String("store", options.Store),
		zap.String("rules", rules.Name),
	)

	sh := shell.New(shell.Config{
		Auth:        authService,
		Preferences: prefs,
		Logger:      zapLogger,
		In:          os.Stdin,
		Out:         os.Stdout,
		Hidden:      shell.TerminalPasswordReader(os.Stdout),
	})
	if err := sh.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zapLogger.Error("shell stopped", zap.Error(err))
	}
}
