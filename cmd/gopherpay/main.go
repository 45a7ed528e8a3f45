package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopherpay.com/internal/app"
	"gopherpay.com/pkg/config"
	"gopherpay.com/pkg/logger"
)

func main() {
	// SIGINT/SIGTERM cancel ctx, which drains HTTP and stops the background loops.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The watcher may fire before the app is built.
	var current atomic.Pointer[app.App]
	cfg := &app.Cfg{}
	v, err := config.LoadAndWatch("gopherpay", cfg, func(v *viper.Viper) {
		if a := current.Load(); a != nil {
			a.OnConfigChange(v)
		}
	})
	if err != nil {
		panic(fmt.Sprintf("load config: %+v", err))
	}

	logger.Init(cfg.Name, cfg.LogLevel)
	defer logger.Sync()
	logger.Info(ctx, "service starting")

	a, err := app.New(ctx, cfg, v)
	if err != nil {
		logger.Fatal(ctx, "init app", zap.Error(err))
	}
	current.Store(a)
	defer a.Close(context.Background())

	if err := a.Run(ctx); err != nil {
		logger.Error(ctx, "service stopped with error", zap.Error(err))
		return
	}
	logger.Info(context.Background(), "service stopped")
}
