package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"mtbridge/internal/config"
	"mtbridge/internal/engine"
	"mtbridge/internal/logger"
	"mtbridge/internal/server"
	"mtbridge/internal/terminal/mt5"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Runtime.Log.Level,
		Format:     cfg.Runtime.Log.Format,
		Output:     cfg.Runtime.Log.File,
		MaxSize:    cfg.Runtime.Log.MaxSize,
		MaxBackups: cfg.Runtime.Log.MaxBackups,
		MaxAge:     cfg.Runtime.Log.MaxAge,
		Compress:   cfg.Runtime.Log.Compress,
	})

	log.Info("Мост терминала запущен.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := mt5.New(cfg.Terminal.BaseUrl, cfg.Terminal.Token, cfg.Terminal.Timeout, log)
	eng := engine.New(cfg, client, log)

	if err := eng.AwaitTerminal(ctx); err != nil {
		log.WithError(err).Fatal("Терминал так и не ответил, запуск прерван.")
	}

	srv := server.New(cfg, eng, client, log)
	httpServer := &http.Server{
		Addr:        cfg.Server.Addr,
		Handler:     srv.Handler(),
		ReadTimeout: cfg.Server.ReadTimeout,
		// WriteTimeout не ставим: он оборвал бы долгие WS-подписки на тики.
	}

	go func() {
		log.WithFields(map[string]interface{}{"addr": cfg.Server.Addr}).Info("HTTP сервер слушает.")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("HTTP сервер завершился с ошибкой.")
		}
	}()

	<-sigCh
	cancel()
	log.Info("Остановка...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Не удалось корректно остановить HTTP сервер.")
	}

	log.Info("Мост остановлен.")
}
