package engine

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"mtbridge/internal/config"
	"mtbridge/internal/logger"
	"mtbridge/internal/terminal"
)

// Engine переводит входящие намерения (открыть, закрыть, изменить, узнать
// статус) ровно в одно обращение к терминалу и классифицирует исход.
// Состояния у моста нет: каждый вызов — синхронный проход до терминала.
type Engine struct {
	cfg    *config.Config
	client terminal.Client
	log    *logger.Logger
}

func New(cfg *config.Config, client terminal.Client, log *logger.Logger) *Engine {
	return &Engine{
		cfg:    cfg,
		client: client,
		log:    log,
	}
}

// AwaitTerminal дожидается живого соединения с терминалом на старте
// процесса. Дальше соединение считается данностью и не перепроверяется.
func (e *Engine) AwaitTerminal(ctx context.Context) error {
	attempts := e.cfg.Terminal.ReadyAttempts
	if attempts <= 0 {
		attempts = 5
	}

	var lastErr error
	wait := 1 * time.Second
	for i := 0; i < attempts; i++ {
		err := e.client.Ping(ctx)
		if err == nil {
			e.logEntry().Info("Терминал на связи.")
			return nil
		}
		lastErr = err

		e.logEntry().WithError(err).WithField("attempt", i+1).Warn("Терминал не отвечает, повторяем.")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}

		wait *= 2
		if wait > 30*time.Second {
			wait = 30 * time.Second
		}
	}
	return lastErr
}

func (e *Engine) lookbackWindow() (time.Time, time.Time) {
	days := e.cfg.Trade.HistoryLookbackDays
	if days <= 0 {
		days = 7
	}
	to := time.Now()
	return to.AddDate(0, 0, -days), to
}

func (e *Engine) logEntry() *logrus.Entry {
	return e.log.WithComponent("engine")
}
