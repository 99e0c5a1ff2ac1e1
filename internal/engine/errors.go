package engine

import (
	"errors"
	"fmt"

	"mtbridge/internal/models"
)

// ErrPositionNotFound — тикет не найден среди открытых позиций.
var ErrPositionNotFound = errors.New("позиция не найдена среди открытых")

// ErrTickUnavailable — терминал не дал котировку для закрытия.
var ErrTickUnavailable = errors.New("не удалось получить тиковую цену")

// ValidationError — запрос отклонён до обращения к терминалу.
// Текст показывается клиенту как есть.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func errValidation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// RejectionError — терминал доступен, но отклонил команду
// (retcode отличен от TRADE_RETCODE_DONE).
type RejectionError struct {
	Result *models.TradeResult
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("терминал отклонил команду: %s (retcode=%d)", e.Result.Comment, e.Result.Retcode)
}

// TransportFailure — отправка не состоялась вовсе; Diag несёт последнюю
// диагностику терминала, если её удалось получить.
type TransportFailure struct {
	Err  error
	Diag *models.TerminalError
}

func (e *TransportFailure) Error() string {
	return e.Err.Error()
}

func (e *TransportFailure) Unwrap() error {
	return e.Err
}
