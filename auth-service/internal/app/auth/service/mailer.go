package service

import (
	"context"

	"shopcatalog/pkg/logger"
)

// LogMailer пишет ссылку сброса в лог вместо отправки письма
type LogMailer struct{}

func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (LogMailer) SendPasswordReset(_ context.Context, to, name, link string) error {
	logger.Info().
		Str("to", to).
		Str("name", name).
		Str("link", link).
		Msg("Password reset link")
	return nil
}
