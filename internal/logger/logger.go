package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

// Alerter отправляет алерты администраторам (Telegram)
type Alerter interface {
	SendAlert(msg string) error
}

type TelegramHandler struct {
	slog.Handler
	tg    Alerter
	attrs []slog.Attr
}

func (h *TelegramHandler) Handle(ctx context.Context, r slog.Record) error {
	if r.Level >= slog.LevelError && h.tg != nil {
		if err := h.tg.SendAlert(formatAlert(r, h.attrs)); err != nil {
			// Пишем напрямую в stderr, чтобы не уйти в рекурсию через h.Handler
			os.Stderr.WriteString("Failed to send telegram alert: " + err.Error() + "\n")
		}
	}
	return h.Handler.Handle(ctx, r)
}

func (h *TelegramHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &TelegramHandler{
		Handler: h.Handler.WithAttrs(attrs),
		tg:      h.tg,
		attrs:   merged,
	}
}

func (h *TelegramHandler) WithGroup(name string) slog.Handler {
	return &TelegramHandler{
		Handler: h.Handler.WithGroup(name),
		tg:      h.tg,
		attrs:   h.attrs,
	}
}

// formatAlert собирает текст алерта: сообщение и ключевые атрибуты записи
func formatAlert(r slog.Record, base []slog.Attr) string {
	var b strings.Builder
	b.WriteString(r.Message)
	write := func(a slog.Attr) bool {
		fmt.Fprintf(&b, "\n%s=%v", a.Key, a.Value.Any())
		return true
	}
	for _, a := range base {
		write(a)
	}
	r.Attrs(write)
	return b.String()
}

// ParseLevel переводит строковый уровень из конфигурации в slog.Level
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func New(tg Alerter, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	jsonHandler := slog.NewJSONHandler(os.Stdout, opts)
	tgHandler := &TelegramHandler{
		Handler: jsonHandler,
		tg:      tg,
	}
	return slog.New(tgHandler)
}

type ctxKey struct{}

func WithContext(ctx context.Context, l *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

func FromContext(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}
