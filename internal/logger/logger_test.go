package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recordingAlerter struct {
	messages []string
	err      error
}

func (r *recordingAlerter) SendAlert(msg string) error {
	r.messages = append(r.messages, msg)
	return r.err
}

func newTestLogger(alerter Alerter) (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	h := &TelegramHandler{
		Handler: slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		tg:      alerter,
	}
	return slog.New(h), buf
}

func TestTelegramHandler_OnlyErrorsAreForwarded(t *testing.T) {
	alerter := &recordingAlerter{}
	log, buf := newTestLogger(alerter)

	log.Info("project created", "project_id", "p-1")
	log.Warn("notification dropped")
	log.Error("payout failed", "payout_id", "po-7")

	assert.Len(t, alerter.messages, 1)
	assert.Contains(t, alerter.messages[0], "payout failed")
	assert.Contains(t, alerter.messages[0], "payout_id=po-7")
	assert.Contains(t, buf.String(), "project created")
}

func TestTelegramHandler_WithAttrsIncludedInAlert(t *testing.T) {
	alerter := &recordingAlerter{}
	log, _ := newTestLogger(alerter)

	log.With("request_id", "req-42").Error("refund failed")

	assert.Len(t, alerter.messages, 1)
	assert.Contains(t, alerter.messages[0], "request_id=req-42")
}

func TestTelegramHandler_AlertFailureDoesNotBreakLogging(t *testing.T) {
	alerter := &recordingAlerter{err: errors.New("telegram down")}
	log, buf := newTestLogger(alerter)

	log.Error("ydb timeout")

	assert.Contains(t, buf.String(), "ydb timeout")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("whatever"))
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))

	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	ctx := WithContext(context.Background(), l)
	assert.Equal(t, l, FromContext(ctx))
}
