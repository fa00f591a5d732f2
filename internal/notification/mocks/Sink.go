package mocks

import (
	"context"

	"github.com/lumiforge/cutroom-backend/internal/notification"
	"github.com/stretchr/testify/mock"
)

// Sink мок приемника уведомлений
type Sink struct {
	mock.Mock
}

var _ notification.Sink = (*Sink)(nil)

func (m *Sink) Notify(ctx context.Context, ev notification.Event) {
	m.Called(ctx, ev)
}

// Enqueuer мок очереди доставки
type Enqueuer struct {
	mock.Mock
}

var _ notification.Enqueuer = (*Enqueuer)(nil)

func (m *Enqueuer) Enqueue(ctx context.Context, notificationID string) error {
	args := m.Called(ctx, notificationID)
	return args.Error(0)
}
