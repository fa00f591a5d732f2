package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lumiforge/cutroom-backend/internal/logger"
	"github.com/lumiforge/cutroom-backend/internal/models"
	"github.com/lumiforge/cutroom-backend/internal/ydb"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// origin уже проверил CORS слой
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// streamInterval период опроса проекта
var streamInterval = 2 * time.Second

// ProjectEvent снимок проекта, отправляемый подписчику
type ProjectEvent struct {
	ProjectID     string               `json:"project_id"`
	Status        models.ProjectStatus `json:"status"`
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	RevisionsUsed int32                `json:"revisions_used"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func eventOf(p *ydb.Project) ProjectEvent {
	return ProjectEvent{
		ProjectID:     p.ProjectID,
		Status:        p.Status,
		PaymentStatus: p.PaymentStatus,
		RevisionsUsed: p.RevisionsUsed,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (e ProjectEvent) same(o ProjectEvent) bool {
	return e.Status == o.Status && e.PaymentStatus == o.PaymentStatus &&
		e.RevisionsUsed == o.RevisionsUsed && e.UpdatedAt.Equal(o.UpdatedAt)
}

// ProjectStream pushes project status changes over a websocket
// @Summary		Project status stream
// @Description	Websocket that sends the current project snapshot and then every change until the project reaches a terminal status
// @Tags		projects
// @Security	BearerAuth
// @Param		id	path	string	true	"Project ID"
// @Success	101
// @Failure	403	{object}	models.ErrorResponse
// @Failure	404	{object}	models.ErrorResponse
// @Router		/projects/{id}/ws [get]
func (s *Server) ProjectStream(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.actor(w, r)
	if !ok {
		return
	}
	projectID := r.PathValue("id")

	// доступ проверяем до апгрейда, чтобы ответить обычной ошибкой
	p, err := s.projectService.Get(r.Context(), actor, projectID)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.FromContext(r.Context()).Warn("Websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// читаем входящие кадры только чтобы заметить закрытие соединения
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	prev := eventOf(p)
	if err := conn.WriteJSON(prev); err != nil {
		return
	}
	if p.Status.Terminal() {
		return
	}

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		cur, err := s.projectService.Get(ctx, actor, projectID)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.FromContext(ctx).Warn("Project stream poll failed", "project_id", projectID, "error", err)
			continue
		}

		ev := eventOf(cur)
		if !ev.same(prev) {
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
			prev = ev
		}
		if cur.Status.Terminal() {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(cur.Status)))
			return
		}
	}
}
