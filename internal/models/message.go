package models

// MessageType вид сообщения в переписке по проекту
type MessageType string

const (
	MessageText   MessageType = "text"
	MessageFile   MessageType = "file"
	MessageSystem MessageType = "system"
)

// SendMessageRequest сообщение участнику проекта. Без receiver_id адресатом
// становится вторая сторона проекта
// @Description	Project message
type SendMessageRequest struct {
	ProjectID    string `json:"project_id" validate:"required"`
	ReceiverID   string `json:"receiver_id,omitempty"`
	Content      string `json:"content" validate:"required"`
	AttachmentID string `json:"attachment_upload_id,omitempty"`
}

// MessageFilter фильтр переписки
type MessageFilter struct {
	ProjectID  string
	UserID     string
	UnreadOnly bool
	Limit      int
	Offset     int
}
