package telegram

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lumiforge/cutroom-backend/internal/config"
)

const defaultAPIBase = "https://api.telegram.org"

type Client struct {
	token   string
	chatID  string
	apiBase string
	client  *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		token:   cfg.TelegramBotToken,
		chatID:  cfg.TelegramAdminChatID,
		apiBase: defaultAPIBase,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Enabled сообщает, настроен ли бот
func (c *Client) Enabled() bool {
	return c != nil && c.token != "" && c.chatID != ""
}

// SendAlert отправляет алерт об ошибке в админский чат
func (c *Client) SendAlert(msg string) error {
	return c.send("🚨 ERROR: " + msg)
}

// SendUrgent дублирует срочные уведомления платформы в админский чат
func (c *Client) SendUrgent(title, message string) error {
	return c.send(fmt.Sprintf("⚡ %s\n%s", title, message))
}

func (c *Client) send(text string) error {
	if !c.Enabled() {
		return nil
	}
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", c.apiBase, c.token)
	vals := url.Values{}
	vals.Set("chat_id", c.chatID)
	vals.Set("text", text)

	resp, err := c.client.PostForm(apiURL, vals)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram api returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
