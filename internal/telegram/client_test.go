package telegram

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(apiBase string) *Client {
	return &Client{
		token:   "bot-token",
		chatID:  "-100500",
		apiBase: apiBase,
		client:  &http.Client{Timeout: time.Second},
	}
}

func TestSendAlert_PostsToChat(t *testing.T) {
	var gotPath, gotChat, gotText string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotPath = r.URL.Path
		gotChat = r.PostForm.Get("chat_id")
		gotText = r.PostForm.Get("text")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).SendAlert("payout failed")

	require.NoError(t, err)
	assert.Equal(t, "/botbot-token/sendMessage", gotPath)
	assert.Equal(t, "-100500", gotChat)
	assert.Contains(t, gotText, "payout failed")
}

func TestSendUrgent_ReturnsErrorOnBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chat not found", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).SendUrgent("Deadline", "project due tomorrow")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestSend_DisabledWithoutToken(t *testing.T) {
	c := &Client{chatID: "1", apiBase: "http://127.0.0.1:1", client: http.DefaultClient}

	assert.False(t, c.Enabled())
	assert.NoError(t, c.SendAlert("ignored"))
}
