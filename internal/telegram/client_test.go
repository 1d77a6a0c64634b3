package telegram

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithBase("TOKEN", srv.URL, srv.Client())
}

func TestGetUpdatesParsesMessages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/getUpdates", r.URL.Path)
		w.Write([]byte(`{"ok":true,"result":[
			{"update_id":10,"message":{"message_id":1,"from":{"id":42,"first_name":"Иван","last_name":"Петров"},"chat":{"id":42},"text":"/start"}},
			{"update_id":11,"message":{"message_id":2,"from":{"id":42},"chat":{"id":42},"photo":[{"file_id":"abc","width":90,"height":90}]}}
		]}`))
	})

	updates, err := client.GetUpdates(context.Background(), 0, 30)
	require.NoError(t, err)
	require.Len(t, updates, 2)

	assert.Equal(t, int64(10), updates[0].UpdateID)
	assert.Equal(t, "/start", updates[0].Message.Text)
	assert.Equal(t, "Иван Петров", updates[0].Message.From.FullName())
	assert.Len(t, updates[1].Message.Photo, 1)
}

func TestSendMessageIncludesKeyboard(t *testing.T) {
	var payload map[string]json.RawMessage
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/botTOKEN/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.Write([]byte(`{"ok":true,"result":{}}`))
	})

	kb := NewReplyKeyboard([]string{"🔓 Начать смену", "🔒 Завершить смену"})
	err := client.SendMessage(context.Background(), 42, "Привет", kb)
	require.NoError(t, err)

	assert.JSONEq(t, `42`, string(payload["chat_id"]))
	assert.JSONEq(t, `"Привет"`, string(payload["text"]))

	var markup ReplyKeyboardMarkup
	require.NoError(t, json.Unmarshal(payload["reply_markup"], &markup))
	assert.True(t, markup.ResizeKeyboard)
	require.Len(t, markup.Keyboard, 1)
	assert.Equal(t, "🔓 Начать смену", markup.Keyboard[0][0].Text)
}

func TestSendMessageAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	})

	err := client.SendMessage(context.Background(), 42, "Привет", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat not found")
}

func TestFileBytesDownloadsViaFilePath(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/botTOKEN/getFile":
			w.Write([]byte(`{"ok":true,"result":{"file_id":"abc","file_path":"photos/file_1.jpg"}}`))
		case "/file/botTOKEN/photos/file_1.jpg":
			w.Write([]byte("jpeg-bytes"))
		default:
			t.Errorf("неожиданный путь: %s", r.URL.Path)
		}
	})

	content, err := client.FileBytes(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg-bytes"), content)
}

func TestLargestPhoto(t *testing.T) {
	sizes := []PhotoSize{
		{FileID: "s", Width: 90, Height: 90},
		{FileID: "l", Width: 1280, Height: 720},
		{FileID: "m", Width: 320, Height: 320},
	}
	best, ok := LargestPhoto(sizes)
	require.True(t, ok)
	assert.Equal(t, "l", best.FileID)

	_, ok = LargestPhoto(nil)
	assert.False(t, ok)
}
