package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"vault-copilot-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func replyWith(content string) []byte {
	b, _ := json.Marshal(chatResponse{
		Model:   "llama3",
		Message: chatMessage{Role: "assistant", Content: content},
		Done:    true,
	})
	return b
}

func TestChatRetriesTransientFailure(t *testing.T) {
	var calls int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write(replyWith("hello"))
	})

	p := NewProvider(srv.URL, "llama3")
	reply, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})

	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestChatClientErrorIsPermanent(t *testing.T) {
	var calls int32
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	})

	p := NewProvider(srv.URL, "missing-model")
	_, err := p.Chat(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})

	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx must not be retried")
}

func TestChatMapsModelRoleToAssistant(t *testing.T) {
	var got chatRequest
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write(replyWith("ok"))
	})

	p := NewProvider(srv.URL, "llama3")
	_, err := p.Chat(context.Background(), []llm.Message{
		{Role: "user", Content: "question"},
		{Role: "model", Content: "earlier answer"},
	}, llm.WithTemperature(0.2), llm.WithMaxTokens(64))

	require.NoError(t, err)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "assistant", got.Messages[1].Role)
	assert.Equal(t, "llama3", got.Model)
	require.NotNil(t, got.Options)
	assert.InDelta(t, 0.2, got.Options.Temperature, 1e-9)
	assert.Equal(t, 64, got.Options.NumPredict)
}
