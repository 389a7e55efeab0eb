package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ai-chatbot-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateSendsNonStreamingRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gemma3:4b", body["model"])
		assert.Equal(t, "say hi", body["prompt"])
		assert.Equal(t, false, body["stream"])

		_, _ = w.Write([]byte(`{"model":"gemma3:4b","response":"hi!","done":true}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "gemma3:4b", time.Second)
	out, err := p.Generate(context.Background(), "say hi")
	require.NoError(t, err)
	assert.Equal(t, "hi!", out)
}

func TestGenerateErrorKinds(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"missing response field", http.StatusOK, `{"done":true}`, llm.ErrMalformedResponse},
		{"not json", http.StatusOK, `<html>`, llm.ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOllamaProvider(srv.URL, "m", time.Second).Generate(context.Background(), "p")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestGenerateStatusErrorIsNotTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model 'x' not found"}`))
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "x", time.Second).Generate(context.Background(), "p")
	require.Error(t, err)
	assert.NotErrorIs(t, err, llm.ErrUnavailable)
	assert.Contains(t, err.Error(), "status 404")
}

func TestGenerateUnreachableIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewOllamaProvider(url, "m", time.Second).Generate(context.Background(), "p")
	assert.ErrorIs(t, err, llm.ErrUnavailable)
}

func TestGenerateTimeoutIsTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{"response":"late"}`))
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "m", 50*time.Millisecond).Generate(context.Background(), "p")
	assert.ErrorIs(t, err, llm.ErrUnavailable)
}
