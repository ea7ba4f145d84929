package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeFrames(t *testing.T, body string) []Frame {
	t.Helper()
	var frames []Frame
	for _, line := range strings.Split(strings.TrimSpace(body), "\n") {
		if line == "" {
			continue
		}
		var f Frame
		require.NoError(t, json.Unmarshal([]byte(line), &f))
		frames = append(frames, f)
	}
	return frames
}

func TestNewStreamWriter(t *testing.T) {
	t.Run("sets streaming headers", func(t *testing.T) {
		rec := httptest.NewRecorder()
		_, err := NewStreamWriter(rec)
		require.NoError(t, err)

		assert.Equal(t, "application/x-ndjson", rec.Header().Get("Content-Type"))
		assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
		assert.Equal(t, "no", rec.Header().Get("X-Accel-Buffering"))
	})

	t.Run("fails without a flusher", func(t *testing.T) {
		_, err := NewStreamWriter(plainWriter{httptest.NewRecorder()})
		assert.Error(t, err)
	})
}

func TestStreamWriter_WriteDone(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewStreamWriter(rec)
	require.NoError(t, err)

	require.NoError(t, w.WriteDone())
	require.NoError(t, w.WriteDone())
	require.NoError(t, w.WriteDone())

	frames := decodeFrames(t, rec.Body.String())
	require.Len(t, frames, 1)
	assert.True(t, frames[0].Done)
}

func TestStreamWriter_Relay(t *testing.T) {
	t.Run("forwards chunks then exactly one done frame", func(t *testing.T) {
		rec := httptest.NewRecorder()
		w, err := NewStreamWriter(rec)
		require.NoError(t, err)

		chunks := make(chan string, 3)
		chunks <- "Calm "
		chunks <- "Gummies "
		chunks <- "help."
		close(chunks)

		w.Relay(context.Background(), chunks)

		frames := decodeFrames(t, rec.Body.String())
		require.Len(t, frames, 4)
		assert.Equal(t, "Calm ", frames[0].Chunk)
		assert.Equal(t, "Gummies ", frames[1].Chunk)
		assert.Equal(t, "help.", frames[2].Chunk)
		assert.True(t, frames[3].Done)

		for _, f := range frames[:3] {
			assert.False(t, f.Done)
		}
	})

	t.Run("emits the done frame even with no chunks", func(t *testing.T) {
		rec := httptest.NewRecorder()
		w, err := NewStreamWriter(rec)
		require.NoError(t, err)

		chunks := make(chan string)
		close(chunks)

		w.Relay(context.Background(), chunks)

		frames := decodeFrames(t, rec.Body.String())
		require.Len(t, frames, 1)
		assert.True(t, frames[0].Done)
	})

	t.Run("emits the done frame when the context is cancelled", func(t *testing.T) {
		rec := httptest.NewRecorder()
		w, err := NewStreamWriter(rec)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		w.Relay(ctx, make(chan string))

		frames := decodeFrames(t, rec.Body.String())
		require.Len(t, frames, 1)
		assert.True(t, frames[0].Done)
	})
}

func TestStreamWriter_WriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	w, err := NewStreamWriter(rec)
	require.NoError(t, err)

	require.NoError(t, w.WriteError("question is too short"))

	frames := decodeFrames(t, rec.Body.String())
	require.Len(t, frames, 1)
	assert.Equal(t, "question is too short", frames[0].Error)
	assert.False(t, frames[0].Done)
}

// plainWriter hides the recorder's Flush method.
type plainWriter struct {
	rec *httptest.ResponseRecorder
}

func (w plainWriter) Header() http.Header         { return w.rec.Header() }
func (w plainWriter) Write(b []byte) (int, error) { return w.rec.Write(b) }
func (w plainWriter) WriteHeader(status int)      { w.rec.WriteHeader(status) }
