package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windfall/dialektlab/internal/lesson"
	"github.com/windfall/dialektlab/internal/logger"
	"github.com/windfall/dialektlab/internal/service"
)

type fixedChat struct{ reply string }

func (f fixedChat) ChatWithSystem(ctx context.Context, system, message string) (string, error) {
	return f.reply, nil
}

func newTestHandler(t *testing.T) *APIHandler {
	t.Helper()
	chat := fixedChat{reply: `[{"swiss_sentence": "Grüezi.", "reference_translation": "Hello."}]`}
	lessonService := service.NewLessonService(chat, logger.NewNop())
	audioService := service.NewAudioService(nil, nil, 0, logger.NewNop())
	return NewAPIHandler(logger.NewNop(), lessonService, audioService)
}

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestCreateLesson_ReturnsBareLessonBody(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.CreateLesson, `{"topic": "Poschte", "dialect": "Bern"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var ls lesson.Lesson
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ls))
	assert.Equal(t, "Poschte", ls.Topic)
	assert.Equal(t, "Bern", ls.Dialect)
	assert.Len(t, ls.Exercises, 6)
	assert.Equal(t, "Grüezi.", ls.Exercises[0].SwissSentence)
}

func TestCreateLesson_ShortTopicRejected(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.CreateLesson, `{"topic": "ab", "dialect": "Bern"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateLesson_InvalidBodyRejected(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.CreateLesson, `{"topic": `)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFetchAudio_ReturnsPayload(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.FetchAudio, `{"text": "Grüezi", "dialect": "Zürich"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload lesson.AudioPayload
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "audio/wav", payload.ContentType)
	assert.NotEmpty(t, payload.AudioBase64)
}

func TestFetchAudio_EmptyTextRejected(t *testing.T) {
	h := newTestHandler(t)

	rec := postJSON(t, h.FetchAudio, `{"text": "", "dialect": "Zürich"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
