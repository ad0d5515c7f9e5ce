package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windfall/dialektlab/internal/logger"
)

// stubSynth returns fixed audio or an error.
type stubSynth struct {
	audio       []byte
	contentType string
	err         error
	calls       int
}

func (s *stubSynth) Synthesize(ctx context.Context, text, dialect string) ([]byte, string, error) {
	s.calls++
	if s.err != nil {
		return nil, "", s.err
	}
	return s.audio, s.contentType, nil
}

// memStore is an in-memory AudioStore.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *memStore) SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func TestFetchAudio_EncodesSynthesizedAudio(t *testing.T) {
	synth := &stubSynth{audio: []byte("mp3 bytes"), contentType: "audio/mpeg"}
	svc := NewAudioService(synth, nil, 0, logger.NewNop())

	payload, err := svc.FetchAudio(context.Background(), "Grüezi", "Zürich")
	require.NoError(t, err)

	assert.Equal(t, "audio/mpeg", payload.ContentType)
	decoded, err := base64.StdEncoding.DecodeString(payload.AudioBase64)
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3 bytes"), decoded)
}

func TestFetchAudio_TTSFailureFallsBackToTone(t *testing.T) {
	synth := &stubSynth{err: fmt.Errorf("gateway timeout")}
	svc := NewAudioService(synth, nil, 0, logger.NewNop())

	payload, err := svc.FetchAudio(context.Background(), "Grüezi", "Zürich")
	require.NoError(t, err, "synthesis failures degrade, they do not block")

	assert.Equal(t, "audio/wav", payload.ContentType)
	decoded, err := base64.StdEncoding.DecodeString(payload.AudioBase64)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(decoded, []byte("RIFF")))
}

func TestFetchAudio_NoTTSConfiguredUsesTone(t *testing.T) {
	svc := NewAudioService(nil, nil, 0, logger.NewNop())

	payload, err := svc.FetchAudio(context.Background(), "Hoi", "Bern")
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", payload.ContentType)
}

func TestFetchAudio_SharedStoreHitSkipsSynthesis(t *testing.T) {
	synth := &stubSynth{audio: []byte("x"), contentType: "audio/mpeg"}
	store := newMemStore()
	svc := NewAudioService(synth, store, time.Hour, logger.NewNop())

	first, err := svc.FetchAudio(context.Background(), "Grüezi", "Zürich")
	require.NoError(t, err)
	require.Equal(t, 1, synth.calls)

	second, err := svc.FetchAudio(context.Background(), "Grüezi", "Zürich")
	require.NoError(t, err)
	assert.Equal(t, 1, synth.calls, "cached result must not re-synthesize")
	assert.Equal(t, first, second)
}

func TestFetchAudio_UnknownDialectNormalized(t *testing.T) {
	store := newMemStore()
	svc := NewAudioService(&stubSynth{audio: []byte("x"), contentType: "audio/mpeg"}, store, time.Hour, logger.NewNop())

	_, err := svc.FetchAudio(context.Background(), "Grüezi", "Texan")
	require.NoError(t, err)
	_, err = svc.FetchAudio(context.Background(), "Grüezi", "Zürich")
	require.NoError(t, err)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.data, 1, "unknown dialects share the default dialect's cache entry")
}

func TestPlaceholderTone_WAVShape(t *testing.T) {
	wav := PlaceholderTone("Grüezi mitenand, wie gaht's?")

	require.Greater(t, len(wav), 44)
	assert.Equal(t, "RIFF", string(wav[0:4]))
	assert.Equal(t, "WAVE", string(wav[8:12]))
	assert.Equal(t, "fmt ", string(wav[12:16]))

	channels := binary.LittleEndian.Uint16(wav[22:24])
	sampleRate := binary.LittleEndian.Uint32(wav[24:28])
	bits := binary.LittleEndian.Uint16(wav[34:36])
	assert.Equal(t, uint16(1), channels)
	assert.Equal(t, uint32(22050), sampleRate)
	assert.Equal(t, uint16(16), bits)

	dataSize := binary.LittleEndian.Uint32(wav[40:44])
	assert.Equal(t, int(dataSize), len(wav)-44)
}

func TestPlaceholderTone_DurationScalesAndCaps(t *testing.T) {
	short := PlaceholderTone("Hoi")
	long := PlaceholderTone(strings.Repeat("a", 500))

	assert.Greater(t, len(long), len(short))

	// Capped at 3.5s of mono 16-bit 22050 Hz audio plus the 44-byte header.
	maxLen := 44 + int(3.5*22050)*2
	assert.LessOrEqual(t, len(long), maxLen)
}
