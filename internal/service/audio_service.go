package service

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/windfall/dialektlab/internal/lesson"
)

// Synthesizer produces speech audio for a sentence in a dialect.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, dialect string) ([]byte, string, error)
}

// AudioStore is the shared cache surface for encoded synthesis results.
// The Redis client implements it; a nil store disables shared caching.
type AudioStore interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// AudioService fetches synthesized speech, falling back to a placeholder
// tone whenever the TTS service is missing or fails. It never returns an
// error for synthesis problems: audio degrades, it does not block.
type AudioService struct {
	tts   Synthesizer
	store AudioStore
	ttl   time.Duration
	log   zerolog.Logger
}

// NewAudioService creates a new audio service. tts and store may be nil.
func NewAudioService(tts Synthesizer, store AudioStore, ttl time.Duration, log zerolog.Logger) *AudioService {
	return &AudioService{
		tts:   tts,
		store: store,
		ttl:   ttl,
		log:   log,
	}
}

// FetchAudio returns base64-encoded speech for the text in the dialect.
func (s *AudioService) FetchAudio(ctx context.Context, text, dialect string) (*lesson.AudioPayload, error) {
	dialect = lesson.NormalizeDialect(dialect)
	key := audioCacheKey(dialect, text)

	if payload := s.cachedPayload(ctx, key); payload != nil {
		return payload, nil
	}

	requestID := fmt.Sprintf("synth_%s", uuid.New().String()[:8])

	var (
		audio       []byte
		contentType string
	)
	if s.tts != nil {
		var err error
		audio, contentType, err = s.tts.Synthesize(ctx, text, dialect)
		if err != nil {
			s.log.Warn().Err(err).Str("request_id", requestID).Msg("TTS request failed, using fallback audio")
			audio = nil
		}
	} else {
		s.log.Warn().Str("request_id", requestID).Msg("TTS client unavailable, falling back to synth tone")
	}

	if len(audio) == 0 {
		audio = PlaceholderTone(text)
		contentType = "audio/wav"
	}

	payload := &lesson.AudioPayload{
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		ContentType: contentType,
	}

	s.storePayload(ctx, key, payload)
	return payload, nil
}

func (s *AudioService) cachedPayload(ctx context.Context, key string) *lesson.AudioPayload {
	if s.store == nil {
		return nil
	}

	data, ok, err := s.store.GetBytes(ctx, key)
	if err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("Audio cache lookup failed")
		return nil
	}
	if !ok {
		return nil
	}

	var payload lesson.AudioPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("Discarding unparseable cached audio")
		return nil
	}
	return &payload
}

func (s *AudioService) storePayload(ctx context.Context, key string, payload *lesson.AudioPayload) {
	if s.store == nil {
		return
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	if err := s.store.SetBytes(ctx, key, data, s.ttl); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("Audio cache write failed")
	}
}

// audioCacheKey derives the shared-cache key for a (dialect, text) pair.
func audioCacheKey(dialect, text string) string {
	h := sha256.Sum256([]byte(dialect + ":" + text))
	return "audio:" + hex.EncodeToString(h[:16])
}
