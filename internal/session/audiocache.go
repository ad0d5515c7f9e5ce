package session

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/windfall/dialektlab/internal/lesson"
)

// ErrAudioUnavailable marks a sentence whose synthesis failed; the caller
// shows an advisory label and the exercise continues without audio.
var ErrAudioUnavailable = errors.New("audio unavailable")

// AudioAPI is the synthesis endpoint surface the cache fetches from.
type AudioAPI interface {
	SynthesizeAudio(ctx context.Context, text, dialect string) (*lesson.AudioPayload, error)
}

// Clip is a playable audio handle: decoded bytes plus their MIME type.
type Clip struct {
	Data        []byte
	ContentType string
}

// AudioCache fetches and holds synthesized audio for the current session,
// at most one fetch per distinct sentence. Entries live for the cache's
// lifetime; a new lesson installs a fresh cache. A sentence is never both
// cached and in flight: the flight group collapses concurrent fetches and
// the cache is checked before any fetch is issued.
type AudioCache struct {
	api     AudioAPI
	dialect string
	log     zerolog.Logger

	flights singleflight.Group

	mu       sync.Mutex
	clips    map[string]Clip
	inflight map[string]struct{}
}

// NewAudioCache creates an empty cache bound to one dialect.
func NewAudioCache(api AudioAPI, dialect string, log zerolog.Logger) *AudioCache {
	return &AudioCache{
		api:      api,
		dialect:  dialect,
		log:      log,
		clips:    make(map[string]Clip),
		inflight: make(map[string]struct{}),
	}
}

// Get returns the cached clip for the sentence, if present.
func (c *AudioCache) Get(sentence string) (Clip, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	clip, ok := c.clips[sentence]
	return clip, ok
}

// InFlight reports whether a fetch for the sentence is underway.
func (c *AudioCache) InFlight(sentence string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.inflight[sentence]
	return ok
}

// Len returns the number of cached clips.
func (c *AudioCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clips)
}

// Ensure fetches audio for the sentence unless it is already cached or in
// flight. Concurrent calls for the same sentence share one underlying
// request. On failure the sentence stays uncached, so any later caller
// retries; the in-flight marker is cleared on every path.
func (c *AudioCache) Ensure(ctx context.Context, sentence string) error {
	if sentence == "" {
		return nil
	}
	if _, ok := c.Get(sentence); ok {
		return nil
	}

	_, err, _ := c.flights.Do(sentence, func() (interface{}, error) {
		// A finished flight may have populated the cache between the
		// caller's check and this one.
		if _, ok := c.Get(sentence); ok {
			return nil, nil
		}

		c.markInflight(sentence)
		defer c.clearInflight(sentence)

		payload, err := c.api.SynthesizeAudio(ctx, sentence, c.dialect)
		if err != nil {
			c.log.Warn().Err(err).Str("sentence", sentence).Msg("Audio fetch failed")
			return nil, err
		}

		data, err := base64.StdEncoding.DecodeString(payload.AudioBase64)
		if err != nil {
			c.log.Warn().Err(err).Str("sentence", sentence).Msg("Audio payload not decodable")
			return nil, err
		}

		c.mu.Lock()
		c.clips[sentence] = Clip{Data: data, ContentType: payload.ContentType}
		c.mu.Unlock()
		return nil, nil
	})
	return err
}

// Prefetch kicks off a background fetch for the sentence. It no-ops when
// the sentence is cached or already in flight. The fetch is never
// cancelled by navigation: it completes and populates the cache for a
// possible later revisit.
func (c *AudioCache) Prefetch(sentence string) {
	if sentence == "" {
		return
	}

	c.mu.Lock()
	_, cached := c.clips[sentence]
	_, fetching := c.inflight[sentence]
	c.mu.Unlock()
	if cached || fetching {
		return
	}

	go func() {
		if err := c.Ensure(context.Background(), sentence); err != nil {
			c.log.Debug().Err(err).Str("sentence", sentence).Msg("Prefetch failed")
		}
	}()
}

// Play resolves the sentence to a playable clip, awaiting the fetch when
// necessary. A failed fetch surfaces as ErrAudioUnavailable.
func (c *AudioCache) Play(ctx context.Context, sentence string) (Clip, error) {
	if err := c.Ensure(ctx, sentence); err != nil {
		return Clip{}, ErrAudioUnavailable
	}
	clip, ok := c.Get(sentence)
	if !ok {
		return Clip{}, ErrAudioUnavailable
	}
	return clip, nil
}

func (c *AudioCache) markInflight(sentence string) {
	c.mu.Lock()
	c.inflight[sentence] = struct{}{}
	c.mu.Unlock()
}

func (c *AudioCache) clearInflight(sentence string) {
	c.mu.Lock()
	delete(c.inflight, sentence)
	c.mu.Unlock()
}
