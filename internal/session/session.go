package session

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/windfall/dialektlab/internal/lesson"
)

// API is the server surface the session consumes: one call to create a
// lesson, one per distinct sentence to synthesize audio.
type API interface {
	CreateLesson(ctx context.Context, req lesson.Request) (*lesson.Lesson, error)
	AudioAPI
}

// Session owns the client-side state for one practice session: the current
// lesson, the exercise cursor, and the audio cache. All state is replaced
// wholesale when a new lesson is created; nothing survives across lessons.
type Session struct {
	api API
	log zerolog.Logger

	mu       sync.Mutex
	lesson   *lesson.Lesson
	index    int
	revealed bool
	audio    *AudioCache
}

// New creates an empty session.
func New(api API, log zerolog.Logger) *Session {
	return &Session{api: api, log: log}
}

// CreateLesson requests a fresh lesson and installs it. seedPath, when
// non-empty, names a local text file whose contents seed the generation; a
// read failure aborts before any network call. A request failure leaves
// the previous lesson (if any) untouched. On success the lesson, cursor,
// and audio cache are replaced as a unit and audio for the first two
// exercises is prefetched.
func (s *Session) CreateLesson(ctx context.Context, topic, dialect, seedPath string) error {
	bookText := ""
	if seedPath != "" {
		data, err := os.ReadFile(seedPath)
		if err != nil {
			return fmt.Errorf("failed to read seed text: %w", err)
		}
		bookText = string(data)
	}

	ls, err := s.api.CreateLesson(ctx, lesson.Request{
		Topic:    topic,
		Dialect:  dialect,
		BookText: bookText,
	})
	if err != nil {
		return fmt.Errorf("lesson request failed: %w", err)
	}

	s.mu.Lock()
	s.lesson = ls
	s.index = 0
	s.revealed = false
	s.audio = NewAudioCache(s.api, ls.Dialect, s.log)
	s.mu.Unlock()

	s.log.Info().Str("topic", ls.Topic).Str("dialect", ls.Dialect).
		Int("exercises", len(ls.Exercises)).Msg("Lesson installed")

	s.prefetchAround()
	return nil
}

// Start moves the cursor back to the first exercise. No-op without a lesson.
func (s *Session) Start() {
	s.mu.Lock()
	if s.lesson == nil {
		s.mu.Unlock()
		return
	}
	s.index = 0
	s.revealed = false
	s.mu.Unlock()

	s.prefetchAround()
}

// Advance moves to the next exercise, wrapping from the last back to the
// first. Returns true on wrap so the control can read "Restart". No-op
// without a lesson.
func (s *Session) Advance() bool {
	s.mu.Lock()
	if s.lesson == nil || len(s.lesson.Exercises) == 0 {
		s.mu.Unlock()
		return false
	}

	wrapped := false
	if s.index == len(s.lesson.Exercises)-1 {
		s.index = 0
		wrapped = true
	} else {
		s.index++
	}
	s.revealed = false
	s.mu.Unlock()

	s.prefetchAround()
	return wrapped
}

// RevealReference makes the reference translation visible for the current
// exercise. Idempotent; it stays visible until the cursor moves.
func (s *Session) RevealReference() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lesson == nil {
		return
	}
	s.revealed = true
}

// Listen resolves the current exercise's sentence to a playable clip,
// fetching it if needed.
func (s *Session) Listen(ctx context.Context) (Clip, error) {
	s.mu.Lock()
	if s.lesson == nil || len(s.lesson.Exercises) == 0 {
		s.mu.Unlock()
		return Clip{}, ErrAudioUnavailable
	}
	sentence := s.lesson.Exercises[s.index].SwissSentence
	audio := s.audio
	s.mu.Unlock()

	return audio.Play(ctx, sentence)
}

// Lesson returns the current lesson, or nil before the first creation.
func (s *Session) Lesson() *lesson.Lesson {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lesson
}

// Index returns the current 0-based exercise index.
func (s *Session) Index() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index
}

// Audio returns the session's audio cache, or nil before the first lesson.
func (s *Session) Audio() *AudioCache {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.audio
}

// prefetchAround warms the cache for the current exercise and the next
// one. Past the last exercise there is no next; that prefetch is skipped.
func (s *Session) prefetchAround() {
	s.mu.Lock()
	if s.lesson == nil || len(s.lesson.Exercises) == 0 {
		s.mu.Unlock()
		return
	}
	exercises := s.lesson.Exercises
	i := s.index
	audio := s.audio
	s.mu.Unlock()

	audio.Prefetch(exercises[i].SwissSentence)
	if i+1 < len(exercises) {
		audio.Prefetch(exercises[i+1].SwissSentence)
	}
}
