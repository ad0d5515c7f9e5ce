package session

// AudioState describes what the Listen control can promise right now.
type AudioState string

const (
	AudioCached   AudioState = "cached"
	AudioFetching AudioState = "fetching"
	AudioAbsent   AudioState = "absent"
)

// OverviewEntry is one summary card in the lesson overview.
type OverviewEntry struct {
	ID       int
	Hint     string
	Sentence string
}

// ExerciseView is the render projection for the current exercise. It is a
// plain value derived from session state; rendering it performs no I/O.
type ExerciseView struct {
	Position          int // 1-based
	Total             int
	Sentence          string
	Hint              string
	Reference         string
	ReferenceRevealed bool
	AudioState        AudioState
	IsLast            bool
}

// Overview projects the lesson into summary entries, in lesson order.
// Returns nil before the first lesson.
func (s *Session) Overview() []OverviewEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.lesson == nil {
		return nil
	}

	entries := make([]OverviewEntry, 0, len(s.lesson.Exercises))
	for _, ex := range s.lesson.Exercises {
		entries = append(entries, OverviewEntry{
			ID:       ex.ID,
			Hint:     ex.TranslationHint,
			Sentence: ex.SwissSentence,
		})
	}
	return entries
}

// CurrentExercise projects the exercise under the cursor. ok is false
// before the first lesson.
func (s *Session) CurrentExercise() (ExerciseView, bool) {
	s.mu.Lock()
	if s.lesson == nil || len(s.lesson.Exercises) == 0 {
		s.mu.Unlock()
		return ExerciseView{}, false
	}

	ex := s.lesson.Exercises[s.index]
	view := ExerciseView{
		Position:          s.index + 1,
		Total:             len(s.lesson.Exercises),
		Sentence:          ex.SwissSentence,
		Hint:              ex.TranslationHint,
		Reference:         ex.ReferenceTranslation,
		ReferenceRevealed: s.revealed,
		IsLast:            s.index == len(s.lesson.Exercises)-1,
	}
	audio := s.audio
	s.mu.Unlock()

	view.AudioState = AudioAbsent
	if _, ok := audio.Get(view.Sentence); ok {
		view.AudioState = AudioCached
	} else if audio.InFlight(view.Sentence) {
		view.AudioState = AudioFetching
	}
	return view, true
}
