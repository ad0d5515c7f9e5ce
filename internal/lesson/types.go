package lesson

// ExercisesPerLesson is the fixed number of translation drills per lesson.
const ExercisesPerLesson = 6

// DefaultDialect is used whenever a request carries an unknown dialect.
const DefaultDialect = "Zürich"

// Dialects lists the selectable Swiss German dialect variants. The order
// matches the selector shown to the user.
var Dialects = []string{
	"Aarau",
	"Bern",
	"Basel",
	"Graubünden",
	"Luzern",
	"St. Gallen",
	"Valais",
	"Zürich",
}

// Exercise is one translation drill: a dialect sentence, a hint, and the
// reference translation revealed on demand.
type Exercise struct {
	ID                   int    `json:"id"`
	SwissSentence        string `json:"swiss_sentence"`
	TranslationHint      string `json:"translation_hint"`
	ReferenceTranslation string `json:"reference_translation"`
}

// Lesson is an ordered set of exercises generated for a topic and dialect.
// It is created whole from one generation response and never partially
// mutated afterwards.
type Lesson struct {
	Topic     string     `json:"topic"`
	Dialect   string     `json:"dialect"`
	Exercises []Exercise `json:"exercises"`
}

// NormalizeDialect returns s when it names a known dialect, otherwise the
// default.
func NormalizeDialect(s string) string {
	for _, d := range Dialects {
		if d == s {
			return s
		}
	}
	return DefaultDialect
}

// IsKnownDialect reports whether s names a supported dialect.
func IsKnownDialect(s string) bool {
	for _, d := range Dialects {
		if d == s {
			return true
		}
	}
	return false
}
