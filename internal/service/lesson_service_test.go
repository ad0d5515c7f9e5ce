package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/windfall/dialektlab/internal/lesson"
	"github.com/windfall/dialektlab/internal/logger"
)

// stubChat returns a fixed reply and counts calls.
type stubChat struct {
	mu    sync.Mutex
	reply string
	err   error
	calls int
}

func (s *stubChat) ChatWithSystem(ctx context.Context, system, message string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.reply, s.err
}

func (s *stubChat) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

const sixPairReply = `[
	{"swiss_sentence": "Ich gang go poschte.", "reference_translation": "I am going shopping."},
	{"swiss_sentence": "S Brot isch frisch.", "reference_translation": "The bread is fresh."},
	{"swiss_sentence": "Mir hend kei Milch meh.", "reference_translation": "We have no milk left."},
	{"swiss_sentence": "De Markt isch am Samstig.", "reference_translation": "The market is on Saturday."},
	{"swiss_sentence": "Das chostet zwei Stutz.", "reference_translation": "That costs two francs."},
	{"swiss_sentence": "Ich zahl mit de Charte.", "reference_translation": "I pay by card."}
]`

func TestCreateLesson_SixExercisesFromBatch(t *testing.T) {
	chat := &stubChat{reply: sixPairReply}
	svc := NewLessonService(chat, logger.NewNop())

	ls, err := svc.CreateLesson(context.Background(), lesson.Request{Topic: "Poschte", Dialect: "Bern"})
	require.NoError(t, err)

	assert.Equal(t, "Poschte", ls.Topic)
	assert.Equal(t, "Bern", ls.Dialect)
	require.Len(t, ls.Exercises, lesson.ExercisesPerLesson)

	first := ls.Exercises[0]
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "Ich gang go poschte.", first.SwissSentence)
	assert.Equal(t, "I am going shopping.", first.ReferenceTranslation)
	assert.Equal(t, "Translate this Bern dialect sentence into English.", first.TranslationHint)

	assert.Equal(t, 6, ls.Exercises[5].ID)
}

func TestCreateLesson_UnknownDialectFallsBack(t *testing.T) {
	chat := &stubChat{reply: sixPairReply}
	svc := NewLessonService(chat, logger.NewNop())

	ls, err := svc.CreateLesson(context.Background(), lesson.Request{Topic: "Poschte", Dialect: "Hochdeutsch"})
	require.NoError(t, err)
	assert.Equal(t, "Zürich", ls.Dialect)
}

func TestCreateLesson_ShortBatchPadsWithStockSentence(t *testing.T) {
	chat := &stubChat{reply: `[{"swiss_sentence": "Eis Sätzli.", "reference_translation": "One sentence."}]`}
	svc := NewLessonService(chat, logger.NewNop())

	ls, err := svc.CreateLesson(context.Background(), lesson.Request{Topic: "Velo", Dialect: "Zürich"})
	require.NoError(t, err)
	require.Len(t, ls.Exercises, 6)

	assert.Equal(t, "Eis Sätzli.", ls.Exercises[0].SwissSentence)
	for _, ex := range ls.Exercises[1:] {
		assert.Contains(t, ex.SwissSentence, "Mir bruuche meh Infos zum Thema Velo")
		assert.Equal(t, "Need more topic details to generate a sentence.", ex.ReferenceTranslation)
	}
}

func TestCreateLesson_GenerationErrorPropagates(t *testing.T) {
	chat := &stubChat{err: fmt.Errorf("rate limited")}
	svc := NewLessonService(chat, logger.NewNop())

	_, err := svc.CreateLesson(context.Background(), lesson.Request{Topic: "Velo"})
	require.Error(t, err)
}

func TestCreateLesson_NoProviderConfigured(t *testing.T) {
	svc := NewLessonService(nil, logger.NewNop())
	_, err := svc.CreateLesson(context.Background(), lesson.Request{Topic: "Velo"})
	require.Error(t, err)
}

func TestSentenceBatch_CachedPerTopicAndBookText(t *testing.T) {
	chat := &stubChat{reply: sixPairReply}
	svc := NewLessonService(chat, logger.NewNop())

	for i := 0; i < 3; i++ {
		_, err := svc.CreateLesson(context.Background(), lesson.Request{Topic: "Poschte"})
		require.NoError(t, err)
	}
	assert.Equal(t, 1, chat.callCount(), "same input generates once")

	_, err := svc.CreateLesson(context.Background(), lesson.Request{Topic: "Poschte", BookText: "Es Buech."})
	require.NoError(t, err)
	assert.Equal(t, 2, chat.callCount(), "book text is part of the cache key")
}

func TestParseSentenceBatch_ToleratesFencesAndJunk(t *testing.T) {
	fenced := "```json\n[{\"swiss_sentence\": \" Grüezi. \", \"reference_translation\": \" Hello. \"}, 42, {\"swiss_sentence\": \"\", \"reference_translation\": \"empty\"}]\n```"
	pairs := parseSentenceBatch(fenced)
	require.Len(t, pairs, 1)
	assert.Equal(t, "Grüezi.", pairs[0].SwissSentence)
	assert.Equal(t, "Hello.", pairs[0].ReferenceTranslation)
}

func TestParseSentenceBatch_UnparseableYieldsEmpty(t *testing.T) {
	assert.Empty(t, parseSentenceBatch("Sorry, I cannot help with that."))
	assert.Empty(t, parseSentenceBatch(`{"swiss_sentence": "not an array"}`))
}

func TestBuildGenerationPrompt_TopicFallback(t *testing.T) {
	prompt := BuildGenerationPrompt("  ", "")
	assert.Contains(t, prompt, "Topic: Alltag")
	assert.NotContains(t, prompt, "Optional reference")
}

func TestBuildGenerationPrompt_BookExcerptCapped(t *testing.T) {
	lines := make([]string, 0, 12)
	for i := 1; i <= 10; i++ {
		lines = append(lines, fmt.Sprintf("Zyle %d", i))
		lines = append(lines, "   ") // blank lines are dropped
	}
	prompt := BuildGenerationPrompt("Märli", strings.Join(lines, "\n"))

	assert.Contains(t, prompt, "Optional reference (Swiss German):")
	assert.Contains(t, prompt, "Zyle 6")
	assert.NotContains(t, prompt, "Zyle 7")
}
