package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"github.com/windfall/dialektlab/internal/errors"
	"github.com/windfall/dialektlab/internal/lesson"
)

const (
	// generationSystemPrompt keeps the model terse.
	generationSystemPrompt = "You are concise and stay on topic."

	// batchCacheSize bounds the per-process sentence-batch cache. One
	// generation call per distinct (topic, book text) input.
	batchCacheSize = 24

	// bookExcerptLines caps how many lines of user-supplied reference text
	// are forwarded to the model.
	bookExcerptLines = 6
)

// ChatClient is the LLM surface lesson generation needs. Both the OpenAI and
// Gemini clients implement it.
type ChatClient interface {
	ChatWithSystem(ctx context.Context, system, message string) (string, error)
}

// SentencePair is one generated dialect sentence with its English reference.
type SentencePair struct {
	SwissSentence        string `json:"swiss_sentence"`
	ReferenceTranslation string `json:"reference_translation"`
}

// LessonService builds lessons from LLM-generated sentence batches.
type LessonService struct {
	chat    ChatClient
	batches *lru.Cache[string, []SentencePair]
	log     zerolog.Logger
}

// NewLessonService creates a new lesson service.
func NewLessonService(chat ChatClient, log zerolog.Logger) *LessonService {
	batches, _ := lru.New[string, []SentencePair](batchCacheSize)
	return &LessonService{
		chat:    chat,
		batches: batches,
		log:     log,
	}
}

// CreateLesson generates a six-exercise lesson for the request. Unknown
// dialects fall back to the default; generation gaps fall back to a stock
// sentence so the lesson always has its full length.
func (s *LessonService) CreateLesson(ctx context.Context, req lesson.Request) (*lesson.Lesson, error) {
	dialect := lesson.NormalizeDialect(req.Dialect)

	batch, err := s.sentenceBatch(ctx, req.Topic, req.BookText)
	if err != nil {
		return nil, err
	}

	exercises := make([]lesson.Exercise, 0, lesson.ExercisesPerLesson)
	for idx := 0; idx < lesson.ExercisesPerLesson; idx++ {
		swiss, reference := sentenceAt(batch, req.Topic, idx)
		exercises = append(exercises, lesson.Exercise{
			ID:                   idx + 1,
			SwissSentence:        swiss,
			TranslationHint:      fmt.Sprintf("Translate this %s dialect sentence into English.", dialect),
			ReferenceTranslation: reference,
		})
	}

	return &lesson.Lesson{
		Topic:     req.Topic,
		Dialect:   dialect,
		Exercises: exercises,
	}, nil
}

// sentenceBatch returns the cached batch for this input, generating it once
// per distinct (topic, book text) pair.
func (s *LessonService) sentenceBatch(ctx context.Context, topic, bookText string) ([]SentencePair, error) {
	key := topic + "\x00" + bookText
	if batch, ok := s.batches.Get(key); ok {
		return batch, nil
	}

	if s.chat == nil {
		return nil, errors.New(errors.ErrGeneration, "no generation provider configured")
	}

	prompt := BuildGenerationPrompt(topic, bookText)
	content, err := s.chat.ChatWithSystem(ctx, generationSystemPrompt, prompt)
	if err != nil {
		return nil, errors.Wrap(errors.ErrGeneration, "sentence generation failed", err)
	}

	batch := parseSentenceBatch(content)
	if len(batch) == 0 {
		s.log.Warn().Str("topic", topic).Msg("Unable to parse LLM sentence batch; falling back to stock sentences")
	}

	s.batches.Add(key, batch)
	return batch, nil
}

// BuildGenerationPrompt assembles the generation prompt for a topic plus an
// optional user-supplied reference excerpt.
func BuildGenerationPrompt(topic, bookText string) string {
	sampleText := ""
	if bookText != "" {
		lines := make([]string, 0, bookExcerptLines)
		for _, line := range strings.Split(bookText, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			lines = append(lines, line)
			if len(lines) == bookExcerptLines {
				break
			}
		}
		if len(lines) > 0 {
			sampleText = "\n\nOptional reference (Swiss German):\n" + strings.Join(lines, "\n")
		}
	}

	topicPiece := strings.TrimSpace(topic)
	if topicPiece == "" {
		topicPiece = "Alltag"
	}

	return "You are a friendly Swiss German language app. " +
		"Write 6 short sentences in Züridütsch (Zürich dialect) about the given topic. " +
		"Each sentence must be about the topic and written fully in Swiss German (no labels). " +
		"Also provide a clear English translation for each sentence. " +
		"Return a JSON array of objects with keys 'swiss_sentence' and 'reference_translation'.\n\n" +
		"Topic: " + topicPiece + sampleText
}

// parseSentenceBatch extracts sentence pairs from model output, tolerating
// code fences and junk entries. Unparseable output yields an empty batch.
func parseSentenceBatch(content string) []SentencePair {
	content = stripCodeFences(content)

	var entries []json.RawMessage
	if err := json.Unmarshal([]byte(content), &entries); err != nil {
		return nil
	}

	pairs := make([]SentencePair, 0, len(entries))
	for _, raw := range entries {
		var pair SentencePair
		if err := json.Unmarshal(raw, &pair); err != nil {
			continue
		}
		pair.SwissSentence = strings.TrimSpace(pair.SwissSentence)
		pair.ReferenceTranslation = strings.TrimSpace(pair.ReferenceTranslation)
		if pair.SwissSentence == "" || pair.ReferenceTranslation == "" {
			continue
		}
		pairs = append(pairs, pair)
	}
	return pairs
}

// stripCodeFences removes a surrounding markdown code fence, if any.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// sentenceAt returns the generated pair at idx, or the stock follow-up
// sentence when the batch came up short.
func sentenceAt(batch []SentencePair, topic string, idx int) (string, string) {
	if idx < len(batch) {
		return batch[idx].SwissSentence, batch[idx].ReferenceTranslation
	}

	topicPiece := strings.TrimSpace(topic)
	if topicPiece == "" {
		topicPiece = "dini Idee"
	}
	return fmt.Sprintf("Mir bruuche meh Infos zum Thema %s, drum probier s Sätzli nomol.", topicPiece),
		"Need more topic details to generate a sentence."
}
