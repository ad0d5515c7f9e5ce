package tui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/windfall/dialektlab/internal/lesson"
	"github.com/windfall/dialektlab/internal/session"
)

type screen int

const (
	screenForm screen = iota
	screenOverview
	screenExercise
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	cardStyle  = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
	hintStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("110"))
)

type lessonCreatedMsg struct{ err error }

type listenResultMsg struct {
	path string
	err  error
}

// Model is the Bubble Tea model for the lesson lab. All lesson and audio
// state lives in the session; the model only holds input widgets and
// transient labels.
type Model struct {
	session *session.Session

	state      screen
	topicInput textinput.Model
	seedInput  textinput.Model
	answer     textinput.Model
	dialectIdx int
	formFocus  int // 0 = topic, 1 = seed path

	requesting bool
	listening  bool
	errMsg     string
	audioNote  string
}

// New creates the initial model bound to a session.
func New(sess *session.Session) Model {
	topic := textinput.New()
	topic.Placeholder = "what do you want to practice?"
	topic.CharLimit = 120
	topic.Focus()

	seed := textinput.New()
	seed.Placeholder = "optional path to a Swiss German text file"
	seed.CharLimit = 256

	answer := textinput.New()
	answer.Placeholder = "type your translation (not graded)"
	answer.CharLimit = 256

	// Default to the last entry, Zürich.
	return Model{
		session:    sess,
		topicInput: topic,
		seedInput:  seed,
		answer:     answer,
		dialectIdx: len(lesson.Dialects) - 1,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.state {
		case screenForm:
			return m.updateForm(msg)
		case screenOverview:
			return m.updateOverview(msg)
		case screenExercise:
			return m.updateExercise(msg)
		}

	case lessonCreatedMsg:
		m.requesting = false
		if msg.err != nil {
			// Prior lesson state stays rendered; the user may retry.
			m.errMsg = "Could not create the lesson, please try again."
			return m, nil
		}
		m.errMsg = ""
		m.state = screenOverview
		return m, nil

	case listenResultMsg:
		m.listening = false
		if msg.err != nil {
			m.audioNote = "audio unavailable"
			return m, nil
		}
		m.audioNote = "saved to " + msg.path
		return m, nil
	}

	return m, nil
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab:
		m.formFocus = (m.formFocus + 1) % 2
		if m.formFocus == 0 {
			m.seedInput.Blur()
			return m, m.topicInput.Focus()
		}
		m.topicInput.Blur()
		return m, m.seedInput.Focus()

	case tea.KeyLeft:
		m.dialectIdx = (m.dialectIdx + len(lesson.Dialects) - 1) % len(lesson.Dialects)
		return m, nil

	case tea.KeyRight:
		m.dialectIdx = (m.dialectIdx + 1) % len(lesson.Dialects)
		return m, nil

	case tea.KeyEnter:
		if m.requesting {
			return m, nil
		}
		m.requesting = true
		m.errMsg = ""
		topic := m.topicInput.Value()
		dialect := lesson.Dialects[m.dialectIdx]
		seedPath := strings.TrimSpace(m.seedInput.Value())
		return m, func() tea.Msg {
			err := m.session.CreateLesson(context.Background(), topic, dialect, seedPath)
			return lessonCreatedMsg{err: err}
		}
	}

	var cmd tea.Cmd
	if m.formFocus == 0 {
		m.topicInput, cmd = m.topicInput.Update(msg)
	} else {
		m.seedInput, cmd = m.seedInput.Update(msg)
	}
	return m, cmd
}

func (m Model) updateOverview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "s":
		m.session.Start()
		m.answer.SetValue("")
		m.audioNote = ""
		m.state = screenExercise
		return m, m.answer.Focus()
	case "esc", "q":
		m.state = screenForm
		return m, m.topicInput.Focus()
	}
	return m, nil
}

func (m Model) updateExercise(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlL:
		if m.listening {
			return m, nil
		}
		m.listening = true
		m.audioNote = ""
		return m, func() tea.Msg {
			clip, err := m.session.Listen(context.Background())
			if err != nil {
				return listenResultMsg{err: err}
			}
			path, err := writeClip(clip)
			return listenResultMsg{path: path, err: err}
		}

	case tea.KeyCtrlR:
		m.session.RevealReference()
		return m, nil

	case tea.KeyCtrlN:
		m.session.Advance()
		m.answer.SetValue("")
		m.audioNote = ""
		return m, nil

	case tea.KeyEsc:
		m.state = screenOverview
		return m, nil
	}

	var cmd tea.Cmd
	m.answer, cmd = m.answer.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	switch m.state {
	case screenOverview:
		return m.viewOverview()
	case screenExercise:
		return m.viewExercise()
	default:
		return m.viewForm()
	}
}

func (m Model) viewForm() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Dialekt Lesson Lab") + "\n\n")
	b.WriteString(labelStyle.Render("Topic") + "\n" + m.topicInput.View() + "\n\n")
	b.WriteString(labelStyle.Render("Dialect") + "  " + lesson.Dialects[m.dialectIdx] + hintStyle.Render("  (←/→ to change)") + "\n\n")
	b.WriteString(labelStyle.Render("Seed text") + "\n" + m.seedInput.View() + "\n\n")

	if m.requesting {
		b.WriteString("Generating lesson…\n")
	}
	if m.errMsg != "" {
		b.WriteString(errStyle.Render(m.errMsg) + "\n")
	}

	b.WriteString("\n" + hintStyle.Render("enter: create lesson • tab: switch field • ctrl+c: quit"))
	return b.String()
}

func (m Model) viewOverview() string {
	ls := m.session.Lesson()
	if ls == nil {
		return m.viewForm()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Lesson: %s (%s)", ls.Topic, ls.Dialect)) + "\n\n")
	for _, entry := range m.session.Overview() {
		card := fmt.Sprintf("%d. %s\n%s", entry.ID, entry.Sentence, hintStyle.Render(entry.Hint))
		b.WriteString(cardStyle.Render(card) + "\n")
	}
	b.WriteString("\n" + hintStyle.Render("enter: start practicing • esc: new lesson • ctrl+c: quit"))
	return b.String()
}

func (m Model) viewExercise() string {
	view, ok := m.session.CurrentExercise()
	if !ok {
		return m.viewForm()
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Exercise %d of %d", view.Position, view.Total)) + "\n\n")
	b.WriteString(cardStyle.Render(view.Sentence) + "\n")
	b.WriteString(hintStyle.Render(view.Hint) + "\n\n")
	b.WriteString(m.answer.View() + "\n\n")

	if view.ReferenceRevealed {
		b.WriteString(labelStyle.Render("Reference: ") + view.Reference + "\n")
	}

	switch {
	case m.listening:
		b.WriteString("Fetching audio…\n")
	case m.audioNote != "":
		b.WriteString(hintStyle.Render(m.audioNote) + "\n")
	}

	next := "next"
	if view.IsLast {
		next = "restart"
	}
	b.WriteString("\n" + hintStyle.Render(fmt.Sprintf("ctrl+l: listen • ctrl+r: show reference • ctrl+n: %s • esc: overview", next)))
	return b.String()
}

// writeClip saves a clip next to the other temp files so an external player
// can pick it up; terminals have no audio device of their own.
func writeClip(clip session.Clip) (string, error) {
	ext := ".wav"
	if strings.Contains(clip.ContentType, "mpeg") || strings.Contains(clip.ContentType, "mp3") {
		ext = ".mp3"
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("dialektlab_%d%s", time.Now().UnixNano(), ext))
	if err := os.WriteFile(path, clip.Data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
