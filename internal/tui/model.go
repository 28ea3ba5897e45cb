package tui

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bookrec/internal/domain"
	"bookrec/internal/presenter"
)

// Recommender is the TUI-facing subset of the recommender service.
type Recommender interface {
	Resolve(query string) (domain.Resolution, error)
	RecommendByID(ctx context.Context, id string, mode domain.Mode, k int) (domain.Recommendation, error)
	Book(id string) (domain.Book, error)
}

// Options configure the TUI. Covers may be nil to disable cover art.
type Options struct {
	Mode       domain.Mode
	K          int
	MaxK       int
	Covers     presenter.CoverRenderer
	CoverWidth int
}

type coverMsg struct {
	url string
	art string
	err error
}

// Model is the Bubble Tea model for the TUI application.
type Model struct {
	service   Recommender
	presenter *presenter.Presenter
	opts      Options
	input     textinput.Model
	viewport  viewport.Model

	mode       domain.Mode
	k          int
	query      *domain.Book
	results    []domain.Book
	candidates []domain.Candidate
	cursor     int
	covers     map[string]coverMsg
	status     string
	ready      bool
}

// New creates a new TUI model instance.
func New(service Recommender, p *presenter.Presenter, opts Options) Model {
	if opts.Mode == "" {
		opts.Mode = domain.ModeBoth
	}
	if opts.K <= 0 {
		opts.K = 5
	}
	if opts.MaxK < opts.K {
		opts.MaxK = opts.K
	}
	if opts.CoverWidth <= 0 {
		opts.CoverWidth = 24
	}
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a book title and press Enter"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		service:   service,
		presenter: p,
		opts:      opts,
		input:     ti,
		viewport:  vp,
		mode:      opts.Mode,
		k:         opts.K,
		covers:    map[string]coverMsg{},
		status:    "Loaded. Tab: mode  PgUp/PgDn: count  Esc: clear",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := resultBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 3 + qh + 1 // header, settings, status, spacer
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, msg.Height-reserved-rh)
		m.refresh()
		return m, nil
	case coverMsg:
		m.covers[msg.url] = msg
		m.refresh()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			if q := strings.TrimSpace(m.input.Value()); q != "" {
				return m.submit(q)
			}
			if len(m.candidates) > 0 {
				c := m.candidates[m.cursor]
				m.candidates = nil
				return m.recommend(c.ID)
			}
			return m, nil
		case "tab":
			m.mode = m.mode.Next()
			return m.rerun()
		case "pgup":
			if m.k < m.opts.MaxK {
				m.k++
			}
			return m.rerun()
		case "pgdown":
			if m.k > 1 {
				m.k--
			}
			return m.rerun()
		case "down":
			if n := m.listLen(); n > 0 {
				m.cursor = (m.cursor + 1) % n
				m.refresh()
				return m, m.loadCover()
			}
		case "up":
			if n := m.listLen(); n > 0 {
				m.cursor = (m.cursor - 1 + n) % n
				m.refresh()
				return m, m.loadCover()
			}
		case "esc":
			m.input.SetValue("")
			m.query, m.results, m.candidates, m.cursor = nil, nil, nil, 0
			m.status = "Cleared."
			m.refresh()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit(q string) (tea.Model, tea.Cmd) {
	res, err := m.service.Resolve(q)
	if err != nil {
		m.status = "Error: " + err.Error()
		return m, nil
	}
	m.input.SetValue("")
	switch res.Outcome {
	case domain.OutcomeFound:
		return m.recommend(res.ID)
	case domain.OutcomeAmbiguous:
		m.candidates, m.results, m.query, m.cursor = res.Candidates, nil, nil, 0
		m.status = fmt.Sprintf("%q matches %d titles. Up/Down to choose, Enter to pick.", q, len(res.Candidates))
	default:
		m.candidates, m.results, m.query, m.cursor = res.Suggestions, nil, nil, 0
		if len(res.Suggestions) > 0 {
			m.status = fmt.Sprintf("No book titled %q. Did you mean one of these?", q)
		} else {
			m.status = fmt.Sprintf("No book titled %q.", q)
		}
	}
	m.refresh()
	return m, nil
}

func (m Model) recommend(id string) (tea.Model, tea.Cmd) {
	rec, err := m.service.RecommendByID(context.Background(), id, m.mode, m.k)
	if err != nil {
		m.status = "Error: " + err.Error()
		m.refresh()
		return m, nil
	}
	books := make([]domain.Book, 0, len(rec.Items))
	for _, it := range rec.Items {
		b, err := m.service.Book(it.ID)
		if err != nil {
			m.status = "Error: " + err.Error()
			return m, nil
		}
		books = append(books, b)
	}
	q := rec.Query
	m.query, m.results, m.candidates, m.cursor = &q, books, nil, 0
	m.status = fmt.Sprintf("%d %s recommendations for %q", len(books), m.mode, q.Title)
	m.refresh()
	return m, m.loadCover()
}

func (m Model) rerun() (tea.Model, tea.Cmd) {
	if m.query == nil {
		m.refresh()
		return m, nil
	}
	return m.recommend(m.query.ID)
}

func (m Model) listLen() int {
	if len(m.candidates) > 0 {
		return len(m.candidates)
	}
	return len(m.results)
}

// loadCover fetches the selected result's cover off the update loop.
func (m Model) loadCover() tea.Cmd {
	if m.opts.Covers == nil || len(m.candidates) > 0 || len(m.results) == 0 {
		return nil
	}
	url := m.results[m.cursor].CoverURL
	if _, ok := m.covers[url]; ok {
		return nil
	}
	covers, width := m.opts.Covers, m.opts.CoverWidth
	return func() tea.Msg {
		art, err := covers.Cover(context.Background(), url, width)
		return coverMsg{url: url, art: art, err: err}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderContent())
	m.viewport.GotoTop()
}

// View renders the TUI layout and current result.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("Book Recommender")
	settings := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).
		Render(fmt.Sprintf("mode: %s   k: %d", m.mode, m.k))
	input := queryBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	results := resultBoxStyle.Render(m.viewport.View())
	return header + "\n" + settings + "\n" + results + "\n" + input + "\n" + status
}

func (m Model) renderContent() string {
	if len(m.candidates) > 0 {
		var sb strings.Builder
		for i, c := range m.candidates {
			line := fmt.Sprintf("%s by %s", c.Title, c.Author)
			sb.WriteString(marker(i == m.cursor) + line + "\n")
		}
		return sb.String()
	}
	if m.query == nil {
		return "No results yet."
	}
	if len(m.results) == 0 {
		return fmt.Sprintf("Nothing similar to %s.", m.query.Title)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Because you liked %s by %s:\n\n", m.query.Title, m.query.Author)
	for i, b := range m.results {
		sb.WriteString(marker(i == m.cursor) + fmt.Sprintf("%d. %s by %s\n", i+1, b.Title, b.Author))
	}
	sb.WriteString("\n")

	sel := m.results[m.cursor]
	if c, ok := m.covers[sel.CoverURL]; ok {
		if c.err != nil {
			sb.WriteString(errStyle.Render(coverError(c.err)) + "\n")
		} else {
			sb.WriteString(c.art + "\n")
		}
	}
	if m.presenter != nil {
		sb.WriteString(m.presenter.Format(sel) + "\n\n")
	}
	sb.WriteString(highlightBestSentence(sel.Description, m.query.Description))
	return sb.String()
}

func marker(selected bool) string {
	if selected {
		return highlightStyle.Render("▸ ")
	}
	return "  "
}

func coverError(err error) string {
	switch {
	case errors.Is(err, domain.ErrCoverDecode):
		return "cover could not be decoded"
	case errors.Is(err, domain.ErrCoverFetch):
		return "cover unavailable"
	default:
		return "cover error: " + err.Error()
	}
}

var (
	resultBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	highlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	errStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	unicodeWordRe  = regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`)
	sentenceRe     = regexp.MustCompile(`[^.!?]+[.!?]+`)
)

// highlightBestSentence marks the sentence of text that shares the most words with the
// query book's description.
func highlightBestSentence(text, query string) string {
	if strings.TrimSpace(text) == "" {
		return text
	}
	sentences := sentenceRe.FindAllString(text, -1)
	if len(sentences) == 0 {
		sentences = []string{strings.TrimSpace(text)}
	}
	qTokens := toTokenSet(query)
	if len(qTokens) == 0 {
		return strings.Join(sentences, " ")
	}
	bestIdx := 0
	bestScore := -1
	for i, s := range sentences {
		score := tokenOverlapScore(qTokens, s)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}
	for i := range sentences {
		sent := strings.TrimSpace(sentences[i])
		if i == bestIdx && bestScore > 0 {
			sentences[i] = highlightStyle.Render(sent)
		} else {
			sentences[i] = sent
		}
	}
	return strings.Join(sentences, " ")
}

func toTokenSet(s string) map[string]struct{} {
	tokens := unicodeWordRe.FindAllString(strings.ToLower(s), -1)
	m := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		m[t] = struct{}{}
	}
	return m
}

func tokenOverlapScore(queryTokens map[string]struct{}, sentence string) int {
	score := 0
	tokens := unicodeWordRe.FindAllString(strings.ToLower(sentence), -1)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := queryTokens[t]; ok {
			score++
		}
	}
	return score
}
