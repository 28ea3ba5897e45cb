// Package presenter prints books to a terminal: cover art, then title, author, rating,
// genres and a short blurb.
package presenter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"bookrec/internal/domain"
)

// CoverRenderer turns a cover URL into printable art.
type CoverRenderer interface {
	Cover(ctx context.Context, url string, width int) (string, error)
}

// BookLookup resolves identifiers to books in order.
type BookLookup interface {
	Lookup(ids []string) ([]domain.Book, error)
}

type Options struct {
	ShowCovers     bool
	CoverWidth     int
	BlurbSentences int
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	blurbStyle = lipgloss.NewStyle().Italic(true)
)

// Presenter writes book listings. Covers and summarizer may be nil.
type Presenter struct {
	w          io.Writer
	books      BookLookup
	covers     CoverRenderer
	summarizer domain.Summarizer
	opts       Options
}

func New(w io.Writer, books BookLookup, covers CoverRenderer, summarizer domain.Summarizer, opts Options) *Presenter {
	if opts.CoverWidth <= 0 {
		opts.CoverWidth = 32
	}
	return &Presenter{w: w, books: books, covers: covers, summarizer: summarizer, opts: opts}
}

// ShowIDs looks the identifiers up and shows them in order.
func (p *Presenter) ShowIDs(ctx context.Context, ids []string) error {
	books, err := p.books.Lookup(ids)
	if err != nil {
		return err
	}
	return p.Show(ctx, books)
}

// Show prints each book in order. A cover that cannot be fetched or decoded stops the call
// and its error is returned; books already printed stay printed.
func (p *Presenter) Show(ctx context.Context, books []domain.Book) error {
	for i, b := range books {
		if err := ctx.Err(); err != nil {
			return err
		}
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		if p.opts.ShowCovers && p.covers != nil {
			art, err := p.covers.Cover(ctx, b.CoverURL, p.opts.CoverWidth)
			if err != nil {
				return fmt.Errorf("cover for %q: %w", b.Title, err)
			}
			fmt.Fprintln(p.w, art)
		}
		fmt.Fprintln(p.w, p.Format(b))
	}
	return nil
}

// Format renders the text block for one book.
func (p *Presenter) Format(b domain.Book) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(b.Title))
	sb.WriteByte('\n')
	line := func(label, value string) {
		sb.WriteString(labelStyle.Render(label+":") + " " + value + "\n")
	}
	line("Author", b.Author)
	line("Rating", fmt.Sprintf("%.2f", b.Rating))
	line("Genres", strings.Join(b.Genres, ", "))
	if blurb := p.Blurb(b); blurb != "" {
		sb.WriteString(blurbStyle.Render(blurb))
		sb.WriteByte('\n')
	}
	return strings.TrimRight(sb.String(), "\n")
}

// Blurb summarizes the description, or returns "" when blurbs are disabled.
func (p *Presenter) Blurb(b domain.Book) string {
	if p.summarizer == nil || p.opts.BlurbSentences <= 0 {
		return ""
	}
	blurb, err := p.summarizer.Summarize(b.Description, p.opts.BlurbSentences)
	if err != nil {
		return ""
	}
	return blurb
}

// ShowResolution explains a title that did not resolve to one book.
func (p *Presenter) ShowResolution(res domain.Resolution) {
	fmt.Fprint(p.w, FormatResolution(res))
}

// FormatResolution describes a not_found or ambiguous outcome with its candidates.
func FormatResolution(res domain.Resolution) string {
	var sb strings.Builder
	switch res.Outcome {
	case domain.OutcomeAmbiguous:
		fmt.Fprintf(&sb, "%q matches %d titles:\n", res.Query, len(res.Candidates))
		for i, c := range res.Candidates {
			fmt.Fprintf(&sb, "  %d. %s by %s [%s]\n", i+1, c.Title, c.Author, c.ID)
		}
		sb.WriteString("Refine the title to pick one.\n")
	case domain.OutcomeNotFound:
		fmt.Fprintf(&sb, "No book titled %q.\n", res.Query)
		if len(res.Suggestions) > 0 {
			sb.WriteString("Did you mean:\n")
			for _, c := range res.Suggestions {
				fmt.Fprintf(&sb, "  - %s by %s\n", c.Title, c.Author)
			}
		}
	case domain.OutcomeFound:
		fmt.Fprintf(&sb, "%s [%s]\n", res.Title, res.ID)
	}
	return sb.String()
}
