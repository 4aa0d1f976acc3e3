// Package web renders the user directory page.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/lorrc/user-directory/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// ViewState selects what the cards container shows.
type ViewState string

const (
	ViewCards     ViewState = "cards"
	ViewError     ViewState = "error"
	ViewNoResults ViewState = "no_results"
)

const (
	ErrorMessage     = "Error fetching data. Please try again later."
	NoResultsMessage = "No data found."
	DefaultTitle     = "User Directory"
)

// Card is the display form of one user record.
type Card struct {
	Name    string `json:"name"`
	Gender  string `json:"gender"`
	Address string `json:"address"`
	DOB     string `json:"dob"`
	Picture string `json:"picture"`
}

// PageView is everything the page template needs.
type PageView struct {
	Title string
	Query string
	State ViewState
	Cards []Card
}

// Renderer writes the directory page. Every call produces the whole page,
// so the container is always replaced in full.
type Renderer struct {
	tmpl     *template.Template
	title    string
	location *time.Location
}

// NewRenderer parses the embedded templates. An empty title means
// DefaultTitle. Dates are shown in loc; nil means the host's local zone.
func NewRenderer(title string, loc *time.Location) (*Renderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	if title == "" {
		title = DefaultTitle
	}
	return &Renderer{tmpl: tmpl, title: title, location: loc}, nil
}

// Location returns the zone used for dates of birth.
func (r *Renderer) Location() *time.Location {
	return r.location
}

// Render writes the full page for view.
func (r *Renderer) Render(w io.Writer, view PageView) error {
	if view.Title == "" {
		view.Title = r.title
	}
	if view.State == "" {
		view.State = ViewCards
	}
	if err := r.tmpl.ExecuteTemplate(w, "page", view); err != nil {
		return fmt.Errorf("render page: %w", err)
	}
	return nil
}

// CardsView builds the view for a list of records.
func (r *Renderer) CardsView(records []domain.UserRecord, query string) PageView {
	return PageView{
		Query: query,
		State: ViewCards,
		Cards: NewCards(records, r.location),
	}
}

// ErrorView builds the fetch failure view.
func (r *Renderer) ErrorView() PageView {
	return PageView{State: ViewError}
}

// SearchView builds the view for a filter result. An empty result shows the
// no-results message instead of an empty container.
func (r *Renderer) SearchView(records []domain.UserRecord, query string) PageView {
	if len(records) == 0 {
		return PageView{Query: query, State: ViewNoResults}
	}
	return r.CardsView(records, query)
}

// NewCards converts records to cards in input order.
func NewCards(records []domain.UserRecord, loc *time.Location) []Card {
	cards := make([]Card, 0, len(records))
	for _, rec := range records {
		cards = append(cards, NewCard(rec, loc))
	}
	return cards
}

// NewCard converts one record to its display form.
func NewCard(rec domain.UserRecord, loc *time.Location) Card {
	return Card{
		Name:    rec.FullName(),
		Gender:  string(rec.Gender),
		Address: rec.Address(),
		DOB:     FormatDOB(rec.DateOfBirth, loc),
		Picture: rec.PictureURL,
	}
}

// FormatDOB formats t as month-day-year without padding, e.g. 7-4-1990,
// using the calendar date in loc.
func FormatDOB(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	local := t.In(loc)
	return fmt.Sprintf("%d-%d-%d", int(local.Month()), local.Day(), local.Year())
}
