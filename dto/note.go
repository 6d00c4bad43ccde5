package dto

import (
	"net/url"
	"time"

	"notesweb/model"
	"notesweb/repository"
	"notesweb/usecase"
)

// VisibleTagCount is how many tag chips a card shows before "+N".
const VisibleTagCount = 6

type NoteCard struct {
	ID         string
	Title      string
	Content    string
	Pinned     bool
	Favorite   bool
	Meta       string
	Tags       []string
	MoreTags   int
	IsMutating bool
}

// ToNoteCard builds the card for note. The note is not modified.
func ToNoteCard(note model.Note, isMutating bool) NoteCard {
	visible := note.Tags
	more := 0
	if len(visible) > VisibleTagCount {
		more = len(visible) - VisibleTagCount
		visible = visible[:VisibleTagCount]
	}
	return NoteCard{
		ID:         string(note.ID),
		Title:      note.Title,
		Content:    note.Content,
		Pinned:     note.Pinned,
		Favorite:   note.Favorite,
		Meta:       noteMeta(note),
		Tags:       append([]string(nil), visible...),
		MoreTags:   more,
		IsMutating: isMutating,
	}
}

func ToNoteCards(notes []model.Note, isMutating func(id string) bool) []NoteCard {
	cards := make([]NoteCard, len(notes))
	for i, note := range notes {
		cards[i] = ToNoteCard(note, isMutating(string(note.ID)))
	}
	return cards
}

func noteMeta(note model.Note) string {
	switch {
	case note.UpdatedAt != "":
		return "Updated " + FormatDate(note.UpdatedAt)
	case note.CreatedAt != "":
		return "Created " + FormatDate(note.CreatedAt)
	default:
		return "—"
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// FormatDate renders a server timestamp for display, or "" when it does not parse.
func FormatDate(value string) string {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Local().Format("Jan 2, 2006 3:04 PM")
		}
	}
	return ""
}

// Sidebar is the filter panel state.
type Sidebar struct {
	Query         string
	SelectedTag   string
	Tags          []string
	TagLinks      []TagLink
	AllNotesURL   string
	PinnedOnly    bool
	FavoritesOnly bool
	Stats         model.NoteStats
}

type TagLink struct {
	Name   string
	URL    string
	Count  int
	Active bool
}

type IndexPage struct {
	Sidebar  Sidebar
	Notes    []NoteCard
	Error    string
	ReturnTo string
}

type NoteFormPage struct {
	IsEdit     bool
	NoteID     string
	Form       usecase.NoteForm
	TagPreview []string
	Errors     usecase.FormErrors
	Error      string
	ReturnTo   string
}

func (p NoteFormPage) Heading() string {
	if p.IsEdit {
		return "Edit Note"
	}
	return "New Note"
}

func (p NoteFormPage) SubmitLabel() string {
	if p.IsEdit {
		return "Save changes"
	}
	return "Create note"
}

func (p NoteFormPage) Action() string {
	if p.IsEdit {
		return "/notes/" + url.PathEscape(p.NoteID)
	}
	return "/notes"
}

// SidebarFromFilter reflects the active filter in the sidebar.
func SidebarFromFilter(filter model.ListFilter, notes []model.Note) Sidebar {
	tags := usecase.UniqueSortedTags(notes)
	stats := usecase.SummarizeNotes(notes)
	links := make([]TagLink, len(tags))
	for i, tag := range tags {
		links[i] = TagLink{
			Name:   tag,
			URL:    FilterURL(filter, tag),
			Count:  stats.TagCounts[tag],
			Active: tag == filter.Tag,
		}
	}
	return Sidebar{
		Query:         filter.Query,
		SelectedTag:   filter.Tag,
		Tags:          tags,
		TagLinks:      links,
		AllNotesURL:   FilterURL(filter, ""),
		PinnedOnly:    filter.Pinned != nil && *filter.Pinned,
		FavoritesOnly: filter.Favorite != nil && *filter.Favorite,
		Stats:         stats,
	}
}

// FilterURL is the list page URL for filter with its tag replaced by tag.
// The page uses the same query parameters as the notes service.
func FilterURL(filter model.ListFilter, tag string) string {
	filter.Tag = tag
	if qs := repository.ListQuery(filter).Encode(); qs != "" {
		return "/?" + qs
	}
	return "/"
}
