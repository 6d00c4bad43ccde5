package dto

import (
	"testing"

	"notesweb/model"

	"github.com/stretchr/testify/assert"
)

func TestToNoteCardTruncatesTags(t *testing.T) {
	note := model.Note{
		ID:   "n1",
		Tags: []string{"a", "b", "c", "d", "e", "f", "g", "h"},
	}
	card := ToNoteCard(note, false)

	assert.Equal(t, []string{"a", "b", "c", "d", "e", "f"}, card.Tags)
	assert.Equal(t, 2, card.MoreTags)

	card.Tags[0] = "changed"
	assert.Equal(t, "a", note.Tags[0], "card must not alias the note's tags")
}

func TestToNoteCardMeta(t *testing.T) {
	assert.Equal(t, "—", ToNoteCard(model.Note{}, false).Meta)

	created := ToNoteCard(model.Note{CreatedAt: "2024-05-01T10:00:00Z"}, false)
	assert.Contains(t, created.Meta, "Created ")
	assert.Contains(t, created.Meta, "2024")

	updated := ToNoteCard(model.Note{CreatedAt: "2024-05-01T10:00:00Z", UpdatedAt: "2024-06-01T10:00:00.123456"}, false)
	assert.Contains(t, updated.Meta, "Updated ")

	assert.Equal(t, "Updated ", ToNoteCard(model.Note{UpdatedAt: "yesterday"}, false).Meta)
}

func TestFormatDate(t *testing.T) {
	assert.NotEmpty(t, FormatDate("2024-05-01T10:00:00Z"))
	assert.NotEmpty(t, FormatDate("2024-05-01 10:00:00"))
	assert.NotEmpty(t, FormatDate("2024-05-01"))
	assert.Empty(t, FormatDate(""))
	assert.Empty(t, FormatDate("not a date"))
}

func TestToNoteCardsMarksMutating(t *testing.T) {
	notes := []model.Note{{ID: "a"}, {ID: "b"}}
	cards := ToNoteCards(notes, func(id string) bool { return id == "b" })
	assert.False(t, cards[0].IsMutating)
	assert.True(t, cards[1].IsMutating)
}

func TestNoteFormPageLabels(t *testing.T) {
	create := NoteFormPage{}
	assert.Equal(t, "New Note", create.Heading())
	assert.Equal(t, "Create note", create.SubmitLabel())
	assert.Equal(t, "/notes", create.Action())

	edit := NoteFormPage{IsEdit: true, NoteID: "a b"}
	assert.Equal(t, "Edit Note", edit.Heading())
	assert.Equal(t, "Save changes", edit.SubmitLabel())
	assert.Equal(t, "/notes/a%20b", edit.Action())
}

func TestSidebarFromFilter(t *testing.T) {
	filter := model.ListFilter{Query: "q", Tag: "x", Pinned: model.Bool(true)}
	notes := []model.Note{{Tags: []string{"y", "x"}}}
	sidebar := SidebarFromFilter(filter, notes)

	assert.Equal(t, "q", sidebar.Query)
	assert.Equal(t, "x", sidebar.SelectedTag)
	assert.Equal(t, []string{"x", "y"}, sidebar.Tags)
	assert.True(t, sidebar.PinnedOnly)
	assert.False(t, sidebar.FavoritesOnly)
}

func TestSidebarTagLinksKeepOtherFilters(t *testing.T) {
	filter := model.ListFilter{Query: "milk", Tag: "x", Favorite: model.Bool(true)}
	sidebar := SidebarFromFilter(filter, []model.Note{{Tags: []string{"x", "to do"}}, {Tags: []string{"x"}}})

	assert.Equal(t, "/?favorite=true&q=milk", sidebar.AllNotesURL)
	assert.Equal(t, []TagLink{
		{Name: "to do", URL: "/?favorite=true&q=milk&tag=to+do", Count: 1},
		{Name: "x", URL: "/?favorite=true&q=milk&tag=x", Count: 2, Active: true},
	}, sidebar.TagLinks)
	assert.Equal(t, 2, sidebar.Stats.Total)
	assert.Equal(t, "/", FilterURL(model.ListFilter{}, ""))
}
