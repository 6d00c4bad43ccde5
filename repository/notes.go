package repository

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"notesweb/model"
)

// NotesRepo maps each notes use case onto one request. It adds no retry,
// validation or caching: payloads and errors come back exactly as the
// Requester produced them.
//
// The paths below are the intended contract of the notes service; only the
// root health check is confirmed to exist.
type NotesRepo struct {
	requester Requester
}

func NewNotesRepo(requester Requester) *NotesRepo {
	return &NotesRepo{requester: requester}
}

func (r *NotesRepo) Health(ctx context.Context) (*Payload, error) {
	return r.requester.Do(ctx, "/", RequestOptions{Method: http.MethodGet, Operation: "health"})
}

func (r *NotesRepo) ListNotes(ctx context.Context, filter model.ListFilter) (*Payload, error) {
	path := "/notes"
	if qs := ListQuery(filter).Encode(); qs != "" {
		path += "?" + qs
	}
	return r.requester.Do(ctx, path, RequestOptions{Method: http.MethodGet, Operation: "list"})
}

func (r *NotesRepo) CreateNote(ctx context.Context, in model.NoteInput) (*Payload, error) {
	if in.Tags == nil {
		in.Tags = []string{}
	}
	return r.requester.Do(ctx, "/notes", RequestOptions{
		Method:    http.MethodPost,
		Body:      in,
		Operation: "create",
	})
}

func (r *NotesRepo) UpdateNote(ctx context.Context, id string, update model.NoteUpdate) (*Payload, error) {
	return r.requester.Do(ctx, notePath(id), RequestOptions{
		Method:    http.MethodPut,
		Body:      update,
		Operation: "update",
	})
}

func (r *NotesRepo) DeleteNote(ctx context.Context, id string) (*Payload, error) {
	return r.requester.Do(ctx, notePath(id), RequestOptions{
		Method:    http.MethodDelete,
		Operation: "delete",
	})
}

func (r *NotesRepo) TogglePinned(ctx context.Context, id string, pinned bool) (*Payload, error) {
	return r.requester.Do(ctx, notePath(id)+"/pin", RequestOptions{
		Method:    http.MethodPost,
		Body:      map[string]bool{"pinned": pinned},
		Operation: "pin",
	})
}

func (r *NotesRepo) ToggleFavorite(ctx context.Context, id string, favorite bool) (*Payload, error) {
	return r.requester.Do(ctx, notePath(id)+"/favorite", RequestOptions{
		Method:    http.MethodPost,
		Body:      map[string]bool{"favorite": favorite},
		Operation: "favorite",
	})
}

// ListQuery encodes filter as query parameters. Empty strings and unset
// flags are left out.
func ListQuery(filter model.ListFilter) url.Values {
	params := url.Values{}
	if filter.Query != "" {
		params.Set("q", filter.Query)
	}
	if filter.Tag != "" {
		params.Set("tag", filter.Tag)
	}
	if filter.Pinned != nil {
		params.Set("pinned", strconv.FormatBool(*filter.Pinned))
	}
	if filter.Favorite != nil {
		params.Set("favorite", strconv.FormatBool(*filter.Favorite))
	}
	return params
}

func notePath(id string) string {
	return "/notes/" + EscapeID(id)
}

// EscapeID percent-encodes id the way encodeURIComponent does: everything
// except A-Z a-z 0-9 and - _ . ! ~ * ' ( ) is escaped byte by byte.
func EscapeID(id string) string {
	const upperhex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(id))
	for i := 0; i < len(id); i++ {
		c := id[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
