package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"notesweb/middleware"
	"notesweb/model"
	"notesweb/repository"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Messages shown to the user for the use-case errors below.
const (
	MutationInProgressMessage = "This note is already being updated."
	NoteNotFoundMessage       = "Note not found"
	UnexpectedPayloadMessage  = "Unexpected response from the notes service."
)

var (
	ErrMutationInProgress = errors.New("note mutation already in progress")
	ErrNoteNotFound       = errors.New("note not found")
	ErrUnexpectedPayload  = errors.New("unexpected notes payload")
)

// UserMessage is the text the pages show for err. Executor and form errors
// already carry user-facing text and pass through unchanged.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrMutationInProgress):
		return MutationInProgressMessage
	case errors.Is(err, ErrNoteNotFound):
		return NoteNotFoundMessage
	case errors.Is(err, ErrUnexpectedPayload):
		return UnexpectedPayloadMessage
	default:
		return err.Error()
	}
}

// NotesAPI is the remote notes service as seen by the use cases.
// *repository.NotesRepo satisfies it.
type NotesAPI interface {
	Health(ctx context.Context) (*repository.Payload, error)
	ListNotes(ctx context.Context, filter model.ListFilter) (*repository.Payload, error)
	CreateNote(ctx context.Context, in model.NoteInput) (*repository.Payload, error)
	UpdateNote(ctx context.Context, id string, update model.NoteUpdate) (*repository.Payload, error)
	DeleteNote(ctx context.Context, id string) (*repository.Payload, error)
	TogglePinned(ctx context.Context, id string, pinned bool) (*repository.Payload, error)
	ToggleFavorite(ctx context.Context, id string, favorite bool) (*repository.Payload, error)
}

type NotesService struct {
	NotesAPI NotesAPI
	inFlight *inFlightGuard
}

func NewNotesService(api NotesAPI) *NotesService {
	return &NotesService{
		NotesAPI: api,
		inFlight: newInFlightGuard(),
	}
}

func (svc *NotesService) Health(ctx context.Context) error {
	_, err := svc.NotesAPI.Health(ctx)
	return err
}

// ListNotes fetches notes matching filter. Nothing is cached; every call
// goes to the notes service.
func (svc *NotesService) ListNotes(ctx context.Context, filter model.ListFilter) ([]model.Note, error) {
	payload, err := svc.NotesAPI.ListNotes(ctx, filter)
	if err != nil {
		middleware.TrackError("api")
		return nil, err
	}
	return DecodeNotes(payload)
}

// FindNote looks a note up by id through the list endpoint; the notes
// service has no single-note read.
func (svc *NotesService) FindNote(ctx context.Context, id string) (model.Note, error) {
	notes, err := svc.ListNotes(ctx, model.ListFilter{})
	if err != nil {
		return model.Note{}, err
	}
	for _, note := range notes {
		if string(note.ID) == id {
			return note, nil
		}
	}
	return model.Note{}, ErrNoteNotFound
}

func (svc *NotesService) CreateNote(ctx context.Context, form NoteForm) (*repository.Payload, error) {
	if err := form.Validate(); err != nil {
		middleware.TrackError("validation")
		return nil, err
	}
	payload, err := svc.NotesAPI.CreateNote(ctx, form.Input())
	return svc.done("create", payload, err)
}

func (svc *NotesService) UpdateNote(ctx context.Context, id string, form NoteForm) (*repository.Payload, error) {
	if err := form.Validate(); err != nil {
		middleware.TrackError("validation")
		return nil, err
	}
	return svc.mutate(id, "update", func() (*repository.Payload, error) {
		return svc.NotesAPI.UpdateNote(ctx, id, model.FullUpdate(form.Input()))
	})
}

func (svc *NotesService) DeleteNote(ctx context.Context, id string) (*repository.Payload, error) {
	return svc.mutate(id, "delete", func() (*repository.Payload, error) {
		return svc.NotesAPI.DeleteNote(ctx, id)
	})
}

// TogglePinned flips the pinned flag from its current value.
func (svc *NotesService) TogglePinned(ctx context.Context, id string, current bool) (*repository.Payload, error) {
	return svc.mutate(id, "pin", func() (*repository.Payload, error) {
		return svc.NotesAPI.TogglePinned(ctx, id, !current)
	})
}

// ToggleFavorite flips the favorite flag from its current value.
func (svc *NotesService) ToggleFavorite(ctx context.Context, id string, current bool) (*repository.Payload, error) {
	return svc.mutate(id, "favorite", func() (*repository.Payload, error) {
		return svc.NotesAPI.ToggleFavorite(ctx, id, !current)
	})
}

// IsMutating reports whether a mutation of note id is pending.
func (svc *NotesService) IsMutating(id string) bool {
	return svc.inFlight.busy(id)
}

// mutate runs call unless another mutation of the same note is pending.
func (svc *NotesService) mutate(id, operation string, call func() (*repository.Payload, error)) (*repository.Payload, error) {
	release, ok := svc.inFlight.acquire(id)
	if !ok {
		middleware.TrackError("conflict")
		return nil, ErrMutationInProgress
	}
	defer release()

	payload, err := call()
	return svc.done(operation, payload, err)
}

func (svc *NotesService) done(operation string, payload *repository.Payload, err error) (*repository.Payload, error) {
	if err != nil {
		middleware.TrackError("api")
		return nil, err
	}
	middleware.TrackNoteOperation(operation)
	return payload, nil
}

// DecodeNotes reads a list payload. It accepts a bare array or an object
// holding the array under "notes", "data" or "items", with "data" allowed to
// wrap one more such object.
func DecodeNotes(payload *repository.Payload) ([]model.Note, error) {
	if payload == nil || payload.IsNull() {
		return []model.Note{}, nil
	}
	if !payload.IsJSON() {
		return nil, ErrUnexpectedPayload
	}
	notes, ok := decodeNotesRaw(payload.Raw(), 1)
	if !ok {
		return nil, ErrUnexpectedPayload
	}
	return notes, nil
}

func decodeNotesRaw(raw json.RawMessage, depth int) ([]model.Note, bool) {
	var notes []model.Note
	if err := json.Unmarshal(raw, &notes); err == nil {
		if notes == nil {
			notes = []model.Note{}
		}
		return notes, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}
	for _, key := range []string{"notes", "items", "data"} {
		inner, ok := wrapper[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(inner, &notes); err == nil {
			if notes == nil {
				notes = []model.Note{}
			}
			return notes, true
		}
		if key == "data" && depth > 0 {
			return decodeNotesRaw(inner, depth-1)
		}
	}
	return nil, false
}

// Stats summarises the notes matching filter.
func (svc *NotesService) Stats(ctx context.Context, filter model.ListFilter) (model.NoteStats, error) {
	notes, err := svc.ListNotes(ctx, filter)
	if err != nil {
		return model.NoteStats{}, err
	}
	return SummarizeNotes(notes), nil
}

func SummarizeNotes(notes []model.Note) model.NoteStats {
	stats := model.NoteStats{
		Total:     len(notes),
		TagCounts: make(map[string]int),
	}
	for _, note := range notes {
		if note.Pinned {
			stats.Pinned++
		}
		if note.Favorite {
			stats.Favorites++
		}
		for _, tag := range note.Tags {
			stats.TagCounts[tag]++
		}
	}
	return stats
}

// UniqueSortedTags collects every tag used by notes, sorted the way a reader
// expects rather than by byte order.
func UniqueSortedTags(notes []model.Note) []string {
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, note := range notes {
		for _, tag := range note.Tags {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	collate.New(language.Und).SortStrings(tags)
	return tags
}
