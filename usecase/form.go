package usecase

import (
	"errors"
	"strings"

	"notesweb/model"
	"notesweb/utils"

	"github.com/go-playground/validator/v10"
)

const (
	MaxTitleLength   = 120
	MaxContentLength = 5000
)

// NoteForm is what the create/edit form submits. The binding rules are
// checked by gin's ShouldBind and again by Validate.
type NoteForm struct {
	Title    string `form:"title" binding:"notblank,max=120"`
	Content  string `form:"content" binding:"notblank,max=5000"`
	TagsText string `form:"tags"`
	Pinned   bool   `form:"pinned"`
	Favorite bool   `form:"favorite"`
}

// FormErrors maps form fields to the message shown next to them.
type FormErrors map[string]string

func (e FormErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, field := range []string{"title", "content"} {
		if msg, ok := e[field]; ok {
			msgs = append(msgs, msg)
		}
	}
	return strings.Join(msgs, " ")
}

var fieldMessages = map[string]map[string]string{
	"Title": {
		"notblank": "Title is required.",
		"max":      "Title must be at most 120 characters.",
	},
	"Content": {
		"notblank": "Note text is required.",
		"max":      "Note text must be at most 5000 characters.",
	},
}

// Validate checks the required fields. It returns FormErrors or nil.
func (f NoteForm) Validate() error {
	err := utils.Validate.Struct(f)
	if err == nil {
		return nil
	}
	if formErrs, ok := FormErrorsFrom(err); ok {
		return formErrs
	}
	return err
}

// FormErrorsFrom maps validator failures on NoteForm to the messages shown
// beside the fields.
func FormErrorsFrom(err error) (FormErrors, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}
	out := FormErrors{}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Field()][fe.Tag()]
		if !ok {
			return nil, false
		}
		key := strings.ToLower(fe.Field())
		if _, seen := out[key]; !seen {
			out[key] = msg
		}
	}
	return out, true
}

// Tags returns the normalized tags the form would submit.
func (f NoteForm) Tags() []string {
	return utils.NormalizeTags(f.TagsText)
}

// Input builds the create/update body: title and content trimmed, tags normalized.
func (f NoteForm) Input() model.NoteInput {
	return model.NoteInput{
		Title:    strings.TrimSpace(f.Title),
		Content:  strings.TrimSpace(f.Content),
		Tags:     f.Tags(),
		Pinned:   f.Pinned,
		Favorite: f.Favorite,
	}
}

// FormFromNote pre-fills the edit form. Tags are shown in normalized form so
// saving an untouched form sends what the preview shows.
func FormFromNote(note model.Note) NoteForm {
	return NoteForm{
		Title:    note.Title,
		Content:  note.Content,
		TagsText: utils.JoinTags(utils.NormalizeTagList(note.Tags)),
		Pinned:   note.Pinned,
		Favorite: note.Favorite,
	}
}
