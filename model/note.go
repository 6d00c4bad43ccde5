package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NoteID is the server-assigned identifier. Servers may send it as a JSON
// string or number; either way it is held as text.
type NoteID string

func (id *NoteID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NoteID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("note id: %w", err)
	}
	*id = NoteID(n.String())
	return nil
}

func (id NoteID) String() string { return string(id) }

type Note struct {
	ID        NoteID   `json:"id"`
	Title     string   `json:"title"`
	Content   string   `json:"content"`
	Tags      []string `json:"tags"`
	Pinned    bool     `json:"pinned"`
	Favorite  bool     `json:"favorite"`
	CreatedAt string   `json:"created_at,omitempty"`
	UpdatedAt string   `json:"updated_at,omitempty"`
}

// NoteInput is the create request body. Tags is sent as [] when empty.
type NoteInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Tags     []string `json:"tags"`
	Pinned   bool     `json:"pinned"`
	Favorite bool     `json:"favorite"`
}

// NoteUpdate is the update request body; nil fields are left out.
type NoteUpdate struct {
	Title    *string   `json:"title,omitempty"`
	Content  *string   `json:"content,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Pinned   *bool     `json:"pinned,omitempty"`
	Favorite *bool     `json:"favorite,omitempty"`
}

// FullUpdate builds an update that overwrites every editable field.
func FullUpdate(in NoteInput) NoteUpdate {
	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	return NoteUpdate{
		Title:    &in.Title,
		Content:  &in.Content,
		Tags:     &tags,
		Pinned:   &in.Pinned,
		Favorite: &in.Favorite,
	}
}

// ListFilter holds the optional list query. Pinned and Favorite are
// tri-state: nil means "don't filter".
type ListFilter struct {
	Query    string
	Tag      string
	Pinned   *bool
	Favorite *bool
}

func Bool(b bool) *bool { return &b }
