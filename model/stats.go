package model

// NoteStats summarises a list of notes.
type NoteStats struct {
	Total     int            `json:"total"`
	Pinned    int            `json:"pinned"`
	Favorites int            `json:"favorites"`
	TagCounts map[string]int `json:"tag_counts"`
}
