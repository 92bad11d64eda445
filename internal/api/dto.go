package api

import (
	"github.com/starford/notestxt/internal/noteservice"
	"github.com/starford/notestxt/internal/query"
)

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	Text string `json:"text" example:"! call the bank #todo"`
}

// UpdateNoteRequest is the request body for replacing a note's text.
type UpdateNoteRequest struct {
	Text string `json:"text" example:"!! call the bank today #todo" validate:"required"`
}

// SetCreatedRequest is the request body for changing a note's creation date.
type SetCreatedRequest struct {
	Created string `json:"created" example:"2024-01-31 09:00" validate:"required"`
}

// NoteDetail is the full note response type (aliased from the domain layer).
type NoteDetail = noteservice.NoteDetail

// SelectResponse is an ordered selection with its tag summary.
type SelectResponse = noteservice.SelectResult

// StatusResponse describes the collection.
type StatusResponse struct {
	noteservice.Status
	Line string `json:"line" example:"12 notes (+ 3 hidden)"`
}

// TagsResponse lists the tag vocabulary and the tag cover of a selection.
type TagsResponse struct {
	Tags      []string         `json:"tags" validate:"required"`
	Strict    []query.TagCount `json:"strict" validate:"required"`
	NonStrict []query.TagCount `json:"non_strict" validate:"required"`
}

// SyncResponse lists the files merged by a sync.
type SyncResponse struct {
	Changed  []string `json:"changed" validate:"required"`
	Conflict bool     `json:"conflict"`
}
