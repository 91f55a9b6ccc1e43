package models

// DefaultNoteCategory is the category given to notes created from the board.
const DefaultNoteCategory = "General"

// InspirationNote is an idea pinned to the inspiration board.
type InspirationNote struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	Category string `json:"category"`

	// AISuggestion holds the advisor's analysis of the idea, if requested.
	AISuggestion string `json:"aiSuggestion,omitempty"`

	// ImageURL is an optional image reference.
	ImageURL string `json:"imageUrl,omitempty"`
}
