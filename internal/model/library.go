package model

type LibraryBook struct {
	ID          string `json:"id"`
	LibraryID   string `json:"library_id"`
	BookID      string `json:"book_id"`
	CustomTitle string `json:"custom_title,omitempty"`
	AddedAt     int64  `json:"added_at"`
	Book        *Book  `json:"book,omitempty"`
}
