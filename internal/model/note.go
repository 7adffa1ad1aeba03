package model

type Note struct {
	ID              string `json:"id"`
	LibraryBookID   string `json:"library_book_id"`
	LibraryID       string `json:"library_id"`
	Title           string `json:"title"`
	ContentMarkdown string `json:"content_markdown"`
	Ctime           int64  `json:"ctime"`
	Mtime           int64  `json:"mtime"`
}

type Review struct {
	ID            string `json:"id"`
	LibraryBookID string `json:"library_book_id"`
	LibraryID     string `json:"library_id"`
	Title         string `json:"title"`
	BodyMarkdown  string `json:"body_markdown"`
	Ctime         int64  `json:"ctime"`
	Mtime         int64  `json:"mtime"`
}

type BookFile struct {
	ID            string `json:"id"`
	LibraryBookID string `json:"library_book_id"`
	LibraryID     string `json:"library_id"`
	BookTitle     string `json:"book_title"`
	FileType      string `json:"file_type"`
	FilePath      string `json:"file_path"`
	TextExtracted bool   `json:"text_extracted"`
	ExtractedText string `json:"extracted_text,omitempty"`
	Ctime         int64  `json:"ctime"`
}
