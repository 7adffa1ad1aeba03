package model

import (
	"strconv"
	"strings"
)

type Author struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Ctime int64  `json:"ctime"`
	Mtime int64  `json:"mtime"`
}

type Book struct {
	ID              string   `json:"id"`
	ISBN13          string   `json:"primary_isbn_13,omitempty"`
	ISBN10          string   `json:"isbn_10,omitempty"`
	Title           string   `json:"title"`
	Subtitle        string   `json:"subtitle,omitempty"`
	Description     string   `json:"description,omitempty"`
	Publisher       string   `json:"publisher,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty"`
	PageCount       int      `json:"page_count,omitempty"`
	Language        string   `json:"language"`
	CoverURL        string   `json:"cover_url,omitempty"`
	Source          string   `json:"source"`
	Authors         []Author `json:"authors"`
	Ctime           int64    `json:"ctime"`
	Mtime           int64    `json:"mtime"`
}

const BookSourceManual = "manual"

func (b *Book) AuthorNames() []string {
	names := make([]string, 0, len(b.Authors))
	for _, a := range b.Authors {
		names = append(names, a.Name)
	}
	return names
}

// PublicationYear reads the year out of a YYYY-MM-DD publication date.
func (b *Book) PublicationYear() (int, bool) {
	if len(b.PublicationDate) < 4 {
		return 0, false
	}
	year, err := strconv.Atoi(b.PublicationDate[:4])
	if err != nil {
		return 0, false
	}
	return year, true
}

// BookRecord is the canonical shape every external bibliographic source is
// normalized into. It is built fresh per lookup and never mutated after.
type BookRecord struct {
	ISBN13          string   `json:"primary_isbn_13,omitempty"`
	ISBN10          string   `json:"isbn_10,omitempty"`
	Title           string   `json:"title"`
	Subtitle        string   `json:"subtitle,omitempty"`
	Description     string   `json:"description,omitempty"`
	Publisher       string   `json:"publisher,omitempty"`
	PublicationDate string   `json:"publication_date,omitempty"`
	PageCount       int      `json:"page_count,omitempty"`
	Language        string   `json:"language"`
	CoverURL        string   `json:"cover_url,omitempty"`
	Authors         []string `json:"authors"`
	Source          string   `json:"source"`
}

// IsComplete reports whether the record carries the essential fields:
// a non-empty title and at least one author.
func (r *BookRecord) IsComplete() bool {
	if r == nil {
		return false
	}
	if strings.TrimSpace(r.Title) == "" {
		return false
	}
	for _, name := range r.Authors {
		if strings.TrimSpace(name) != "" {
			return true
		}
	}
	return false
}

func (r *BookRecord) Clone() *BookRecord {
	if r == nil {
		return nil
	}
	out := *r
	if r.Authors != nil {
		out.Authors = append([]string(nil), r.Authors...)
	}
	return &out
}

func RecordFromBook(b *Book) *BookRecord {
	if b == nil {
		return nil
	}
	return &BookRecord{
		ISBN13:          b.ISBN13,
		ISBN10:          b.ISBN10,
		Title:           b.Title,
		Subtitle:        b.Subtitle,
		Description:     b.Description,
		Publisher:       b.Publisher,
		PublicationDate: b.PublicationDate,
		PageCount:       b.PageCount,
		Language:        b.Language,
		CoverURL:        b.CoverURL,
		Authors:         b.AuthorNames(),
		Source:          b.Source,
	}
}
