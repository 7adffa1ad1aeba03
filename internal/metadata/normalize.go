package metadata

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/books/v1"

	"github.com/xxxsen/mlibrary/internal/model"
	"github.com/xxxsen/mlibrary/internal/pkg/timeutil"
)

const defaultLanguage = "en"

var isbnCleaner = strings.NewReplacer("-", "", " ", "")

func CleanISBN(isbn string) string {
	return isbnCleaner.Replace(strings.TrimSpace(isbn))
}

// fallbackISBN classifies the queried identifier purely by its length.
func fallbackISBN(queried string) (isbn13 string, isbn10 string) {
	switch len(queried) {
	case 13:
		return queried, ""
	case 10:
		return "", queried
	default:
		return "", ""
	}
}

// NormalizeDate pads year and year-month values to a full date. Anything
// that does not parse yields "".
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	var candidate string
	switch len(raw) {
	case 4:
		candidate = raw + "-01-01"
	case 7:
		candidate = raw + "-01"
	case 10:
		candidate = raw
	default:
		return ""
	}
	t, err := time.Parse(timeutil.DateLayout, candidate)
	if err != nil {
		return ""
	}
	return t.Format(timeutil.DateLayout)
}

func secureCoverURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if strings.HasPrefix(raw, "http://") {
		raw = "https://" + strings.TrimPrefix(raw, "http://")
	}
	if idx := strings.Index(raw, "&zoom="); idx >= 0 {
		raw = raw[:idx]
	}
	return raw
}

func cleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		out = append(out, name)
	}
	return out
}

func normalizeGoogleVolume(info *books.VolumeVolumeInfo, queried string) *model.BookRecord {
	rec := &model.BookRecord{
		Language: defaultLanguage,
		Authors:  []string{},
		Source:   SourceGoogleBooks,
	}
	if info == nil {
		rec.ISBN13, rec.ISBN10 = fallbackISBN(queried)
		return rec
	}
	for _, ident := range info.IndustryIdentifiers {
		if ident == nil {
			continue
		}
		switch ident.Type {
		case "ISBN_13":
			if rec.ISBN13 == "" {
				rec.ISBN13 = strings.TrimSpace(ident.Identifier)
			}
		case "ISBN_10":
			if rec.ISBN10 == "" {
				rec.ISBN10 = strings.TrimSpace(ident.Identifier)
			}
		}
	}
	if rec.ISBN13 == "" && rec.ISBN10 == "" {
		rec.ISBN13, rec.ISBN10 = fallbackISBN(queried)
	}
	rec.Title = info.Title
	rec.Subtitle = info.Subtitle
	rec.Description = info.Description
	rec.Publisher = info.Publisher
	rec.PublicationDate = NormalizeDate(info.PublishedDate)
	if info.PageCount > 0 {
		rec.PageCount = int(info.PageCount)
	}
	if lang := strings.TrimSpace(info.Language); lang != "" {
		rec.Language = lang
	}
	rec.Authors = cleanNames(info.Authors)
	rec.CoverURL = secureCoverURL(largestGoogleImage(info.ImageLinks))
	return rec
}

func largestGoogleImage(links *books.VolumeVolumeInfoImageLinks) string {
	if links == nil {
		return ""
	}
	for _, candidate := range []string{
		links.ExtraLarge,
		links.Large,
		links.Medium,
		links.Small,
		links.Thumbnail,
		links.SmallThumbnail,
	} {
		if strings.TrimSpace(candidate) != "" {
			return candidate
		}
	}
	return ""
}

// rawObject keeps each top-level field undecoded so one malformed field
// cannot spoil the rest of the record.
type rawObject map[string]json.RawMessage

func (o rawObject) str(key string) string {
	var s string
	if err := json.Unmarshal(o[key], &s); err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func (o rawObject) firstString(key string) string {
	var list []string
	if err := json.Unmarshal(o[key], &list); err != nil {
		return ""
	}
	for _, item := range list {
		if item = strings.TrimSpace(item); item != "" {
			return item
		}
	}
	return ""
}

func (o rawObject) integer(key string) int {
	var n json.Number
	if err := json.Unmarshal(o[key], &n); err != nil {
		return 0
	}
	v, err := n.Int64()
	if err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return 0
		}
		v = int64(f)
	}
	return int(v)
}

// text handles fields that come either as a plain string or as
// {"type": "/type/text", "value": "..."}.
func (o rawObject) text(key string) string {
	if s := o.str(key); s != "" {
		return s
	}
	var typed struct {
		Value string `json:"value"`
	}
	if err := json.Unmarshal(o[key], &typed); err != nil {
		return ""
	}
	return strings.TrimSpace(typed.Value)
}

// firstName handles lists of either strings or {"name": "..."} objects.
func (o rawObject) firstName(key string) string {
	if s := o.firstString(key); s != "" {
		return s
	}
	var list []struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(o[key], &list); err != nil {
		return ""
	}
	for _, item := range list {
		if name := strings.TrimSpace(item.Name); name != "" {
			return name
		}
	}
	return ""
}

func (o rawObject) keys(key string) []string {
	var list []struct {
		Key string `json:"key"`
	}
	if err := json.Unmarshal(o[key], &list); err != nil {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if k := strings.TrimSpace(item.Key); k != "" {
			out = append(out, k)
		}
	}
	return out
}

func (o rawObject) firstCoverID(key string) (int64, bool) {
	var ids []json.Number
	if err := json.Unmarshal(o[key], &ids); err != nil {
		return 0, false
	}
	for _, id := range ids {
		v, err := id.Int64()
		if err == nil && v > 0 {
			return v, true
		}
	}
	return 0, false
}

// authorLookup resolves an Open Library author key (e.g. "/authors/OL1A")
// to a display name.
type authorLookup func(ctx context.Context, key string) (string, error)

func normalizeOpenLibraryEdition(ctx context.Context, raw rawObject, queried string, lookupAuthor authorLookup) *model.BookRecord {
	rec := &model.BookRecord{
		Language: defaultLanguage,
		Authors:  []string{},
		Source:   SourceOpenLibrary,
	}
	rec.ISBN13 = raw.firstString("isbn_13")
	rec.ISBN10 = raw.firstString("isbn_10")
	if rec.ISBN13 == "" && rec.ISBN10 == "" {
		rec.ISBN13, rec.ISBN10 = fallbackISBN(queried)
	}
	rec.Title = raw.str("title")
	rec.Subtitle = raw.str("subtitle")
	rec.Description = raw.text("description")
	rec.Publisher = raw.firstName("publishers")
	rec.PublicationDate = NormalizeDate(raw.str("publish_date"))
	rec.PageCount = raw.integer("number_of_pages")
	if rec.PageCount <= 0 {
		rec.PageCount = raw.integer("number_of_pages_median")
	}
	if rec.PageCount < 0 {
		rec.PageCount = 0
	}
	if langs := raw.keys("languages"); len(langs) > 0 {
		parts := strings.Split(langs[0], "/")
		if code := strings.TrimSpace(parts[len(parts)-1]); code != "" {
			rec.Language = code
		}
	}
	if coverID, ok := raw.firstCoverID("covers"); ok {
		rec.CoverURL = "https://covers.openlibrary.org/b/id/" + strconv.FormatInt(coverID, 10) + "-L.jpg"
	}
	if lookupAuthor != nil {
		for _, key := range raw.keys("authors") {
			name, err := lookupAuthor(ctx, key)
			if err != nil {
				continue
			}
			if name = strings.TrimSpace(name); name != "" {
				rec.Authors = append(rec.Authors, name)
			}
		}
	}
	return rec
}
