package metadata

import (
	"context"
	"errors"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/mlibrary/internal/model"
)

// Resolver consults the primary source first and only falls back to the
// secondary one when the primary record is missing or lacks a title or
// authors.
type Resolver struct {
	primary   Source
	secondary Source
}

func NewResolver(primary, secondary Source) *Resolver {
	return &Resolver{primary: primary, secondary: secondary}
}

func (r *Resolver) Sources() []Source {
	out := make([]Source, 0, 2)
	for _, src := range []Source{r.primary, r.secondary} {
		if src != nil {
			out = append(out, src)
		}
	}
	return out
}

// Resolve never returns an error. A result without a record means neither
// source produced one; Status tells whether that was a clean miss or a
// failure.
func (r *Resolver) Resolve(ctx context.Context, isbn string) LookupResult {
	logger := logutil.GetLogger(ctx).With(zap.String("isbn", isbn))
	var errs []error

	if r.primary != nil && r.primary.Enabled() {
		res := r.primary.Lookup(ctx, isbn)
		switch {
		case res.Found() && res.Record.IsComplete():
			logger.Debug("metadata resolved", zap.String("source", res.Source))
			return res
		case res.Found():
			logger.Info("primary metadata incomplete, trying secondary", zap.String("source", res.Source))
		case res.Status == StatusFailed:
			errs = append(errs, res.Err)
		}
	}

	if r.secondary != nil && r.secondary.Enabled() {
		res := r.secondary.Lookup(ctx, isbn)
		if res.Found() {
			logger.Debug("metadata resolved", zap.String("source", res.Source))
			return res
		}
		if res.Status == StatusFailed {
			errs = append(errs, res.Err)
		}
	}

	if len(errs) > 0 {
		return LookupResult{Status: StatusFailed, Err: errors.Join(errs...)}
	}
	return LookupResult{Status: StatusAbsent}
}

// Enrich resolves isbn and fills only the fields that are empty locally.
func (r *Resolver) Enrich(ctx context.Context, isbn string, existing *model.BookRecord) *model.BookRecord {
	res := r.Resolve(ctx, isbn)
	if !res.Found() {
		return existing.Clone()
	}
	if existing == nil {
		return res.Record.Clone()
	}
	return MergeRecord(existing, res.Record)
}

// MergeRecord returns a copy of local where every empty or zero field is
// taken from external, if external has a value for it.
func MergeRecord(local, external *model.BookRecord) *model.BookRecord {
	out := local.Clone()
	if out == nil {
		return external.Clone()
	}
	if external == nil {
		return out
	}
	fill := func(dst *string, src string) {
		if *dst == "" && src != "" {
			*dst = src
		}
	}
	fill(&out.ISBN13, external.ISBN13)
	fill(&out.ISBN10, external.ISBN10)
	fill(&out.Title, external.Title)
	fill(&out.Subtitle, external.Subtitle)
	fill(&out.Description, external.Description)
	fill(&out.Publisher, external.Publisher)
	fill(&out.PublicationDate, external.PublicationDate)
	fill(&out.Language, external.Language)
	fill(&out.CoverURL, external.CoverURL)
	fill(&out.Source, external.Source)
	if out.PageCount == 0 && external.PageCount > 0 {
		out.PageCount = external.PageCount
	}
	if len(out.Authors) == 0 && len(external.Authors) > 0 {
		out.Authors = append([]string(nil), external.Authors...)
	}
	return out
}
