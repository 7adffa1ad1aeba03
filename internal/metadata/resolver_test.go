package metadata

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mlibrary/internal/model"
)

type fakeSource struct {
	name    string
	enabled bool
	result  LookupResult
	calls   int
}

func (f *fakeSource) Name() string  { return f.name }
func (f *fakeSource) Enabled() bool { return f.enabled }
func (f *fakeSource) Lookup(ctx context.Context, isbn string) LookupResult {
	f.calls++
	return f.result
}

func completeRecord(source string) *model.BookRecord {
	return &model.BookRecord{Title: "Dune", Authors: []string{"Frank Herbert"}, Language: "en", Source: source}
}

func TestResolvePrimaryCompleteSkipsSecondary(t *testing.T) {
	primary := &fakeSource{name: "p", enabled: true, result: found("p", completeRecord("p"))}
	secondary := &fakeSource{name: "s", enabled: true, result: found("s", completeRecord("s"))}
	res := NewResolver(primary, secondary).Resolve(context.Background(), "9780441013593")
	require.True(t, res.Found())
	assert.Equal(t, "p", res.Record.Source)
	assert.Equal(t, 0, secondary.calls)
}

func TestResolvePrimaryIncompleteUsesSecondary(t *testing.T) {
	partial := &model.BookRecord{Title: "Dune", Authors: []string{}, Source: "p"}
	primary := &fakeSource{name: "p", enabled: true, result: found("p", partial)}
	// secondary output is returned even when it is itself incomplete
	secondaryRec := &model.BookRecord{Title: "", Authors: []string{}, Publisher: "Ace", Source: "s"}
	secondary := &fakeSource{name: "s", enabled: true, result: found("s", secondaryRec)}
	res := NewResolver(primary, secondary).Resolve(context.Background(), "9780441013593")
	require.True(t, res.Found())
	assert.Equal(t, "s", res.Record.Source)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestResolvePrimaryMissingUsesSecondary(t *testing.T) {
	primary := &fakeSource{name: "p", enabled: true, result: absent("p")}
	secondary := &fakeSource{name: "s", enabled: true, result: found("s", completeRecord("s"))}
	res := NewResolver(primary, secondary).Resolve(context.Background(), "x")
	require.True(t, res.Found())
	assert.Equal(t, "s", res.Source)
}

func TestResolveDisabledPrimaryNotCalled(t *testing.T) {
	primary := &fakeSource{name: "p", enabled: false, result: found("p", completeRecord("p"))}
	secondary := &fakeSource{name: "s", enabled: true, result: found("s", completeRecord("s"))}
	res := NewResolver(primary, secondary).Resolve(context.Background(), "x")
	require.True(t, res.Found())
	assert.Equal(t, 0, primary.calls)
	assert.Equal(t, "s", res.Source)
}

func TestResolveNothingFound(t *testing.T) {
	primary := &fakeSource{name: "p", enabled: true, result: absent("p")}
	secondary := &fakeSource{name: "s", enabled: true, result: absent("s")}
	res := NewResolver(primary, secondary).Resolve(context.Background(), "x")
	assert.False(t, res.Found())
	assert.Equal(t, StatusAbsent, res.Status)
	assert.NoError(t, res.Err)
}

func TestResolveFailureKeepsCause(t *testing.T) {
	cause := errors.New("timeout")
	primary := &fakeSource{name: "p", enabled: true, result: failed("p", cause)}
	secondary := &fakeSource{name: "s", enabled: true, result: absent("s")}
	res := NewResolver(primary, secondary).Resolve(context.Background(), "x")
	assert.False(t, res.Found())
	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, cause)
}

func TestEnrichFillsOnlyEmptyFields(t *testing.T) {
	external := &model.BookRecord{
		Title:       "External Title",
		Description: "External description",
		Publisher:   "Ace",
		PageCount:   500,
		Authors:     []string{"Frank Herbert"},
		Language:    "eng",
		Source:      SourceGoogleBooks,
	}
	primary := &fakeSource{name: "p", enabled: true, result: found("p", external)}
	local := &model.BookRecord{
		Title:    "Local Title",
		Language: "en",
		Authors:  []string{},
		Source:   model.BookSourceManual,
	}
	out := NewResolver(primary, nil).Enrich(context.Background(), "x", local)
	require.NotNil(t, out)
	assert.Equal(t, "Local Title", out.Title)
	assert.Equal(t, "External description", out.Description)
	assert.Equal(t, "Ace", out.Publisher)
	assert.Equal(t, 500, out.PageCount)
	assert.Equal(t, []string{"Frank Herbert"}, out.Authors)
	assert.Equal(t, "en", out.Language)
	assert.Equal(t, model.BookSourceManual, out.Source)
	assert.Empty(t, local.Description)
}

func TestEnrichWithoutExternalDataReturnsLocal(t *testing.T) {
	primary := &fakeSource{name: "p", enabled: true, result: absent("p")}
	local := &model.BookRecord{Title: "Local", Authors: []string{"A"}}
	out := NewResolver(primary, nil).Enrich(context.Background(), "x", local)
	assert.Equal(t, local, out)
}
