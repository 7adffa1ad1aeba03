package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/xxxsen/mlibrary/internal/model"
)

func TestParseBackfillKinds(t *testing.T) {
	kinds, err := parseBackfillKinds("all")
	require.NoError(t, err)
	require.Equal(t, model.OwnerKinds(), kinds)

	kinds, err = parseBackfillKinds("books, files")
	require.NoError(t, err)
	require.Equal(t, []model.OwnerKind{model.OwnerKindBook, model.OwnerKindFileText}, kinds)

	kinds, err = parseBackfillKinds("")
	require.NoError(t, err)
	require.Len(t, kinds, 4)

	_, err = parseBackfillKinds("chapters")
	require.Error(t, err)
}
