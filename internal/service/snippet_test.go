package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnippetMatchInMiddle(t *testing.T) {
	content := strings.Repeat("a", 150) + "Needle" + strings.Repeat("b", 150)
	got := Snippet(content, "needle", snippetRadius)
	require.True(t, strings.HasPrefix(got, "..."))
	require.True(t, strings.HasSuffix(got, "..."))
	require.Equal(t, 3+100+6+100+3, len(got))
	require.Contains(t, got, "Needle")
}

func TestSnippetMatchAtStart(t *testing.T) {
	got := Snippet("Go is fun", "go", snippetRadius)
	require.Equal(t, "Go is fun", got)
}

func TestSnippetNoMatch(t *testing.T) {
	short := "short text"
	require.Equal(t, short, Snippet(short, "zzz", snippetRadius))

	long := strings.Repeat("x", 250)
	got := Snippet(long, "zzz", snippetRadius)
	require.Equal(t, strings.Repeat("x", 200)+"...", got)
}

func TestSnippetRunes(t *testing.T) {
	content := strings.Repeat("书", 120) + "围棋" + strings.Repeat("书", 120)
	got := Snippet(content, "围棋", 10)
	require.Equal(t, "..."+strings.Repeat("书", 10)+"围棋"+strings.Repeat("书", 10)+"...", got)
}

func TestContainsFold(t *testing.T) {
	require.True(t, containsFold("Introduction to Go", "GO"))
	require.False(t, containsFold("Go", ""))
	require.False(t, containsFold("Go", "Golang"))
}
