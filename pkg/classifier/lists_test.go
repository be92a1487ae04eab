package classifier_test

import (
	"detector/pkg/classifier"
	"detector/pkg/domain"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultLists(t *testing.T) {
	l := classifier.DefaultLists()
	require.Contains(t, l.Official, "shueisha.co.jp")
	require.Contains(t, l.SNS, "x.com")
	require.NotEmpty(t, l.TextSearchPatterns)
	require.NotEmpty(t, l.IllegalKeywords)

	c := classifier.New(l)
	require.Equal(t, domain.ClassificationOfficial, c.Classify("https://www.shueisha.co.jp/xyz"))
}

func TestLoadLists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lists.yaml")
	require.NoError(t, os.WriteFile(path, []byte("official:\n  - example.jp\nsns:\n  - social.example\n"), 0o600))

	l, err := classifier.LoadLists(path)
	require.NoError(t, err)
	require.Equal(t, []string{"example.jp"}, l.Official)
	require.Equal(t, []string{"social.example"}, l.SNS)
	require.Empty(t, l.PremiumOfficial)

	l, err = classifier.LoadLists("")
	require.NoError(t, err)
	require.Equal(t, classifier.DefaultLists(), l)

	_, err = classifier.LoadLists(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = classifier.ParseLists([]byte("official: [unterminated"))
	require.Error(t, err)
}
