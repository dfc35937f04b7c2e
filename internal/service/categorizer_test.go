package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jjenkins/onthisday/internal/model"
)

func TestCategorizeMatchesWholeWords(t *testing.T) {
	c := NewCategorizer([]CategoryKeywords{{Name: "Arts", Keywords: []string{"art"}}})

	assert.Equal(t, []string{model.GeneralCategory}, c.Categorize("Heart surgery", "A first in cardiology"))
	assert.Equal(t, []string{"Arts"}, c.Categorize("Modern art exhibit opens", ""))
	assert.Equal(t, []string{"Arts"}, c.Categorize("", "Pop-Art, or simply art."))
}

func TestCategorizeMatchesPhrases(t *testing.T) {
	c := NewCategorizer([]CategoryKeywords{{Name: "Space", Keywords: []string{"Moon Landing"}}})

	assert.Equal(t, []string{"Space"}, c.Categorize("The moon-landing broadcast", ""))
	assert.Equal(t, []string{model.GeneralCategory}, c.Categorize("The moon was bright", "no landing"))
}

func TestCategorizeKeepsDictionaryOrder(t *testing.T) {
	c := NewCategorizer([]CategoryKeywords{
		{Name: "B", Keywords: []string{"beta"}},
		{Name: "A", Keywords: []string{"alpha"}},
	})

	assert.Equal(t, []string{"B", "A"}, c.Categorize("alpha and beta", ""))
}

func TestDefaultCategorizer(t *testing.T) {
	categories := DefaultCategorizer.Categorize(
		"Apollo 11 astronauts land on the Moon",
		"Apollo 11 astronauts Neil Armstrong and Buzz Aldrin became the first humans to land on the Moon.",
	)
	assert.Contains(t, categories, "Science")

	assert.Contains(t, DefaultCategorizer.Categorize("Battle of Hastings", ""), "Military")
	assert.Equal(t, []string{model.GeneralCategory}, DefaultCategorizer.Categorize("Nothing much", "happened here"))
}

func TestCategorizerNames(t *testing.T) {
	names := DefaultCategorizer.Names()

	require.NotEmpty(t, names)
	assert.Equal(t, model.GeneralCategory, names[0])
	assert.Contains(t, names, "Politics")
	assert.Contains(t, names, "Technology")

	assert.True(t, DefaultCategorizer.Known("Science"))
	assert.True(t, DefaultCategorizer.Known(model.GeneralCategory))
	assert.False(t, DefaultCategorizer.Known("science"))
	assert.False(t, DefaultCategorizer.Known("Sports"))
}

func TestParseCategoryDictionary(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		c, err := ParseCategoryDictionary([]byte(`
categories:
  - name: Sports
    keywords: [olympics, "world cup"]
`))
		require.NoError(t, err)
		assert.Equal(t, []string{model.GeneralCategory, "Sports"}, c.Names())
		assert.Equal(t, []string{"Sports"}, c.Categorize("The World Cup final", ""))
	})

	tests := []struct {
		name string
		yaml string
	}{
		{"invalid yaml", "categories: [unclosed"},
		{"no categories", "categories: []"},
		{"unnamed", "categories:\n  - keywords: [x]"},
		{"general", "categories:\n  - name: General\n    keywords: [x]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCategoryDictionary([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadCategorizer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "categories.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories:\n  - name: Arts\n    keywords: [art]\n"), 0o644))

	c, err := LoadCategorizer(path)
	require.NoError(t, err)
	assert.True(t, c.Known("Arts"))

	_, err = LoadCategorizer(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
