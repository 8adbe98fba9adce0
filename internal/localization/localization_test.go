package localization

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalizer_Embedded(t *testing.T) {
	l, err := NewLocalizer()
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"en", "es", "uk"}, l.Languages())
	assert.Equal(t, "Open conversation", l.GetString("en", KeyNewMessageAction))
	assert.Equal(t, "Abrir conversación", l.GetString("es-MX", KeyNewMessageAction))
}

func TestGetString_Fallbacks(t *testing.T) {
	fsys := fstest.MapFS{
		"i18n/en.json":    {Data: []byte(`{"greeting":"Hello","only_en":"English only"}`)},
		"i18n/uk.json":    {Data: []byte(`{"greeting":"Привіт"}`)},
		"i18n/readme.txt": {Data: []byte("ignored")},
	}
	l, err := NewLocalizerFS(fsys, "i18n")
	require.NoError(t, err)

	assert.Equal(t, "Привіт", l.GetString("uk", "greeting"))
	assert.Equal(t, "English only", l.GetString("uk", "only_en"))
	assert.Equal(t, "Hello", l.GetString("", "greeting"))
	assert.Equal(t, "Hello", l.GetString("fr", "greeting"))
	assert.Equal(t, "missing.key", l.GetString("en", "missing.key"))
}

func TestNewLocalizerFS_BadJSON(t *testing.T) {
	fsys := fstest.MapFS{"i18n/en.json": {Data: []byte(`{`)}}

	_, err := NewLocalizerFS(fsys, "i18n")
	assert.Error(t, err)
}

func TestFormat(t *testing.T) {
	l, err := NewLocalizer()
	require.NoError(t, err)

	assert.Equal(t, "New message from Ada", l.Format("en", KeyNewMessageTitle, map[string]string{"name": "Ada"}))
}
