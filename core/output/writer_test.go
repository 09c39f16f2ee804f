package output

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_Write(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	w, err := New(dir)
	require.NoError(t, err)

	path, err := w.Write([]byte("<urlset/>"), ".xml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sitemap.xml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<urlset/>", string(data))

	// Overwrites in place and leaves no temp files behind.
	_, err = w.Write([]byte("<urlset></urlset>"), ".xml")
	require.NoError(t, err)

	files, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "sitemap.xml", files[0].Name())
}
