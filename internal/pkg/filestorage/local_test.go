package filestorage

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name, content string) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&body, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["file"][0]
}

func TestLocalStorageSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:8080/")
	require.NoError(t, err)

	stored, err := ls.SaveFileWithPath(fileHeader(t, "Passport.PDF", "%PDF-1.4"), "students/s-1")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(stored.Key, "students/s-1/"))
	assert.True(t, strings.HasSuffix(stored.Key, ".pdf"))
	assert.Equal(t, "http://localhost:8080/uploads/"+stored.Key, stored.URL)
	assert.Equal(t, int64(len("%PDF-1.4")), stored.FileSize)

	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(stored.Key)))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4", string(data))

	require.NoError(t, ls.DeleteFile(stored.Key))
	_, err = os.Stat(filepath.Join(dir, filepath.FromSlash(stored.Key)))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ls.DeleteFile(stored.Key), "deleting twice is not an error")
}

func TestLocalStorageKeysStayInsideBase(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "")
	require.NoError(t, err)

	p, err := ls.physicalPath("../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "etc", "passwd"), p)

	stored, err := ls.SaveFileWithPath(fileHeader(t, "a.txt", "x"), "../outside")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stored.Key, "outside/"))

	_, err = ls.physicalPath("/")
	assert.Error(t, err)
}

func TestSupabasePublicURL(t *testing.T) {
	s := NewSupabaseStorage("https://proj.supabase.co/", "key", "documents")
	assert.Equal(t, "https://proj.supabase.co/storage/v1/object/public/documents/students/a.pdf", s.PublicURL("students/a.pdf"))
}
