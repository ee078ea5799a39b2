package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-resource/pkg/simpleresource"
	"github.com/tendant/simple-resource/pkg/simpleresource/format"
	"github.com/tendant/simple-resource/pkg/simpleresource/storage/storagetest"
)

func newBackend(t *testing.T) *Backend {
	t.Helper()
	b, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err, "new fs backend")
	return b
}

func TestFSBackend_Contract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) simpleresource.Backend {
		return newBackend(t)
	})
}

func TestFSBackend_RequiresBaseDir(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "base directory is required")
}

func TestFSBackend_CreatesBaseDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "storage", "app")
	_, err := New(Config{BaseDir: dir})
	require.NoError(t, err)

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestFSBackend_ListSkipsDirectoriesAndTempFiles(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	require.NoError(t, os.Mkdir(filepath.Join(b.BaseDir(), "nested.csv"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(b.BaseDir(), "nested.csv", "inner.csv"), []byte("a\nb"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(b.BaseDir(), tempPrefix+"abc"), []byte("partial"), 0644))
	require.NoError(t, b.Write(ctx, "z.csv", []byte("a\nb")))
	require.NoError(t, b.Write(ctx, "a.csv", []byte("a\nb")))

	names, err := b.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.csv", "z.csv"}, names)
}

func TestFSBackend_RejectsReservedTempPrefix(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	name := tempPrefix + "report.csv"

	_, err := b.Exists(ctx, name)
	assert.ErrorIs(t, err, simpleresource.ErrInvalidName)

	err = b.Write(ctx, name, []byte("h1,h2\nv1,v2"))
	assert.ErrorIs(t, err, simpleresource.ErrInvalidName)

	_, err = os.Stat(filepath.Join(b.BaseDir(), name))
	assert.True(t, os.IsNotExist(err), "nothing should be written under a reserved name")
}

func TestFSBackend_ReservedNameIsValidationFailure(t *testing.T) {
	svc, err := simpleresource.New(
		simpleresource.WithBackend(newBackend(t)),
		simpleresource.WithFormats(format.All()...),
	)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.Create(ctx, simpleresource.FamilyCSV, simpleresource.WriteRequest{
		Name:    tempPrefix + "report.csv",
		Content: "h1,h2\nv1,v2",
	})
	require.Error(t, err)
	assert.Equal(t, simpleresource.StatusValidationFailed, simpleresource.StatusOf(err))
	assert.False(t, simpleresource.IsRetryable(err))

	_, err = svc.Create(ctx, simpleresource.FamilyCSV, simpleresource.WriteRequest{
		Name:    "report.csv",
		Content: "h1,h2\nv1,v2",
	})
	require.NoError(t, err)

	listed, err := svc.List(ctx, simpleresource.FamilyCSV)
	require.NoError(t, err)
	assert.Equal(t, []string{"report.csv"}, listed.Content)
}

func TestFSBackend_DirectoryIsNotAResource(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	require.NoError(t, os.Mkdir(filepath.Join(b.BaseDir(), "dir.txt"), 0755))

	exists, err := b.Exists(ctx, "dir.txt")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.ErrorIs(t, b.Delete(ctx, "dir.txt"), simpleresource.ErrNotFound)
}

func TestFSBackend_RejectsTraversal(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()

	for _, name := range []string{"../escape.txt", "a/../../b", "/etc/passwd", "..", ""} {
		_, err := b.Exists(ctx, name)
		assert.ErrorIs(t, err, simpleresource.ErrInvalidName, name)
		assert.ErrorIs(t, b.Write(ctx, name, []byte("x")), simpleresource.ErrInvalidName, name)
	}

	_, err := os.Stat(filepath.Join(filepath.Dir(b.BaseDir()), "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

func TestFSBackend_WriteLeavesNoTempFiles(t *testing.T) {
	b := newBackend(t)
	ctx := context.Background()
	require.NoError(t, b.Write(ctx, "a.txt", []byte("one")))
	require.NoError(t, b.Write(ctx, "a.txt", []byte("two")))

	entries, err := os.ReadDir(b.BaseDir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", entries[0].Name())
}
