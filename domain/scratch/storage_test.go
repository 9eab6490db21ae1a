package scratch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadOverwrites(t *testing.T) {
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	require.NoError(t, s.Write(ImageFile, []byte("first attempt")))
	require.NoError(t, s.Write(ImageFile, []byte("second")))
	data, err := s.Read(ImageFile)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestCreate(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "nested", "dir"), nil)
	require.NoError(t, err)
	w, err := s.Create(MaskFile)
	require.NoError(t, err)
	_, err = w.Write([]byte("mask"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	p, err := s.Path(MaskFile)
	require.NoError(t, err)
	data, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Equal(t, "mask", string(data))
}

func TestRejectsPathNames(t *testing.T) {
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	for _, name := range []string{"", "..", "../escape.png", `a\b.png`} {
		assert.Error(t, s.Write(name, nil), name)
	}
}

func TestReadMissing(t *testing.T) {
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)
	_, err = s.Read(ResultFile)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLockIsExclusive(t *testing.T) {
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	unlock, err := s.Lock()
	require.NoError(t, err)
	_, err = s.Lock()
	assert.ErrorIs(t, err, ErrLocked)

	unlock()
	again, err := s.Lock()
	require.NoError(t, err)
	again()
}
