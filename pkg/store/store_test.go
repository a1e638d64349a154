package store

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/ssargent/keepsake/pkg/codec"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type gameData struct {
	Level int `json:"level"`
}

func newTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	s, err := New(codec.JSON{}, filepath.Join(t.TempDir(), "saves"), opts...)
	require.NoError(t, err)
	return s
}

func TestNew(t *testing.T) {
	t.Run("nil codec", func(t *testing.T) {
		_, err := New(nil, t.TempDir())
		assert.ErrorIs(t, err, ErrNilCodec)
	})

	t.Run("empty root", func(t *testing.T) {
		_, err := New(codec.JSON{}, "")
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		s, err := New(codec.JSON{}, t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "json", s.Extension())
		assert.Equal(t, "json", s.Codec().Name())
	})

	t.Run("leading dot stripped", func(t *testing.T) {
		s, err := New(codec.JSON{}, t.TempDir(), WithExtension(".sav"))
		require.NoError(t, err)
		assert.Equal(t, "sav", s.Extension())
	})

	t.Run("bad extensions", func(t *testing.T) {
		for _, ext := range []string{".", "a/b", "tmp"} {
			_, err := New(codec.JSON{}, t.TempDir(), WithExtension(ext))
			assert.Error(t, err, ext)
		}
	})

	t.Run("root not created", func(t *testing.T) {
		root := filepath.Join(t.TempDir(), "later")
		_, err := New(codec.JSON{}, root)
		require.NoError(t, err)
		assert.NoDirExists(t, root)
	})
}

func TestStore_ProfileScenario(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("profile1", gameData{Level: 5}, true))

	raw, err := os.ReadFile(filepath.Join(s.Root(), "profile1.json"))
	require.NoError(t, err)
	assert.Equal(t, `{"level":5}`, string(raw))

	got, err := LoadAs[gameData](s, "profile1")
	require.NoError(t, err)
	assert.Equal(t, gameData{Level: 5}, got)

	err = s.Save("profile1", gameData{Level: 5}, false)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	require.NoError(t, s.Delete("profile1"))
	_, err = LoadAs[gameData](s, "profile1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_RoundTrip(t *testing.T) {
	s := newTestStore(t)

	payloads := map[string]any{
		"map":    map[string]any{"name": "hero", "hp": float64(12)},
		"list":   []any{"a", float64(1), true},
		"string": "plain",
		"empty":  map[string]any{},
	}
	for name, payload := range payloads {
		require.NoError(t, s.Save(name, payload, true))

		var got any
		require.NoError(t, s.Load(name, &got))
		assert.Equal(t, payload, got, name)
	}
}

func TestStore_NoOverwriteKeepsFirst(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("slot", gameData{Level: 1}, false))
	err := s.Save("slot", gameData{Level: 2}, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAlreadyExists)

	var rerr *RecordError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, OpSave, rerr.Op)
	assert.Equal(t, "slot", rerr.Name)

	got, err := LoadAs[gameData](s, "slot")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Level)
}

func TestStore_OverwriteReplaces(t *testing.T) {
	s := newTestStore(t)

	require.NoError(t, s.Save("slot", gameData{Level: 1}, true))
	require.NoError(t, s.Save("slot", gameData{Level: 2}, true))

	got, err := LoadAs[gameData](s, "slot")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Level)

	names, err := s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"slot"}, names, "no temp files left behind")

	entries, err := os.ReadDir(s.Root())
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestStore_DeleteIdempotent(t *testing.T) {
	s := newTestStore(t)

	assert.NoError(t, s.Delete("ghost"))
	_, err := LoadAs[gameData](s, "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), `"ghost"`)

	require.NoError(t, s.Save("ghost", gameData{}, true))
	assert.NoError(t, s.Delete("ghost"))
	assert.NoError(t, s.Delete("ghost"))

	ok, err := s.Exists("ghost")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_CorruptRecord(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(s.Root(), 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "broken.json"), []byte(`{"level":`), 0o600))

	var got gameData
	err := s.Load("broken", &got)
	assert.ErrorIs(t, err, ErrCorruptRecord)

	var rerr *RecordError
	require.True(t, errors.As(err, &rerr))
	assert.NotNil(t, rerr.Err, "parse error is attached")
}

func TestStore_InvalidNames(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"", ".", "..", "../escape", "a/b", `a\b`, "x..y", "slot.tmp", "nul\x00"} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, s.Save(name, gameData{}, true), ErrInvalidName)
			assert.ErrorIs(t, s.Load(name, &gameData{}), ErrInvalidName)
			assert.ErrorIs(t, s.Delete(name), ErrInvalidName)
			_, err := s.Exists(name)
			assert.ErrorIs(t, err, ErrInvalidName)
		})
	}

	assert.NoDirExists(t, s.Root(), "validation happens before any I/O")
}

func TestStore_EncodeFailure(t *testing.T) {
	s := newTestStore(t)

	err := s.Save("chan", make(chan int), true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "encode with json")

	ok, err := s.Exists("chan")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_IOError(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}

	parent := t.TempDir()
	s, err := New(codec.JSON{}, filepath.Join(parent, "saves"))
	require.NoError(t, err)
	require.NoError(t, os.Chmod(parent, 0o500))
	t.Cleanup(func() { _ = os.Chmod(parent, 0o750) })

	err = s.Save("slot", gameData{}, true)
	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, os.ErrPermission)
}

func TestStore_DeleteAll(t *testing.T) {
	s := newTestStore(t)

	assert.NoError(t, s.DeleteAll(), "missing root is fine")

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, s.Save(name, gameData{}, true))
	}
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(s.Root(), "nested"), 0o750))

	require.NoError(t, s.DeleteAll())

	assert.Empty(t, collect(s))
	assert.DirExists(t, s.Root())
	assert.NoFileExists(t, filepath.Join(s.Root(), "notes.txt"))
	assert.DirExists(t, filepath.Join(s.Root(), "nested"))
}

func TestStore_Path(t *testing.T) {
	s, err := New(codec.YAML{}, "/data/saves", WithExtension("yaml"))
	require.NoError(t, err)

	p, err := s.Path("hero")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/data/saves", "hero.yaml"), p)

	_, err = s.Path("../hero")
	assert.ErrorIs(t, err, ErrInvalidName)
}

func TestStore_FileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	s := newTestStore(t, WithFileMode(0o640))
	require.NoError(t, s.Save("slot", gameData{}, true))

	info, err := os.Stat(filepath.Join(s.Root(), "slot.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())

	// modes wider than the umask are kept as given
	s = newTestStore(t, WithFileMode(0o666))
	require.NoError(t, s.Save("shared", gameData{}, true))
	info, err = os.Stat(filepath.Join(s.Root(), "shared.json"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o666), info.Mode().Perm())
}

func TestStore_DirectoryIsNotARecord(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Join(s.Root(), "slot.json"), 0o750))

	ok, err := s.Exists("slot")
	require.NoError(t, err)
	assert.False(t, ok)

	var out gameData
	err = s.Load("slot", &out)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrIO)
}

func TestStore_SealedRecordWithExpensiveScryptParams(t *testing.T) {
	sealed := codec.NewSealed(codec.JSON{}, "pass").WithScryptParams(1<<4, 8, 1)
	s, err := New(sealed, t.TempDir(), WithExtension("sealed"))
	require.NoError(t, err)

	forged := `{"v":1,"codec":"json","salt":"AAAAAAAAAAAAAAAAAAAAAA==",` +
		`"scrypt_N":1073741824,"scrypt_r":8,"scrypt_p":1,"cipher":"AAAA"}`
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "evil.sealed"), []byte(forged), 0o600))

	var out gameData
	err = s.Load("evil", &out)
	assert.ErrorIs(t, err, ErrCorruptRecord)
	assert.ErrorIs(t, err, codec.ErrScryptParams)
}
