package store

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ssargent/keepsake/pkg/codec"
)

func filepathName(i int) string {
	return fmt.Sprintf("slot-%03d", i)
}

func newStoreAt(t *testing.T, root, ext string) *Store {
	t.Helper()
	s, err := New(codec.JSON{}, root, WithExtension(ext))
	require.NoError(t, err)
	return s
}
