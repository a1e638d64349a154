package query

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ssargent/keepsake/pkg/codec"
	"github.com/ssargent/keepsake/pkg/store"
)

type hero struct {
	Name  string         `json:"name" yaml:"name" msgpack:"name"`
	Level int            `json:"level" yaml:"level" msgpack:"level"`
	Stats map[string]int `json:"stats" yaml:"stats" msgpack:"stats"`
}

func seedStore(t *testing.T, c codec.Codec) *store.Store {
	t.Helper()
	s, err := store.New(c, t.TempDir())
	require.NoError(t, err)

	heroes := []hero{
		{Name: "alice", Level: 5, Stats: map[string]int{"hp": 30}},
		{Name: "bob", Level: 2, Stats: map[string]int{"hp": 10}},
		{Name: "carol", Level: 9, Stats: map[string]int{"hp": 55}},
	}
	for _, h := range heroes {
		require.NoError(t, s.Save(h.Name, h, true))
	}
	return s
}

func names(t *testing.T, it QueryIterator) []string {
	t.Helper()
	defer it.Close()

	var out []string
	for it.Next() {
		out = append(out, it.Result().Name)
	}
	sort.Strings(out)
	return out
}

func TestScanEngine_ExecuteQuery(t *testing.T) {
	s := seedStore(t, codec.JSON{})
	engine := NewScanEngine(s, zaptest.NewLogger(t))

	tests := []struct {
		name  string
		query FieldQuery
		want  []string
	}{
		{name: "equality", query: FieldQuery{Field: "level", Operator: "=", Value: 5}, want: []string{"alice"}},
		{name: "greater or equal", query: FieldQuery{Field: "level", Operator: ">=", Value: 5}, want: []string{"alice", "carol"}},
		{name: "less than", query: FieldQuery{Field: "level", Operator: "<", Value: 5}, want: []string{"bob"}},
		{name: "nested", query: FieldQuery{Field: "stats.hp", Operator: ">", Value: 20}, want: []string{"alice", "carol"}},
		{name: "string", query: FieldQuery{Field: "name", Operator: "!=", Value: "bob"}, want: []string{"alice", "carol"}},
		{name: "missing field", query: FieldQuery{Field: "mana", Operator: "=", Value: 1}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := engine.ExecuteQuery(context.Background(), tt.query)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, names(t, it)); diff != "" {
				t.Errorf("ExecuteQuery() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	_, err := engine.ExecuteQuery(context.Background(), FieldQuery{Field: "level", Operator: "~"})
	assert.Error(t, err)
}

func TestScanEngine_ExecuteExpr(t *testing.T) {
	for _, c := range []codec.Codec{codec.JSON{}, codec.YAML{}, codec.MsgPack{}} {
		t.Run(c.Name(), func(t *testing.T) {
			s := seedStore(t, c)
			engine := NewScanEngine(s, zaptest.NewLogger(t))

			it, err := engine.ExecuteExpr(context.Background(), `level > 3 && stats.hp < 50`)
			require.NoError(t, err)
			assert.Equal(t, []string{"alice"}, names(t, it))

			it, err = engine.ExecuteExpr(context.Background(), `name startsWith "c" || mana > 0`)
			require.NoError(t, err)
			assert.Equal(t, []string{"carol"}, names(t, it))
		})
	}
}

func TestScanEngine_ExecuteExprInvalid(t *testing.T) {
	engine := NewScanEngine(seedStore(t, codec.JSON{}), nil)

	_, err := engine.ExecuteExpr(context.Background(), `level >`)
	assert.Error(t, err)

	_, err = engine.ExecuteExpr(context.Background(), `"not a bool"`)
	assert.Error(t, err)
}

func TestScanEngine_SkipsUndecodable(t *testing.T) {
	s := seedStore(t, codec.JSON{})
	require.NoError(t, os.WriteFile(filepath.Join(s.Root(), "broken.json"), []byte(`{"level":`), 0o600))
	require.NoError(t, s.Save("scalar", "just a string", true))

	engine := NewScanEngine(s, zaptest.NewLogger(t))
	it, err := engine.ExecuteQuery(context.Background(), FieldQuery{Field: "level", Operator: ">", Value: 0})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, names(t, it))
}

func TestScanEngine_Cancelled(t *testing.T) {
	engine := NewScanEngine(seedStore(t, codec.JSON{}), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.ExecuteQuery(ctx, FieldQuery{Field: "level", Operator: "=", Value: 5})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestScanEngine_ResultRecord(t *testing.T) {
	engine := NewScanEngine(seedStore(t, codec.JSON{}), nil)
	it, err := engine.ExecuteQuery(context.Background(), FieldQuery{Field: "name", Operator: "=", Value: "bob"})
	require.NoError(t, err)
	defer it.Close()

	require.True(t, it.Next())
	res := it.Result()
	assert.Equal(t, "bob", res.Name)
	assert.Equal(t, float64(2), res.Record["level"])
	assert.False(t, it.Next())
	assert.Equal(t, QueryResult{}, it.Result())
}
