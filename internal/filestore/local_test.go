package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := New("local", map[string]interface{}{"dir": dir})
	require.NoError(t, err)

	err = store.Save(context.Background(), "report.jsonl", []byte(`{"doc_id":1}`))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "report.jsonl"))
	require.NoError(t, err)
	require.Equal(t, `{"doc_id":1}`, string(data))
}

func TestLocalStoreRejectsPathKeys(t *testing.T) {
	store, err := New("local", map[string]interface{}{"dir": t.TempDir()})
	require.NoError(t, err)

	require.Error(t, store.Save(context.Background(), "../escape.jsonl", nil))
	require.Error(t, store.Save(context.Background(), `sub\dir.jsonl`, nil))
}

func TestLocalStoreRequiresDir(t *testing.T) {
	_, err := New("local", map[string]interface{}{})
	require.Error(t, err)
}

func TestNewUnknownType(t *testing.T) {
	_, err := New("ftp", nil)
	require.Error(t, err)
	_, err = New("", nil)
	require.Error(t, err)
}
