package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/verte-zerg/wbdrift/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "data", "wb-mapping.json"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return st
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	st := openTestStore(t)
	mapping, err := st.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(mapping) != 0 {
		t.Fatalf("expected empty mapping, got %v", mapping)
	}
}

func TestMergeIntoEmptyTable(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if _, err := st.Merge(ctx, model.Mapping{"你": "nǐ"}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	mapping, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(mapping) != 1 || mapping["你"] != "nǐ" {
		t.Fatalf("unexpected mapping: %v", mapping)
	}
}

func TestMergeKeepsExistingKeys(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if _, err := st.Merge(ctx, model.Mapping{"一": "ggll", "二": "fgg"}); err != nil {
		t.Fatalf("first merge: %v", err)
	}
	merged, err := st.Merge(ctx, model.Mapping{"二": "fg", "三": "dggg"})
	if err != nil {
		t.Fatalf("second merge: %v", err)
	}
	want := model.Mapping{"一": "ggll", "二": "fg", "三": "dggg"}
	if len(merged) != len(want) {
		t.Fatalf("expected %d keys, got %v", len(want), merged)
	}
	loaded, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	for k, v := range want {
		if loaded[k] != v {
			t.Fatalf("expected %q=%q, got %q", k, v, loaded[k])
		}
	}
}

func TestMergeEmptyPayloadLeavesFileUnchanged(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	if _, err := st.Merge(ctx, model.Mapping{"a": "1"}); err != nil {
		t.Fatalf("seed merge: %v", err)
	}
	before, err := os.ReadFile(st.Path())
	if err != nil {
		t.Fatalf("read before: %v", err)
	}
	_, err = st.Merge(ctx, model.Mapping{})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	after, err := os.ReadFile(st.Path())
	if err != nil {
		t.Fatalf("read after: %v", err)
	}
	if !bytes.Equal(before, after) {
		t.Fatalf("file changed after rejected merge")
	}
}

func TestMergeRejectsEmptyKeyOrValue(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	for _, payload := range []model.Mapping{{"": "x"}, {"a": ""}} {
		if _, err := st.Merge(ctx, payload); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %v, got %v", payload, err)
		}
	}
	if _, err := os.Stat(st.Path()); !os.IsNotExist(err) {
		t.Fatalf("expected no mapping file after rejected merges")
	}
}

func TestMergeWritesPrettyJSON(t *testing.T) {
	st := openTestStore(t)
	if _, err := st.Merge(context.Background(), model.Mapping{"a": "1"}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	data, err := os.ReadFile(st.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "{\n  \"a\": \"1\"\n}" {
		t.Fatalf("unexpected file contents: %q", data)
	}
	entries, err := os.ReadDir(filepath.Dir(st.Path()))
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only the mapping file, got %d entries", len(entries))
	}
}

func TestLoadMalformedFile(t *testing.T) {
	st := openTestStore(t)
	if err := os.WriteFile(st.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := st.Load(context.Background()); !errors.Is(err, ErrStorage) {
		t.Fatalf("expected ErrStorage, got %v", err)
	}
}

func TestConcurrentMergesKeepAllKeys(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	keys := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	var wg sync.WaitGroup
	for _, k := range keys {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			if _, err := st.Merge(ctx, model.Mapping{k: k + k}); err != nil {
				t.Errorf("merge %s: %v", k, err)
			}
		}(k)
	}
	wg.Wait()
	mapping, err := st.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(mapping) != len(keys) {
		t.Fatalf("expected %d keys, got %v", len(keys), mapping)
	}
}

func TestMergeKeepsFileMode(t *testing.T) {
	st := openTestStore(t)
	if err := os.WriteFile(st.Path(), []byte(`{"a":"b"}`), 0o600); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := os.Chmod(st.Path(), 0o640); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	if _, err := st.Merge(context.Background(), model.Mapping{"你": "nǐ"}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	info, err := os.Stat(st.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o640 {
		t.Fatalf("expected mode 0640 after merge, got %o", got)
	}
}

func TestMergeCreatesReadableFile(t *testing.T) {
	st := openTestStore(t)
	if _, err := st.Merge(context.Background(), model.Mapping{"a": "1"}); err != nil {
		t.Fatalf("merge: %v", err)
	}
	info, err := os.Stat(st.Path())
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if got := info.Mode().Perm(); got != 0o644 {
		t.Fatalf("expected mode 0644 for new file, got %o", got)
	}
}
