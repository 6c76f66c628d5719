package charset

import (
	"os"
	"path/filepath"
	"testing"
)

func TestSplitDropsWhitespace(t *testing.T) {
	got := Split("a b\t你\n")
	want := []string{"a", "b", "你"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %q at %d, got %q", want[i], i, got[i])
		}
	}
}

func TestSplitKeepsDuplicates(t *testing.T) {
	if got := Split("aab"); len(got) != 3 {
		t.Fatalf("expected duplicates to be kept, got %v", got)
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	got := Resolve("   ")
	if len(got) != len([]rune(Default)) {
		t.Fatalf("expected default set of %d chars, got %d", len([]rune(Default)), len(got))
	}
	if got := Resolve("ab"); len(got) != 2 {
		t.Fatalf("expected configured set, got %v", got)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chars.txt")
	data := "# home row\nasdf\n\njkl;\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "asdfjkl;" {
		t.Fatalf("unexpected set %q", got)
	}
}

func TestLoadFileEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chars.txt")
	if err := os.WriteFile(path, []byte("# nothing\n\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected error for empty character file")
	}
}
