package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Char", "Code", "Shown"}
	rows := [][]string{
		{"a", "aaaa", "12"},
		{"<space>", "b", "3"},
	}
	rightAlign := map[int]bool{2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Char    Code Shown" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "a       aaaa    12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "<space> b        3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Char", "Code"}, [][]string{{"你", "wq"}, {"a", "x"}}, nil)
	if lines[1] != "你   wq  " {
		t.Fatalf("unexpected wide row: %q", lines[1])
	}
	if lines[2] != "a    x   " {
		t.Fatalf("unexpected narrow row: %q", lines[2])
	}
}
