package parser

import "testing"

func TestLineIndexLineAt(t *testing.T) {
	src := []byte("line1\nline2\nline3\n")
	idx := NewLineIndex(src)

	cases := []struct {
		off  int
		want int
	}{
		{0, 1},
		{4, 1},
		{6, 2},
		{11, 2},
		{12, 3},
		{17, 3},
	}
	for _, c := range cases {
		if got := idx.LineAt(c.off); got != c.want {
			t.Errorf("LineAt(%d) = %d, want %d", c.off, got, c.want)
		}
	}

	if idx.TotalLines() != 3 {
		t.Errorf("TotalLines() = %d, want 3", idx.TotalLines())
	}
}

func TestLineIndexNoTrailingNewline(t *testing.T) {
	src := []byte("a\nb")
	idx := NewLineIndex(src)
	if idx.TotalLines() != 2 {
		t.Errorf("TotalLines() = %d, want 2", idx.TotalLines())
	}
	if got := idx.LineAt(2); got != 2 {
		t.Errorf("LineAt(2) = %d, want 2", got)
	}
}

func TestLineIndexEmpty(t *testing.T) {
	idx := NewLineIndex([]byte{})
	if idx.TotalLines() != 1 {
		t.Errorf("TotalLines() = %d, want 1", idx.TotalLines())
	}
}
