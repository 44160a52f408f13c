package cli

import (
	"regexp"
	"strings"
	"testing"
)

var ansiSeq = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiSeq.ReplaceAllString(s, "")
}

func TestRenderLifecycleRail(t *testing.T) {
	theme := newTUITheme()
	out := stripANSI(renderLifecycleRail(theme, sessionPhases, 2))
	want := "[Idle] -> [Uploading] -> [Ingesting] -> [Ready]"
	if out != want {
		t.Fatalf("rail = %q, want %q", out, want)
	}
	if renderLifecycleRail(theme, nil, 0) != "" {
		t.Fatal("empty phase list should render nothing")
	}
}

func TestRenderActionCardContainsParts(t *testing.T) {
	theme := newTUITheme()
	out := stripANSI(renderActionCard(theme, "Upload PDFs", "enter uploads", "body text", 60))
	for _, part := range []string{"Upload PDFs", "enter uploads", "body text"} {
		if !strings.Contains(out, part) {
			t.Fatalf("card missing %q:\n%s", part, out)
		}
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short.pdf", 20, "short.pdf"},
		{"a-very-long-filename.pdf", 10, "a-very-..."},
		{"abc", 0, ""},
		{"abcdef", 3, "abc"},
		{"héllo wörld", 8, "héllo..."},
	}
	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.limit); got != tt.want {
			t.Fatalf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}

func TestSplitColumns(t *testing.T) {
	left, right := splitColumns(120)
	if left+right != 120 {
		t.Fatalf("columns do not sum: %d + %d", left, right)
	}
	if right < 26 {
		t.Fatalf("sidebar = %d, want at least 26", right)
	}

	left, right = splitColumns(50)
	if right != 0 || left != 50 {
		t.Fatalf("narrow split = (%d, %d), want the sidebar dropped", left, right)
	}
}
