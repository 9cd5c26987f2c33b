package economy

import (
	"strings"
	"testing"
)

func TestRenderHistorySpoiler(t *testing.T) {
	lines := []string{"1. a", "2. b", "3. c", "4. d", "5. e", "6. f", "7. g"}
	plain, md := renderHistory(lines)

	if strings.Contains(plain, "||") {
		t.Fatal("plain text must not contain spoiler markup")
	}
	if strings.Count(md, "||") != 2 {
		t.Fatalf("want one spoiler block, got %q", md)
	}
	if !strings.Contains(md, "||6\\. f") {
		t.Fatalf("spoiler must start at the sixth line: %q", md)
	}
}

func TestRenderHistoryShort(t *testing.T) {
	_, md := renderHistory([]string{"1. +55 очков"})
	if strings.Contains(md, "||") {
		t.Fatalf("short history must not use a spoiler: %q", md)
	}
	if !strings.Contains(md, "\\+55") {
		t.Fatalf("markdown must be escaped: %q", md)
	}
}
