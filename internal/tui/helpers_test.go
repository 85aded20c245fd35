package tui

import (
	"strings"
	"testing"
	"time"
)

func TestEditRune(t *testing.T) {
	tests := []struct {
		text string
		key  string
		want string
	}{
		{"", "a", "a"},
		{"ab", "backspace", "a"},
		{"", "backspace", ""},
		{"olá", "backspace", "ol"},
		{"a", "enter", "a"},
		{"a", "ç", "aç"},
	}
	for _, tt := range tests {
		if got := editRune(tt.text, tt.key); got != tt.want {
			t.Errorf("editRune(%q, %q) = %q, want %q", tt.text, tt.key, got, tt.want)
		}
	}
}

func TestEditRuneClampsLength(t *testing.T) {
	long := strings.Repeat("a", maxInputLen)
	if got := editRune(long, "b"); got != long {
		t.Fatal("input beyond the limit must be dropped")
	}
}

func TestTruncStr(t *testing.T) {
	if got := truncStr("plano de aula", 8); got != "plano d…" {
		t.Fatalf("truncStr = %q", got)
	}
	if got := truncStr("curto", 10); got != "curto" {
		t.Fatalf("truncStr = %q", got)
	}
}

func TestTruncateToHeight(t *testing.T) {
	s := "a\nb\nc\nd\n"
	if got := truncateToHeight(s, 2); got != "a\nb\n" {
		t.Fatalf("truncateToHeight = %q", got)
	}
	if got := truncateToHeight(s, 0); got != s {
		t.Fatalf("truncateToHeight with 0 = %q", got)
	}
}

func TestMaskPassword(t *testing.T) {
	if got := maskPassword("abc"); got != "•••" {
		t.Fatalf("maskPassword = %q", got)
	}
	if got := maskPassword(""); got != "" {
		t.Fatalf("maskPassword(\"\") = %q", got)
	}
}

func TestFormatDate(t *testing.T) {
	if got := formatDate(time.Time{}); got != "-" {
		t.Fatalf("formatDate(zero) = %q", got)
	}
	if got := formatDate(time.Now().Add(-30 * time.Second)); got != "agora" {
		t.Fatalf("formatDate(now) = %q", got)
	}
	if got := formatDate(time.Now().Add(-2 * time.Hour)); got != "2h atrás" {
		t.Fatalf("formatDate(-2h) = %q", got)
	}
}

func TestFormatSize(t *testing.T) {
	if got := formatSize(512); got != "512B" {
		t.Fatalf("formatSize = %q", got)
	}
	if got := formatSize(2048); got != "2KB" {
		t.Fatalf("formatSize = %q", got)
	}
	if got := formatSize(3 << 20); got != "3.0MB" {
		t.Fatalf("formatSize = %q", got)
	}
}
