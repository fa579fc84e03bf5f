package util

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
		err  bool
	}{
		{name: "plain", in: "resume.pdf", want: "resume.pdf"},
		{name: "separators", in: "a/b\\c.docx", want: "a_b_c.docx"},
		{name: "control chars", in: " cv\x00\n.txt ", want: "cv.txt"},
		{name: "traversal", in: "../etc/passwd", err: true},
		{name: "blank", in: "   ", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeFileName(tt.in)
			if tt.err {
				if !errors.Is(err, ErrInvalidFileName) {
					t.Fatalf("expected ErrInvalidFileName, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("SanitizeFileName(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestSanitizeFileNameKeepsExtensionWhenTruncating(t *testing.T) {
	got, err := SanitizeFileName(strings.Repeat("x", 300) + ".pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != maxFileNameLen || !strings.HasSuffix(got, ".pdf") {
		t.Fatalf("unexpected truncation: len=%d %q", len(got), got[len(got)-8:])
	}
}

func TestObjectKeyNamespacesByUser(t *testing.T) {
	a, err := ObjectKey("guest:g1", "cv.pdf")
	if err != nil {
		t.Fatalf("object key: %v", err)
	}
	b, _ := ObjectKey("guest:g1", "cv.pdf")
	if a == b {
		t.Fatalf("expected unique keys, got %s twice", a)
	}

	prefix := HashUserKey("guest:g1") + "/"
	if !strings.HasPrefix(a, prefix) || !strings.HasSuffix(a, "_cv.pdf") {
		t.Fatalf("unexpected key layout %s", a)
	}
	if len(HashUserKey("guest:g1")) != 64 {
		t.Fatalf("expected 64 hex characters")
	}
}
