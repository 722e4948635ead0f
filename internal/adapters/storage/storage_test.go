package storage

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestValidateContentType(t *testing.T) {
	if err := validateContentType("image/PNG; charset=binary"); err != nil {
		t.Fatalf("expected png to be accepted, got %v", err)
	}
	if err := validateContentType("application/pdf"); err == nil {
		t.Fatalf("expected pdf to be rejected")
	}
}

func TestValidateFileSize(t *testing.T) {
	if err := validateFileSize(0, 10); err == nil {
		t.Fatalf("expected empty file to be rejected")
	}
	if err := validateFileSize(11, 10); err == nil {
		t.Fatalf("expected oversized file to be rejected")
	}
	if err := validateFileSize(10, 10); err != nil {
		t.Fatalf("expected file at limit to pass, got %v", err)
	}
}

func TestObjectKey(t *testing.T) {
	id := uuid.MustParse("12345678-9abc-def0-1234-56789abcdef0")
	key := ObjectKey("personnel/abc", `C:\photos\Me.JPG`, id)
	if key != "personnel/abc/Me_12345678.jpg" {
		t.Fatalf("unexpected key %q", key)
	}
	if !strings.HasPrefix(ObjectKey("p", "", id), "p/avatar_") {
		t.Fatalf("expected fallback base name")
	}
}
