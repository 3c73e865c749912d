package filestorage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIsOwnedBy(t *testing.T) {
	const owner = "65f0c0ffee0000000000000a"
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"own relative", "/uploads/" + owner + "/banner.png", true},
		{"own absolute", "http://localhost:8080/uploads/" + owner + "/banner.png", true},
		{"other owner", "/uploads/65f0c0ffee0000000000000b/banner.png", false},
		{"owner prefix only", "/uploads/" + owner + "x/banner.png", false},
		{"traversal out of own folder", "/uploads/" + owner + "/../65f0c0ffee0000000000000b/banner.png", false},
		{"traversal above root", "/uploads/" + owner + "/../../etc/passwd", false},
		{"folder itself", "/uploads/" + owner, false},
		{"external", "https://cdn.example.com/banner.png", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsOwnedBy(tt.url, owner); got != tt.want {
				t.Errorf("IsOwnedBy(%q) = %v, want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestDeleteFileStaysInsideBasePath(t *testing.T) {
	base := t.TempDir()
	storage, err := NewLocalStorage(filepath.Join(base, "uploads"), "")
	if err != nil {
		t.Fatalf("NewLocalStorage failed: %v", err)
	}
	outside := filepath.Join(base, "secret.txt")
	if err := os.WriteFile(outside, []byte("keep"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := storage.DeleteFile("/uploads/../secret.txt"); err == nil {
		t.Error("Expected an error for a path above the uploads root")
	}
	if _, err := os.Stat(outside); err != nil {
		t.Errorf("Expected the file outside the uploads root to survive, got %v", err)
	}
	if err := storage.DeleteFile("/uploads/missing/file.png"); err != nil {
		t.Errorf("Expected a missing file to be ignored, got %v", err)
	}
}
