package release

import (
	"testing"
)

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		name     string
		a        string
		b        string
		expected int
		wantErr  bool
	}{
		{"older patch", "8.5.0", "8.5.1", -1, false},
		{"older minor", "8.5.0", "8.6.0", -1, false},
		{"older major", "8.5.0", "9.0.0", -1, false},
		{"equal", "8.5.0", "8.5.0", 0, false},
		{"newer", "8.6.0", "8.5.0", 1, false},
		{"v prefix", "v8.5.0", "8.5.0", 0, false},
		{"short form", "8.5", "8.5.0", 0, false},
		{"trailing newline", "8.5.0\n", "8.5.0", 0, false},
		{"invalid a", "notaversion", "8.5.0", 0, true},
		{"invalid b", "8.5.0", "notaversion", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := CompareVersions(tt.a, tt.b)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result != tt.expected {
				t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, result, tt.expected)
			}
		})
	}
}

func TestArchiveName(t *testing.T) {
	if got := ArchiveName("8.5.0"); got != "solr-8.5.0.zip" {
		t.Errorf("ArchiveName = %q, want solr-8.5.0.zip", got)
	}
}
