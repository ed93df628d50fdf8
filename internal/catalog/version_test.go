package catalog

import "testing"

func TestCompareVersions(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"1.0.0", "1.0.0", 0},
		{"1.0", "1.0.0", 0},
		{"1", "1.0.0", 0},
		{"1.0.1", "1.0.0", 1},
		{"1.2", "1.10", -1},
		{"2.0", "1.99.99", 1},
		{"1.0.0.1", "1.0.0", 1},
		{"1.0.0", "1.0.0.0", 0},
		{"", "0.1", -1},
		{"0.1", "", 1},
		{"", "", 0},
		{"v1.2.0", "1.2.0", 0},
		{"1.0.0-beta", "1.0.0", -1},
	}
	for _, tt := range tests {
		if got := CompareVersions(tt.a, tt.b); got != tt.want {
			t.Errorf("CompareVersions(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNeedsImport(t *testing.T) {
	tests := []struct {
		name     string
		local    string
		hasLocal bool
		remote   string
		want     bool
	}{
		{"nothing stored", "", false, "1.0", true},
		{"newer remote", "1.0", true, "1.1", true},
		{"same version", "1.1", true, "1.1", false},
		{"older remote", "1.2", true, "1.1", false},
		{"stored without version", "", true, "1.0", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsImport(tt.local, tt.hasLocal, tt.remote); got != tt.want {
				t.Errorf("NeedsImport = %v, want %v", got, tt.want)
			}
		})
	}
}
