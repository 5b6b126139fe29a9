package dnsname

import "testing"

func TestToFQDN(t *testing.T) {
	tests := []struct {
		name     string
		zone     string
		input    string
		expected string
	}{
		{
			name:     "@ converts to zone",
			zone:     "example.com",
			input:    "@",
			expected: "example.com",
		},
		{
			name:     "www converts to www.zone",
			zone:     "example.com",
			input:    "www",
			expected: "www.example.com",
		},
		{
			name:     "a.b converts to a.b.zone",
			zone:     "example.com",
			input:    "a.b",
			expected: "a.b.example.com",
		},
		{
			name:     "empty name defaults to @",
			zone:     "example.com",
			input:    "",
			expected: "example.com",
		},
		{
			name:     "already FQDN returns as-is",
			zone:     "example.com",
			input:    "test.example.com",
			expected: "test.example.com",
		},
		{
			name:     "zone itself returns as-is",
			zone:     "example.com",
			input:    "example.com",
			expected: "example.com",
		},
		{
			name:     "whitespace is trimmed",
			zone:     " example.com ",
			input:    " www ",
			expected: "www.example.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToFQDN(tt.input, tt.zone)
			if result != tt.expected {
				t.Errorf("ToFQDN(%q, %q) = %q; want %q", tt.input, tt.zone, result, tt.expected)
			}
		})
	}
}

func TestToRelative(t *testing.T) {
	tests := []struct {
		name     string
		zone     string
		input    string
		expected string
	}{
		{
			name:     "zone itself converts to @",
			zone:     "example.com",
			input:    "example.com",
			expected: "@",
		},
		{
			name:     "www.zone converts to www",
			zone:     "example.com",
			input:    "www.example.com",
			expected: "www",
		},
		{
			name:     "a.b.zone converts to a.b",
			zone:     "example.com",
			input:    "a.b.example.com",
			expected: "a.b",
		},
		{
			name:     "trailing dot removed",
			zone:     "example.com",
			input:    "www.example.com.",
			expected: "www",
		},
		{
			name:     "@ stays @",
			zone:     "example.com",
			input:    "@",
			expected: "@",
		},
		{
			name:     "already relative stays",
			zone:     "example.com",
			input:    "www",
			expected: "www",
		},
		{
			name:     "empty name is @",
			zone:     "example.com",
			input:    "",
			expected: "@",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ToRelative(tt.input, tt.zone)
			if result != tt.expected {
				t.Errorf("ToRelative(%q, %q) = %q; want %q", tt.input, tt.zone, result, tt.expected)
			}
		})
	}
}

func TestRoundTrip(t *testing.T) {
	zone := "example.com"
	for _, rel := range []string{"@", "www", "api", "a.b"} {
		got := ToRelative(ToFQDN(rel, zone), zone)
		if got != rel {
			t.Errorf("ToRelative(ToFQDN(%q)) = %q; want %q", rel, got, rel)
		}
	}
}
