package region

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Region
	}{
		{"lowercase europe", "europe", Europe},
		{"eu alias", "eu", Europe},
		{"uppercase eu alias", "EU", Europe},
		{"mixed case europe", "Europe", Europe},
		{"apac", "apac", APAC},
		{"asia alias", "asia", APAC},
		{"uppercase asia alias", "ASIA", APAC},
		{"us", "us", US},
		{"empty defaults to us", "", US},
		{"unknown defaults to us", "mars", US},
		{"whitespace trimmed", "  eu  ", Europe},
		{"whitespace only defaults to us", "   ", US},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Parse(tt.input); got != tt.want {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"europe host", "europe", "https://api-eu.teamcraft.io"},
		{"eu alias host", "eu", "https://api-eu.teamcraft.io"},
		{"EU uppercase host", "EU", "https://api-eu.teamcraft.io"},
		{"Europe mixed host", "Europe", "https://api-eu.teamcraft.io"},
		{"apac host", "apac", "https://api-apac.teamcraft.io"},
		{"asia alias host", "asia", "https://api-apac.teamcraft.io"},
		{"us host", "us", "https://api.teamcraft.io"},
		{"absent input falls back to us", "", "https://api.teamcraft.io"},
		{"unrecognized input falls back to us", "atlantis", "https://api.teamcraft.io"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.input); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestHostFallback(t *testing.T) {
	// A Region value outside the table must still resolve.
	got := Region("MARS").Host()
	if got != "https://api.teamcraft.io" {
		t.Errorf("Host() for unmapped region = %q, want US host", got)
	}
}

func TestValid(t *testing.T) {
	for _, r := range All() {
		if !r.Valid() {
			t.Errorf("Valid() = false for canonical region %v", r)
		}
	}
	if Region("mars").Valid() {
		t.Error("Valid() = true for unmapped region")
	}
}

func TestAllOrder(t *testing.T) {
	all := All()
	want := []Region{US, Europe, APAC}
	if len(all) != len(want) {
		t.Fatalf("All() returned %d regions, want %d", len(all), len(want))
	}
	for i, r := range all {
		if r != want[i] {
			t.Errorf("All()[%d] = %v, want %v", i, r, want[i])
		}
	}
}
