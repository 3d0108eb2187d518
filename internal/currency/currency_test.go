package currency

import "testing"

func TestLookup(t *testing.T) {
	tests := []struct {
		name string
		code string
		want string
	}{
		{"known code", "USD", "USD"},
		{"lowercase code", "usd", "USD"},
		{"unknown code falls back", "XXX", DefaultCode},
		{"empty code falls back", "", DefaultCode},
		{"mixed case", "gBp", "GBP"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Lookup(tt.code)
			if got.Code != tt.want {
				t.Errorf("Lookup(%q).Code = %q, want %q", tt.code, got.Code, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		amount float64
		code   string
		want   string
	}{
		{1234.5, "USD", "$1234.50"},
		{-50, "GBP", "£50.00"},
		{0, "", "₱0.00"},
	}

	for _, tt := range tests {
		got := Format(tt.amount, tt.code)
		if got != tt.want {
			t.Errorf("Format(%v, %q) = %q, want %q", tt.amount, tt.code, got, tt.want)
		}
	}
}

func TestAvailable(t *testing.T) {
	all := Available()
	if len(all) != len(currencies) {
		t.Fatalf("Available() returned %d currencies, want %d", len(all), len(currencies))
	}
}
