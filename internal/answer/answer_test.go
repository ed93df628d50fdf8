package answer

import "testing"

func TestCheck_Text(t *testing.T) {
	tests := []struct {
		expected string
		given    string
		want     bool
	}{
		{"Paris", "paris", true},
		{"Paris", "  PARIS ", true},
		{"Paris", "Pari", false},
		{"猫", "猫", true},
		{"cat", "", false},
		{"", "", true},
	}

	for _, tc := range tests {
		got := Check(tc.expected, tc.given)
		if got != tc.want {
			t.Errorf("Check(%q, %q) = %v, want %v", tc.expected, tc.given, got, tc.want)
		}
	}
}

func TestCheck_Integer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"42", true},
		{" 42 ", true},
		{"042", true},
		{"+42", true},
		{"43", false},
		{"", false},
		{"abc", false},
	}

	for _, tc := range tests {
		got := Check("42", tc.input)
		if got != tc.want {
			t.Errorf("Check(42, %q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestCheck_Decimal(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"3.5", true},
		{"3.50", true},
		{" 3.500 ", true},
		{"7/2", true},
		{"3.6", false},
	}

	for _, tc := range tests {
		got := Check("3.5", tc.input)
		if got != tc.want {
			t.Errorf("Check(3.5, %q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestCheck_Fraction(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"1/2", true},
		{"2/4", true},
		{"0.5", true},
		{"1 / 2", true},
		{"1/3", false},
		{"1/0", false},
	}

	for _, tc := range tests {
		got := Check("1/2", tc.input)
		if got != tc.want {
			t.Errorf("Check(1/2, %q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestCheck_Negative(t *testing.T) {
	if !Check("-3", "-03") {
		t.Error("expected -3 to match -03")
	}
	if Check("-3", "3") {
		t.Error("expected -3 not to match 3")
	}
}
