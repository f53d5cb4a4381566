package langname

import "testing"

func TestFromCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want string
	}{
		{"de", "German"},
		{"es", "Spanish"},
		{"ja", "Japanese"},
		{"nb", "Norwegian Bokmål"},
		{"DE", "German"},
		{" fr ", "French"},
		{"xx", "English"},
		{"", "English"},
		{"pt_BR", "English"}, // only bare two-letter codes are registered
	}

	for _, tc := range tests {
		t.Run(tc.code, func(t *testing.T) {
			if got := FromCode(tc.code); got != tc.want {
				t.Errorf("FromCode(%q) = %q, want %q", tc.code, got, tc.want)
			}
		})
	}
}

func TestKnown(t *testing.T) {
	t.Parallel()

	if !Known("ru") {
		t.Error("Known(ru) = false, want true")
	}
	if Known("zz") {
		t.Error("Known(zz) = true, want false")
	}
}
