package phonetics

import "testing"

func TestReadFrequency(t *testing.T) {
	got := ReadFrequency("123.500")
	want := "uno dos tres decimal cinco cero cero"
	if got != want {
		t.Errorf("ReadFrequency(123.500) = %q, want %q", got, want)
	}
}

func TestReadSlope(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"-1.5%", "menos uno punto cinco porciento"},
		{"- 1.5 %", "menos uno punto cinco porciento"},
		{"2%", "dos porciento"},
	}
	for _, tc := range cases {
		if got := ReadSlope(tc.in); got != tc.want {
			t.Errorf("ReadSlope(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSpellOut(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"LECU", "lima eco charlie uniform"},
		{"09", "cero nueve"},
		{"27R", "dos siete romeo"},
		{"a-1", "alfa - uno"},
	}
	for _, tc := range cases {
		if got := SpellOut(tc.in); got != tc.want {
			t.Errorf("SpellOut(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeUnits(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"450 m", "450 metros"},
		{"3000 ft", "3000 pies"},
		{"", ""},
		{"firme", "firme"}, // "m" inside a word is untouched
		{"450 m y 3000 ft", "450 metros y 3000 pies"},
	}
	for _, tc := range cases {
		if got := NormalizeUnits(tc.in); got != tc.want {
			t.Errorf("NormalizeUnits(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestWordToNumber(t *testing.T) {
	cases := []struct {
		in   string
		want int
		ok   bool
	}{
		{"uno", 1, true},
		{"Una", 1, true},
		{"un", 1, true},
		{"diez", 10, true},
		{"SIETE", 7, true},
		{"once", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, ok := WordToNumber(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Errorf("WordToNumber(%q) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestStripAccents(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Aeródromo", "aerodromo"},
		{"Camarenilla", "camarenilla"},
		{"SOTO DEL REAL", "soto del real"},
		{"niño", "nino"},
	}
	for _, tc := range cases {
		if got := StripAccents(tc.in); got != tc.want {
			t.Errorf("StripAccents(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
