// Package phonetics converts domain values (codes, frequencies, slopes,
// units) into speakable Spanish strings. All functions are pure and
// deterministic.
package phonetics

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// phoneticTable maps single characters to their spoken form: ICAO alphabet
// words for letters, Spanish cardinal words for digits.
var phoneticTable = map[rune]string{
	'a': "alfa", 'b': "bravo", 'c': "charlie", 'd': "delta",
	'e': "eco", 'f': "foxtrot", 'g': "golf", 'h': "hotel",
	'i': "india", 'j': "juliett", 'k': "kilo", 'l': "lima",
	'm': "mike", 'n': "november", 'o': "oscar", 'p': "papa",
	'q': "quebec", 'r': "romeo", 's': "sierra", 't': "tango",
	'u': "uniform", 'v': "victor", 'w': "whiskey", 'x': "xray",
	'y': "yankee", 'z': "zulu",
	'0': "cero", '1': "uno", '2': "dos", '3': "tres", '4': "cuatro",
	'5': "cinco", '6': "seis", '7': "siete", '8': "ocho", '9': "nueve",
}

// numberWords maps Spanish cardinal number words to integers 1-10.
// The gendered forms "una" and "un" are accepted for 1.
var numberWords = map[string]int{
	"uno": 1, "una": 1, "un": 1,
	"dos": 2, "tres": 3, "cuatro": 4, "cinco": 5,
	"seis": 6, "siete": 7, "ocho": 8, "nueve": 9, "diez": 10,
}

var unitWords = regexp.MustCompile(`\b(m|ft)\b`)

var stripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// SpellOut renders an alphanumeric token character by character through the
// phonetic table. Unmapped characters pass through unchanged.
func SpellOut(token string) string {
	return spell(token, nil)
}

// ReadFrequency renders a radio frequency digit by digit, speaking the
// decimal point as "decimal".
func ReadFrequency(value string) string {
	return spell(value, map[rune]string{'.': "decimal"})
}

// ReadSlope renders a runway slope value, mapping the sign and symbols to
// words. Spaces are dropped from the output.
func ReadSlope(value string) string {
	return spell(value, map[rune]string{
		'-': "menos",
		'.': "punto",
		'%': "porciento",
		' ': "",
	})
}

// spell maps each character through extras first, then the phonetic table.
// An empty mapping in extras drops the character.
func spell(value string, extras map[rune]string) string {
	words := make([]string, 0, len(value))
	for _, r := range strings.ToLower(value) {
		if extras != nil {
			if word, ok := extras[r]; ok {
				if word != "" {
					words = append(words, word)
				}
				continue
			}
		}
		if word, ok := phoneticTable[r]; ok {
			words = append(words, word)
		} else {
			words = append(words, string(r))
		}
	}
	return strings.Join(words, " ")
}

// NormalizeUnits replaces whole-word unit abbreviations with their full
// Spanish words. Empty input yields an empty string.
func NormalizeUnits(text string) string {
	if text == "" {
		return ""
	}
	return unitWords.ReplaceAllStringFunc(text, func(unit string) string {
		switch unit {
		case "m":
			return "metros"
		case "ft":
			return "pies"
		}
		return unit
	})
}

// WordToNumber converts a Spanish cardinal number word to an integer in
// [1, 10]. The second return value reports whether the word was recognized.
func WordToNumber(word string) (int, bool) {
	n, ok := numberWords[strings.ToLower(strings.TrimSpace(word))]
	return n, ok
}

// StripAccents removes diacritical marks and lowercases the text. Used for
// fuzzy aerodrome name and code matching.
func StripAccents(text string) string {
	stripped, _, err := transform.String(stripper, text)
	if err != nil {
		return strings.ToLower(text)
	}
	return strings.ToLower(stripped)
}
