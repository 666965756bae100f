package names

import (
	"strings"

	"github.com/gojp/kana"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// extended holds the foreign-sound digraphs, romanized the way romkan
// writes them. They are matched before a run is handed to the kana library.
var extended = map[string]string{
	"しぇ": "she", "じぇ": "je", "ちぇ": "che",
	"てぃ": "ti", "でぃ": "di", "とぅ": "tu", "どぅ": "du",
	"ふぁ": "fa", "ふぃ": "fi", "ふぇ": "fe", "ふぉ": "fo",
	"うぃ": "wi", "うぇ": "we", "うぉ": "wo",
	"ゔぁ": "va", "ゔぃ": "vi", "ゔぇ": "ve", "ゔぉ": "vo",
	"つぁ": "tsa", "つぃ": "tsi", "つぇ": "tse", "つぉ": "tso",
}

// standalone kana romanize on their own and never start a syllable.
var standalone = map[rune]string{
	'ー': "-",
	'ゔ': "vu",
	'ゕ': "xka",
	'ゖ': "xke",
}

// small rewrites small kana left over after a run was converted.
var small = strings.NewReplacer(
	"ぁ", "xa", "ぃ", "xi", "ぅ", "xu", "ぇ", "xe", "ぉ", "xo",
	"ゃ", "xya", "ゅ", "xyu", "ょ", "xyo", "ゎ", "xwa",
)

const (
	sokuon  = 'っ'
	moraicN = 'ん'

	// Placeholders resolved once the following syllable is known.
	sokuonMark  = '\uE000'
	moraicNMark = '\uE001'
)

// Romanize converts kana in s to Hepburn romaji without macrons. Input is
// width-folded and NFC-composed first, so half-width katakana and
// full-width Latin are accepted. Katakana is read as hiragana. Runes that
// are not kana pass through unchanged.
//
// A geminate consonant doubles the next consonant ("tch" before "ch"), a
// sokuon with no consonant after it becomes "xtsu", and a moraic n before a
// vowel or "y" is written "n'".
func Romanize(s string) string {
	src := []rune(toHiragana(fold(s)))

	var b strings.Builder
	for i := 0; i < len(src); {
		if roma, ok := digraph(src, i); ok {
			b.WriteString(roma)
			i += 2
			continue
		}

		r := src[i]
		switch {
		case r == sokuon:
			b.WriteRune(sokuonMark)
		case r == moraicN:
			b.WriteRune(moraicNMark)
		case standalone[r] != "":
			b.WriteString(standalone[r])
		case isHiragana(r):
			j := i + 1
			for j < len(src) && inRun(src, j) {
				j++
			}
			b.WriteString(small.Replace(kana.KanaToRomaji(string(src[i:j]))))
			i = j
			continue
		default:
			b.WriteRune(r)
		}
		i++
	}
	return resolve(b.String())
}

func digraph(src []rune, i int) (string, bool) {
	if i+1 >= len(src) {
		return "", false
	}
	roma, ok := extended[string(src[i:i+2])]
	return roma, ok
}

// inRun reports whether src[j] continues a run of ordinary hiragana.
func inRun(src []rune, j int) bool {
	r := src[j]
	if !isHiragana(r) || r == sokuon || r == moraicN || standalone[r] != "" {
		return false
	}
	_, ok := digraph(src, j)
	return !ok
}

// resolve replaces sokuon and moraic n marks by looking at the romaji that
// follows them.
func resolve(s string) string {
	if !strings.ContainsRune(s, sokuonMark) && !strings.ContainsRune(s, moraicNMark) {
		return s
	}

	rs := []rune(s)
	var b strings.Builder
	for i, r := range rs {
		var next rune
		if i+1 < len(rs) {
			next = rs[i+1]
		}
		switch r {
		case sokuonMark:
			switch {
			case next == 'c':
				b.WriteByte('t')
			case isConsonant(next):
				b.WriteRune(next)
			default:
				b.WriteString("xtsu")
			}
		case moraicNMark:
			b.WriteByte('n')
			if next != 0 && strings.ContainsRune("aiueoy", next) {
				b.WriteByte('\'')
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func isConsonant(r rune) bool {
	return r >= 'a' && r <= 'z' && !strings.ContainsRune("aiueo", r)
}

func isHiragana(r rune) bool {
	return r >= 'ぁ' && r <= 'ゖ'
}

// fold maps half-width katakana and full-width Latin to their canonical
// widths and composes voicing marks.
func fold(s string) string {
	return norm.NFC.String(width.Fold.String(s))
}

// toHiragana maps katakana to hiragana.
func toHiragana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 'ァ' && r <= 'ヶ' {
			return r - ('ァ' - 'ぁ')
		}
		return r
	}, s)
}
