// Package names derives stable identifiers and default display names from
// Japanese personal names.
package names

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/rollcall/pkg/errors"
)

// Language codes for Localize.
const (
	Japanese = "ja"
	English  = "en"
)

// DeriveID transliterates a personal name into a latin identifier with an
// upper-cased first letter. Whitespace-only names are rejected.
func DeriveID(personal string) (string, error) {
	personal = strings.TrimSpace(personal)
	if personal == "" {
		return "", errors.NewInvalidNameError(personal, "empty personal name")
	}
	return upperFirst(Romanize(personal)), nil
}

// Parts is the name data Localize needs.
type Parts struct {
	FamilyName     string
	PersonalName   string
	FamilyNameRuby string
}

var titler = cases.Title(language.English, cases.NoLower)

// Localize returns default display names keyed by language for an entity.
//
// With a family name: ja is "Family Personal", en is the romanized family
// ruby followed by the id. Without one: ja is the personal name and en is
// the id split on underscores with "npc" segments dropped.
func Localize(id string, p Parts) map[string]string {
	if p.FamilyName != "" {
		en := id
		if ruby := strings.TrimSpace(p.FamilyNameRuby); ruby != "" {
			en = upperFirst(Romanize(ruby)) + " " + id
		}
		return map[string]string{
			Japanese: p.FamilyName + " " + p.PersonalName,
			English:  en,
		}
	}

	words := make([]string, 0, 4)
	for _, seg := range strings.Split(id, "_") {
		if seg == "" || seg == "npc" {
			continue
		}
		words = append(words, seg)
	}
	ja := p.PersonalName
	if ja == "" {
		ja = id
	}
	return map[string]string{
		Japanese: ja,
		English:  titler.String(strings.Join(words, " ")),
	}
}

func upperFirst(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
