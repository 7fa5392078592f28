package segment

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// keywords maps each segment to its normalized synonym list. Tokens from
// product tags and product-type strings are matched against this table when no
// explicit gender tag is present. Synonyms cover English and Spanish because
// upstream taxonomy mixes both (diacritics are stripped before matching, so
// "niños" arrives as "ninos").
var keywords = map[Segment][]string{
	Man:   {"man", "men", "mens", "male", "hombre", "hombres", "caballero", "caballeros", "masculino"},
	Woman: {"woman", "women", "womens", "female", "mujer", "mujeres", "dama", "damas", "femenino"},
	Teens: {"teen", "teens", "teenager", "teenagers", "adolescente", "adolescentes", "juvenil", "joven", "jovenes"},
	Kids:  {"kid", "kids", "child", "children", "nino", "ninos", "nina", "ninas", "infantil", "bebe", "bebes"},
}

// genderTagPrefix marks an explicit, authoritative segment assignment in the
// upstream tags, e.g. "gender:woman" or "gender:mujer".
const genderTagPrefix = "gender:"

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lower-cases a token and strips diacritics.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	return s
}

// Tokenize normalizes the input and splits it on non-alphanumeric separators.
// The ':' separator is retained inside tokens so that "gender:woman" survives
// as a single token.
func Tokenize(s string) []string {
	s = Normalize(s)
	return strings.FieldsFunc(s, func(r rune) bool {
		if r == ':' {
			return false
		}
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Matches reports whether a product with the given tags and product type
// belongs to any of the requested segments.
//
// An empty requested set always matches (no filter). An explicit gender tag
// overrides all heuristics. man and woman are mutually exclusive when only one
// of them is requested: a product matching both keyword lists is rejected, so
// unisex tag noise does not leak across the boundary. The remaining segments
// are OR-combined independently of the gender outcome.
func Matches(tags []string, productType string, requested Set) bool {
	if requested.IsEmpty() {
		return true
	}

	matched := classify(tags, productType)

	wantMan := requested.Contains(Man)
	wantWoman := requested.Contains(Woman)

	genderPass := false
	switch {
	case wantMan && wantWoman:
		genderPass = matched[Man] || matched[Woman]
	case wantMan:
		genderPass = matched[Man] && !matched[Woman]
	case wantWoman:
		genderPass = matched[Woman] && !matched[Man]
	}
	if genderPass {
		return true
	}

	for _, s := range requested {
		if !isGender(s) && matched[s] {
			return true
		}
	}
	return false
}

// classify computes the set of segments a product belongs to. An explicit
// gender tag pins the product to exactly one segment; otherwise every tag and
// product-type token is tested against the keyword table.
func classify(tags []string, productType string) map[Segment]bool {
	if s, ok := explicitGender(tags); ok {
		return map[Segment]bool{s: true}
	}

	matched := make(map[Segment]bool, len(keywords))
	consider := func(token string) {
		for seg, words := range keywords {
			if matched[seg] {
				continue
			}
			for _, w := range words {
				if token == w {
					matched[seg] = true
					break
				}
			}
		}
	}

	for _, tag := range tags {
		for _, tok := range Tokenize(tag) {
			consider(tok)
		}
	}
	for _, tok := range Tokenize(productType) {
		consider(tok)
	}
	return matched
}

// explicitGender scans the tags for a "gender:<value>" marker whose value maps
// to a vocabulary segment. Unrecognized values fall through to the heuristics.
func explicitGender(tags []string) (Segment, bool) {
	for _, tag := range tags {
		for _, tok := range Tokenize(tag) {
			if !strings.HasPrefix(tok, genderTagPrefix) {
				continue
			}
			value := strings.TrimPrefix(tok, genderTagPrefix)
			for seg, words := range keywords {
				for _, w := range words {
					if value == w || value == string(seg) {
						return seg, true
					}
				}
			}
		}
	}
	return "", false
}
