package segment

import (
	"testing"
)

func mustSet(t *testing.T, segments ...Segment) Set {
	t.Helper()
	set, err := NewSet(segments...)
	if err != nil {
		t.Fatalf("NewSet failed: %v", err)
	}
	return set
}

func TestMatches_EmptySetAlwaysPasses(t *testing.T) {
	products := []struct {
		tags        []string
		productType string
	}{
		{nil, ""},
		{[]string{"men", "running"}, "Shoes"},
		{[]string{"gender:woman"}, ""},
		{[]string{"random", "stuff"}, "Gadget"},
	}

	for _, p := range products {
		if !Matches(p.tags, p.productType, nil) {
			t.Errorf("Matches(%v, %q, empty) = false, want true", p.tags, p.productType)
		}
	}
}

func TestMatches_GenderExclusivity(t *testing.T) {
	menTags := []string{"men", "running"}
	womenTags := []string{"women", "running"}

	if !Matches(menTags, "", mustSet(t, Man)) {
		t.Error("men-tagged product should match {man}")
	}
	if Matches(womenTags, "", mustSet(t, Man)) {
		t.Error("women-tagged product should not match {man}")
	}
	if !Matches(womenTags, "", mustSet(t, Woman)) {
		t.Error("women-tagged product should match {woman}")
	}
	if Matches(menTags, "", mustSet(t, Woman)) {
		t.Error("men-tagged product should not match {woman}")
	}

	both := mustSet(t, Man, Woman)
	if !Matches(menTags, "", both) || !Matches(womenTags, "", both) {
		t.Error("requesting {man,woman} should match either gender")
	}
}

func TestMatches_UnisexNoiseRejected(t *testing.T) {
	// A product matching both gender keyword lists must not leak into a
	// single-gender request.
	tags := []string{"men", "women", "unisex"}

	if Matches(tags, "", mustSet(t, Man)) {
		t.Error("dual-gender product should not match {man} alone")
	}
	if Matches(tags, "", mustSet(t, Woman)) {
		t.Error("dual-gender product should not match {woman} alone")
	}
	if !Matches(tags, "", mustSet(t, Man, Woman)) {
		t.Error("dual-gender product should match {man,woman}")
	}
}

func TestMatches_ExplicitGenderOverride(t *testing.T) {
	// The gender tag wins over any man-like token elsewhere.
	tags := []string{"gender:woman", "men", "mens-collection"}

	if Matches(tags, "Men Shirt", mustSet(t, Man)) {
		t.Error("gender:woman product must not match {man} despite man tokens")
	}
	if !Matches(tags, "Men Shirt", mustSet(t, Woman)) {
		t.Error("gender:woman product must match {woman}")
	}
}

func TestMatches_ExplicitGenderPinsSingleSegment(t *testing.T) {
	// An explicit gender tag suppresses all heuristic segments, including
	// teens/kids tokens.
	tags := []string{"gender:man", "kids"}

	if Matches(tags, "", mustSet(t, Kids)) {
		t.Error("gender:man product must not match {kids}")
	}
	if !Matches(tags, "", mustSet(t, Man)) {
		t.Error("gender:man product must match {man}")
	}
}

func TestMatches_SpanishSynonymsAndDiacritics(t *testing.T) {
	tests := []struct {
		name      string
		tags      []string
		ptype     string
		requested Set
		want      bool
	}{
		{
			name:      "hombre matches man",
			tags:      []string{"hombre"},
			requested: mustSet(t, Man),
			want:      true,
		},
		{
			name:      "mujer does not match man",
			tags:      []string{"mujer"},
			requested: mustSet(t, Man),
			want:      false,
		},
		{
			name:      "niños with diacritics matches kids",
			tags:      []string{"niños"},
			requested: mustSet(t, Kids),
			want:      true,
		},
		{
			name:      "product type tokens count",
			tags:      nil,
			ptype:     "Ropa Juvenil",
			requested: mustSet(t, Teens),
			want:      true,
		},
		{
			name:      "gender tag in spanish",
			tags:      []string{"gender:mujer"},
			requested: mustSet(t, Woman),
			want:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Matches(tt.tags, tt.ptype, tt.requested); got != tt.want {
				t.Errorf("Matches(%v, %q, %v) = %v, want %v",
					tt.tags, tt.ptype, tt.requested, got, tt.want)
			}
		})
	}
}

func TestMatches_MinorSegmentsIndependentOfGender(t *testing.T) {
	// A kids product that fails the man/woman test still passes when kids is
	// among the requested segments.
	tags := []string{"women", "kids"}

	requested := mustSet(t, Man, Kids)
	if !Matches(tags, "", requested) {
		t.Error("kids match should pass independently of the failed man test")
	}

	// But without a minor segment in the request, the gender test decides.
	if Matches(tags, "", mustSet(t, Man)) {
		t.Error("women+kids product should not match {man}")
	}
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"Men's Running-Shoes", []string{"men", "s", "running", "shoes"}},
		{"gender:woman", []string{"gender:woman"}},
		{"Niño, bebé", []string{"nino", "bebe"}},
		{"", nil},
	}

	for _, tt := range tests {
		got := Tokenize(tt.in)
		if len(got) != len(tt.want) {
			t.Errorf("Tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Tokenize(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
			}
		}
	}
}
