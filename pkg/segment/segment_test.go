package segment

import (
	"testing"
)

func TestSet_Canonical(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "empty set is all",
			raw:  "",
			want: "all",
		},
		{
			name: "single segment",
			raw:  "man",
			want: "man",
		},
		{
			name: "members are sorted",
			raw:  "woman,man",
			want: "man+woman",
		},
		{
			name: "duplicates are removed",
			raw:  "kids,kids,man",
			want: "kids+man",
		},
		{
			name: "case insensitive",
			raw:  "KIDS,Man",
			want: "kids+man",
		},
		{
			name: "full vocabulary",
			raw:  "teens,kids,woman,man",
			want: "kids+man+teens+woman",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set, err := ParseSet(tt.raw)
			if err != nil {
				t.Fatalf("ParseSet(%q) failed: %v", tt.raw, err)
			}
			if got := set.Canonical(); got != tt.want {
				t.Errorf("Canonical() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSet_CanonicalEquivalence(t *testing.T) {
	// Any ordering and duplication of the same members must produce the same
	// key component.
	variants := []string{"man,kids", "kids,man", "kids,man,kids", " KIDS , man "}

	want := "kids+man"
	for _, raw := range variants {
		set, err := ParseSet(raw)
		if err != nil {
			t.Fatalf("ParseSet(%q) failed: %v", raw, err)
		}
		if got := set.Canonical(); got != want {
			t.Errorf("ParseSet(%q).Canonical() = %q, want %q", raw, got, want)
		}
	}
}

func TestParseSet_UnknownToken(t *testing.T) {
	if _, err := ParseSet("man,dragons"); err == nil {
		t.Error("ParseSet should reject unknown segment tokens")
	}
}

func TestSet_Contains(t *testing.T) {
	set, err := NewSet(Man, Kids)
	if err != nil {
		t.Fatalf("NewSet failed: %v", err)
	}

	if !set.Contains(Man) {
		t.Error("Contains(Man) = false, want true")
	}
	if set.Contains(Woman) {
		t.Error("Contains(Woman) = true, want false")
	}
}

func TestNewSet_Unknown(t *testing.T) {
	if _, err := NewSet(Segment("adults")); err == nil {
		t.Error("NewSet should reject segments outside the vocabulary")
	}
}
