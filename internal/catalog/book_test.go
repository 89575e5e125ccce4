package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTitle(t *testing.T) {
	testCases := []struct {
		name  string
		title string
		want  string
	}{
		{"plain", "Fundamentals", "Fundamentals"},
		{"spaces", "Fundamentals of Nursing", "Fundamentals_of_Nursing"},
		{"punctuation", "C++: A Guide!", "C____A_Guide_"},
		{"digits kept", "Catch 22", "Catch_22"},
		{"non latin", "کتێبخانە", "________"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NormalizeTitle(tc.title))
		})
	}
}

func TestCanonicalCode_PrefersTTI(t *testing.T) {
	b := Book{Title: "Principles of Management", TTICode: "TTI002", ISBN: "9780134486833"}

	assert.Equal(t, "TTI:TTI002", b.CanonicalCode())
	assert.Equal(t, "TTI:TTI002", b.TTICanonical())
	assert.Equal(t, "ISBN:9780134486833", b.ISBNCanonical())
	assert.Equal(t, "BOOK:Principles_of_Management", b.TitleCanonical())
}

func TestCanonicalCode_FallsBackToISBN(t *testing.T) {
	b := Book{Title: "Untagged", ISBN: "9781234567890"}
	assert.Equal(t, "ISBN:9781234567890", b.CanonicalCode())
}

func TestCanonicalCode_FallsBackToTitle(t *testing.T) {
	b := Book{Title: "Staff Picks: 2024"}
	assert.Equal(t, "BOOK:Staff_Picks__2024", b.CanonicalCode())
}

func TestCanonicalCode_BlankCodesAreIgnored(t *testing.T) {
	// Whitespace-only identifiers must not produce "TTI:" with an empty body.
	b := Book{Title: "Blank", TTICode: "  ", ISBN: " "}
	assert.Equal(t, "", b.TTICanonical())
	assert.Equal(t, "", b.ISBNCanonical())
	assert.Equal(t, "BOOK:Blank", b.CanonicalCode())
}
