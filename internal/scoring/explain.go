package scoring

import (
	"fmt"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
)

// Bands maps every component onto its qualitative band.
func Bands(c domain.ComponentScores) domain.ComponentBands {
	return domain.ComponentBands{
		LifeAlignment: domain.BandFor(c.LifeAlignment),
		Psychological: domain.BandFor(c.Psychological),
		Chemistry:     domain.BandFor(c.Chemistry),
		TasteFit:      domain.BandFor(c.TasteFit),
		Completeness:  domain.BandFor(c.Completeness),
	}
}

var bandPhrases = map[domain.Band]string{
	domain.BandVeryStrong: "very strong",
	domain.BandStrong:     "strong",
	domain.BandModerate:   "moderate",
	domain.BandWeak:       "weak",
	domain.BandMismatch:   "a mismatch",
}

// Explain renders one sentence per component from the pair-level average of
// both perspectives. Order is fixed.
func Explain(aToB, bToA domain.ComponentScores) []string {
	rows := []struct {
		label string
		a, b  float64
	}{
		{"Life goals and values", aToB.LifeAlignment, bToA.LifeAlignment},
		{"Personality fit", aToB.Psychological, bToA.Psychological},
		{"Chemistry on past dates", aToB.Chemistry, bToA.Chemistry},
		{"Fit with learned taste", aToB.TasteFit, bToA.TasteFit},
		{"Profile completeness", aToB.Completeness, bToA.Completeness},
	}
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		band := domain.BandFor((r.a + r.b) / 2)
		out = append(out, fmt.Sprintf("%s: %s", r.label, bandPhrases[band]))
	}
	return out
}
