package scoring

import (
	"strings"
	"time"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
)

// Rule names a dealbreaker check.
type Rule string

const (
	RuleAge       Rule = "age"
	RuleReligion  Rule = "religion"
	RuleChildren  Rule = "children"
	RuleEducation Rule = "education"
)

// Rejection says whose dealbreaker excluded the pair.
type Rejection struct {
	Evaluator domain.Slot `json:"evaluator"`
	Rule      Rule        `json:"rule"`
}

// CheckDealbreakers evaluates both members' hard constraints against each
// other. Both directions must pass.
func CheckDealbreakers(a, b Participant, asOf time.Time) *Rejection {
	if rule, ok := passes(a, b, asOf); !ok {
		return &Rejection{Evaluator: domain.SlotA, Rule: rule}
	}
	if rule, ok := passes(b, a, asOf); !ok {
		return &Rejection{Evaluator: domain.SlotB, Rule: rule}
	}
	return nil
}

// passes checks candidate against evaluator's dealbreakers. Unset
// preferences and unknown candidate attributes never fail, except that a
// religion requirement cannot be met by an unknown faith.
func passes(evaluator, candidate Participant, asOf time.Time) (Rule, bool) {
	d := evaluator.Dealbreakers
	if d == nil {
		return "", true
	}
	cp := candidate.Profile

	if d.PreferredAgeMin != nil && d.PreferredAgeMax != nil {
		if age, ok := cp.AgeAt(asOf); ok && (age < *d.PreferredAgeMin || age > *d.PreferredAgeMax) {
			return RuleAge, false
		}
	}

	if d.ReligionMustMatch {
		own := ""
		if evaluator.Profile != nil && evaluator.Profile.Faith != nil {
			own = normalizeFaith(*evaluator.Profile.Faith)
		}
		if own != "" || len(d.AcceptableReligions) > 0 {
			if cp == nil || cp.Faith == nil {
				return RuleReligion, false
			}
			faith := normalizeFaith(*cp.Faith)
			if faith != own && !acceptsFaith(d, faith) {
				return RuleReligion, false
			}
		}
	}

	if d.MustWantChildren && cp != nil && cp.WantsChildren != nil && *cp.WantsChildren == domain.ChildrenNo {
		return RuleChildren, false
	}

	if d.MinEducationLevel != nil && cp != nil && cp.EducationLevel != nil && *cp.EducationLevel < *d.MinEducationLevel {
		return RuleEducation, false
	}

	return "", true
}

func acceptsFaith(d *domain.DealbreakerPreferences, faith string) bool {
	for _, r := range d.AcceptableReligions {
		if normalizeFaith(r) == faith {
			return true
		}
	}
	return false
}

func normalizeFaith(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
