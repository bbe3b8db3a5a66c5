package domain

import (
	"time"

	"github.com/google/uuid"
)

type AssessmentCategory string

const (
	CategoryEmotional     AssessmentCategory = "emotional"
	CategoryLifestyle     AssessmentCategory = "lifestyle"
	CategoryAmbition      AssessmentCategory = "ambition"
	CategoryFamily        AssessmentCategory = "family"
	CategoryCommunication AssessmentCategory = "communication"
)

// Polarity decides whether agreement on an item means closeness or distance.
type Polarity string

const (
	PolaritySimilarity Polarity = "similarity"
	PolarityComplement Polarity = "complement"
)

type AssessmentItem struct {
	Key      string
	Category AssessmentCategory
	Polarity Polarity
}

// AssessmentItemCount is the number of questions in the assessment.
const AssessmentItemCount = 20

// AssessmentItems is the fixed questionnaire. Answers are stored in this order.
var AssessmentItems = [AssessmentItemCount]AssessmentItem{
	{"emotional_expressiveness", CategoryEmotional, PolaritySimilarity},
	{"conflict_style", CategoryEmotional, PolaritySimilarity},
	{"affection_style", CategoryEmotional, PolaritySimilarity},
	{"stress_response", CategoryEmotional, PolarityComplement},

	{"social_energy", CategoryLifestyle, PolarityComplement},
	{"lifestyle_pace", CategoryLifestyle, PolaritySimilarity},
	{"tidiness", CategoryLifestyle, PolaritySimilarity},
	{"adventure_seeking", CategoryLifestyle, PolaritySimilarity},

	{"career_focus", CategoryAmbition, PolaritySimilarity},
	{"financial_approach", CategoryAmbition, PolaritySimilarity},
	{"growth_mindset", CategoryAmbition, PolaritySimilarity},
	{"leadership_style", CategoryAmbition, PolarityComplement},

	{"family_closeness", CategoryFamily, PolaritySimilarity},
	{"parenting_style", CategoryFamily, PolaritySimilarity},
	{"tradition_value", CategoryFamily, PolaritySimilarity},
	{"household_roles", CategoryFamily, PolaritySimilarity},

	{"conversation_depth", CategoryCommunication, PolaritySimilarity},
	{"directness", CategoryCommunication, PolaritySimilarity},
	{"humor_style", CategoryCommunication, PolaritySimilarity},
	{"planning_style", CategoryCommunication, PolarityComplement},
}

// Item indexes read by the taste learner.
const (
	ItemAffectionStyle    = 2
	ItemSocialEnergy      = 4
	ItemLifestylePace     = 5
	ItemConversationDepth = 16
)

// CompatibilityAssessment is one user's answers, each 1..5.
type CompatibilityAssessment struct {
	UserID      uuid.UUID `json:"user_id" db:"user_id"`
	Answers     []int     `json:"answers" validate:"len=20,dive,min=1,max=5"`
	CompletedAt time.Time `json:"completed_at" db:"completed_at"`
}

// Answer returns the answer at item index i.
func (a *CompatibilityAssessment) Answer(i int) (int, bool) {
	if a == nil || i < 0 || i >= len(a.Answers) {
		return 0, false
	}
	v := a.Answers[i]
	if v < 1 || v > 5 {
		return 0, false
	}
	return v, true
}
