package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestResolve_TruthTable(t *testing.T) {
	want := map[[2]Choice]ResultType{
		{ChoiceDate, ChoiceDate}:     ResultMutualDate,
		{ChoiceDate, ChoiceFriend}:   ResultMutualFriend,
		{ChoiceFriend, ChoiceDate}:   ResultMutualFriend,
		{ChoiceFriend, ChoiceFriend}: ResultMutualFriend,
		{ChoiceDate, ChoiceNo}:       ResultNoMatch,
		{ChoiceFriend, ChoiceNo}:     ResultNoMatch,
		{ChoiceNo, ChoiceDate}:       ResultNoMatch,
		{ChoiceNo, ChoiceFriend}:     ResultNoMatch,
		{ChoiceNo, ChoiceNo}:         ResultNoMatch,
	}
	for in, expected := range want {
		if got := Resolve(in[0], in[1]); got != expected {
			t.Fatalf("Resolve(%s, %s) = %s, want %s", in[0], in[1], got, expected)
		}
		if got := Resolve(in[1], in[0]); got != expected {
			t.Fatalf("Resolve is not symmetric for (%s, %s)", in[0], in[1])
		}
	}
}

func TestResolvePair_KeepsEachSidesOwnFlags(t *testing.T) {
	lo := uuid.MustParse("10000000-0000-0000-0000-000000000000")
	hi := uuid.MustParse("90000000-0000-0000-0000-000000000000")
	event := uuid.New()

	x := &MatchChoice{EventID: event, ScorerID: hi, ScoredID: lo, Choice: ChoiceDate, ShareFlags: ShareFlags{Phone: true}}
	y := &MatchChoice{EventID: event, ScorerID: lo, ScoredID: hi, Choice: ChoiceDate, ShareFlags: ShareFlags{Instagram: true}}

	res := ResolvePair(event, x, y, time.Unix(0, 0))
	if res.UserA != lo || res.UserB != hi {
		t.Fatalf("result not canonical: %+v", res)
	}
	if res.ShareA != (ShareFlags{Instagram: true}) || res.ShareB != (ShareFlags{Phone: true}) {
		t.Fatalf("share flags were merged or swapped: a=%+v b=%+v", res.ShareA, res.ShareB)
	}
	if res.SharedWith(hi) != (ShareFlags{Instagram: true}) {
		t.Fatalf("hi should see what lo shared")
	}
	if other, _ := res.GetOtherUserID(lo); other != hi {
		t.Fatalf("unexpected counterpart %s", other)
	}
}

func TestEvent_SubmissionWindowOpen(t *testing.T) {
	now := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		ev   Event
		want bool
	}{
		{"closed", Event{}, false},
		{"open", Event{MatchingOpen: true}, true},
		{"locked", Event{MatchingOpen: true, MatchingLocked: true}, false},
		{"before deadline", Event{MatchingOpen: true, MatchingDeadline: &future}, true},
		{"after deadline", Event{MatchingOpen: true, MatchingDeadline: &past}, false},
		{"at deadline", Event{MatchingOpen: true, MatchingDeadline: &now}, false},
	}
	for _, tt := range tests {
		if got := tt.ev.SubmissionWindowOpen(now); got != tt.want {
			t.Fatalf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestProfile_SeekedGenders(t *testing.T) {
	pref := func(p SexualPreference) *SexualPreference { return &p }
	tests := []struct {
		name string
		p    Profile
		want []Gender
	}{
		{"default male", Profile{Gender: GenderMale}, []Gender{GenderFemale}},
		{"default female", Profile{Gender: GenderFemale}, []Gender{GenderMale}},
		{"unknown gender, no preference", Profile{}, nil},
		{"men", Profile{Gender: GenderMale, SexualPreference: pref(PreferenceMen)}, []Gender{GenderMale}},
		{"women", Profile{Gender: GenderFemale, SexualPreference: pref(PreferenceWomen)}, []Gender{GenderFemale}},
		{"both", Profile{Gender: GenderMale, SexualPreference: pref(PreferenceBoth)}, []Gender{GenderMale, GenderFemale}},
	}
	for _, tt := range tests {
		got := tt.p.SeekedGenders()
		if len(got) != len(tt.want) {
			t.Fatalf("%s: got %v, want %v", tt.name, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Fatalf("%s: got %v, want %v", tt.name, got, tt.want)
			}
		}
	}
}

func TestDateRating_IsPositive(t *testing.T) {
	base := DateRating{ConversationQuality: 3, LongTermPotential: 3, PhysicalChemistry: 3, ComfortLevel: 5, ValuesAlignment: 5, EnergyCompatibility: 5}
	if base.IsPositive() {
		t.Fatalf("high comfort/values/energy alone must not count as positive")
	}
	again := base
	again.WouldMeetAgain = true
	if !again.IsPositive() {
		t.Fatalf("would_meet_again must count as positive")
	}
	chem := base
	chem.PhysicalChemistry = 4
	if !chem.IsPositive() {
		t.Fatalf("physical chemistry 4 must count as positive")
	}
}

func TestMatchWeights_Validate(t *testing.T) {
	if err := DefaultMatchWeights().Validate(); err != nil {
		t.Fatalf("default weights invalid: %v", err)
	}
	bad := []MatchWeights{
		{LifeAlignment: 0.6},
		{LifeAlignment: -0.1},
		{LifeAlignment: 0.5, Psychological: 0.5, Chemistry: 0.1},
	}
	for _, w := range bad {
		if err := w.Validate(); err == nil {
			t.Fatalf("expected %+v to be rejected", w)
		}
	}
	partial := MatchWeights{LifeAlignment: 0.2}
	if err := partial.Validate(); err != nil {
		t.Fatalf("partial allocation should be valid: %v", err)
	}
	if r := partial.Remainder(); r < 0.79 || r > 0.81 {
		t.Fatalf("unexpected remainder %v", r)
	}
}
