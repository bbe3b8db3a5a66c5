package matchchoice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
	"github.com/gdugdh24/speeddate-backend/internal/infrastructure/logger"
	"github.com/gdugdh24/speeddate-backend/internal/repository/memory"
)

var eventTime = time.Date(2026, 5, 14, 21, 0, 0, 0, time.UTC)

type mixer struct {
	store          *memory.Store
	uc             *MatchChoiceUseCase
	event          uuid.UUID
	m1, m2, w1, w2 uuid.UUID
}

func newMixer(t *testing.T) *mixer {
	t.Helper()
	store := memory.New()
	deadline := eventTime.Add(48 * time.Hour)
	mx := &mixer{store: store, event: uuid.New()}
	store.PutEvent(&domain.Event{ID: mx.event, Title: "Friday mixer", MatchingOpen: true, MatchingDeadline: &deadline})

	add := func(name string, g domain.Gender) uuid.UUID {
		id := uuid.New()
		store.PutProfile(&domain.Profile{UserID: id, DisplayName: name, Gender: g, IsActive: true})
		store.Register(mx.event, id, domain.RegistrationAttended)
		return id
	}
	mx.m1 = add("M1", domain.GenderMale)
	mx.m2 = add("M2", domain.GenderMale)
	mx.w1 = add("W1", domain.GenderFemale)
	mx.w2 = add("W2", domain.GenderFemale)

	mx.uc = NewMatchChoiceUseCase(
		store.EventRepository(),
		store.MatchChoiceRepository(),
		store.MatchResultRepository(),
		store.PrivacyRepository(),
		store.SubscriptionRepository(),
		logger.NewNop(),
	)
	mx.uc.now = func() time.Time { return eventTime }
	return mx
}

func pick(id uuid.UUID, c domain.Choice) ChoiceInput {
	return ChoiceInput{CandidateID: id, Choice: c}
}

func (mx *mixer) submit(t *testing.T, scorer uuid.UUID, inputs ...ChoiceInput) {
	t.Helper()
	if err := mx.uc.SubmitChoices(context.Background(), mx.event, scorer, inputs); err != nil {
		t.Fatalf("SubmitChoices: %v", err)
	}
}

func resultFor(results []domain.MatchResult, x, y uuid.UUID) (domain.MatchResult, bool) {
	for _, r := range results {
		if (r.UserA == x && r.UserB == y) || (r.UserA == y && r.UserB == x) {
			return r, true
		}
	}
	return domain.MatchResult{}, false
}

func TestSubmitChoices_ResolvesRosterScenario(t *testing.T) {
	mx := newMixer(t)
	mx.store.PutPrivacyDefaults(mx.m1, domain.ShareFlags{Instagram: true})
	w1Share := domain.ShareFlags{Phone: true, WhatsApp: true}

	mx.submit(t, mx.m1, pick(mx.w1, domain.ChoiceDate), pick(mx.w2, domain.ChoiceNo))
	mx.submit(t, mx.m2, pick(mx.w1, domain.ChoiceFriend), pick(mx.w2, domain.ChoiceFriend))
	mx.submit(t, mx.w1,
		ChoiceInput{CandidateID: mx.m1, Choice: domain.ChoiceDate, Share: &w1Share},
		pick(mx.m2, domain.ChoiceNo))
	mx.submit(t, mx.w2, pick(mx.m1, domain.ChoiceDate), pick(mx.m2, domain.ChoiceDate))

	results := mx.store.Results(mx.event)
	if len(results) != 4 {
		t.Fatalf("expected 4 resolved pairs, got %d", len(results))
	}
	tests := []struct {
		x, y uuid.UUID
		want domain.ResultType
	}{
		{mx.m1, mx.w1, domain.ResultMutualDate},
		{mx.m2, mx.w2, domain.ResultMutualFriend},
		{mx.m1, mx.w2, domain.ResultNoMatch},
		{mx.m2, mx.w1, domain.ResultNoMatch},
	}
	for _, tt := range tests {
		r, ok := resultFor(results, tt.x, tt.y)
		if !ok || r.ResultType != tt.want {
			t.Fatalf("pair result %v (found=%v), want %s", r.ResultType, ok, tt.want)
		}
	}

	// each side keeps its own flags
	page, err := mx.uc.GetMatchResults(context.Background(), mx.event, mx.m1)
	if err != nil {
		t.Fatalf("GetMatchResults: %v", err)
	}
	if len(page.Matches) != 1 || page.Matches[0].UserID != mx.w1 || page.Matches[0].DisplayName != "W1" {
		t.Fatalf("M1 should only see W1, got %+v", page.Matches)
	}
	if page.Matches[0].TheirShare != w1Share {
		t.Fatalf("M1 sees %+v, want W1's own flags %+v", page.Matches[0].TheirShare, w1Share)
	}
	if page.Pending != 0 || !page.Submitted {
		t.Fatalf("unexpected page state %+v", page)
	}

	page, err = mx.uc.GetMatchResults(context.Background(), mx.event, mx.w1)
	if err != nil {
		t.Fatalf("GetMatchResults: %v", err)
	}
	if len(page.Matches) != 1 || page.Matches[0].TheirShare != (domain.ShareFlags{Instagram: true}) {
		t.Fatalf("W1 should see M1's privacy defaults, got %+v", page.Matches)
	}
}

func TestGetMatchResults_CountsPendingAttendees(t *testing.T) {
	mx := newMixer(t)
	mx.submit(t, mx.m1, pick(mx.w1, domain.ChoiceDate), pick(mx.w2, domain.ChoiceDate))

	page, err := mx.uc.GetMatchResults(context.Background(), mx.event, mx.m1)
	if err != nil {
		t.Fatalf("GetMatchResults: %v", err)
	}
	if page.Pending != 3 || len(page.Matches) != 0 {
		t.Fatalf("expected 3 pending and no matches, got %+v", page)
	}

	page, err = mx.uc.GetMatchResults(context.Background(), mx.event, mx.w1)
	if err != nil {
		t.Fatalf("GetMatchResults: %v", err)
	}
	if page.Pending != 2 || page.Submitted {
		t.Fatalf("W1 view: %+v", page)
	}

	if _, err := mx.uc.GetMatchResults(context.Background(), mx.event, uuid.New()); !errors.Is(err, domain.ErrNotOnRoster) {
		t.Fatalf("stranger should get ErrNotOnRoster, got %v", err)
	}
}

func TestSubmitChoices_RejectsWithoutWriting(t *testing.T) {
	mx := newMixer(t)

	stranger := uuid.New()
	mx.store.PutProfile(&domain.Profile{UserID: stranger, Gender: domain.GenderMale, IsActive: true})
	dropped := uuid.New()
	mx.store.PutProfile(&domain.Profile{UserID: dropped, Gender: domain.GenderMale, IsActive: true})
	mx.store.Register(mx.event, dropped, domain.RegistrationCancelled)

	tests := []struct {
		name   string
		scorer uuid.UUID
		inputs []ChoiceInput
		want   domain.SubmissionReason
	}{
		{"unregistered", stranger, []ChoiceInput{pick(mx.w1, domain.ChoiceDate)}, domain.ReasonNotRegistered},
		{"cancelled", dropped, []ChoiceInput{pick(mx.w1, domain.ChoiceDate)}, domain.ReasonNotRegistered},
		{"incomplete", mx.m1, []ChoiceInput{pick(mx.w1, domain.ChoiceDate)}, domain.ReasonIncompleteSubmission},
		{"empty", mx.m1, nil, domain.ReasonIncompleteSubmission},
		{"ineligible candidate", mx.m1, []ChoiceInput{pick(mx.w1, domain.ChoiceDate), pick(mx.w2, domain.ChoiceNo), pick(mx.m2, domain.ChoiceFriend)}, domain.ReasonUnexpectedCandidate},
		{"self", mx.m1, []ChoiceInput{pick(mx.m1, domain.ChoiceDate)}, domain.ReasonUnexpectedCandidate},
		{"duplicate", mx.m1, []ChoiceInput{pick(mx.w1, domain.ChoiceDate), pick(mx.w1, domain.ChoiceNo)}, domain.ReasonDuplicateCandidate},
		{"invalid", mx.m1, []ChoiceInput{pick(mx.w1, "maybe"), pick(mx.w2, domain.ChoiceNo)}, domain.ReasonInvalidChoice},
	}
	for _, tt := range tests {
		err := mx.uc.SubmitChoices(context.Background(), mx.event, tt.scorer, tt.inputs)
		reason, ok := domain.RejectionReason(err)
		if !ok || reason != tt.want {
			t.Fatalf("%s: got %v, want %s", tt.name, err, tt.want)
		}
	}

	submitters, err := mx.store.MatchChoiceRepository().ListSubmitters(context.Background(), mx.event)
	if err != nil {
		t.Fatalf("ListSubmitters: %v", err)
	}
	if len(submitters) != 0 {
		t.Fatalf("rejected submissions left state behind: %v", submitters)
	}
	choices, _ := mx.store.MatchChoiceRepository().ListByEvent(context.Background(), mx.event)
	if len(choices) != 0 {
		t.Fatalf("rejected submissions wrote %d choices", len(choices))
	}
}

func TestSubmitChoices_CommitsOnce(t *testing.T) {
	mx := newMixer(t)
	mx.submit(t, mx.m1, pick(mx.w1, domain.ChoiceDate), pick(mx.w2, domain.ChoiceNo))

	err := mx.uc.SubmitChoices(context.Background(), mx.event, mx.m1,
		[]ChoiceInput{pick(mx.w1, domain.ChoiceNo), pick(mx.w2, domain.ChoiceDate)})
	if reason, _ := domain.RejectionReason(err); reason != domain.ReasonAlreadySubmitted {
		t.Fatalf("expected already_submitted, got %v", err)
	}

	// the store guard holds even when the fast-path check is skipped
	err = mx.store.MatchChoiceRepository().SubmitAll(context.Background(), mx.event, mx.m1,
		[]domain.MatchChoice{{ScoredID: mx.w1, Choice: domain.ChoiceNo}})
	if reason, _ := domain.RejectionReason(err); reason != domain.ReasonAlreadySubmitted {
		t.Fatalf("store accepted a second submission: %v", err)
	}

	choices, _ := mx.store.MatchChoiceRepository().ListByEvent(context.Background(), mx.event)
	for _, c := range choices {
		if c.ScoredID == mx.w1 && c.Choice != domain.ChoiceDate {
			t.Fatalf("original choice was overwritten: %+v", c)
		}
	}
}

func TestSubmitChoices_WindowClosed(t *testing.T) {
	mx := newMixer(t)
	inputs := []ChoiceInput{pick(mx.w1, domain.ChoiceDate), pick(mx.w2, domain.ChoiceNo)}

	mx.uc.now = func() time.Time { return eventTime.Add(72 * time.Hour) }
	if reason, _ := domain.RejectionReason(mx.uc.SubmitChoices(context.Background(), mx.event, mx.m1, inputs)); reason != domain.ReasonWindowClosed {
		t.Fatalf("expected window_closed past the deadline")
	}

	mx.uc.now = func() time.Time { return eventTime }
	mx.store.PutEvent(&domain.Event{ID: mx.event, MatchingOpen: true, MatchingLocked: true})
	if reason, _ := domain.RejectionReason(mx.uc.SubmitChoices(context.Background(), mx.event, mx.m1, inputs)); reason != domain.ReasonWindowClosed {
		t.Fatalf("expected window_closed on a locked event")
	}
}

func TestGetChoiceForm_PrefillsShareFlags(t *testing.T) {
	mx := newMixer(t)
	mx.store.PutPrivacyDefaults(mx.w1, domain.ShareFlags{Email: true, Facebook: true})

	form, err := mx.uc.GetChoiceForm(context.Background(), mx.event, mx.w1)
	if err != nil {
		t.Fatalf("GetChoiceForm: %v", err)
	}
	if !form.WindowOpen || form.Submitted || len(form.Candidates) != 2 {
		t.Fatalf("unexpected form %+v", form)
	}
	for _, c := range form.Candidates {
		if c.UserID != mx.m1 && c.UserID != mx.m2 {
			t.Fatalf("W1 offered a non-eligible candidate %s", c.DisplayName)
		}
		if c.Share != (domain.ShareFlags{Email: true, Facebook: true}) {
			t.Fatalf("flags not prefilled from defaults: %+v", c.Share)
		}
	}

	form, err = mx.uc.GetChoiceForm(context.Background(), mx.event, mx.m2)
	if err != nil {
		t.Fatalf("GetChoiceForm: %v", err)
	}
	if form.Candidates[0].Share != domain.DefaultShareFlags() {
		t.Fatalf("users without defaults should get DefaultShareFlags, got %+v", form.Candidates[0].Share)
	}
}

func TestGetChoiceForm_HonoursSexualPreference(t *testing.T) {
	mx := newMixer(t)
	both := domain.PreferenceBoth
	bi := uuid.New()
	mx.store.PutProfile(&domain.Profile{UserID: bi, Gender: domain.GenderFemale, SexualPreference: &both, IsActive: true})
	mx.store.Register(mx.event, bi, domain.RegistrationConfirmed)

	form, err := mx.uc.GetChoiceForm(context.Background(), mx.event, bi)
	if err != nil {
		t.Fatalf("GetChoiceForm: %v", err)
	}
	if len(form.Candidates) != 4 {
		t.Fatalf("expected all four other attendees, got %d", len(form.Candidates))
	}
}

func TestGetVIPBonus(t *testing.T) {
	mx := newMixer(t)
	mx.submit(t, mx.m1, pick(mx.w1, domain.ChoiceDate), pick(mx.w2, domain.ChoiceNo))
	mx.submit(t, mx.m2, pick(mx.w1, domain.ChoiceFriend), pick(mx.w2, domain.ChoiceFriend))

	if _, err := mx.uc.GetVIPBonus(context.Background(), mx.event, mx.w2); !errors.Is(err, domain.ErrVIPRequired) {
		t.Fatalf("expected ErrVIPRequired, got %v", err)
	}

	mx.store.SetVIP(mx.w2, true)
	admirers, err := mx.uc.GetVIPBonus(context.Background(), mx.event, mx.w2)
	if err != nil {
		t.Fatalf("GetVIPBonus: %v", err)
	}
	// W2 has not submitted; the view does not depend on mutuality
	if len(admirers) != 1 || admirers[0].UserID != mx.m2 || admirers[0].Choice != domain.ChoiceFriend {
		t.Fatalf("unexpected admirers %+v", admirers)
	}
}

func TestResolveEvent_IsIdempotent(t *testing.T) {
	mx := newMixer(t)
	mx.submit(t, mx.m1, pick(mx.w1, domain.ChoiceDate), pick(mx.w2, domain.ChoiceFriend))
	mx.submit(t, mx.w1, pick(mx.m1, domain.ChoiceFriend), pick(mx.m2, domain.ChoiceNo))
	before := mx.store.Results(mx.event)

	for i := 0; i < 2; i++ {
		n, err := mx.uc.ResolveEvent(context.Background(), mx.event)
		if err != nil {
			t.Fatalf("ResolveEvent: %v", err)
		}
		if n != 1 {
			t.Fatalf("expected 1 resolvable pair, got %d", n)
		}
	}

	after := mx.store.Results(mx.event)
	if len(after) != 1 || len(before) != 1 {
		t.Fatalf("results before %d, after %d", len(before), len(after))
	}
	if after[0].ResultType != domain.ResultMutualFriend || after[0].ShareA != before[0].ShareA || after[0].ShareB != before[0].ShareB {
		t.Fatalf("re-resolution changed the result: %+v vs %+v", before[0], after[0])
	}

	if _, err := mx.uc.ResolveEvent(context.Background(), uuid.New()); !errors.Is(err, domain.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}
