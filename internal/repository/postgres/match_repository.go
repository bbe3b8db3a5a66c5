package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gdugdh24/speeddate-backend/internal/domain"
	"github.com/gdugdh24/speeddate-backend/internal/repository"
)

const choiceColumns = `
	event_id, scorer_id, scored_id, choice,
	share_email, share_phone, share_whatsapp, share_instagram, share_facebook,
	created_at
`

type matchChoiceRepository struct {
	db *sqlx.DB
}

func NewMatchChoiceRepository(db *sqlx.DB) repository.MatchChoiceRepository {
	return &matchChoiceRepository{db: db}
}

func (r *matchChoiceRepository) HasSubmitted(ctx context.Context, eventID, scorerID uuid.UUID) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM match_submissions WHERE event_id = $1 AND scorer_id = $2)`
	err := r.db.GetContext(ctx, &exists, query, eventID, scorerID)
	return exists, err
}

// SubmitAll claims the (event, scorer) submission row first. The primary key
// on match_submissions rejects a concurrent second submission, which rolls
// back the whole transaction.
func (r *matchChoiceRepository) SubmitAll(ctx context.Context, eventID, scorerID uuid.UUID, choices []domain.MatchChoice) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO match_submissions (event_id, scorer_id) VALUES ($1, $2)`,
		eventID, scorerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Rejected(domain.ReasonAlreadySubmitted, "")
		}
		return err
	}

	if len(choices) > 0 {
		const cols = 9
		args := make([]interface{}, 0, len(choices)*cols)
		for _, c := range choices {
			args = append(args,
				eventID, scorerID, c.ScoredID, c.Choice,
				c.Email, c.Phone, c.WhatsApp, c.Instagram, c.Facebook,
			)
		}
		query := `
			INSERT INTO match_choices (
				event_id, scorer_id, scored_id, choice,
				share_email, share_phone, share_whatsapp, share_instagram, share_facebook
			)
			VALUES ` + valuesClause(len(choices), cols)
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return domain.Rejected(domain.ReasonDuplicateCandidate, "")
			}
			return err
		}
	}

	return tx.Commit()
}

func (r *matchChoiceRepository) ListByEvent(ctx context.Context, eventID uuid.UUID) ([]domain.MatchChoice, error) {
	var choices []domain.MatchChoice
	query := `SELECT ` + choiceColumns + ` FROM match_choices WHERE event_id = $1 ORDER BY scorer_id, scored_id`
	err := r.db.SelectContext(ctx, &choices, query, eventID)
	return choices, err
}

func (r *matchChoiceRepository) ListSubmitters(ctx context.Context, eventID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	query := `SELECT scorer_id FROM match_submissions WHERE event_id = $1 ORDER BY scorer_id`
	err := r.db.SelectContext(ctx, &ids, query, eventID)
	return ids, err
}

func (r *matchChoiceRepository) ListAbout(ctx context.Context, eventID, scoredID uuid.UUID) ([]domain.MatchChoice, error) {
	var choices []domain.MatchChoice
	query := `
		SELECT ` + choiceColumns + `
		FROM match_choices
		WHERE event_id = $1 AND scored_id = $2
		ORDER BY created_at, scorer_id
	`
	err := r.db.SelectContext(ctx, &choices, query, eventID, scoredID)
	return choices, err
}

// matchResultRow flattens both sides' share flags into columns.
type matchResultRow struct {
	EventID         uuid.UUID         `db:"event_id"`
	UserA           uuid.UUID         `db:"user_a"`
	UserB           uuid.UUID         `db:"user_b"`
	ResultType      domain.ResultType `db:"result_type"`
	AShareEmail     bool              `db:"a_share_email"`
	ASharePhone     bool              `db:"a_share_phone"`
	AShareWhatsApp  bool              `db:"a_share_whatsapp"`
	AShareInstagram bool              `db:"a_share_instagram"`
	AShareFacebook  bool              `db:"a_share_facebook"`
	BShareEmail     bool              `db:"b_share_email"`
	BSharePhone     bool              `db:"b_share_phone"`
	BShareWhatsApp  bool              `db:"b_share_whatsapp"`
	BShareInstagram bool              `db:"b_share_instagram"`
	BShareFacebook  bool              `db:"b_share_facebook"`
	ResolvedAt      time.Time         `db:"resolved_at"`
}

func newMatchResultRow(m *domain.MatchResult) matchResultRow {
	return matchResultRow{
		EventID:         m.EventID,
		UserA:           m.UserA,
		UserB:           m.UserB,
		ResultType:      m.ResultType,
		AShareEmail:     m.ShareA.Email,
		ASharePhone:     m.ShareA.Phone,
		AShareWhatsApp:  m.ShareA.WhatsApp,
		AShareInstagram: m.ShareA.Instagram,
		AShareFacebook:  m.ShareA.Facebook,
		BShareEmail:     m.ShareB.Email,
		BSharePhone:     m.ShareB.Phone,
		BShareWhatsApp:  m.ShareB.WhatsApp,
		BShareInstagram: m.ShareB.Instagram,
		BShareFacebook:  m.ShareB.Facebook,
		ResolvedAt:      m.ResolvedAt,
	}
}

func (row matchResultRow) toDomain() *domain.MatchResult {
	return &domain.MatchResult{
		EventID:    row.EventID,
		UserA:      row.UserA,
		UserB:      row.UserB,
		ResultType: row.ResultType,
		ShareA: domain.ShareFlags{
			Email:     row.AShareEmail,
			Phone:     row.ASharePhone,
			WhatsApp:  row.AShareWhatsApp,
			Instagram: row.AShareInstagram,
			Facebook:  row.AShareFacebook,
		},
		ShareB: domain.ShareFlags{
			Email:     row.BShareEmail,
			Phone:     row.BSharePhone,
			WhatsApp:  row.BShareWhatsApp,
			Instagram: row.BShareInstagram,
			Facebook:  row.BShareFacebook,
		},
		ResolvedAt: row.ResolvedAt,
	}
}

type matchResultRepository struct {
	db *sqlx.DB
}

func NewMatchResultRepository(db *sqlx.DB) repository.MatchResultRepository {
	return &matchResultRepository{db: db}
}

// Upsert is idempotent: re-resolving a pair rewrites the same row.
func (r *matchResultRepository) Upsert(ctx context.Context, results []*domain.MatchResult) error {
	if len(results) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer rollback(tx)

	query := `
		INSERT INTO match_results (
			event_id, user_a, user_b, result_type,
			a_share_email, a_share_phone, a_share_whatsapp, a_share_instagram, a_share_facebook,
			b_share_email, b_share_phone, b_share_whatsapp, b_share_instagram, b_share_facebook,
			resolved_at
		)
		VALUES (
			:event_id, :user_a, :user_b, :result_type,
			:a_share_email, :a_share_phone, :a_share_whatsapp, :a_share_instagram, :a_share_facebook,
			:b_share_email, :b_share_phone, :b_share_whatsapp, :b_share_instagram, :b_share_facebook,
			:resolved_at
		)
		ON CONFLICT (event_id, user_a, user_b) DO UPDATE SET
			result_type = EXCLUDED.result_type,
			a_share_email = EXCLUDED.a_share_email,
			a_share_phone = EXCLUDED.a_share_phone,
			a_share_whatsapp = EXCLUDED.a_share_whatsapp,
			a_share_instagram = EXCLUDED.a_share_instagram,
			a_share_facebook = EXCLUDED.a_share_facebook,
			b_share_email = EXCLUDED.b_share_email,
			b_share_phone = EXCLUDED.b_share_phone,
			b_share_whatsapp = EXCLUDED.b_share_whatsapp,
			b_share_instagram = EXCLUDED.b_share_instagram,
			b_share_facebook = EXCLUDED.b_share_facebook
	`
	for _, res := range results {
		if _, err := tx.NamedExecContext(ctx, query, newMatchResultRow(res)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *matchResultRepository) ListForUser(ctx context.Context, eventID, userID uuid.UUID) ([]*domain.MatchResult, error) {
	var rows []matchResultRow
	query := `
		SELECT * FROM match_results
		WHERE event_id = $1 AND (user_a = $2 OR user_b = $2)
		ORDER BY user_a, user_b
	`
	if err := r.db.SelectContext(ctx, &rows, query, eventID, userID); err != nil {
		return nil, err
	}
	results := make([]*domain.MatchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, row.toDomain())
	}
	return results, nil
}
