// Package catalog is the read side of the durable boss/question catalog.
// The fight engine treats it as an external collaborator: one boss lookup at
// session creation, one random question per dispatch.
package catalog

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/domain"
	"github.com/Chansovisoth/CS313-TeamBossFight-Backend/internal/errors"
)

type Config struct {
	DB *pgxpool.Pool
}

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(c Config) *Repository {
	return &Repository{db: c.DB}
}

// BossByID fetches one boss definition.
func (r *Repository) BossByID(ctx context.Context, bossID string) (*domain.BossDefinition, error) {
	const stmt = `
SELECT id, name, COALESCE(description, ''), number_of_teams, cooldown_duration, category_id
FROM bosses
WHERE id = $1;`

	var b domain.BossDefinition
	err := r.db.QueryRow(ctx, stmt, bossID).
		Scan(&b.ID, &b.Name, &b.Description, &b.NumberOfTeams, &b.CooldownSeconds, &b.CategoryID)

	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("boss not found: boss=%s", bossID))
	}
	if err != nil {
		return nil, err
	}

	return &b, nil
}

// RandomQuestion picks one question from the category, skipping IDs the
// player has already seen, and loads its full answer set (eight choices,
// exactly one correct). When every question has been seen the exclusion is
// waived so a long fight never starves.
func (r *Repository) RandomQuestion(ctx context.Context, categoryID string, excludeIDs []string) (*domain.Question, error) {
	const stmt = `
SELECT id, question_text, time_limit
FROM questions
WHERE category_id = $1 AND NOT (id = ANY($2))
ORDER BY random()
LIMIT 1;`

	var (
		q         domain.Question
		limitSecs int
	)
	err := r.db.QueryRow(ctx, stmt, categoryID, excludeIDs).Scan(&q.ID, &q.Text, &limitSecs)
	if stderrors.Is(err, pgx.ErrNoRows) && len(excludeIDs) > 0 {
		err = r.db.QueryRow(ctx, stmt, categoryID, []string{}).Scan(&q.ID, &q.Text, &limitSecs)
	}
	if stderrors.Is(err, pgx.ErrNoRows) {
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("no questions in category: category=%s", categoryID))
	}
	if err != nil {
		return nil, err
	}

	q.TimeLimit = time.Duration(limitSecs) * time.Second

	const answersStmt = `
SELECT choice_text, is_correct
FROM answer_choices
WHERE question_id = $1
ORDER BY id;`

	rows, err := r.db.Query(ctx, answersStmt, q.ID)
	if err != nil {
		return nil, err
	}

	q.Answers, err = pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Answer, error) {
		var a domain.Answer
		if err := row.Scan(&a.Text, &a.Correct); err != nil {
			return domain.Answer{}, err
		}
		return a, nil
	})
	if err != nil {
		return nil, err
	}

	return &q, nil
}
