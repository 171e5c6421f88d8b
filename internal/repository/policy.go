// internal/repository/policy.go
package repository

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/lib/pq"

	"govsupport-chatbot/internal/common/errors"
	"govsupport-chatbot/internal/models"
)

const policyColumns = `id, title, description, provider, eligibility, category, regions, updated_at`

// PolicyRepository reads the policy catalogue.
type PolicyRepository struct {
	db *sql.DB
}

func NewPolicyRepository(db *sql.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPolicy(row rowScanner) (models.Policy, error) {
	var p models.Policy
	var regions pq.StringArray
	var updatedAt time.Time
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Provider, &p.Eligibility, &p.Category, &regions, &updatedAt)
	if err != nil {
		return p, err
	}
	p.Regions = []string(regions)
	p.UpdatedAt = updatedAt.UTC().Format(time.RFC3339)
	return p, nil
}

// GetByID returns POLICY_NOT_FOUND for an unknown id.
func (r *PolicyRepository) GetByID(ctx context.Context, id string) (*models.Policy, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+policyColumns+` FROM policies WHERE id = $1`, id)
	p, err := scanPolicy(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, errors.NewPolicyNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("get_policy", err)
	}
	return &p, nil
}

// List returns up to limit policies, optionally restricted to category
// and to programs open in region. Nationwide programs have no regions.
func (r *PolicyRepository) List(ctx context.Context, category, region string, limit int) ([]models.Policy, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+policyColumns+`
		FROM policies
		WHERE ($1 = '' OR category = $1)
		  AND ($2 = '' OR cardinality(regions) = 0 OR $2 = ANY(regions))
		ORDER BY updated_at DESC
		LIMIT $3`, category, region, limit)
	if err != nil {
		return nil, errors.NewQueryExecutionFailedError("list_policies", err)
	}
	defer rows.Close()

	var out []models.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, errors.NewQueryExecutionFailedError("list_policies", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewQueryExecutionFailedError("list_policies", err)
	}
	return out, nil
}

// Save inserts or replaces a policy.
func (r *PolicyRepository) Save(ctx context.Context, p models.Policy) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO policies (id, title, description, provider, eligibility, category, regions, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			provider = EXCLUDED.provider,
			eligibility = EXCLUDED.eligibility,
			category = EXCLUDED.category,
			regions = EXCLUDED.regions,
			updated_at = NOW()`,
		p.ID, p.Title, p.Description, p.Provider, p.Eligibility, p.Category, pq.Array(p.Regions))
	if err != nil {
		return errors.NewQueryExecutionFailedError("save_policy", err)
	}
	return nil
}
