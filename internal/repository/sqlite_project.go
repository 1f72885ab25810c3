package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tempora-app/tempora/internal/db"
	"github.com/tempora-app/tempora/internal/domain"
)

// SQLiteClientRepo implements ClientRepo using a SQLite database.
type SQLiteClientRepo struct {
	db db.DBTX
}

// NewSQLiteClientRepo creates a new SQLiteClientRepo.
func NewSQLiteClientRepo(conn db.DBTX) *SQLiteClientRepo {
	return &SQLiteClientRepo{db: conn}
}

func (r *SQLiteClientRepo) Create(ctx context.Context, c *domain.Client) error {
	query := `INSERT INTO clients (id, tenant_id, name, created_at) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, c.ID, c.TenantID, c.Name, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("inserting client: %w", err)
	}
	return nil
}

func (r *SQLiteClientRepo) GetByID(ctx context.Context, tenantID, id string) (*domain.Client, error) {
	query := `SELECT id, tenant_id, name FROM clients WHERE id = ? AND tenant_id = ?`
	var c domain.Client
	err := r.db.QueryRowContext(ctx, query, id, tenantID).Scan(&c.ID, &c.TenantID, &c.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("client: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning client: %w", err)
	}
	return &c, nil
}

const projectColumns = `id, tenant_id, client_id, name, hourly_rate, budget_type, budget_value,
		archived_at, created_at, updated_at`

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.TenantID,
		p.ClientID,
		p.Name,
		p.HourlyRate,
		string(p.BudgetType),
		nullableFloatToValue(p.BudgetValue),
		nullableTimeToString(p.ArchivedAt, time.RFC3339),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting project: %w", err)
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, tenantID, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ? AND tenant_id = ?`
	return r.scanProject(r.db.QueryRowContext(ctx, query, id, tenantID))
}

func (r *SQLiteProjectRepo) List(ctx context.Context, tenantID string) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects
		WHERE tenant_id = ? AND archived_at IS NULL ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		p, err := r.scanProjectRow(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) scanProject(row *sql.Row) (*domain.Project, error) {
	var p domain.Project
	var budgetType string
	var budgetValue sql.NullFloat64
	var archivedAt sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&p.ID, &p.TenantID, &p.ClientID, &p.Name, &p.HourlyRate,
		&budgetType, &budgetValue, &archivedAt, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("project: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	return r.populateProject(&p, budgetType, budgetValue, archivedAt, createdAtStr, updatedAtStr)
}

func (r *SQLiteProjectRepo) scanProjectRow(rows *sql.Rows) (*domain.Project, error) {
	var p domain.Project
	var budgetType string
	var budgetValue sql.NullFloat64
	var archivedAt sql.NullString
	var createdAtStr, updatedAtStr string

	err := rows.Scan(
		&p.ID, &p.TenantID, &p.ClientID, &p.Name, &p.HourlyRate,
		&budgetType, &budgetValue, &archivedAt, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		return nil, fmt.Errorf("scanning project row: %w", err)
	}
	return r.populateProject(&p, budgetType, budgetValue, archivedAt, createdAtStr, updatedAtStr)
}

func (r *SQLiteProjectRepo) populateProject(p *domain.Project, budgetType string, budgetValue sql.NullFloat64, archivedAt sql.NullString, createdAtStr, updatedAtStr string) (*domain.Project, error) {
	p.BudgetType = domain.BudgetType(budgetType)
	p.BudgetValue = floatFromNull(budgetValue)
	p.ArchivedAt = parseNullableTime(archivedAt, time.RFC3339)

	var parseErr error
	p.CreatedAt, parseErr = time.Parse(time.RFC3339, createdAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing created_at: %w", parseErr)
	}
	p.UpdatedAt, parseErr = time.Parse(time.RFC3339, updatedAtStr)
	if parseErr != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", parseErr)
	}
	return p, nil
}
