package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/flowlint/flowlint/pkg/schema"
)

// LibSQLStore implements the Store interface using libSQL (embedded SQLite fork).
type LibSQLStore struct {
	db *sql.DB
}

// NewLibSQLStore opens a libSQL database at the given path and returns a Store.
// The path should be a file URI, e.g. "file:/path/to/db.db".
func NewLibSQLStore(dbPath string) (*LibSQLStore, error) {
	db, err := sql.Open("libsql", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Apply connection-level PRAGMAs. Some PRAGMAs return rows so we use QueryRow.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}

	return &LibSQLStore{db: db}, nil
}

// Close closes the database.
func (s *LibSQLStore) Close() error { return s.db.Close() }

// Migrate runs all pending database migrations.
func (s *LibSQLStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

// Vacuum runs VACUUM on the database.
func (s *LibSQLStore) Vacuum(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

// --- Workflows ---

func (s *LibSQLStore) CreateWorkflow(ctx context.Context, wf *Workflow) error {
	def, err := json.Marshal(wf.Definition)
	if err != nil {
		return fmt.Errorf("marshal definition: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO workflows (id, tenant_id, name, source, definition, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name=excluded.name, source=excluded.source,
		   definition=excluded.definition, updated_at=excluded.updated_at`,
		wf.ID, tenantOrDefault(wf.TenantID), nullStr(wf.Name), nullStr(wf.Source),
		string(def), timeOrNow(wf.CreatedAt), timeOrNow(wf.UpdatedAt),
	)
	return err
}

func (s *LibSQLStore) GetWorkflow(ctx context.Context, id string) (*Workflow, error) {
	wf := &Workflow{}
	var name, source sql.NullString
	var defJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, tenant_id, name, source, definition, created_at, updated_at
		 FROM workflows WHERE id = ?`, id,
	).Scan(&wf.ID, &wf.TenantID, &name, &source, &defJSON, &wf.CreatedAt, &wf.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, storeNotFound("workflow", id)
	}
	if err != nil {
		return nil, err
	}
	wf.Name = name.String
	wf.Source = source.String
	if err := json.Unmarshal([]byte(defJSON), &wf.Definition); err != nil {
		return nil, fmt.Errorf("unmarshal definition: %w", err)
	}
	return wf, nil
}

func (s *LibSQLStore) ListWorkflows(ctx context.Context, filter WorkflowFilter) ([]*Workflow, error) {
	var where []string
	var args []any

	if filter.TenantID != "" {
		where = append(where, "tenant_id = ?")
		args = append(args, filter.TenantID)
	}
	if filter.Since != nil {
		where = append(where, "created_at >= ?")
		args = append(args, *filter.Since)
	}

	query := `SELECT id, tenant_id, name, source, definition, created_at, updated_at FROM workflows`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
		if filter.Offset > 0 {
			query += fmt.Sprintf(" OFFSET %d", filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workflows []*Workflow
	for rows.Next() {
		wf := &Workflow{}
		var name, source sql.NullString
		var defJSON string
		if err := rows.Scan(&wf.ID, &wf.TenantID, &name, &source, &defJSON, &wf.CreatedAt, &wf.UpdatedAt); err != nil {
			return nil, err
		}
		wf.Name = name.String
		wf.Source = source.String
		if err := json.Unmarshal([]byte(defJSON), &wf.Definition); err != nil {
			return nil, fmt.Errorf("unmarshal definition: %w", err)
		}
		workflows = append(workflows, wf)
	}
	return workflows, rows.Err()
}

func (s *LibSQLStore) DeleteWorkflow(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res, "workflow", id)
}

// --- Lint reports ---

func (s *LibSQLStore) SaveReport(ctx context.Context, rep *Report) error {
	errs, err := issuesJSON(rep.Errors)
	if err != nil {
		return fmt.Errorf("marshal errors: %w", err)
	}
	warns, err := issuesJSON(rep.Warnings)
	if err != nil {
		return fmt.Errorf("marshal warnings: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO lint_reports (id, workflow_id, tenant_id, valid, errors, warnings, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.WorkflowID, tenantOrDefault(rep.TenantID),
		boolToInt(rep.Valid), errs, warns, timeOrNow(rep.CreatedAt),
	)
	return err
}

func (s *LibSQLStore) ListReports(ctx context.Context, filter ReportFilter) ([]*Report, error) {
	var where []string
	var args []any

	if filter.WorkflowID != "" {
		where = append(where, "workflow_id = ?")
		args = append(args, filter.WorkflowID)
	}
	if filter.TenantID != "" {
		where = append(where, "tenant_id = ?")
		args = append(args, filter.TenantID)
	}
	if filter.OnlyValid != nil {
		where = append(where, "valid = ?")
		args = append(args, boolToInt(*filter.OnlyValid))
	}

	query := `SELECT id, workflow_id, tenant_id, valid, errors, warnings, created_at FROM lint_reports`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		rep := &Report{}
		var valid int
		var errs, warns sql.NullString
		if err := rows.Scan(&rep.ID, &rep.WorkflowID, &rep.TenantID, &valid, &errs, &warns, &rep.CreatedAt); err != nil {
			return nil, err
		}
		rep.Valid = valid != 0
		if rep.Errors, err = issuesFromJSON(errs); err != nil {
			return nil, fmt.Errorf("unmarshal errors: %w", err)
		}
		if rep.Warnings, err = issuesFromJSON(warns); err != nil {
			return nil, fmt.Errorf("unmarshal warnings: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// --- Helpers ---

func storeNotFound(kind, id string) error {
	return schema.NewErrorf(schema.ErrCodeNotFound, "%s %q not found", kind, id)
}

func checkRowsAffected(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storeNotFound(kind, id)
	}
	return nil
}

func tenantOrDefault(t string) string {
	if t == "" {
		return DefaultTenant
	}
	return t
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func issuesJSON(issues []schema.ValidationIssue) (any, error) {
	if len(issues) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(issues)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func issuesFromJSON(ns sql.NullString) ([]schema.ValidationIssue, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var issues []schema.ValidationIssue
	if err := json.Unmarshal([]byte(ns.String), &issues); err != nil {
		return nil, err
	}
	return issues, nil
}

var _ Store = (*LibSQLStore)(nil)
