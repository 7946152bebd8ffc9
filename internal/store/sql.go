package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"craftfolio.dev/internal/models"
)

const aboutID = 1

const projectColumns = "id, title, description, link, thumbnail, category, created_at, updated_at"

// SQLStore implements Store over database/sql for drivers using '?' placeholders
type SQLStore struct {
	db      *sql.DB
	dialect dialect
}

// newSQLStore wraps db and runs the schema migrations for d
func newSQLStore(ctx context.Context, db *sql.DB, d dialect) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run %s migrations: %w", d.name, err)
	}
	return s, nil
}

// migrate creates the schema if needed
func (s *SQLStore) migrate(ctx context.Context) error {
	for _, stmt := range s.dialect.schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// DB exposes the underlying handle
func (s *SQLStore) DB() *sql.DB {
	return s.db
}

// Ping checks the database connection
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// projectWhere builds the WHERE clause shared by the count and page queries
func (d dialect) projectWhere(f ProjectFilter) (string, []any) {
	var conds []string
	var args []any

	if f.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, f.Category)
	}
	if f.Search != "" {
		pattern := likePattern(f.Search)
		conds = append(conds, fmt.Sprintf("(%[1]s(title) LIKE ? ESCAPE '!' OR %[1]s(description) LIKE ? ESCAPE '!')", d.lower))
		args = append(args, pattern, pattern)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListProjects returns one window of matching projects and the total match count
func (s *SQLStore) ListProjects(ctx context.Context, f ProjectFilter) ([]models.Project, int, error) {
	where, args := s.dialect.projectWhere(f)

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM projects"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	query := "SELECT " + projectColumns + " FROM projects" + where +
		" ORDER BY created_at, id LIMIT ? OFFSET ?"
	rows, err := s.db.QueryContext(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	defer closeRows(rows)

	projects, err := scanProjects(rows)
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// AllProjects returns every project
func (s *SQLStore) AllProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+projectColumns+" FROM projects ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer closeRows(rows)

	return scanProjects(rows)
}

// GetProject returns a project by id
func (s *SQLStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = ?", id)

	p, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// InsertProject stores a new project
func (s *SQLStore) InsertProject(ctx context.Context, p *models.Project) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO projects ("+projectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Title, p.Description, p.Link, p.Thumbnail, string(p.Category),
		p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// UpdateProject replaces the mutable fields of an existing project
func (s *SQLStore) UpdateProject(ctx context.Context, p *models.Project) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE projects SET title = ?, description = ?, link = ?, thumbnail = ?, category = ?, updated_at = ?
		 WHERE id = ?`,
		p.Title, p.Description, p.Link, p.Thumbnail, string(p.Category), p.UpdatedAt.UnixNano(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	return requireAffected(res)
}

// DeleteProject removes a project
func (s *SQLStore) DeleteProject(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	return requireAffected(res)
}

// GetAbout returns the about profile, or nil if none was saved
func (s *SQLStore) GetAbout(ctx context.Context) (*models.About, error) {
	var a models.About
	var skills string

	err := s.db.QueryRowContext(ctx,
		"SELECT name, description, skills, profile_picture FROM about WHERE id = ?", aboutID,
	).Scan(&a.Name, &a.Description, &skills, &a.ProfilePicture)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get about: %w", err)
	}

	if err := json.Unmarshal([]byte(skills), &a.Skills); err != nil {
		return nil, fmt.Errorf("failed to decode skills: %w", err)
	}
	return &a, nil
}

// PutAbout replaces the about profile
func (s *SQLStore) PutAbout(ctx context.Context, a *models.About) error {
	skills, err := json.Marshal(nonNil(a.Skills))
	if err != nil {
		return fmt.Errorf("failed to encode skills: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to rollback transaction", "error", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM about WHERE id = ?", aboutID); err != nil {
		return fmt.Errorf("failed to clear about: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO about (id, name, description, skills, profile_picture) VALUES (?, ?, ?, ?, ?)",
		aboutID, a.Name, a.Description, string(skills), a.ProfilePicture,
	); err != nil {
		return fmt.Errorf("failed to insert about: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// InsertContact stores a contact message
func (s *SQLStore) InsertContact(ctx context.Context, m *models.ContactMessage) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO contacts (id, name, email, message, created_at) VALUES (?, ?, ?, ?, ?)",
		m.ID, m.Name, m.Email, m.Message, m.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

// ListContacts returns the newest messages first
func (s *SQLStore) ListContacts(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, email, message, created_at FROM contacts ORDER BY created_at DESC, id LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer closeRows(rows)

	var out []models.ContactMessage
	for rows.Next() {
		var m models.ContactMessage
		var created int64
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &created); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		m.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

// rowScanner is satisfied by *sql.Row, *sql.Rows and pgx rows
type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*models.Project, error) {
	var p models.Project
	var category string
	var created, updated int64

	if err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Link, &p.Thumbnail, &category, &created, &updated); err != nil {
		return nil, err
	}
	p.Category = models.Category(category)
	p.CreatedAt = time.Unix(0, created).UTC()
	p.UpdatedAt = time.Unix(0, updated).UTC()
	return &p, nil
}

func scanProjects(rows *sql.Rows) ([]models.Project, error) {
	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func closeRows(rows *sql.Rows) {
	if err := rows.Close(); err != nil {
		slog.Error("error closing rows", "error", err)
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
