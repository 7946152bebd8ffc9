package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"craftfolio.dev/internal/models"
)

// PostgresStore implements Store over a pgx connection pool
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to PostgreSQL and migrates the schema
func OpenPostgres(ctx context.Context, dsn string, pool PoolOptions) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres dsn: %w", err)
	}
	if pool.MaxOpenConns > 0 {
		cfg.MaxConns = int32(pool.MaxOpenConns)
	}
	if pool.ConnMaxLifetime > 0 {
		cfg.MaxConnLifetime = pool.ConnMaxLifetime
	}

	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	s := &PostgresStore{pool: p}
	for _, stmt := range postgresSchema {
		if _, err := p.Exec(ctx, stmt); err != nil {
			p.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}
	return s, nil
}

// Ping checks the pool
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the pool
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// pgWhere mirrors projectWhere with numbered placeholders
func pgWhere(f ProjectFilter) (string, []any) {
	var conds []string
	var args []any

	next := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if f.Category != "" {
		conds = append(conds, "category = "+next(f.Category))
	}
	if f.Search != "" {
		p := next(likePattern(f.Search))
		conds = append(conds, "(LOWER(title) LIKE "+p+" ESCAPE '!' OR LOWER(description) LIKE "+p+" ESCAPE '!')")
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ListProjects returns one window of matching projects and the total match count
func (s *PostgresStore) ListProjects(ctx context.Context, f ProjectFilter) ([]models.Project, int, error) {
	where, args := pgWhere(f)

	var total int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM projects"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	n := len(args)
	query := fmt.Sprintf("SELECT %s FROM projects%s ORDER BY created_at, id LIMIT $%d OFFSET $%d",
		projectColumns, where, n+1, n+2)
	rows, err := s.pool.Query(ctx, query, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	projects, err := scanPgProjects(rows)
	if err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// AllProjects returns every project
func (s *PostgresStore) AllProjects(ctx context.Context) ([]models.Project, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+projectColumns+" FROM projects ORDER BY created_at, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	return scanPgProjects(rows)
}

// GetProject returns a project by id
func (s *PostgresStore) GetProject(ctx context.Context, id string) (*models.Project, error) {
	row := s.pool.QueryRow(ctx, "SELECT "+projectColumns+" FROM projects WHERE id = $1", id)

	p, err := scanProject(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// InsertProject stores a new project
func (s *PostgresStore) InsertProject(ctx context.Context, p *models.Project) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO projects ("+projectColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		p.ID, p.Title, p.Description, p.Link, p.Thumbnail, string(p.Category),
		p.CreatedAt.UnixNano(), p.UpdatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// UpdateProject replaces the mutable fields of an existing project
func (s *PostgresStore) UpdateProject(ctx context.Context, p *models.Project) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET title = $1, description = $2, link = $3, thumbnail = $4, category = $5, updated_at = $6
		 WHERE id = $7`,
		p.Title, p.Description, p.Link, p.Thumbnail, string(p.Category), p.UpdatedAt.UnixNano(), p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProject removes a project
func (s *PostgresStore) DeleteProject(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM projects WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAbout returns the about profile, or nil if none was saved
func (s *PostgresStore) GetAbout(ctx context.Context) (*models.About, error) {
	var a models.About
	var skills string

	err := s.pool.QueryRow(ctx,
		"SELECT name, description, skills, profile_picture FROM about WHERE id = $1", aboutID,
	).Scan(&a.Name, &a.Description, &skills, &a.ProfilePicture)
	if errors.Is(err, pgx.ErrNoRows) {
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
func (s *PostgresStore) PutAbout(ctx context.Context, a *models.About) error {
	skills, err := json.Marshal(nonNil(a.Skills))
	if err != nil {
		return fmt.Errorf("failed to encode skills: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO about (id, name, description, skills, profile_picture) VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description,
		 skills = EXCLUDED.skills, profile_picture = EXCLUDED.profile_picture`,
		aboutID, a.Name, a.Description, string(skills), a.ProfilePicture,
	)
	if err != nil {
		return fmt.Errorf("failed to save about: %w", err)
	}
	return nil
}

// InsertContact stores a contact message
func (s *PostgresStore) InsertContact(ctx context.Context, m *models.ContactMessage) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO contacts (id, name, email, message, created_at) VALUES ($1, $2, $3, $4, $5)",
		m.ID, m.Name, m.Email, m.Message, m.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert contact: %w", err)
	}
	return nil
}

// ListContacts returns the newest messages first
func (s *PostgresStore) ListContacts(ctx context.Context, limit int) ([]models.ContactMessage, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, email, message, created_at FROM contacts ORDER BY created_at DESC, id LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

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

func scanPgProjects(rows pgx.Rows) ([]models.Project, error) {
	projects := []models.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		slog.Error("error iterating projects", "error", err)
		return nil, err
	}
	return projects, nil
}
