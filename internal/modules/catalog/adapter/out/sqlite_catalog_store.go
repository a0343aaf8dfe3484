package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"cadence/internal/modules/catalog/domain"
	reviewdomain "cadence/internal/modules/review/domain"
	"cadence/internal/platform/database"
	apperrors "cadence/internal/platform/errors"
)

type SQLiteCatalogStore struct {
	db *sqlx.DB
}

type subjectRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Color     string `db:"color"`
	Archived  bool   `db:"archived"`
	CreatedAt string `db:"created_at"`
}

type templateRow struct {
	ID        string `db:"id"`
	Name      string `db:"name"`
	Offsets   string `db:"offsets"`
	IsDefault bool   `db:"is_default"`
	CreatedAt string `db:"created_at"`
}

func NewSQLiteCatalogStore(ctx context.Context, db *sqlx.DB) (*SQLiteCatalogStore, error) {
	store := &SQLiteCatalogStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteCatalogStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS subjects (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  color TEXT NOT NULL DEFAULT '',
  archived INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS subjects_name_nocase ON subjects (name COLLATE NOCASE);
CREATE TABLE IF NOT EXISTS templates (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  offsets TEXT NOT NULL,
  is_default INTEGER NOT NULL DEFAULT 0,
  created_at TEXT NOT NULL
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create catalog tables: %w", err)
	}
	return nil
}

func (s *SQLiteCatalogStore) SaveSubject(ctx context.Context, subject domain.Subject) error {
	const stmt = `
INSERT INTO subjects (id, name, color, archived, created_at)
VALUES (:id, :name, :color, :archived, :created_at)
ON CONFLICT(id) DO UPDATE SET
  name=excluded.name,
  color=excluded.color,
  archived=excluded.archived;
`
	row := subjectRow{
		ID:        subject.ID,
		Name:      subject.Name,
		Color:     subject.Color,
		Archived:  subject.Archived,
		CreatedAt: database.FormatTime(subject.CreatedAt),
	}
	if _, err := s.db.NamedExecContext(ctx, stmt, row); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return fmt.Errorf("%w: subject %q already exists", apperrors.ErrInvalidInput, subject.Name)
		}
		return fmt.Errorf("save subject: %w", err)
	}
	return nil
}

func (s *SQLiteCatalogStore) FindSubject(ctx context.Context, id string) (domain.Subject, error) {
	row := subjectRow{}
	err := s.db.GetContext(ctx, &row, `SELECT id, name, color, archived, created_at FROM subjects WHERE id = ?`, id)
	if err != nil {
		return domain.Subject{}, notFound("subject", id, err)
	}
	return row.toDomain(), nil
}

func (s *SQLiteCatalogStore) FindSubjectByName(ctx context.Context, name string) (domain.Subject, error) {
	row := subjectRow{}
	err := s.db.GetContext(ctx, &row, `SELECT id, name, color, archived, created_at FROM subjects WHERE name = ? COLLATE NOCASE`, strings.TrimSpace(name))
	if err != nil {
		return domain.Subject{}, notFound("subject", name, err)
	}
	return row.toDomain(), nil
}

func (s *SQLiteCatalogStore) ListSubjects(ctx context.Context) ([]domain.Subject, error) {
	rows := []subjectRow{}
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, name, color, archived, created_at FROM subjects ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	out := make([]domain.Subject, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (s *SQLiteCatalogStore) SaveTemplate(ctx context.Context, template domain.Template) error {
	const stmt = `
INSERT INTO templates (id, name, offsets, is_default, created_at)
VALUES (:id, :name, :offsets, :is_default, :created_at)
ON CONFLICT(id) DO UPDATE SET
  name=excluded.name,
  offsets=excluded.offsets,
  is_default=excluded.is_default;
`
	row := templateRow{
		ID:        template.ID,
		Name:      template.Name,
		Offsets:   reviewdomain.FormatOffsets(template.Offsets),
		IsDefault: template.IsDefault,
		CreatedAt: database.FormatTime(template.CreatedAt),
	}
	if _, err := s.db.NamedExecContext(ctx, stmt, row); err != nil {
		return fmt.Errorf("save template: %w", err)
	}
	return nil
}

func (s *SQLiteCatalogStore) FindTemplate(ctx context.Context, id string) (domain.Template, error) {
	row := templateRow{}
	err := s.db.GetContext(ctx, &row, `SELECT id, name, offsets, is_default, created_at FROM templates WHERE id = ?`, id)
	if err != nil {
		return domain.Template{}, notFound("template", id, err)
	}
	return row.toDomain()
}

func (s *SQLiteCatalogStore) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	rows := []templateRow{}
	if err := s.db.SelectContext(ctx, &rows, `SELECT id, name, offsets, is_default, created_at FROM templates ORDER BY created_at, id`); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	out := make([]domain.Template, 0, len(rows))
	for _, row := range rows {
		template, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, template)
	}
	return out, nil
}

func (s *SQLiteCatalogStore) MarkDefault(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mark default: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE templates SET is_default = 0 WHERE id <> ?`, id); err != nil {
		return fmt.Errorf("clear default template: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE templates SET is_default = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("mark default template: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("template %s: %w", id, apperrors.ErrNotFound)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mark default: %w", err)
	}
	return nil
}

func (r subjectRow) toDomain() domain.Subject {
	return domain.Subject{
		ID:        r.ID,
		Name:      r.Name,
		Color:     r.Color,
		Archived:  r.Archived,
		CreatedAt: database.ParseTime(r.CreatedAt),
	}
}

func (r templateRow) toDomain() (domain.Template, error) {
	offsets, err := reviewdomain.ParseOffsets(r.Offsets)
	if err != nil {
		return domain.Template{}, fmt.Errorf("decode template %s: %w", r.ID, err)
	}
	return domain.Template{
		ID:        r.ID,
		Name:      r.Name,
		Offsets:   offsets,
		IsDefault: r.IsDefault,
		CreatedAt: database.ParseTime(r.CreatedAt),
	}, nil
}

func notFound(kind, key string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, key, apperrors.ErrNotFound)
	}
	return fmt.Errorf("find %s: %w", kind, err)
}
