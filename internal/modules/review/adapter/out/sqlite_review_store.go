package out

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"cadence/internal/modules/review/domain"
	reviewout "cadence/internal/modules/review/port/out"
	"cadence/internal/platform/database"
	apperrors "cadence/internal/platform/errors"
)

type SQLiteReviewStore struct {
	db *sqlx.DB
}

type studyEventRow struct {
	ID          string        `db:"id"`
	SubjectID   string        `db:"subject_id"`
	SubjectName string        `db:"subject_name"`
	Topic       string        `db:"topic"`
	Notes       string        `db:"notes"`
	StudiedAt   string        `db:"studied_at"`
	StudiedOn   string        `db:"studied_on"`
	TemplateID  string        `db:"template_id"`
	Offsets     string        `db:"offsets"`
	QuizCorrect sql.NullInt64 `db:"quiz_correct"`
	QuizTotal   sql.NullInt64 `db:"quiz_total"`
	NotePath    string        `db:"note_path"`
	CreatedAt   string        `db:"created_at"`
}

type reviewRow struct {
	ID              string        `db:"id"`
	StudyEventID    string        `db:"study_event_id"`
	SubjectID       string        `db:"subject_id"`
	SubjectName     string        `db:"subject_name"`
	Topic           string        `db:"topic"`
	StudiedAt       string        `db:"studied_at"`
	DueAt           string        `db:"due_at"`
	OffsetDays      int           `db:"offset_days"`
	Status          string        `db:"status"`
	CompletedAt     string        `db:"completed_at"`
	ReviewStartedAt string        `db:"review_started_at"`
	DurationSeconds int64         `db:"duration_seconds"`
	PausedSeconds   int64         `db:"paused_seconds"`
	QuizCorrect     sql.NullInt64 `db:"quiz_correct"`
	QuizTotal       sql.NullInt64 `db:"quiz_total"`
	UpdatedAt       string        `db:"updated_at"`
}

// NewSQLiteReviewStore expects the catalog tables to exist already; review
// listings join subjects for names and the archived flag.
func NewSQLiteReviewStore(ctx context.Context, db *sqlx.DB) (*SQLiteReviewStore, error) {
	store := &SQLiteReviewStore{db: db}
	if err := store.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *SQLiteReviewStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS study_events (
  id TEXT PRIMARY KEY,
  subject_id TEXT NOT NULL,
  topic TEXT NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  studied_at TEXT NOT NULL,
  studied_on TEXT NOT NULL,
  template_id TEXT NOT NULL DEFAULT '',
  offsets TEXT NOT NULL,
  quiz_correct INTEGER,
  quiz_total INTEGER,
  note_path TEXT NOT NULL DEFAULT '',
  created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS study_events_studied_on ON study_events (studied_on);
CREATE TABLE IF NOT EXISTS reviews (
  id TEXT PRIMARY KEY,
  study_event_id TEXT NOT NULL REFERENCES study_events(id) ON DELETE CASCADE,
  subject_id TEXT NOT NULL,
  topic TEXT NOT NULL,
  studied_at TEXT NOT NULL,
  due_at TEXT NOT NULL,
  offset_days INTEGER NOT NULL,
  status TEXT NOT NULL,
  completed_at TEXT NOT NULL DEFAULT '',
  review_started_at TEXT NOT NULL DEFAULT '',
  duration_seconds INTEGER NOT NULL DEFAULT 0,
  paused_seconds INTEGER NOT NULL DEFAULT 0,
  quiz_correct INTEGER,
  quiz_total INTEGER,
  updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS reviews_due_at ON reviews (due_at);
CREATE INDEX IF NOT EXISTS reviews_study_event ON reviews (study_event_id);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create review tables: %w", err)
	}
	return nil
}

func (s *SQLiteReviewStore) SaveStudyEvent(ctx context.Context, event domain.StudyEvent, reviews []domain.Review) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save study event: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const eventStmt = `
INSERT INTO study_events (id, subject_id, topic, notes, studied_at, studied_on, template_id, offsets, quiz_correct, quiz_total, note_path, created_at)
VALUES (:id, :subject_id, :topic, :notes, :studied_at, :studied_on, :template_id, :offsets, :quiz_correct, :quiz_total, :note_path, :created_at);
`
	if _, err := tx.NamedExecContext(ctx, eventStmt, toStudyEventRow(event)); err != nil {
		return fmt.Errorf("insert study event: %w", err)
	}
	for _, review := range reviews {
		if err := upsertReview(ctx, tx, review); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit study event: %w", err)
	}
	return nil
}

func (s *SQLiteReviewStore) SetNotePath(ctx context.Context, eventID, notePath string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE study_events SET note_path = ? WHERE id = ?`, notePath, eventID)
	if err != nil {
		return fmt.Errorf("set note path: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("study event %s: %w", eventID, apperrors.ErrNotFound)
	}
	return nil
}

const studyEventColumns = `
SELECT e.id, e.subject_id, COALESCE(sub.name, '') AS subject_name, e.topic, e.notes, e.studied_at, e.studied_on,
       e.template_id, e.offsets, e.quiz_correct, e.quiz_total, e.note_path, e.created_at
FROM study_events e
LEFT JOIN subjects sub ON sub.id = e.subject_id`

func (s *SQLiteReviewStore) FindStudyEvent(ctx context.Context, id string) (domain.StudyEvent, error) {
	row := studyEventRow{}
	if err := s.db.GetContext(ctx, &row, studyEventColumns+` WHERE e.id = ?`, id); err != nil {
		return domain.StudyEvent{}, notFound("study event", id, err)
	}
	return row.toDomain()
}

func (s *SQLiteReviewStore) ListStudyEvents(ctx context.Context, from, to domain.DateKey) ([]domain.StudyEvent, error) {
	where, args := dateRange("e.studied_on", from, to)
	query := studyEventColumns + where + ` ORDER BY e.studied_at, e.id`
	rows := []studyEventRow{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list study events: %w", err)
	}
	out := make([]domain.StudyEvent, 0, len(rows))
	for _, row := range rows {
		event, err := row.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, event)
	}
	return out, nil
}

const reviewColumns = `
SELECT r.id, r.study_event_id, r.subject_id, COALESCE(sub.name, '') AS subject_name, r.topic, r.studied_at, r.due_at,
       r.offset_days, r.status, r.completed_at, r.review_started_at, r.duration_seconds, r.paused_seconds,
       r.quiz_correct, r.quiz_total, r.updated_at
FROM reviews r
LEFT JOIN subjects sub ON sub.id = r.subject_id`

func (s *SQLiteReviewStore) FindReview(ctx context.Context, id string) (domain.Review, error) {
	row := reviewRow{}
	if err := s.db.GetContext(ctx, &row, reviewColumns+` WHERE r.id = ?`, id); err != nil {
		return domain.Review{}, notFound("review", id, err)
	}
	return row.toDomain(), nil
}

func (s *SQLiteReviewStore) ListReviews(ctx context.Context, filter reviewout.ReviewFilter) ([]domain.Review, error) {
	where, args := dateRange("r.due_at", filter.From, filter.To)
	clauses := []string{}
	if where != "" {
		clauses = append(clauses, strings.TrimPrefix(where, " WHERE "))
	}
	if filter.Status != "" {
		clauses = append(clauses, "r.status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.StudyEventID != "" {
		clauses = append(clauses, "r.study_event_id = ?")
		args = append(args, filter.StudyEventID)
	}
	if !filter.IncludeArchived {
		clauses = append(clauses, "COALESCE(sub.archived, 0) = 0")
	}
	query := reviewColumns
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY r.due_at, r.id"

	rows := []reviewRow{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	out := make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

func (s *SQLiteReviewStore) UpdateReview(ctx context.Context, review domain.Review) error {
	if _, err := s.FindReview(ctx, review.ID); err != nil {
		return err
	}
	return upsertReview(ctx, s.db, review)
}

func upsertReview(ctx context.Context, exec sqlx.ExtContext, review domain.Review) error {
	const stmt = `
INSERT INTO reviews (id, study_event_id, subject_id, topic, studied_at, due_at, offset_days, status, completed_at,
  review_started_at, duration_seconds, paused_seconds, quiz_correct, quiz_total, updated_at)
VALUES (:id, :study_event_id, :subject_id, :topic, :studied_at, :due_at, :offset_days, :status, :completed_at,
  :review_started_at, :duration_seconds, :paused_seconds, :quiz_correct, :quiz_total, :updated_at)
ON CONFLICT(id) DO UPDATE SET
  due_at=excluded.due_at,
  status=excluded.status,
  completed_at=excluded.completed_at,
  review_started_at=excluded.review_started_at,
  duration_seconds=excluded.duration_seconds,
  paused_seconds=excluded.paused_seconds,
  quiz_correct=excluded.quiz_correct,
  quiz_total=excluded.quiz_total,
  updated_at=excluded.updated_at;
`
	if _, err := sqlx.NamedExecContext(ctx, exec, stmt, toReviewRow(review)); err != nil {
		return fmt.Errorf("save review %s: %w", review.ID, err)
	}
	return nil
}

func dateRange(column string, from, to domain.DateKey) (string, []any) {
	clauses := []string{}
	args := []any{}
	if from != "" {
		clauses = append(clauses, column+" >= ?")
		args = append(args, string(from))
	}
	if to != "" {
		clauses = append(clauses, column+" <= ?")
		args = append(args, string(to))
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func toStudyEventRow(event domain.StudyEvent) studyEventRow {
	row := studyEventRow{
		ID:         event.ID,
		SubjectID:  event.SubjectID,
		Topic:      event.Topic,
		Notes:      event.Notes,
		StudiedAt:  database.FormatTime(event.StudiedAt),
		StudiedOn:  event.Day().String(),
		TemplateID: event.TemplateID,
		Offsets:    domain.FormatOffsets(event.Offsets),
		NotePath:   event.NotePath,
		CreatedAt:  database.FormatTime(event.CreatedAt),
	}
	if event.Quiz != nil {
		row.QuizCorrect = sql.NullInt64{Int64: int64(event.Quiz.Correct), Valid: true}
		row.QuizTotal = sql.NullInt64{Int64: int64(event.Quiz.Total), Valid: true}
	}
	return row
}

func (r studyEventRow) toDomain() (domain.StudyEvent, error) {
	offsets, err := domain.ParseOffsets(r.Offsets)
	if err != nil {
		return domain.StudyEvent{}, fmt.Errorf("decode study event %s: %w", r.ID, err)
	}
	return domain.StudyEvent{
		ID:          r.ID,
		SubjectID:   r.SubjectID,
		SubjectName: r.SubjectName,
		Topic:       r.Topic,
		Notes:       r.Notes,
		StudiedAt:   database.ParseTime(r.StudiedAt),
		TemplateID:  r.TemplateID,
		Offsets:     offsets,
		Quiz:        quizOf(r.QuizCorrect, r.QuizTotal),
		NotePath:    r.NotePath,
		CreatedAt:   database.ParseTime(r.CreatedAt),
	}, nil
}

func toReviewRow(review domain.Review) reviewRow {
	row := reviewRow{
		ID:              review.ID,
		StudyEventID:    review.StudyEventID,
		SubjectID:       review.SubjectID,
		Topic:           review.Topic,
		StudiedAt:       review.StudiedAt.String(),
		DueAt:           review.DueAt.String(),
		OffsetDays:      review.Offset,
		Status:          string(review.Status),
		CompletedAt:     database.FormatTime(review.CompletedAt),
		ReviewStartedAt: database.FormatTime(review.ReviewStartedAt),
		DurationSeconds: review.DurationSeconds,
		PausedSeconds:   review.PausedSeconds,
		UpdatedAt:       database.FormatTime(review.UpdatedAt),
	}
	if review.Quiz != nil {
		row.QuizCorrect = sql.NullInt64{Int64: int64(review.Quiz.Correct), Valid: true}
		row.QuizTotal = sql.NullInt64{Int64: int64(review.Quiz.Total), Valid: true}
	}
	return row
}

func (r reviewRow) toDomain() domain.Review {
	return domain.Review{
		ID:              r.ID,
		StudyEventID:    r.StudyEventID,
		SubjectID:       r.SubjectID,
		SubjectName:     r.SubjectName,
		Topic:           r.Topic,
		StudiedAt:       domain.DateKey(r.StudiedAt),
		DueAt:           domain.DateKey(r.DueAt),
		Offset:          r.OffsetDays,
		Status:          domain.Status(r.Status),
		CompletedAt:     database.ParseTime(r.CompletedAt),
		ReviewStartedAt: database.ParseTime(r.ReviewStartedAt),
		DurationSeconds: r.DurationSeconds,
		PausedSeconds:   r.PausedSeconds,
		Quiz:            quizOf(r.QuizCorrect, r.QuizTotal),
		UpdatedAt:       database.ParseTime(r.UpdatedAt),
	}
}

func quizOf(correct, total sql.NullInt64) *domain.Quiz {
	if !correct.Valid || !total.Valid {
		return nil
	}
	return &domain.Quiz{Correct: int(correct.Int64), Total: int(total.Int64)}
}

func notFound(kind, key string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", kind, key, apperrors.ErrNotFound)
	}
	return fmt.Errorf("find %s: %w", kind, err)
}
