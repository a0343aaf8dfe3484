package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cadence/internal/modules/review/domain"
	reviewout "cadence/internal/modules/review/port/out"
	apperrors "cadence/internal/platform/errors"
	"cadence/internal/platform/markdown"
	"cadence/internal/platform/slug"
)

type JournalStore struct {
	root string
}

type journalFrontmatter struct {
	SchemaVersion int             `yaml:"schema_version"`
	ID            string          `yaml:"id"`
	SubjectID     string          `yaml:"subject_id"`
	Subject       string          `yaml:"subject"`
	Topic         string          `yaml:"topic"`
	StudiedAt     string          `yaml:"studied_at"`
	TemplateID    string          `yaml:"template_id,omitempty"`
	Offsets       []int           `yaml:"offsets"`
	QuizCorrect   *int            `yaml:"quiz_correct,omitempty"`
	QuizTotal     *int            `yaml:"quiz_total,omitempty"`
	Reviews       []journalReview `yaml:"reviews"`
}

type journalReview struct {
	ID     string `yaml:"id"`
	Due    string `yaml:"due"`
	Status string `yaml:"status"`
}

func NewJournalStore(root string) reviewout.JournalStore {
	return &JournalStore{root: root}
}

func (s *JournalStore) Save(_ context.Context, note domain.JournalNote) (string, error) {
	path := note.Event.NotePath
	if path == "" {
		path = s.pathFor(note.Event)
	}
	if err := s.contains(path); err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create journal directory: %w", err)
	}

	body := note.Body
	if strings.TrimSpace(body) == "" {
		if existing, err := os.ReadFile(path); err == nil {
			if _, existingBody, splitErr := markdown.Split(string(existing)); splitErr == nil {
				body = existingBody
			}
		}
	}
	if strings.TrimSpace(body) == "" {
		body = defaultBody(note.Event)
	}
	body = markdown.ReplaceBlock(body, domain.ManagedScheduleStart, domain.ManagedScheduleEnd, renderSchedule(note.Reviews))

	rendered, err := markdown.Render(toFrontmatter(note), body)
	if err != nil {
		return "", err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write journal note: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("replace journal note: %w", err)
	}
	return path, nil
}

func (s *JournalStore) Load(_ context.Context, path string) (domain.JournalNote, error) {
	if err := s.contains(path); err != nil {
		return domain.JournalNote{}, err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.JournalNote{}, fmt.Errorf("journal note %s: %w", path, apperrors.ErrNotFound)
		}
		return domain.JournalNote{}, fmt.Errorf("read journal note: %w", err)
	}
	meta := journalFrontmatter{}
	body, err := markdown.Decode(string(content), &meta)
	if err != nil {
		return domain.JournalNote{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return fromFrontmatter(meta, path, body), nil
}

// pathFor places notes under YYYY/MM/DD so a day's study reads together.
func (s *JournalStore) pathFor(event domain.StudyEvent) string {
	at := event.StudiedAt
	name := slug.NoteFile(at, event.SubjectName, event.Topic)
	return filepath.Join(s.root, at.Format("2006"), at.Format("01"), at.Format("02"), name)
}

func (s *JournalStore) contains(path string) error {
	rel, err := filepath.Rel(s.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: note path %s is outside the journal", apperrors.ErrInvalidInput, path)
	}
	return nil
}

func defaultBody(event domain.StudyEvent) string {
	b := strings.Builder{}
	b.WriteString("# " + event.Topic + "\n\n## Notes\n\n")
	if notes := strings.TrimSpace(event.Notes); notes != "" {
		b.WriteString(notes + "\n\n")
	}
	b.WriteString("## Questions\n\n## Review schedule\n")
	return b.String()
}

func renderSchedule(reviews []domain.Review) string {
	if len(reviews) == 0 {
		return "_no reviews scheduled_"
	}
	lines := make([]string, 0, len(reviews))
	for _, review := range reviews {
		box := "[ ]"
		if review.Completed() {
			box = "[x]"
		}
		line := fmt.Sprintf("- %s %s (+%dd) %s", box, review.DueAt, review.Offset, review.Status)
		if review.Completed() && review.DurationSeconds > 0 {
			line += fmt.Sprintf(", %s", (time.Duration(review.DurationSeconds) * time.Second).String())
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func toFrontmatter(note domain.JournalNote) journalFrontmatter {
	event := note.Event
	meta := journalFrontmatter{
		SchemaVersion: domain.SchemaVersion,
		ID:            event.ID,
		SubjectID:     event.SubjectID,
		Subject:       event.SubjectName,
		Topic:         event.Topic,
		StudiedAt:     event.StudiedAt.Format(time.RFC3339),
		TemplateID:    event.TemplateID,
		Offsets:       event.Offsets,
		Reviews:       make([]journalReview, 0, len(note.Reviews)),
	}
	if event.Quiz != nil {
		correct, total := event.Quiz.Correct, event.Quiz.Total
		meta.QuizCorrect = &correct
		meta.QuizTotal = &total
	}
	for _, review := range note.Reviews {
		meta.Reviews = append(meta.Reviews, journalReview{ID: review.ID, Due: review.DueAt.String(), Status: string(review.Status)})
	}
	return meta
}

func fromFrontmatter(meta journalFrontmatter, path, body string) domain.JournalNote {
	studiedAt, _ := time.Parse(time.RFC3339, meta.StudiedAt)
	event := domain.StudyEvent{
		ID:          meta.ID,
		SubjectID:   meta.SubjectID,
		SubjectName: meta.Subject,
		Topic:       meta.Topic,
		StudiedAt:   studiedAt,
		TemplateID:  meta.TemplateID,
		Offsets:     meta.Offsets,
		NotePath:    path,
	}
	if meta.QuizCorrect != nil && meta.QuizTotal != nil {
		event.Quiz = &domain.Quiz{Correct: *meta.QuizCorrect, Total: *meta.QuizTotal}
	}
	reviews := make([]domain.Review, 0, len(meta.Reviews))
	for _, r := range meta.Reviews {
		reviews = append(reviews, domain.Review{
			ID:           r.ID,
			StudyEventID: meta.ID,
			DueAt:        domain.DateKey(r.Due),
			Status:       domain.Status(r.Status),
		})
	}
	return domain.JournalNote{Event: event, Reviews: reviews, Body: body}
}
