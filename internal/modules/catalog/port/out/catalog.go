package out

import (
	"context"

	"cadence/internal/modules/catalog/domain"
)

type SubjectStore interface {
	SaveSubject(ctx context.Context, subject domain.Subject) error
	FindSubject(ctx context.Context, id string) (domain.Subject, error)
	FindSubjectByName(ctx context.Context, name string) (domain.Subject, error)
	ListSubjects(ctx context.Context) ([]domain.Subject, error)
}

type TemplateStore interface {
	SaveTemplate(ctx context.Context, template domain.Template) error
	FindTemplate(ctx context.Context, id string) (domain.Template, error)
	ListTemplates(ctx context.Context) ([]domain.Template, error)
	// MarkDefault makes id the only default template.
	MarkDefault(ctx context.Context, id string) error
}
