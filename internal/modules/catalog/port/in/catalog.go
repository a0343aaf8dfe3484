package in

import (
	"context"

	"cadence/internal/modules/catalog/dto"
)

type Usecase interface {
	AddSubject(ctx context.Context, input dto.AddSubjectInput) (dto.SubjectOutput, error)
	ListSubjects(ctx context.Context, includeArchived bool) ([]dto.SubjectOutput, error)
	GetSubject(ctx context.Context, id string) (dto.SubjectOutput, error)
	ArchiveSubject(ctx context.Context, id string) (dto.SubjectOutput, error)
	AddTemplate(ctx context.Context, input dto.AddTemplateInput) (dto.TemplateOutput, error)
	ListTemplates(ctx context.Context) ([]dto.TemplateOutput, error)
	GetTemplate(ctx context.Context, id string) (dto.TemplateOutput, error)
	SetDefaultTemplate(ctx context.Context, id string) (dto.TemplateOutput, error)
	// DefaultTemplate returns apperrors.ErrNotFound when no template is
	// marked default.
	DefaultTemplate(ctx context.Context) (dto.TemplateOutput, error)
	Plan(ctx context.Context) (dto.PlanOutput, error)
}
