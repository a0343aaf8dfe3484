package in

import (
	"context"

	"cadence/internal/modules/catalog/dto"
	catalogin "cadence/internal/modules/catalog/port/in"
)

type CLIHandler struct {
	usecase catalogin.Usecase
}

func NewCLIHandler(usecase catalogin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) AddSubject(ctx context.Context, name, color string) (dto.SubjectOutput, error) {
	return h.usecase.AddSubject(ctx, dto.AddSubjectInput{Name: name, Color: color})
}

func (h CLIHandler) ListSubjects(ctx context.Context, includeArchived bool) ([]dto.SubjectOutput, error) {
	return h.usecase.ListSubjects(ctx, includeArchived)
}

func (h CLIHandler) ArchiveSubject(ctx context.Context, id string) (dto.SubjectOutput, error) {
	return h.usecase.ArchiveSubject(ctx, id)
}

func (h CLIHandler) AddTemplate(ctx context.Context, name string, offsets []int, makeDefault bool) (dto.TemplateOutput, error) {
	return h.usecase.AddTemplate(ctx, dto.AddTemplateInput{Name: name, Offsets: offsets, IsDefault: makeDefault})
}

func (h CLIHandler) ListTemplates(ctx context.Context) ([]dto.TemplateOutput, error) {
	return h.usecase.ListTemplates(ctx)
}

func (h CLIHandler) SetDefaultTemplate(ctx context.Context, id string) (dto.TemplateOutput, error) {
	return h.usecase.SetDefaultTemplate(ctx, id)
}

func (h CLIHandler) Plan(ctx context.Context) (dto.PlanOutput, error) {
	return h.usecase.Plan(ctx)
}
