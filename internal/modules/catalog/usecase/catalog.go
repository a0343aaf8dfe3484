package usecase

import (
	"context"

	"cadence/internal/modules/catalog/domain"
	"cadence/internal/modules/catalog/dto"
	catalogin "cadence/internal/modules/catalog/port/in"
	"cadence/internal/modules/catalog/service"
	"cadence/internal/platform/validate"
)

type Interactor struct {
	svc *service.CatalogService
}

func NewInteractor(svc *service.CatalogService) catalogin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) AddSubject(ctx context.Context, input dto.AddSubjectInput) (dto.SubjectOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.SubjectOutput{}, err
	}
	subject, err := i.svc.AddSubject(ctx, input.Name, input.Color)
	if err != nil {
		return dto.SubjectOutput{}, err
	}
	return toSubjectOutput(subject), nil
}

func (i *Interactor) ListSubjects(ctx context.Context, includeArchived bool) ([]dto.SubjectOutput, error) {
	subjects, err := i.svc.ListSubjects(ctx, includeArchived)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SubjectOutput, 0, len(subjects))
	for _, subject := range subjects {
		out = append(out, toSubjectOutput(subject))
	}
	return out, nil
}

func (i *Interactor) GetSubject(ctx context.Context, id string) (dto.SubjectOutput, error) {
	subject, err := i.svc.GetSubject(ctx, id)
	if err != nil {
		return dto.SubjectOutput{}, err
	}
	return toSubjectOutput(subject), nil
}

func (i *Interactor) ArchiveSubject(ctx context.Context, id string) (dto.SubjectOutput, error) {
	subject, err := i.svc.ArchiveSubject(ctx, id)
	if err != nil {
		return dto.SubjectOutput{}, err
	}
	return toSubjectOutput(subject), nil
}

func (i *Interactor) AddTemplate(ctx context.Context, input dto.AddTemplateInput) (dto.TemplateOutput, error) {
	if err := validate.Struct(input); err != nil {
		return dto.TemplateOutput{}, err
	}
	template, err := i.svc.AddTemplate(ctx, input.Name, input.Offsets, input.IsDefault)
	if err != nil {
		return dto.TemplateOutput{}, err
	}
	return toTemplateOutput(template), nil
}

func (i *Interactor) ListTemplates(ctx context.Context) ([]dto.TemplateOutput, error) {
	templates, err := i.svc.ListTemplates(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TemplateOutput, 0, len(templates))
	for _, template := range templates {
		out = append(out, toTemplateOutput(template))
	}
	return out, nil
}

func (i *Interactor) GetTemplate(ctx context.Context, id string) (dto.TemplateOutput, error) {
	template, err := i.svc.GetTemplate(ctx, id)
	if err != nil {
		return dto.TemplateOutput{}, err
	}
	return toTemplateOutput(template), nil
}

func (i *Interactor) SetDefaultTemplate(ctx context.Context, id string) (dto.TemplateOutput, error) {
	template, err := i.svc.SetDefaultTemplate(ctx, id)
	if err != nil {
		return dto.TemplateOutput{}, err
	}
	return toTemplateOutput(template), nil
}

func (i *Interactor) DefaultTemplate(ctx context.Context) (dto.TemplateOutput, error) {
	template, err := i.svc.DefaultTemplate(ctx)
	if err != nil {
		return dto.TemplateOutput{}, err
	}
	return toTemplateOutput(template), nil
}

func (i *Interactor) Plan(ctx context.Context) (dto.PlanOutput, error) {
	plan, subjects, templates, err := i.svc.Usage(ctx)
	if err != nil {
		return dto.PlanOutput{}, err
	}
	return dto.PlanOutput{
		Tier:           plan.Tier,
		SubjectLimit:   plan.SubjectLimit,
		TemplateLimit:  plan.TemplateLimit,
		ActiveSubjects: subjects,
		Templates:      templates,
	}, nil
}

func toSubjectOutput(subject domain.Subject) dto.SubjectOutput {
	return dto.SubjectOutput{ID: subject.ID, Name: subject.Name, Color: subject.Color, Archived: subject.Archived}
}

func toTemplateOutput(template domain.Template) dto.TemplateOutput {
	return dto.TemplateOutput{ID: template.ID, Name: template.Name, Offsets: template.Offsets, IsDefault: template.IsDefault}
}
