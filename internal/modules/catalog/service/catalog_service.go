package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cadence/internal/modules/catalog/domain"
	catalogout "cadence/internal/modules/catalog/port/out"
	reviewdomain "cadence/internal/modules/review/domain"
	"cadence/internal/platform/clock"
	apperrors "cadence/internal/platform/errors"
	"cadence/internal/platform/id"
)

type CatalogService struct {
	clock     clock.Clock
	idGen     id.Generator
	subjects  catalogout.SubjectStore
	templates catalogout.TemplateStore
	plan      domain.Plan
}

func NewCatalogService(clock clock.Clock, idGen id.Generator, subjects catalogout.SubjectStore, templates catalogout.TemplateStore, plan domain.Plan) *CatalogService {
	return &CatalogService{clock: clock, idGen: idGen, subjects: subjects, templates: templates, plan: plan}
}

func (s *CatalogService) AddSubject(ctx context.Context, name, color string) (domain.Subject, error) {
	name = strings.TrimSpace(name)
	existing, err := s.subjects.FindSubjectByName(ctx, name)
	switch {
	case err == nil:
		if !existing.Archived {
			return domain.Subject{}, fmt.Errorf("%w: subject %q already exists", apperrors.ErrInvalidInput, existing.Name)
		}
		// Re-adding an archived subject brings it back.
		if err := s.allowSubject(ctx); err != nil {
			return domain.Subject{}, err
		}
		existing.Archived = false
		if strings.TrimSpace(color) != "" {
			existing.Color = color
		}
		if err := s.subjects.SaveSubject(ctx, existing); err != nil {
			return domain.Subject{}, err
		}
		return existing, nil
	case !errors.Is(err, apperrors.ErrNotFound):
		return domain.Subject{}, err
	}

	if err := s.allowSubject(ctx); err != nil {
		return domain.Subject{}, err
	}
	subject := domain.Subject{
		ID:        s.idGen.New(),
		Name:      name,
		Color:     color,
		CreatedAt: s.clock.Now(),
	}
	if err := subject.Validate(); err != nil {
		return domain.Subject{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if err := s.subjects.SaveSubject(ctx, subject); err != nil {
		return domain.Subject{}, err
	}
	return subject, nil
}

func (s *CatalogService) allowSubject(ctx context.Context) error {
	active, err := s.activeSubjects(ctx)
	if err != nil {
		return err
	}
	return s.plan.AllowSubject(len(active))
}

func (s *CatalogService) activeSubjects(ctx context.Context) ([]domain.Subject, error) {
	all, err := s.subjects.ListSubjects(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Subject, 0, len(all))
	for _, subject := range all {
		if !subject.Archived {
			out = append(out, subject)
		}
	}
	return out, nil
}

func (s *CatalogService) ListSubjects(ctx context.Context, includeArchived bool) ([]domain.Subject, error) {
	var (
		subjects []domain.Subject
		err      error
	)
	if includeArchived {
		subjects, err = s.subjects.ListSubjects(ctx)
	} else {
		subjects, err = s.activeSubjects(ctx)
	}
	if err != nil {
		return nil, err
	}
	sort.SliceStable(subjects, func(i, j int) bool {
		return strings.ToLower(subjects[i].Name) < strings.ToLower(subjects[j].Name)
	})
	return subjects, nil
}

func (s *CatalogService) GetSubject(ctx context.Context, subjectID string) (domain.Subject, error) {
	return s.subjects.FindSubject(ctx, subjectID)
}

func (s *CatalogService) ArchiveSubject(ctx context.Context, subjectID string) (domain.Subject, error) {
	subject, err := s.subjects.FindSubject(ctx, subjectID)
	if err != nil {
		return domain.Subject{}, err
	}
	if subject.Archived {
		return subject, nil
	}
	subject.Archived = true
	if err := s.subjects.SaveSubject(ctx, subject); err != nil {
		return domain.Subject{}, err
	}
	return subject, nil
}

func (s *CatalogService) AddTemplate(ctx context.Context, name string, offsets []int, makeDefault bool) (domain.Template, error) {
	existing, err := s.templates.ListTemplates(ctx)
	if err != nil {
		return domain.Template{}, err
	}
	if err := s.plan.AllowTemplate(len(existing)); err != nil {
		return domain.Template{}, err
	}
	template := domain.Template{
		ID:        s.idGen.New(),
		Name:      strings.TrimSpace(name),
		Offsets:   reviewdomain.NormalizeOffsets(offsets),
		IsDefault: makeDefault || len(existing) == 0,
		CreatedAt: s.clock.Now(),
	}
	if err := template.Validate(); err != nil {
		return domain.Template{}, fmt.Errorf("%w: %v", apperrors.ErrInvalidInput, err)
	}
	if err := s.templates.SaveTemplate(ctx, template); err != nil {
		return domain.Template{}, err
	}
	if template.IsDefault {
		if err := s.templates.MarkDefault(ctx, template.ID); err != nil {
			return domain.Template{}, err
		}
	}
	return template, nil
}

func (s *CatalogService) ListTemplates(ctx context.Context) ([]domain.Template, error) {
	return s.templates.ListTemplates(ctx)
}

func (s *CatalogService) GetTemplate(ctx context.Context, templateID string) (domain.Template, error) {
	return s.templates.FindTemplate(ctx, templateID)
}

func (s *CatalogService) SetDefaultTemplate(ctx context.Context, templateID string) (domain.Template, error) {
	template, err := s.templates.FindTemplate(ctx, templateID)
	if err != nil {
		return domain.Template{}, err
	}
	if err := s.templates.MarkDefault(ctx, template.ID); err != nil {
		return domain.Template{}, err
	}
	template.IsDefault = true
	return template, nil
}

func (s *CatalogService) DefaultTemplate(ctx context.Context) (domain.Template, error) {
	templates, err := s.templates.ListTemplates(ctx)
	if err != nil {
		return domain.Template{}, err
	}
	for _, template := range templates {
		if template.IsDefault {
			return template, nil
		}
	}
	return domain.Template{}, fmt.Errorf("default template: %w", apperrors.ErrNotFound)
}

// Usage reports the plan together with current consumption.
func (s *CatalogService) Usage(ctx context.Context) (domain.Plan, int, int, error) {
	active, err := s.activeSubjects(ctx)
	if err != nil {
		return domain.Plan{}, 0, 0, err
	}
	templates, err := s.templates.ListTemplates(ctx)
	if err != nil {
		return domain.Plan{}, 0, 0, err
	}
	return s.plan, len(active), len(templates), nil
}
