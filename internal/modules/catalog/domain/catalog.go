package domain

import (
	"fmt"
	"strings"
	"time"

	apperrors "cadence/internal/platform/errors"
)

type Subject struct {
	ID        string
	Name      string
	Color     string
	Archived  bool
	CreatedAt time.Time
}

func (s Subject) Validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return nil
}

// Template is a named cadence: the day offsets after a study event at
// which reviews fall due.
type Template struct {
	ID        string
	Name      string
	Offsets   []int
	IsDefault bool
	CreatedAt time.Time
}

func (t Template) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if len(t.Offsets) == 0 {
		return fmt.Errorf("at least one positive offset is required")
	}
	return nil
}

const (
	TierFree = "free"
	TierPro  = "pro"
)

// Plan caps how many active subjects and templates may exist. A limit of
// zero or less means unlimited.
type Plan struct {
	Tier          string
	SubjectLimit  int
	TemplateLimit int
}

func (p Plan) AllowSubject(active int) error {
	if p.SubjectLimit > 0 && active >= p.SubjectLimit {
		return fmt.Errorf("%w: %s plan allows %d active subjects", apperrors.ErrPlanLimit, p.Tier, p.SubjectLimit)
	}
	return nil
}

func (p Plan) AllowTemplate(existing int) error {
	if p.TemplateLimit > 0 && existing >= p.TemplateLimit {
		return fmt.Errorf("%w: %s plan allows %d templates", apperrors.ErrPlanLimit, p.Tier, p.TemplateLimit)
	}
	return nil
}
