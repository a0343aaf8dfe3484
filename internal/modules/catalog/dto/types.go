package dto

type AddSubjectInput struct {
	Name  string `json:"name" validate:"required,max=80"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

type AddTemplateInput struct {
	Name      string `json:"name" validate:"required,max=80"`
	Offsets   []int  `json:"offsets" validate:"required,min=1,dive,max=3650"`
	IsDefault bool   `json:"is_default"`
}

type SubjectOutput struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color,omitempty"`
	Archived bool   `json:"archived"`
}

type TemplateOutput struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Offsets   []int  `json:"offsets"`
	IsDefault bool   `json:"is_default"`
}

type PlanOutput struct {
	Tier           string `json:"tier"`
	SubjectLimit   int    `json:"subject_limit"`
	TemplateLimit  int    `json:"template_limit"`
	ActiveSubjects int    `json:"active_subjects"`
	Templates      int    `json:"templates"`
}
