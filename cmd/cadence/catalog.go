package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"cadence/internal/bootstrap"
)

func newSubjectCmd(dataPath *string) *cobra.Command {
	subject := &cobra.Command{Use: "subject", Short: "Subjects you study"}

	var color string
	add := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a subject",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				s, err := app.CatalogCLI.AddSubject(context.Background(), args[0], color)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", s.Name, s.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&color, "color", "", "display colour, e.g. #a6e3a1")

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List subjects",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				subjects, err := app.CatalogCLI.ListSubjects(context.Background(), all)
				if err != nil {
					return err
				}
				if len(subjects) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no subjects")
					return nil
				}
				for _, s := range subjects {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\tarchived=%t\n", s.ID, s.Name, s.Color, s.Archived)
				}
				return nil
			})
		},
	}
	list.Flags().BoolVar(&all, "all", false, "include archived subjects")

	archive := &cobra.Command{
		Use:   "archive <subject-id>",
		Short: "Archive a subject and hide its reviews",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				s, err := app.CatalogCLI.ArchiveSubject(context.Background(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "archived %s (%s)\n", s.Name, s.ID)
				return nil
			})
		},
	}

	subject.AddCommand(add, list, archive)
	return subject
}

func newTemplateCmd(dataPath *string) *cobra.Command {
	template := &cobra.Command{Use: "template", Short: "Revision templates (review day offsets)"}

	var offsets string
	var makeDefault bool
	add := &cobra.Command{
		Use:   "add <name> --offsets 1,7,15",
		Short: "Add a revision template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseOffsets(offsets)
			if err != nil {
				return err
			}
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				t, err := app.CatalogCLI.AddTemplate(context.Background(), args[0], parsed, makeDefault)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s) offsets=%v default=%t\n", t.Name, t.ID, t.Offsets, t.IsDefault)
				return nil
			})
		},
	}
	add.Flags().StringVar(&offsets, "offsets", "", "comma separated day offsets")
	add.Flags().BoolVar(&makeDefault, "default", false, "make it the default template")

	list := &cobra.Command{
		Use:   "list",
		Short: "List revision templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				templates, err := app.CatalogCLI.ListTemplates(context.Background())
				if err != nil {
					return err
				}
				if len(templates) == 0 {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no templates")
					return nil
				}
				for _, t := range templates {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%v\tdefault=%t\n", t.ID, t.Name, t.Offsets, t.IsDefault)
				}
				return nil
			})
		},
	}

	setDefault := &cobra.Command{
		Use:   "default <template-id>",
		Short: "Make a template the default",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				t, err := app.CatalogCLI.SetDefaultTemplate(context.Background(), args[0])
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "default template: %s (%s)\n", t.Name, t.ID)
				return nil
			})
		},
	}

	template.AddCommand(add, list, setDefault)
	return template
}

func newPlanCmd(dataPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show the plan tier and its usage",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(context.Background(), *dataPath, func(app *bootstrap.App) error {
				p, err := app.CatalogCLI.Plan(context.Background())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "tier=%s subjects=%d/%s templates=%d/%s\n",
					p.Tier, p.ActiveSubjects, limitString(p.SubjectLimit), p.Templates, limitString(p.TemplateLimit))
				return nil
			})
		},
	}
}

func limitString(n int) string {
	if n <= 0 {
		return "unlimited"
	}
	return fmt.Sprint(n)
}
