package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Esma3in/SkillMatch-fe-sub000/internal/cache"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/models"
	"github.com/Esma3in/SkillMatch-fe-sub000/internal/services"
)

func newProgressCommands(ctx *commandContext) []*cobra.Command {
	openCmd := &cobra.Command{
		Use:   "open <roadmap>",
		Short: "Load a roadmap, merge local and remote progress and show it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctx.logger(cmd.ErrOrStderr())
			return ctx.withSession(cmd.Context(), logger, args[0], func(session *services.Session) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Loaded from %s\n", session.Source())
				renderView(cmd.OutOrStdout(), session.View())
				return nil
			})
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status <roadmap>",
		Short: "Show the cached progress without contacting the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctx.logger(cmd.ErrOrStderr())
			return ctx.withCache(logger, func(store *cache.Store) error {
				record, ok := store.Load(args[0])
				if !ok {
					fmt.Fprintf(cmd.OutOrStdout(), "No cached progress for %s; run `roadmap open %s`\n", args[0], args[0])
					return nil
				}
				renderView(cmd.OutOrStdout(), services.NewProgressView(record))
				return nil
			})
		},
	}

	completeCmd := &cobra.Command{
		Use:   "complete <roadmap> <step>",
		Short: "Mark a step complete (number or name, e.g. 2 or courses)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stepID, ok := models.ParseStep(args[1])
			if !ok {
				return fmt.Errorf("unknown step %q (expected 1-%d or a step name)", args[1], models.StepCount())
			}
			logger := ctx.logger(cmd.ErrOrStderr())
			return ctx.withSession(cmd.Context(), logger, args[0], func(session *services.Session) error {
				view, err := session.CompleteStep(cmd.Context(), stepID)
				if err != nil {
					return describeTransitionError(err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s completed\n", models.StepName(stepID))
				renderView(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}

	courseCmd := newToggleCommand(ctx, "course", "Toggle a course checklist item",
		func(cmd *cobra.Command, session *services.Session, id string) (services.ProgressView, error) {
			return session.ToggleCourse(cmd.Context(), id)
		})
	skillCmd := newToggleCommand(ctx, "skill", "Toggle a skill checklist item",
		func(cmd *cobra.Command, session *services.Session, id string) (services.ProgressView, error) {
			return session.ToggleSkill(cmd.Context(), id)
		})

	return []*cobra.Command{openCmd, statusCmd, completeCmd, courseCmd, skillCmd}
}

type toggleFunc func(cmd *cobra.Command, session *services.Session, id string) (services.ProgressView, error)

func newToggleCommand(ctx *commandContext, name, short string, toggle toggleFunc) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <roadmap> <id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := ctx.logger(cmd.ErrOrStderr())
			return ctx.withSession(cmd.Context(), logger, args[0], func(session *services.Session) error {
				view, err := toggle(cmd, session, args[1])
				if err != nil {
					return err
				}
				renderView(cmd.OutOrStdout(), view)
				return nil
			})
		},
	}
}

func describeTransitionError(err error) error {
	var gateErr *models.GateError
	switch {
	case errors.Is(err, models.ErrChecklistUnavailable):
		return fmt.Errorf("the course and skill checklists have not loaded yet; run `roadmap open` while the server is reachable")
	case errors.As(err, &gateErr):
		return fmt.Errorf("%s is locked until these are checked: %s", models.StepName(gateErr.StepID), strings.Join(gateErr.Remaining, ", "))
	case errors.Is(err, models.ErrQuizStepManaged):
		return fmt.Errorf("the quiz step completes when a passing quiz result is recorded")
	default:
		return err
	}
}

func renderView(w io.Writer, view services.ProgressView) {
	status := "in progress"
	if view.Terminal {
		status = "completed"
	}
	fmt.Fprintf(w, "Roadmap %s (%s): %d%% %s\n", view.RoadmapID, view.CandidateID, view.ProgressPercent, status)

	rows := make([][]string, 0, len(view.Steps))
	for _, step := range view.Steps {
		state := "pending"
		if step.Completed {
			state = "done"
		}
		marker := ""
		if step.Active {
			marker = "<"
		}
		rows = append(rows, []string{fmt.Sprintf("%d", step.ID), step.Name, state, marker})
	}
	fmt.Fprintln(w, renderTable([]string{"#", "Step", "State", ""}, rows, []columnAlignment{alignRight}))

	if view.Terminal {
		return
	}
	if len(view.PendingCourses) > 0 {
		fmt.Fprintf(w, "Pending courses: %s\n", strings.Join(view.PendingCourses, ", "))
	}
	if len(view.PendingSkills) > 0 {
		fmt.Fprintf(w, "Pending skills: %s\n", strings.Join(view.PendingSkills, ", "))
	}
}
