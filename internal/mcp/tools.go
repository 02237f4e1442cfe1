package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/claude/weeklyplan/internal/models"
	"github.com/claude/weeklyplan/internal/plan"
	"github.com/claude/weeklyplan/internal/planapi"
	"github.com/claude/weeklyplan/internal/view"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolGetActiveProgram = mcp.NewTool("get_active_program",
	mcp.WithDescription("Get the active weekly workout program. 'text' renders the plan the way the weekly plan screen shows it; 'json' returns the program exactly as stored."),
	mcp.WithString("format", mcp.Description("Output format. Defaults to 'text'."), mcp.Enum("text", "json")),
)

var toolDeleteWorkoutDay = mcp.NewTool("delete_workout_day",
	mcp.WithDescription("Permanently delete one workout day from the active program. Requires confirm=true."),
	mcp.WithNumber("workout_id", mcp.Required(), mcp.Description("Workout day id (the 'id' field of a workout, not its day number)")),
	mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true. Guards against accidental deletion.")),
)

var toolAdaptPlan = mcp.NewTool("adapt_plan",
	mcp.WithDescription("Ask the plan service to adapt the active program, e.g. 'I don't have a barbell today' or 'make tomorrow's workout shorter'. Returns the updated program or the service's clarifying question."),
	mcp.WithString("request", mcp.Required(), mcp.Description("Natural-language change request")),
)

// --- Tool handlers ---

func (h *handlers) getActiveProgram(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, err := h.backend.ActiveProgram(ctx)
	if err != nil {
		if planapi.IsStatus(err) {
			return mcp.NewToolResultText("No active program."), nil
		}
		h.log.Error("mcp get_active_program", "error", err)
		return mcp.NewToolResultError("plan service unavailable: " + err.Error()), nil
	}
	if p == nil {
		return mcp.NewToolResultText("No active program."), nil
	}

	if req.GetString("format", "text") == "json" {
		result, err := mcp.NewToolResultJSON(p)
		if err != nil {
			return mcp.NewToolResultError("serialization failed"), nil
		}
		return result, nil
	}
	return mcp.NewToolResultText(renderText(view.NewPlanView(p, view.Detail))), nil
}

func (h *handlers) deleteWorkoutDay(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireInt("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}
	if !req.GetBool("confirm", false) {
		return mcp.NewToolResultError("deletion not confirmed: set confirm=true"), nil
	}

	flow := plan.NewDeleteFlow(h.backend, nil)
	flow.Arm(int64(id))
	if err := flow.Confirm(ctx, int64(id)); err != nil {
		h.log.Error("mcp delete_workout_day", "workout_id", id, "error", err)
		return mcp.NewToolResultError(alertText(err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Deleted workout %d.", id)), nil
}

func (h *handlers) adaptPlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	request, err := req.RequireString("request")
	if err != nil || strings.TrimSpace(request) == "" {
		return mcp.NewToolResultError("request parameter is required"), nil
	}

	current, err := h.backend.ActiveProgram(ctx)
	if err != nil {
		h.log.Error("mcp adapt_plan: fetch", "error", err)
		return mcp.NewToolResultError("could not load the active program: " + err.Error()), nil
	}

	var updated *models.Program
	chat := plan.NewChat(h.backend, func(p *models.Program) { updated = p })
	outcome, err := chat.Send(ctx, current, request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	switch outcome {
	case plan.OutcomeReplaced:
		return mcp.NewToolResultText("Plan updated.\n\n" + renderText(view.NewPlanView(updated, view.Detail))), nil
	case plan.OutcomeFailed:
		return mcp.NewToolResultError(lastAssistantText(chat)), nil
	default:
		return mcp.NewToolResultText(lastAssistantText(chat)), nil
	}
}

func alertText(err error) string {
	var ae *plan.AlertError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

func lastAssistantText(c *plan.Chat) string {
	msgs := c.Messages()
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == models.RoleAssistant {
			return msgs[i].Text
		}
	}
	return plan.ErrorFallback
}

// renderText formats a plan view as plain text for MCP clients.
func renderText(v *view.PlanView) string {
	if v == nil {
		return "No active program."
	}
	var b strings.Builder
	b.WriteString(v.Name)
	b.WriteString("\n")
	if v.Description != "" {
		b.WriteString(v.Description)
		b.WriteString("\n")
	}
	for _, d := range v.Days {
		fmt.Fprintf(&b, "\n%s (id %d)\n", d.Label, d.ID)
		for _, blk := range d.Blocks {
			switch {
			case blk.Section != nil:
				fmt.Fprintf(&b, "  %s:\n", blk.Section.Title)
				for _, item := range blk.Section.Visible(false) {
					fmt.Fprintf(&b, "    - %s\n", item)
				}
				if blk.Section.HasMore() {
					fmt.Fprintf(&b, "    %s\n", blk.Section.MoreLabel(false))
				}
			case blk.Circuit != nil:
				fmt.Fprintf(&b, "  %s, %s\n", blk.Circuit.Label, blk.Circuit.RoundsLabel)
				for _, ex := range blk.Circuit.Exercises {
					fmt.Fprintf(&b, "    - %s: %s\n", ex.Name, ex.RepsLabel)
				}
			case blk.Cardio != nil:
				fmt.Fprintf(&b, "  Cardio: %s, %s\n", blk.Cardio.Type, blk.Cardio.DurationLabel)
				if blk.Cardio.Notes != "" {
					fmt.Fprintf(&b, "    %s\n", blk.Cardio.Notes)
				}
			}
		}
	}
	return b.String()
}
