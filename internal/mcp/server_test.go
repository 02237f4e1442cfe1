package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/claude/weeklyplan/internal/models"
	"github.com/claude/weeklyplan/internal/planapi"
	"github.com/mark3labs/mcp-go/mcp"
)

type fakeBackend struct {
	program   *models.Program
	err       error
	deleteErr error
	deleted   []int64
	adapt     *models.AdaptResponse
	adaptErr  error
	requests  []string
}

func (f *fakeBackend) ActiveProgram(ctx context.Context) (*models.Program, error) {
	return f.program, f.err
}

func (f *fakeBackend) DeleteWorkout(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	return f.deleteErr
}

func (f *fakeBackend) AdaptPlan(ctx context.Context, p *models.Program, req string) (*models.AdaptResponse, error) {
	f.requests = append(f.requests, req)
	return f.adapt, f.adaptErr
}

func testHandlers(fb *fakeBackend) *handlers {
	return &handlers{backend: fb, log: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func testProgram() *models.Program {
	return &models.Program{ID: 1, Name: "PT Block 1", Workouts: []models.WorkoutDay{
		{ID: 10, DayNumber: 1, Components: []models.Component{
			{Type: models.ComponentCardio, OrderIndex: 1, Data: models.Cardio{Type: "Run", Duration: "20"}},
			{Type: models.ComponentCircuit, OrderIndex: 2, Data: models.Circuit{Rounds: 1, Exercises: []models.Exercise{{Name: "Pull-up", Reps: "1"}}}},
		}},
	}}
}

func callTool(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if r == nil || len(r.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := r.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T", r.Content[0])
	}
	return tc.Text
}

func TestNewRegistersServer(t *testing.T) {
	if s := New(&fakeBackend{}, "test", slog.New(slog.NewTextHandler(io.Discard, nil))); s == nil {
		t.Fatal("New returned nil")
	}
}

func TestGetActiveProgramText(t *testing.T) {
	h := testHandlers(&fakeBackend{program: testProgram()})
	res, err := h.getActiveProgram(context.Background(), callTool(nil))
	if err != nil {
		t.Fatal(err)
	}
	text := resultText(t, res)
	for _, want := range []string{"PT Block 1", "Day 1 (id 10)", "Cardio: Run, 20 mins", "Circuit 2, 1 Round", "Pull-up: 1 rep"} {
		if !strings.Contains(text, want) {
			t.Errorf("text missing %q:\n%s", want, text)
		}
	}
}

func TestGetActiveProgramJSON(t *testing.T) {
	h := testHandlers(&fakeBackend{program: testProgram()})
	res, err := h.getActiveProgram(context.Background(), callTool(map[string]any{"format": "json"}))
	if err != nil {
		t.Fatal(err)
	}
	var got map[string]any
	if err := json.Unmarshal([]byte(resultText(t, res)), &got); err != nil {
		t.Fatalf("not JSON: %v", err)
	}
	if got["name"] != "PT Block 1" {
		t.Errorf("name = %v", got["name"])
	}
}

func TestGetActiveProgramNone(t *testing.T) {
	h := testHandlers(&fakeBackend{err: &planapi.StatusError{Code: 404}})
	res, _ := h.getActiveProgram(context.Background(), callTool(nil))
	if res.IsError || resultText(t, res) != "No active program." {
		t.Errorf("result = %+v", res)
	}

	h = testHandlers(&fakeBackend{err: errors.New("dial tcp: refused")})
	res, _ = h.getActiveProgram(context.Background(), callTool(nil))
	if !res.IsError {
		t.Error("transport failure should be a tool error")
	}
}

func TestDeleteWorkoutDay(t *testing.T) {
	fb := &fakeBackend{}
	h := testHandlers(fb)

	res, _ := h.deleteWorkoutDay(context.Background(), callTool(map[string]any{"workout_id": float64(10)}))
	if !res.IsError || len(fb.deleted) != 0 {
		t.Fatal("unconfirmed delete should be refused")
	}

	res, _ = h.deleteWorkoutDay(context.Background(), callTool(map[string]any{"workout_id": float64(10), "confirm": true}))
	if res.IsError || len(fb.deleted) != 1 || fb.deleted[0] != 10 {
		t.Errorf("result = %+v, deleted = %v", res, fb.deleted)
	}

	fb.deleteErr = &planapi.StatusError{Code: 500}
	res, _ = h.deleteWorkoutDay(context.Background(), callTool(map[string]any{"workout_id": float64(10), "confirm": true}))
	if !res.IsError || resultText(t, res) != "Failed to delete workout" {
		t.Errorf("failure result = %+v", res)
	}
}

func TestAdaptPlan(t *testing.T) {
	tests := []struct {
		name    string
		resp    *models.AdaptResponse
		err     error
		isError bool
		want    string
	}{
		{"updated", &models.AdaptResponse{UpdatedPlan: &models.Program{Name: "Adapted"}}, nil, false, "Plan updated."},
		{"clarified", &models.AdaptResponse{Message: "Which day?"}, nil, false, "Which day?"},
		{"empty", &models.AdaptResponse{}, nil, false, "I'm not sure how to handle that. Can you be more specific?"},
		{"non-OK", nil, &planapi.StatusError{Code: 500}, true, "The AI could not modify the plan. Please try a different request."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fb := &fakeBackend{program: testProgram(), adapt: tt.resp, adaptErr: tt.err}
			res, err := testHandlers(fb).adaptPlan(context.Background(), callTool(map[string]any{"request": "no barbell"}))
			if err != nil {
				t.Fatal(err)
			}
			if res.IsError != tt.isError {
				t.Errorf("IsError = %v, want %v", res.IsError, tt.isError)
			}
			if text := resultText(t, res); !strings.Contains(text, tt.want) {
				t.Errorf("text = %q, want %q", text, tt.want)
			}
			if len(fb.requests) != 1 || fb.requests[0] != "no barbell" {
				t.Errorf("requests = %v", fb.requests)
			}
		})
	}
}

func TestAdaptPlanBlankRequest(t *testing.T) {
	fb := &fakeBackend{program: testProgram()}
	res, _ := testHandlers(fb).adaptPlan(context.Background(), callTool(map[string]any{"request": "  "}))
	if !res.IsError || len(fb.requests) != 0 {
		t.Error("blank request should not reach the plan service")
	}
}

func TestActiveProgramResource(t *testing.T) {
	h := testHandlers(&fakeBackend{program: testProgram()})
	var req mcp.ReadResourceRequest
	req.Params.URI = "weeklyplan://active_program"

	contents, err := h.activeProgram(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok || tc.URI != req.Params.URI || !strings.Contains(tc.Text, "PT Block 1") {
		t.Errorf("contents = %+v", contents)
	}

	h = testHandlers(&fakeBackend{})
	if _, err := h.activeProgram(context.Background(), req); err == nil {
		t.Error("expected error without a program")
	}
}
