// Package mcp exposes the weekly plan to MCP clients.
package mcp

import (
	"log/slog"

	"github.com/claude/weeklyplan/internal/planapi"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(backend planapi.Backend, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("WeeklyPlan", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Weekly workout plan server. Read the active program, delete workout days, and ask the plan service to adapt the plan in natural language. Every change is made by the plan service; re-read the program afterwards."),
	)

	h := &handlers{backend: backend, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetActiveProgram, Handler: h.getActiveProgram},
		server.ServerTool{Tool: toolDeleteWorkoutDay, Handler: h.deleteWorkoutDay},
		server.ServerTool{Tool: toolAdaptPlan, Handler: h.adaptPlan},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resActiveProgram, Handler: h.activeProgram},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	backend planapi.Backend
	log     *slog.Logger
}

// --- Resource definitions ---

var resActiveProgram = mcp.NewResource(
	"weeklyplan://active_program",
	"Active Program",
	mcp.WithResourceDescription("The user's active weekly workout program as returned by the plan service"),
	mcp.WithMIMEType("application/json"),
)
