package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/claude/weeklyplan/internal/config"
	"github.com/claude/weeklyplan/internal/mcp"
	"github.com/claude/weeklyplan/internal/planapi"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "", "path to config file (optional)")
	envFile := flag.String("env-file", ".env", "path to .env file (optional)")
	flag.Parse()

	// stdout carries the MCP protocol; logs go to stderr.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := config.LoadEnvFile(*envFile); err != nil {
		log.Error("failed to load env file", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	client := planapi.NewClient(cfg.PlanAPI.BaseURL, cfg.PlanAPI.Timeout)
	s := mcp.New(client, Version, log)

	log.Info("WeeklyPlan MCP server starting", "version", Version, "plan_api", client.BaseURL())
	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "mcp server error: %v\n", err)
		os.Exit(1)
	}
}
