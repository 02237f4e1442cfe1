package mcp

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"
)

var errNoProgram = errors.New("no active program")

func (h *handlers) activeProgram(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	p, err := h.backend.ActiveProgram(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, errNoProgram
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
