package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/stepwise/internal/page"
	"github.com/mark3labs/stepwise/internal/wizard"
)

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("wizard_state",
			mcp.WithDescription("Show the current wizard page, its fields, validity and the available actions"),
		),
		s.handleState,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard_set_field",
			mcp.WithDescription("Set a field on the current page"),
			mcp.WithString("name", mcp.Required(),
				mcp.Description("Field name as listed by wizard_state"),
			),
			mcp.WithString("value", mcp.Required(),
				mcp.Description("New value. Toggles take true/false, choices one of the listed choices"),
			),
		),
		s.handleSetField,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard_next",
			mcp.WithDescription("Validate the current page and move forward, finishing the wizard on the last page"),
		),
		s.handleNext,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard_previous",
			mcp.WithDescription("Go back one page"),
		),
		s.handlePrevious,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard_cancel",
			mcp.WithDescription("Cancel the wizard run"),
		),
		s.handleCancel,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("wizard_restart",
			mcp.WithDescription("Discard the current run and start over on the first page"),
		),
		s.handleRestart,
	)
}

// current returns the active run, starting one if none exists. Callers hold s.mu.
func (s *Server) current(ctx context.Context) (*wizard.Wizard, error) {
	if s.run != nil {
		return s.run, nil
	}
	return s.restartLocked(ctx)
}

func stateResult(v StateView) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal state: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) terminal(w *wizard.Wizard) {
	if s.onFinish != nil && w.State().Terminal() {
		s.onFinish(w)
	}
}

func (s *Server) handleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.current(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return stateResult(viewOf(w))
}

func (s *Server) handleSetField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	if args == nil {
		return mcp.NewToolResultError("no arguments provided"), nil
	}
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return mcp.NewToolResultError("missing 'name' parameter"), nil
	}
	value, ok := args["value"].(string)
	if !ok {
		return mcp.NewToolResultError("missing 'value' parameter"), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.current(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	id, ctrl, ok := w.Current()
	if !ok || w.State().Terminal() {
		return mcp.NewToolResultError(fmt.Sprintf("wizard is %s", w.State())), nil
	}
	ed, ok := ctrl.(page.FieldEditor)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("page %s has no fields", id)), nil
	}
	if err := ed.SetField(name, value); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return stateResult(viewOf(w))
}

func (s *Server) handleNext(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.current(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var res wizard.Result
	if w.Actions().Forward() == wizard.ActionFinish {
		res, err = w.Finish()
	} else {
		res, err = w.Next()
	}
	if errors.Is(err, wizard.ErrInvalidState) {
		return mcp.NewToolResultError(err.Error()), nil
	}

	v := viewOf(w)
	if !res.Advanced {
		v.Message = res.Message
		v.Advisories = res.Advisories
	}
	if err != nil {
		v.Error = err.Error()
	}
	s.terminal(w)
	return stateResult(v)
}

func (s *Server) handlePrevious(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.current(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	err = w.Previous()
	if errors.Is(err, wizard.ErrInvalidState) {
		return mcp.NewToolResultError(err.Error()), nil
	}

	v := viewOf(w)
	if err != nil {
		v.Error = err.Error()
	}
	return stateResult(v)
}

func (s *Server) handleCancel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.current(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	err = w.Cancel()
	if errors.Is(err, wizard.ErrInvalidState) {
		return mcp.NewToolResultError(err.Error()), nil
	}

	v := viewOf(w)
	if err != nil {
		v.Error = err.Error()
	}
	s.terminal(w)
	return stateResult(v)
}

func (s *Server) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.restartLocked(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return stateResult(viewOf(w))
}
