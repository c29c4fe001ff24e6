// Package device executes perform actions emitted by the engine's plan
// rules and reports their outcome.
package device

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/parley-dm/parley/internal/domain"
)

// Handler executes one named action.
type Handler func(ctx context.Context, req domain.ActionRequest) (domain.ActionResult, error)

// Registry dispatches action requests to named handlers.
type Registry struct {
	handlers map[string]Handler
	logger   *zap.Logger
}

// NewRegistry builds an empty action registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{handlers: make(map[string]Handler), logger: logger}
}

// Register binds a handler to an action name, replacing any previous one.
func (r *Registry) Register(action string, h Handler) {
	r.handlers[action] = h
}

// Actions returns the registered action names, sorted.
func (r *Registry) Actions() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute runs the handler for the request's action. An unregistered
// action is a failed result, not an error; errors are reserved for the
// handler itself failing.
func (r *Registry) Execute(ctx context.Context, req domain.ActionRequest) (domain.ActionResult, error) {
	h, ok := r.handlers[req.Action]
	if !ok {
		r.logger.Warn("no handler for action", zap.String("action", req.Action))
		return domain.ActionResult{
			RequestID: req.ID,
			Action:    req.Action,
			Success:   false,
			Output:    fmt.Sprintf("unknown action %q", req.Action),
		}, nil
	}
	res, err := h(ctx, req)
	if err != nil {
		return domain.ActionResult{}, fmt.Errorf("execute %s: %w", req.Action, err)
	}
	res.RequestID = req.ID
	res.Action = req.Action
	return res, nil
}

// Noop is a device that reports success for every action without doing
// anything. Useful for tests and the REPL default.
type Noop struct{}

func (Noop) Execute(ctx context.Context, req domain.ActionRequest) (domain.ActionResult, error) {
	var args []string
	for k, v := range req.Args {
		args = append(args, k+"="+v)
	}
	sort.Strings(args)
	return domain.ActionResult{
		RequestID: req.ID,
		Action:    req.Action,
		Success:   true,
		Output:    strings.Join(args, ", "),
	}, nil
}
