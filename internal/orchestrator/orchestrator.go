package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bartolofj/starting-ragchatbot-codebase/internal/session"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/tools"
)

// ErrGeneration marks a failed or timed-out model call. It is fatal for the
// current query; no partial answer is returned and nothing is retried.
var ErrGeneration = errors.New("model generation failed")

type ToolCall struct {
	Name string
	Args map[string]any
}

// Response is what the model capability hands back: either plain answer text
// or a request to run a tool.
type Response struct {
	Text     string
	ToolCall *ToolCall
}

// Request carries everything a model call needs. ToolCall/ToolResult are set
// only on the follow-up call after a tool has run.
type Request struct {
	System     string
	History    []session.Turn
	Query      string
	Tools      []tools.Definition
	ToolCall   *ToolCall
	ToolResult string
}

type Generator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// Dispatcher is the registry surface the loop needs.
type Dispatcher interface {
	Definitions() []tools.Definition
	Dispatch(ctx context.Context, name string, args map[string]any) (*tools.Result, error)
}

// Orchestrator drives one query through the model: at most one tool dispatch,
// then final synthesis. Sources are per-query values carried on the return
// path, never stored on the orchestrator.
type Orchestrator struct {
	generator Generator
	registry  Dispatcher
	sessions  session.Store
	timeout   time.Duration
}

func New(g Generator, r Dispatcher, s session.Store, timeout time.Duration) *Orchestrator {
	return &Orchestrator{generator: g, registry: r, sessions: s, timeout: timeout}
}

func (o *Orchestrator) Answer(ctx context.Context, sessionID, query string) (string, []tools.Source, error) {
	history, err := o.sessions.History(ctx, sessionID)
	if err != nil {
		slog.WarnContext(ctx, "failed to load session history", "error", err, "session_id", sessionID)
		history = nil
	}

	req := Request{
		System:  systemPrompt,
		History: history,
		Query:   query,
		Tools:   o.registry.Definitions(),
	}

	resp, err := o.generate(ctx, req)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	if resp.ToolCall == nil {
		o.remember(ctx, sessionID, query, resp.Text)
		return resp.Text, nil, nil
	}

	var sources []tools.Source
	var toolText string
	result, err := o.registry.Dispatch(ctx, resp.ToolCall.Name, resp.ToolCall.Args)
	if err != nil {
		// Tool failures are recoverable: describe the failure to the model
		// and let it answer anyway.
		slog.WarnContext(ctx, "tool execution failed", "tool", resp.ToolCall.Name, "error", err)
		toolText = fmt.Sprintf("Tool %s failed: %v", resp.ToolCall.Name, err)
	} else {
		toolText = result.Text
		sources = result.Sources
	}

	req.ToolCall = resp.ToolCall
	req.ToolResult = toolText

	final, err := o.generate(ctx, req)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if final.ToolCall != nil {
		// One tool dispatch per query. A second request is not executed; the
		// text accompanying it is the final answer.
		slog.WarnContext(ctx, "ignoring second tool request", "tool", final.ToolCall.Name)
	}

	o.remember(ctx, sessionID, query, final.Text)
	return final.Text, sources, nil
}

func (o *Orchestrator) generate(ctx context.Context, req Request) (*Response, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	return o.generator.Generate(ctx, req)
}

func (o *Orchestrator) remember(ctx context.Context, sessionID, query, answer string) {
	if err := o.sessions.Append(ctx, sessionID, session.Turn{Query: query, Answer: answer}); err != nil {
		slog.WarnContext(ctx, "failed to append session history", "error", err, "session_id", sessionID)
	}
}
