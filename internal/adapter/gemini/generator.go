package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/bartolofj/starting-ragchatbot-codebase/internal/orchestrator"
	"github.com/bartolofj/starting-ragchatbot-codebase/internal/tools"
)

// Generator adapts Gemini to the orchestrator's model capability: the prompt
// is assembled into chat history, tool definitions become function
// declarations, and a function-call part in the response becomes a ToolCall.
type Generator struct {
	client *genai.Client
	model  string
}

func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	return &Generator{client: client, model: model}, nil
}

func (g *Generator) Generate(ctx context.Context, req orchestrator.Request) (*orchestrator.Response, error) {
	model := g.client.GenerativeModel(g.model)
	if req.System != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}
	if len(req.Tools) > 0 {
		model.Tools = []*genai.Tool{{FunctionDeclarations: toDeclarations(req.Tools)}}
	}

	history := make([]*genai.Content, 0, 2*len(req.History)+2)
	for _, t := range req.History {
		history = append(history,
			&genai.Content{Role: "user", Parts: []genai.Part{genai.Text(t.Query)}},
			&genai.Content{Role: "model", Parts: []genai.Part{genai.Text(t.Answer)}},
		)
	}

	var send []genai.Part
	if req.ToolCall == nil {
		send = []genai.Part{genai.Text(req.Query)}
	} else {
		// Follow-up pass: replay the model's own function call, then hand it
		// the tool result.
		history = append(history,
			&genai.Content{Role: "user", Parts: []genai.Part{genai.Text(req.Query)}},
			&genai.Content{Role: "model", Parts: []genai.Part{genai.FunctionCall{Name: req.ToolCall.Name, Args: req.ToolCall.Args}}},
		)
		send = []genai.Part{genai.FunctionResponse{
			Name:     req.ToolCall.Name,
			Response: map[string]any{"result": req.ToolResult},
		}}
	}

	cs := model.StartChat()
	cs.History = history

	slog.DebugContext(ctx, "calling model", "model", g.model, "history_turns", len(history))
	res, err := cs.SendMessage(ctx, send...)
	if err != nil {
		return nil, err
	}
	return fromResponse(res)
}

func toDeclarations(defs []tools.Definition) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		properties := make(map[string]*genai.Schema, len(def.Schema.Properties))
		for name, prop := range def.Schema.Properties {
			properties[name] = &genai.Schema{
				Type:        schemaType(prop.Type),
				Description: prop.Description,
			}
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        def.Name,
			Description: def.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   def.Schema.Required,
			},
		})
	}
	return decls
}

func schemaType(t string) genai.Type {
	switch t {
	case "integer":
		return genai.TypeInteger
	default:
		return genai.TypeString
	}
}

func fromResponse(res *genai.GenerateContentResponse) (*orchestrator.Response, error) {
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return nil, fmt.Errorf("model returned no candidates")
	}

	out := &orchestrator.Response{}
	var text strings.Builder
	for _, p := range res.Candidates[0].Content.Parts {
		switch v := p.(type) {
		case genai.Text:
			text.WriteString(string(v))
		case genai.FunctionCall:
			if out.ToolCall == nil {
				out.ToolCall = &orchestrator.ToolCall{Name: v.Name, Args: v.Args}
			}
		}
	}
	out.Text = text.String()
	return out, nil
}
