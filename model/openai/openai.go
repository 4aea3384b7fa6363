// Package openai provides a model.Gateway implementation using the OpenAI
// Chat Completions API (including function/tool calling). It adapts AION's
// normalized Request/Response structures into the SDK's message format and
// back. One Gateway instance serves any model identifier carried by the
// request, so distinct agents can share a single client.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aion-pfm/aion/core"
	"github.com/aion-pfm/aion/model"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Options configure the OpenAI gateway adapter. Fields mirror a subset of
// Chat Completion parameters intentionally kept minimal; extend via functional
// options without breaking callers.
type Options struct {
	DefaultModel        string
	Temperature         float64
	MaxCompletionTokens int64
	APIKey              string
}

// Gateway wraps the OpenAI Chat Completions API behind the generic
// model.Gateway interface.
type Gateway struct {
	client *openai.Client
	opts   Options
}

// NewGateway creates a new OpenAI gateway using the official client. Without
// an explicit APIKey option the client reads OPENAI_API_KEY from the
// environment.
func NewGateway(optFns ...func(o *Options)) *Gateway {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := openai.NewClient(clientOpts...)
	return NewGatewayFromClient(&client, optFns...)
}

// NewGatewayFromClient creates a new OpenAI gateway from an existing client.
func NewGatewayFromClient(client *openai.Client, optFns ...func(o *Options)) *Gateway {
	opts := Options{
		DefaultModel:        openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gateway{client: client, opts: opts}
}

// Generate implements model.Gateway using a non-streaming completion.
func (g *Gateway) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	messages, err := buildMessages(req)
	if err != nil {
		return nil, err
	}

	params := g.buildParams(req, messages)

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai api error: no choices returned")
	}

	msg := resp.Choices[0].Message
	out := &model.Response{Text: msg.Content}
	for _, tc := range msg.ToolCalls {
		args := map[string]any{}
		if tc.Function.Arguments != "" {
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				return nil, fmt.Errorf("openai api error: malformed tool arguments: %w", err)
			}
		}
		out.ToolCalls = append(out.ToolCalls, model.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: args,
		})
	}
	return out, nil
}

// buildMessages converts the normalized history into OpenAI chat messages.
// Tool call requests become assistant messages carrying tool_calls; tool call
// results become tool messages referencing the originating call id.
func buildMessages(req model.Request) ([]openai.ChatCompletionMessageParamUnion, error) {
	messages := []openai.ChatCompletionMessageParamUnion{}
	if req.Instruction != "" {
		messages = append(messages, openai.SystemMessage(req.Instruction))
	}

	for _, turn := range req.History {
		calls, err := extractToolCalls(turn)
		if err != nil {
			return nil, err
		}
		if len(calls) > 0 {
			messages = append(
				messages,
				openai.ChatCompletionMessageParamUnion{OfAssistant: &openai.ChatCompletionAssistantMessageParam{
					Role:      "assistant",
					ToolCalls: calls,
				}},
			)
			continue
		}

		if responses := turn.FunctionResponses(); len(responses) > 0 {
			for _, fr := range responses {
				payload, err := encodeToolResult(fr)
				if err != nil {
					return nil, err
				}
				messages = append(messages, openai.ToolMessage(payload, fr.ID))
			}
			continue
		}

		text := turn.Text()
		switch turn.Role {
		case core.RoleModel:
			messages = append(messages, openai.AssistantMessage(text))
		default:
			messages = append(messages, openai.UserMessage(text))
		}
	}
	return messages, nil
}

// extractToolCalls converts FunctionCall parts into OpenAI tool call params.
func extractToolCalls(turn core.Turn) ([]openai.ChatCompletionMessageToolCallParam, error) {
	var calls []openai.ChatCompletionMessageToolCallParam
	for _, fc := range turn.FunctionCalls() {
		args, err := json.Marshal(fc.Arguments)
		if err != nil {
			return nil, fmt.Errorf("marshal tool arguments for %s: %w", fc.Name, err)
		}
		calls = append(calls, openai.ChatCompletionMessageToolCallParam{
			ID:   fc.ID,
			Type: "function",
			Function: openai.ChatCompletionMessageToolCallFunctionParam{
				Name:      fc.Name,
				Arguments: string(args),
			},
		})
	}
	return calls, nil
}

// encodeToolResult serializes a tool result (or its error indicator) for the
// tool message payload.
func encodeToolResult(fr core.FunctionResponse) (string, error) {
	if fr.Error != "" {
		data, err := json.Marshal(map[string]any{"error": fr.Error})
		if err != nil {
			return "", fmt.Errorf("marshal tool error for %s: %w", fr.Name, err)
		}
		return string(data), nil
	}
	data, err := json.Marshal(fr.Response)
	if err != nil {
		return "", fmt.Errorf("marshal tool result for %s: %w", fr.Name, err)
	}
	return string(data), nil
}

// buildParams assembles the OpenAI request parameters including tool definitions.
// The request's model identifier wins over the configured default; the thinking
// budget has no Chat Completions equivalent and is not forwarded.
func (g *Gateway) buildParams(
	req model.Request,
	messages []openai.ChatCompletionMessageParamUnion,
) openai.ChatCompletionNewParams {
	modelID := req.Model
	if modelID == "" {
		modelID = g.opts.DefaultModel
	}
	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               modelID,
		Temperature:         openai.Float(g.opts.Temperature),
		MaxCompletionTokens: openai.Int(g.opts.MaxCompletionTokens),
	}
	if len(req.Tools) == 0 {
		return params
	}
	tools := make([]openai.ChatCompletionToolParam, len(req.Tools))
	for i, tdef := range req.Tools {
		tools[i] = openai.ChatCompletionToolParam{
			Type: "function",
			Function: openai.FunctionDefinitionParam{
				Name:        tdef.Name,
				Description: openai.String(tdef.Description),
				Parameters:  tdef.Parameters,
			},
		}
	}
	params.Tools = tools
	return params
}

// Info returns metadata describing this OpenAI gateway implementation.
func (g *Gateway) Info() model.Info {
	return model.Info{Provider: "openai", SupportsTools: true}
}
