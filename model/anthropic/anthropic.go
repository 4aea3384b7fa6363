// Package anthropic provides a model.Gateway implementation for the Anthropic
// Messages API. The per-agent thinking budget maps onto the API's extended
// thinking budget tokens.
package anthropic

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/shared/constant"
	"github.com/aion-pfm/aion/core"
	"github.com/aion-pfm/aion/model"
)

// Options configures the Anthropic gateway adapter (default model id,
// temperature, max tokens, API key). Extend via functional options to preserve
// stability.
type Options struct {
	DefaultModel anthropic.Model
	Temperature  float64
	MaxTokens    int64
	APIKey       string
}

// Gateway wraps the Anthropic Messages API behind the generic model.Gateway interface.
type Gateway struct {
	client *anthropic.Client
	opts   Options
}

// NewGateway creates a new Anthropic gateway using the official client.
func NewGateway(optFns ...func(o *Options)) *Gateway {
	opts := Options{
		DefaultModel: anthropic.ModelClaude3_5Sonnet20241022,
		Temperature:  0.7,
		MaxTokens:    4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}

	client := anthropic.NewClient(clientOpts...)

	return &Gateway{client: &client, opts: opts}
}

// NewGatewayFromClient creates a new Anthropic gateway from an existing client.
func NewGatewayFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Gateway {
	opts := Options{
		DefaultModel: anthropic.ModelClaude3_5Sonnet20241022,
		Temperature:  0.7,
		MaxTokens:    4096,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Gateway{client: client, opts: opts}
}

// Generate implements model.Gateway using a non-streaming Messages call.
func (g *Gateway) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	modelID := g.opts.DefaultModel
	if req.Model != "" {
		modelID = anthropic.Model(req.Model)
	}

	params := anthropic.MessageNewParams{
		Model:     modelID,
		Messages:  g.buildMessages(req.History),
		MaxTokens: g.opts.MaxTokens,
	}

	if req.Instruction != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.Instruction}}
	}

	// Extended thinking requires the default temperature, so the configured
	// temperature is only applied when no thinking budget is set.
	if req.ThinkingBudget > 0 {
		params.Thinking = anthropic.ThinkingConfigParamOfEnabled(int64(req.ThinkingBudget))
	} else {
		params.Temperature = anthropic.Float(g.opts.Temperature)
	}

	if len(req.Tools) > 0 {
		params.Tools = g.buildTools(req.Tools)
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic api error: %w", err)
	}

	out := &model.Response{}
	for _, block := range resp.Content {
		switch block.Type {
		case "text":
			out.Text += block.AsText().Text
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := map[string]any{}
			if toolBlock.Input != nil {
				raw, err := json.Marshal(toolBlock.Input)
				if err != nil {
					return nil, fmt.Errorf("anthropic api error: malformed tool input: %w", err)
				}
				if err := json.Unmarshal(raw, &args); err != nil {
					return nil, fmt.Errorf("anthropic api error: malformed tool input: %w", err)
				}
			}
			out.ToolCalls = append(out.ToolCalls, model.ToolCall{
				ID:        toolBlock.ID,
				Name:      toolBlock.Name,
				Arguments: args,
			})
		}
	}
	return out, nil
}

// buildMessages converts the normalized history to the Anthropic message
// format: tool call requests become assistant tool_use blocks, tool call
// results become tool_result blocks inside the following user message.
func (g *Gateway) buildMessages(history []core.Turn) []anthropic.MessageParam {
	var messages []anthropic.MessageParam

	for _, turn := range history {
		var blocks []anthropic.ContentBlockParamUnion

		for _, p := range turn.Parts {
			switch part := p.(type) {
			case core.TextPart:
				if part.Text != "" {
					blocks = append(blocks, anthropic.NewTextBlock(part.Text))
				}
			case core.FunctionCallPart:
				blocks = append(blocks, anthropic.NewToolUseBlock(
					part.FunctionCall.ID,
					part.FunctionCall.Arguments,
					part.FunctionCall.Name,
				))
			case core.FunctionResponsePart:
				fr := part.FunctionResponse
				content := fmt.Sprintf("%v", fr.Response)
				isError := false
				if fr.Error != "" {
					content = fr.Error
					isError = true
				}
				blocks = append(blocks, anthropic.NewToolResultBlock(fr.ID, content, isError))
			}
		}

		if len(blocks) == 0 {
			continue
		}
		if turn.Role == core.RoleModel {
			messages = append(messages, anthropic.NewAssistantMessage(blocks...))
		} else {
			messages = append(messages, anthropic.NewUserMessage(blocks...))
		}
	}

	return messages
}

// buildTools converts tool definitions to the Anthropic tool format.
func (g *Gateway) buildTools(tools []model.ToolDefinition) []anthropic.ToolUnionParam {
	anthropicTools := make([]anthropic.ToolUnionParam, len(tools))

	for i, tdef := range tools {
		inputSchema := anthropic.ToolInputSchemaParam{
			Type: constant.Object("object"),
		}
		if tdef.Parameters != nil {
			if properties, exists := tdef.Parameters["properties"]; exists {
				inputSchema.Properties = properties
			}
			if required, exists := tdef.Parameters["required"]; exists {
				switch req := required.(type) {
				case []string:
					inputSchema.Required = req
				case []any:
					var reqStrings []string
					for _, r := range req {
						if s, ok := r.(string); ok {
							reqStrings = append(reqStrings, s)
						}
					}
					inputSchema.Required = reqStrings
				}
			}
		}

		anthropicTools[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tdef.Name,
				Description: anthropic.String(tdef.Description),
				InputSchema: inputSchema,
			},
		}
	}

	return anthropicTools
}

// Info returns metadata describing this Anthropic gateway implementation.
func (g *Gateway) Info() model.Info {
	return model.Info{Provider: "anthropic", SupportsTools: true}
}
