package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/aion-pfm/aion/agent"
	"github.com/aion-pfm/aion/core"
	"github.com/aion-pfm/aion/history"
	"github.com/aion-pfm/aion/logging"
	"github.com/aion-pfm/aion/model"
	"github.com/aion-pfm/aion/tool"
)

const (
	// DefaultMaxIterations bounds the generate/execute loop of a single run.
	DefaultMaxIterations = 5

	// DefaultMaxDelegationDepth bounds nested agent-to-agent delegation.
	DefaultMaxDelegationDepth = 3

	// ExhaustedMessage is returned when a run hits the iteration bound
	// without converging on a final answer.
	ExhaustedMessage = "Maximum iterations reached. Please try again with a simpler request."

	// fallbackAnswer stands in for an empty final model response so the
	// caller always receives a non-empty answer.
	fallbackAnswer = "I've processed your request."
)

// Options configures an Engine.
type Options struct {
	MaxIterations      int
	MaxDelegationDepth int
	Logger             logging.Logger
}

// Engine runs agent turns against a model gateway, with per-agent history and
// tool dispatch. It implements core.Invoker so delegation tools can run other
// agents through it.
type Engine struct {
	history   history.Store
	resolver  model.Resolver
	directory *agent.Directory
	logger    logging.Logger

	maxIterations      int
	maxDelegationDepth int

	mu          sync.RWMutex
	definitions map[string]agent.Definition
	invokables  map[string]InvokeFunc
}

// InvokeFunc backs an agent implemented as a deterministic service instead of
// a model loop. Delegation to its name runs the function directly.
type InvokeFunc func(ctx context.Context, userID, message string) (core.Outcome, error)

var _ core.Invoker = (*Engine)(nil)

// New creates an Engine over the given history store, gateway resolver, and
// agent directory.
func New(hist history.Store, resolver model.Resolver, directory *agent.Directory, optFns ...func(o *Options)) *Engine {
	opts := Options{
		MaxIterations:      DefaultMaxIterations,
		MaxDelegationDepth: DefaultMaxDelegationDepth,
		Logger:             logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxIterations <= 0 {
		opts.MaxIterations = DefaultMaxIterations
	}
	if opts.MaxDelegationDepth < 0 {
		opts.MaxDelegationDepth = DefaultMaxDelegationDepth
	}
	return &Engine{
		history:            hist,
		resolver:           resolver,
		directory:          directory,
		logger:             opts.Logger,
		maxIterations:      opts.MaxIterations,
		maxDelegationDepth: opts.MaxDelegationDepth,
		definitions:        make(map[string]agent.Definition),
		invokables:         make(map[string]InvokeFunc),
	}
}

// RegisterDefinition makes an agent definition runnable by name.
func (e *Engine) RegisterDefinition(def agent.Definition) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.definitions[def.Agent.Name] = def
}

// RegisterInvokable makes a service-backed agent reachable by name through
// delegation.
func (e *Engine) RegisterInvokable(name string, fn InvokeFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.invokables[name] = fn
}

// Definition returns the registered definition for name, if any.
func (e *Engine) Definition(name string) (agent.Definition, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	def, ok := e.definitions[name]
	return def, ok
}

// AgentNames returns the names of all registered agents.
func (e *Engine) AgentNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.definitions))
	for name := range e.definitions {
		names = append(names, name)
	}
	return names
}

// Run executes one turn of the named agent for the given user. The message
// may be empty only for agents whose definition allows the model to speak
// first. Infrastructure failures (gateway, history store) are returned as
// errors; tool failures are folded into the conversation and never abort the
// run.
func (e *Engine) Run(ctx context.Context, agentName, userID, message string) (core.Outcome, error) {
	return e.run(ctx, agentName, userID, message, e.maxDelegationDepth)
}

// InvokeAgent implements core.Invoker. It runs the target agent's full turn
// loop with the caller's remaining delegation depth.
func (e *Engine) InvokeAgent(ctx context.Context, agentName, userID, message string, remainingDepth int) (core.Outcome, error) {
	e.mu.RLock()
	fn, ok := e.invokables[agentName]
	e.mu.RUnlock()
	if ok {
		return fn(ctx, userID, message)
	}
	return e.run(ctx, agentName, userID, message, remainingDepth)
}

// Reset clears the conversation log between the named agent and user.
// Clearing a conversation that never existed is not an error.
func (e *Engine) Reset(ctx context.Context, agentName, userID string) error {
	if err := e.history.Clear(ctx, agentName, userID); err != nil {
		return fmt.Errorf("clear history for agent %q: %w", agentName, err)
	}
	e.logger.Info("engine.reset", "agent", agentName, "user", userID)
	return nil
}

func (e *Engine) run(ctx context.Context, agentName, userID, message string, remainingDepth int) (core.Outcome, error) {
	def, ok := e.Definition(agentName)
	if !ok {
		return core.Outcome{}, fmt.Errorf("no agent registered under name %q", agentName)
	}
	if userID == "" {
		return core.Outcome{}, fmt.Errorf("agent %q requires a user identity", agentName)
	}

	record, registry, err := e.directory.GetOrCreate(ctx, def)
	if err != nil {
		return core.Outcome{}, err
	}

	gw, err := e.resolver.Resolve(record.Model)
	if err != nil {
		return core.Outcome{}, err
	}

	working, err := e.history.Replay(ctx, agentName, userID)
	if err != nil {
		return core.Outcome{}, fmt.Errorf("replay history for agent %q: %w", agentName, err)
	}

	userTurn, err := e.openingTurn(ctx, def, userID, message, len(working) == 0)
	if err != nil {
		return core.Outcome{}, err
	}
	if userTurn != nil {
		if err := e.append(ctx, agentName, userID, *userTurn); err != nil {
			return core.Outcome{}, err
		}
		working = append(working, *userTurn)
	}

	e.logger.Info("engine.run.start",
		"agent", agentName, "user", userID, "model", record.Model, "depth", remainingDepth)

	used := newUsageRecorder()

	for iteration := 1; iteration <= e.maxIterations; iteration++ {
		resp, err := gw.Generate(ctx, model.Request{
			Model:          record.Model,
			Instruction:    record.Instruction,
			ThinkingBudget: record.ThinkingBudget,
			History:        working,
			Tools:          registry.Definitions(),
		})
		if err != nil {
			return core.Outcome{}, fmt.Errorf("generate for agent %q: %w", agentName, err)
		}

		if !resp.HasToolCalls() {
			answer := strings.TrimSpace(resp.Text)
			if answer == "" {
				answer = fallbackAnswer
			}
			modelTurn := core.NewModelTurn(answer)
			if err := e.append(ctx, agentName, userID, modelTurn); err != nil {
				return core.Outcome{}, err
			}
			e.logger.Info("engine.run.final",
				"agent", agentName, "user", userID, "iterations", iteration, "tools_used", used.list())
			return core.Outcome{
				Kind:      core.OutcomeFinalAnswer,
				Message:   answer,
				ToolsUsed: used.list(),
			}, nil
		}

		for _, call := range resp.ToolCalls {
			fc := core.FunctionCall{ID: call.ID, Name: call.Name, Arguments: call.Arguments}
			if fc.ID == "" {
				fc.ID = core.NewID()
			}
			requestTurn := core.NewFunctionCallTurn(fc)
			if err := e.append(ctx, agentName, userID, requestTurn); err != nil {
				return core.Outcome{}, err
			}
			working = append(working, requestTurn)

			resultTurn := e.dispatch(ctx, agentName, userID, registry, fc, remainingDepth, used)
			if err := e.append(ctx, agentName, userID, resultTurn); err != nil {
				return core.Outcome{}, err
			}
			working = append(working, resultTurn)
		}
	}

	// The persisted tool call pairs stay as they are; no final text turn is
	// written, so the next run replays the partial work untouched.
	e.logger.Warn("engine.run.exhausted",
		"agent", agentName, "user", userID, "iterations", e.maxIterations, "tools_used", used.list())
	return core.Outcome{
		Kind:    core.OutcomeExhausted,
		Message: ExhaustedMessage,
	}, nil
}

// dispatch executes one tool call and always returns a result turn. Unknown
// tools and tool errors produce error results fed back to the model; they do
// not abort the run.
func (e *Engine) dispatch(
	ctx context.Context,
	agentName, userID string,
	registry *tool.Registry,
	call core.FunctionCall,
	remainingDepth int,
	used *usageRecorder,
) core.Turn {
	t, ok := registry.Resolve(call.Name)
	if !ok {
		e.logger.Warn("engine.tool.unknown", "agent", agentName, "tool", call.Name)
		return core.NewFunctionResponseTurn(call.ID, call.Name, nil,
			fmt.Errorf("tool %q is not available to this agent", call.Name))
	}

	used.record(usageLabel(t, call.Arguments))

	toolCtx := core.NewToolContext(ctx, agentName, userID, call.ID, remainingDepth, e, e.logger)
	result, err := t.Call(toolCtx, call.Arguments)
	if err != nil {
		e.logger.Warn("engine.tool.failed", "agent", agentName, "tool", call.Name, "error", err)
	}
	return core.NewFunctionResponseTurn(call.ID, call.Name, result, err)
}

// openingTurn resolves the user turn that starts this run, applying profile
// priming on the first message of a fresh conversation. It returns nil when
// the run continues an existing conversation without new input.
func (e *Engine) openingTurn(ctx context.Context, def agent.Definition, userID, message string, fresh bool) (*core.Turn, error) {
	primer := ""
	if fresh && def.Primer != nil {
		p, err := def.Primer(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("prime agent %q: %w", def.Agent.Name, err)
		}
		primer = strings.TrimSpace(p)
	}

	switch {
	case message != "" && primer != "":
		turn := core.NewUserTurn(primer + "\n\n" + message)
		return &turn, nil
	case message != "":
		turn := core.NewUserTurn(message)
		return &turn, nil
	case !def.AllowEmptyMessage:
		return nil, fmt.Errorf("agent %q requires a message", def.Agent.Name)
	case fresh && primer != "":
		turn := core.NewUserTurn(primer)
		return &turn, nil
	case fresh:
		return nil, fmt.Errorf("agent %q cannot start a conversation without a message or primer", def.Agent.Name)
	default:
		return nil, nil
	}
}

func (e *Engine) append(ctx context.Context, agentName, userID string, turn core.Turn) error {
	if err := e.history.Append(ctx, agentName, userID, turn); err != nil {
		return fmt.Errorf("append history for agent %q: %w", agentName, err)
	}
	return nil
}

// usageLabel resolves the label recorded for a tool invocation. Tools that
// implement tool.UsageLabeler control their own attribution.
func usageLabel(t tool.Tool, args map[string]any) string {
	if labeler, ok := t.(tool.UsageLabeler); ok {
		return labeler.UsageLabel(args)
	}
	return t.Name()
}

// usageRecorder keeps a deduplicated list of tool labels in first-invocation
// order.
type usageRecorder struct {
	seen  map[string]struct{}
	order []string
}

func newUsageRecorder() *usageRecorder {
	return &usageRecorder{seen: make(map[string]struct{})}
}

func (r *usageRecorder) record(label string) {
	if _, ok := r.seen[label]; ok {
		return
	}
	r.seen[label] = struct{}{}
	r.order = append(r.order, label)
}

func (r *usageRecorder) list() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}
