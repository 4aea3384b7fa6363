// Package aion provides a high-level façade over the turn engine, agent
// directory, and domain services of the AION personal finance system. Most
// applications interact with this package by:
//  1. Creating an App via New() (optionally overriding default in-memory
//     stores, the model resolver, or the configuration)
//  2. Sending chat messages with SendMessage and driving the onboarding
//     interview through Onboarding()
//
// The façade wires the canonical agents (chatbot, main coordinator,
// onboarding, budget specialist) so the system works out of the box. All
// defaults are safe for local development and testing; production deployments
// supply a SQLite database path and real provider credentials.
package aion

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/aion-pfm/aion/agent"
	"github.com/aion-pfm/aion/budget"
	"github.com/aion-pfm/aion/config"
	"github.com/aion-pfm/aion/core"
	"github.com/aion-pfm/aion/engine"
	"github.com/aion-pfm/aion/history"
	"github.com/aion-pfm/aion/logging"
	"github.com/aion-pfm/aion/model"
	"github.com/aion-pfm/aion/model/anthropic"
	"github.com/aion-pfm/aion/model/openai"
	"github.com/aion-pfm/aion/onboarding"
	"github.com/aion-pfm/aion/profile"
	"github.com/aion-pfm/aion/tool"

	_ "modernc.org/sqlite"
)

// Canonical agent names.
const (
	ChatbotAgentName     = "chatbot_agent"
	CoordinatorAgentName = "main_ai_coordinator"
	OnboardingAgentName  = "onboarding_agent"
	BudgetAgentName      = "budget_agent"
)

const defaultModelID = "claude-3-5-sonnet-20241022"

// Options configures the App instance.
type Options struct {
	// Config provides logging, database, model, and engine settings.
	Config config.Config

	// Stores (default to in-memory implementations, or SQLite when
	// Config.Database.Path is set).
	HistoryStore     history.Store
	ProfileStore     profile.Store
	BudgetStore      budget.Store
	AgentConfigStore agent.ConfigStore

	// Resolver maps model identifiers to gateways. When nil, gateways for
	// the configured providers are registered automatically.
	Resolver model.Resolver

	// Logger (defaults to a logger built from Config.Logging).
	Logger logging.Logger
}

// App is the high-level façade aggregating the engine and domain services.
type App struct {
	cfg        config.Config
	logger     logging.Logger
	engine     *engine.Engine
	onboarding *onboarding.Service
	budgets    *budget.Service
	profiles   profile.Store
	db         *sql.DB
}

// New creates an App with optional overrides. Any unset store is initialized
// from Config.Database: in-memory when no path is set, SQLite otherwise.
func New(optFns ...func(o *Options)) (*App, error) {
	opts := Options{
		Config: config.Default(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logging.NewLogger(&logging.LoggerConfig{
			Level:     logging.ParseLogLevel(opts.Config.Logging.Level),
			Format:    opts.Config.Logging.Format,
			AddSource: opts.Config.Logging.AddSource,
		})
	}

	app := &App{
		cfg:    opts.Config,
		logger: logger,
	}

	if err := app.initStores(&opts); err != nil {
		return nil, err
	}

	resolver := opts.Resolver
	if resolver == nil {
		resolver = app.buildResolver()
	}

	directory := agent.NewDirectory(opts.AgentConfigStore, func(o *agent.DirectoryOptions) {
		o.Logger = logger
	})
	app.engine = engine.New(opts.HistoryStore, resolver, directory, func(o *engine.Options) {
		o.MaxIterations = opts.Config.Engine.MaxIterations
		o.MaxDelegationDepth = opts.Config.Engine.MaxDelegationDepth
		o.Logger = logger
	})

	app.profiles = opts.ProfileStore
	app.budgets = budget.NewService(opts.BudgetStore, opts.ProfileStore, func(o *budget.ServiceOptions) {
		o.Logger = logger
	})

	board := onboarding.NewBoard()
	app.onboarding = onboarding.NewService(app.engine, opts.ProfileStore, board, OnboardingAgentName)

	app.registerAgents(board)
	return app, nil
}

func (a *App) initStores(opts *Options) error {
	path := opts.Config.Database.Path
	needsDB := path != "" &&
		(opts.HistoryStore == nil || opts.ProfileStore == nil ||
			opts.BudgetStore == nil || opts.AgentConfigStore == nil)

	if needsDB {
		db, err := sql.Open("sqlite", path)
		if err != nil {
			return fmt.Errorf("open database %q: %w", path, err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return fmt.Errorf("ping database %q: %w", path, err)
		}
		a.db = db
	}

	if opts.HistoryStore == nil {
		if a.db != nil {
			store, err := history.NewSQLiteStoreFromDB(a.db)
			if err != nil {
				return err
			}
			opts.HistoryStore = store
		} else {
			opts.HistoryStore = history.NewInMemoryStore()
		}
	}
	if opts.ProfileStore == nil {
		if a.db != nil {
			store, err := profile.NewSQLiteStoreFromDB(a.db)
			if err != nil {
				return err
			}
			opts.ProfileStore = store
		} else {
			opts.ProfileStore = profile.NewInMemoryStore()
		}
	}
	if opts.BudgetStore == nil {
		if a.db != nil {
			store, err := budget.NewSQLiteStoreFromDB(a.db)
			if err != nil {
				return err
			}
			opts.BudgetStore = store
		} else {
			opts.BudgetStore = budget.NewInMemoryStore()
		}
	}
	if opts.AgentConfigStore == nil {
		if a.db != nil {
			store, err := agent.NewSQLiteConfigStoreFromDB(a.db)
			if err != nil {
				return err
			}
			opts.AgentConfigStore = store
		} else {
			opts.AgentConfigStore = agent.NewInMemoryConfigStore()
		}
	}
	return nil
}

// buildResolver registers a gateway per configured provider under the model
// identifier prefix that provider serves, so a deployment carrying both
// credentials routes each agent's model to the right API. Identifiers matching
// neither prefix fall back to the provider of the configured default model.
func (a *App) buildResolver() model.Resolver {
	resolver := model.NewStaticResolver()

	var openaiGW, anthropicGW model.Gateway
	if key := a.cfg.Models.OpenAI.APIKey; key != "" {
		openaiGW = openai.NewGateway(func(o *openai.Options) {
			o.APIKey = key
		})
		resolver.RegisterPrefix("gpt-", openaiGW)
		resolver.SetDefault(openaiGW)
	}
	if key := a.cfg.Models.Anthropic.APIKey; key != "" {
		anthropicGW = anthropic.NewGateway(func(o *anthropic.Options) {
			o.APIKey = key
		})
		resolver.RegisterPrefix("claude-", anthropicGW)
		resolver.SetDefault(anthropicGW)
	}
	if openaiGW != nil && anthropicGW != nil && strings.HasPrefix(a.cfg.Models.Default, "gpt-") {
		resolver.SetDefault(openaiGW)
	}
	return resolver
}

// registerAgents wires the canonical agent definitions and the budget
// specialist.
func (a *App) registerAgents(board *onboarding.Board) {
	modelID := a.cfg.Models.Default
	if modelID == "" {
		modelID = defaultModelID
	}

	a.engine.RegisterDefinition(agent.Definition{
		Agent: agent.Agent{
			Name:        CoordinatorAgentName,
			Description: "Routes user requests to specialist agents and aggregates their results.",
			Instruction: coordinatorInstruction,
			Model:       modelID,
		},
		Tools: []tool.Tool{
			budget.NewCallTool(a.budgets),
			tool.NewDelegateTool([]string{BudgetAgentName}),
		},
	})

	a.engine.RegisterDefinition(agent.Definition{
		Agent: agent.Agent{
			Name:        ChatbotAgentName,
			Description: "Primary conversational interface for users in the AION system.",
			Instruction: chatbotInstruction,
			Model:       modelID,
		},
		Tools: []tool.Tool{
			profile.NewEditTool(a.profiles),
			tool.NewDelegateTool([]string{CoordinatorAgentName}),
		},
		Primer: func(ctx context.Context, userID string) (string, error) {
			p, err := profile.GetOrCreate(ctx, a.profiles, userID)
			if err != nil {
				return "", err
			}
			return profile.FormatContext(p), nil
		},
	})

	a.engine.RegisterDefinition(agent.Definition{
		Agent: agent.Agent{
			Name:        OnboardingAgentName,
			Description: "Collects the initial financial profile from new users.",
			Instruction: onboardingInstruction,
			Model:       modelID,
		},
		Tools: []tool.Tool{
			onboarding.NewAskTool(board),
			onboarding.NewFinishTool(a.profiles),
		},
		AllowEmptyMessage: true,
		Primer: func(context.Context, string) (string, error) {
			return "Begin the onboarding interview. Greet the user and ask your first question.", nil
		},
	})

	// The budget specialist is a deterministic service, not a model loop.
	a.engine.RegisterInvokable(BudgetAgentName, func(ctx context.Context, userID, message string) (core.Outcome, error) {
		result, err := a.budgets.Generate(ctx, userID, message)
		if err != nil {
			return core.Outcome{}, err
		}
		if result.Type == budget.ResultError {
			return core.Outcome{}, fmt.Errorf("budget agent: %v", result.Data)
		}
		return core.Outcome{
			Kind:    core.OutcomeFinalAnswer,
			Message: fmt.Sprintf("%v", result.Data),
		}, nil
	})
}

// SendMessage sends a user message to the chatbot agent and returns the
// outcome of its turn.
func (a *App) SendMessage(ctx context.Context, userID, message string) (core.Outcome, error) {
	return a.engine.Run(ctx, ChatbotAgentName, userID, message)
}

// SendMessageTo sends a user message to a specific agent.
func (a *App) SendMessageTo(ctx context.Context, agentName, userID, message string) (core.Outcome, error) {
	return a.engine.Run(ctx, agentName, userID, message)
}

// ResetConversation clears the conversation between an agent and a user.
func (a *App) ResetConversation(ctx context.Context, agentName, userID string) error {
	return a.engine.Reset(ctx, agentName, userID)
}

// Onboarding returns the onboarding interview service.
func (a *App) Onboarding() *onboarding.Service { return a.onboarding }

// Budgets returns the budget service.
func (a *App) Budgets() *budget.Service { return a.budgets }

// Profiles returns the profile store.
func (a *App) Profiles() profile.Store { return a.profiles }

// Engine returns the underlying turn engine for advanced wiring, such as
// registering additional agents.
func (a *App) Engine() *engine.Engine { return a.engine }

// Close releases the shared database handle, if any.
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}
