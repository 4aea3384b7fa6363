package agent

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aion-pfm/aion/logging"
	"github.com/aion-pfm/aion/tool"
)

// ErrNotFound indicates that no agent record exists under the requested name.
var ErrNotFound = errors.New("agent not found")

// ConfigStore persists agent configuration records.
type ConfigStore interface {
	// Get returns the record stored under name, or ErrNotFound.
	Get(ctx context.Context, name string) (*Agent, error)

	// Put inserts or overwrites the record keyed by its Name.
	Put(ctx context.Context, a *Agent) error
}

// DirectoryOptions configures a Directory.
type DirectoryOptions struct {
	Logger logging.Logger
}

// Directory reconciles canonical agent definitions against a ConfigStore and
// owns one tool registry per agent. It is safe for concurrent use.
type Directory struct {
	store  ConfigStore
	logger logging.Logger

	mu         sync.Mutex
	registries map[string]*tool.Registry
}

// NewDirectory creates a Directory backed by the given store.
func NewDirectory(store ConfigStore, optFns ...func(o *DirectoryOptions)) *Directory {
	opts := DirectoryOptions{
		Logger: logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Directory{
		store:      store,
		logger:     opts.Logger,
		registries: make(map[string]*tool.Registry),
	}
}

// GetOrCreate returns the persisted record for the definition's agent,
// creating it when absent. When the persisted model identifier or thinking
// budget differ from the definition, the persisted values are overwritten
// with the canonical ones. The definition's tools are re-registered on every
// call.
func (d *Directory) GetOrCreate(ctx context.Context, def Definition) (*Agent, *tool.Registry, error) {
	if def.Agent.Name == "" {
		return nil, nil, errors.New("agent definition requires a name")
	}

	record, err := d.store.Get(ctx, def.Agent.Name)
	switch {
	case errors.Is(err, ErrNotFound):
		record = def.Agent.Clone()
		now := time.Now().UTC()
		record.CreatedAt = now
		record.UpdatedAt = now
		if err := d.store.Put(ctx, record); err != nil {
			return nil, nil, fmt.Errorf("create agent %q: %w", record.Name, err)
		}
		d.logger.Info("agent.created", "agent", record.Name, "model", record.Model)
	case err != nil:
		return nil, nil, fmt.Errorf("load agent %q: %w", def.Agent.Name, err)
	default:
		if record.Model != def.Agent.Model || record.ThinkingBudget != def.Agent.ThinkingBudget {
			d.logger.Info("agent.drift_corrected",
				"agent", record.Name,
				"stored_model", record.Model,
				"model", def.Agent.Model,
				"stored_thinking_budget", record.ThinkingBudget,
				"thinking_budget", def.Agent.ThinkingBudget,
			)
			record.Model = def.Agent.Model
			record.ThinkingBudget = def.Agent.ThinkingBudget
			record.UpdatedAt = time.Now().UTC()
			if err := d.store.Put(ctx, record); err != nil {
				return nil, nil, fmt.Errorf("update agent %q: %w", record.Name, err)
			}
		}
	}

	registry := d.registryFor(def.Agent.Name)
	for _, t := range def.Tools {
		registry.Register(t)
	}

	return record.Clone(), registry, nil
}

// Registry returns the tool registry for the named agent, if one exists.
func (d *Directory) Registry(name string) (*tool.Registry, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.registries[name]
	return r, ok
}

func (d *Directory) registryFor(name string) *tool.Registry {
	d.mu.Lock()
	defer d.mu.Unlock()
	r, ok := d.registries[name]
	if !ok {
		r = tool.NewRegistry()
		d.registries[name] = r
	}
	return r
}
