package cli

import (
	"fmt"

	"github.com/signaldesk/signaldesk/internal/agent"
	"github.com/signaldesk/signaldesk/internal/config"
	"github.com/signaldesk/signaldesk/internal/memory"
	"github.com/signaldesk/signaldesk/internal/orchestrator"
	"github.com/signaldesk/signaldesk/internal/provider"
	"github.com/signaldesk/signaldesk/internal/semantic"
	"github.com/signaldesk/signaldesk/internal/store"
	"github.com/signaldesk/signaldesk/internal/tools"
)

// deps bundles the wired services most commands need.
type deps struct {
	cfg      *config.Config
	store    *store.Store
	memory   *memory.Store
	semantic *semantic.Client
	provider provider.LLMProvider
	unit     *agent.Unit
	orch     *orchestrator.Orchestrator
}

// openDeps loads config and wires storage. withLLM additionally
// resolves the provider and reasoning stack; commands that only touch
// the database pass false so they run without API keys.
func openDeps(withLLM bool) (*deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	st, err := store.New(cfg.Paths.DBPath)
	if err != nil {
		return nil, err
	}
	if err := st.SeedAgents(); err != nil {
		st.Close()
		return nil, err
	}

	d := &deps{
		cfg:      cfg,
		store:    st,
		memory:   memory.NewStore(st.DB()),
		semantic: semantic.NewClient(cfg.Semantic.BaseURL),
	}
	if !withLLM {
		return d, nil
	}

	p, err := provider.Resolve(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}
	d.provider = p
	d.unit = agent.NewUnit(p, cfg.Model.Name)
	d.orch = orchestrator.New(st, d.memory, d.unit, cfg)
	return d, nil
}

func (d *deps) close() {
	d.store.Close()
}

// toolRegistry builds the autonomous agent's tool set from config.
// The Slack tool is added separately by callers that own a client.
func (d *deps) toolRegistry() *tools.Registry {
	registry := tools.NewRegistry()
	registry.Register(tools.NewSearchSignalsTool(d.store))
	registry.Register(tools.NewRunPythonTool(d.cfg.Tools.SandboxURL))
	registry.Register(tools.NewBrowseTool(d.cfg.Tools.BrowseMaxBytes))
	registry.Register(tools.NewSearchMemoryTool(d.semantic, "default"))
	return registry
}
