// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools, prompts, and resources that depend on
// interfaces. No business logic lives here, only wiring.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/sourcegraph/conc"
	"go.uber.org/zap"

	"github.com/HendryAvila/bmad-mcp/internal/agents"
	"github.com/HendryAvila/bmad-mcp/internal/config"
	"github.com/HendryAvila/bmad-mcp/internal/content"
	"github.com/HendryAvila/bmad-mcp/internal/ledger"
	"github.com/HendryAvila/bmad-mcp/internal/prompts"
	"github.com/HendryAvila/bmad-mcp/internal/resources"
	"github.com/HendryAvila/bmad-mcp/internal/telemetry"
	"github.com/HendryAvila/bmad-mcp/internal/tools"
	"github.com/HendryAvila/bmad-mcp/internal/watch"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Name is the MCP server name.
const Name = "bmad-mcp"

// App holds the wired server and the components the CLI uses directly.
type App struct {
	MCP    *server.MCPServer
	Store  *content.Store
	Agents *agents.Manager

	ledger    *ledger.Store
	watcher   *watch.Watcher
	telemetry telemetry.ShutdownFunc
	logger    *zap.Logger
}

// New creates every dependency from cfg and registers all tools, prompts,
// and resources. Close must be called on shutdown.
//
// The ledger is an independent subsystem: if it fails to open, the server
// still works and only the history tool is left out.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// --- Create shared dependencies ---

	shutdown, err := telemetry.Init(Name, Version, cfg.Telemetry.Exporter)
	if err != nil {
		return nil, fmt.Errorf("initializing telemetry: %w", err)
	}
	inst, err := telemetry.NewInstruments()
	if err != nil {
		_ = shutdown(context.Background())
		return nil, fmt.Errorf("creating instruments: %w", err)
	}

	app := &App{telemetry: shutdown, logger: logger}

	app.Store = content.NewStore(cfg.Core.Path, cfg.ExpansionPath(), nil, logger.Named("content"))

	var recorder agents.Recorder
	var history tools.History
	if cfg.Ledger.Enabled {
		led, err := ledger.New(ledger.Config{DataDir: cfg.Ledger.Dir, DefaultLimit: 20})
		if err != nil {
			logger.Warn("activation ledger disabled", zap.Error(err))
		} else {
			app.ledger = led
			recorder, history = led, led
		}
	}
	app.Agents = agents.NewManager(app.Store, recorder, logger.Named("agents"))

	if cfg.Watch.Enabled {
		w, err := watch.New([]string{app.Store.Root(), app.Store.PacksRoot()}, cfg.Watch.Debounce, app.Store, logger.Named("watch"))
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("creating content watcher: %w", err)
		}
		app.watcher = w
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		Name,
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithPromptCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	all, err := tools.All(&tools.Env{
		Catalog:     app.Store,
		Agents:      app.Agents,
		History:     history,
		Instruments: inst,
		Logger:      logger.Named("tools"),
	})
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	for _, t := range all {
		s.AddTool(t.Definition(), t.Handle)
	}

	// --- Register prompts ---

	activatePrompt := prompts.NewActivatePrompt(app.Agents)
	s.AddPrompt(activatePrompt.Definition(), activatePrompt.Handle)

	orientationPrompt := prompts.NewOrientationPrompt()
	s.AddPrompt(orientationPrompt.Definition(), orientationPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(app.Store, app.Agents)
	s.AddResource(resourceHandler.KnowledgeBaseResource(), resourceHandler.HandleKnowledgeBase)
	s.AddResource(resourceHandler.AgentsResource(), resourceHandler.HandleAgents)
	s.AddResourceTemplate(resourceHandler.AgentTemplate(), resourceHandler.HandleAgent)

	app.MCP = s
	logger.Info("server ready",
		zap.String("core", app.Store.Root()),
		zap.String("expansion", app.Store.PacksRoot()),
		zap.Int("tools", len(all)),
		zap.Bool("ledger", app.ledger != nil),
		zap.Bool("watch", app.watcher != nil),
	)
	return app, nil
}

// Serve speaks MCP over in/out until ctx is done or the input closes.
// The content watcher, when enabled, runs alongside.
func (a *App) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wg := conc.NewWaitGroup()
	if a.watcher != nil {
		wg.Go(func() {
			if err := a.watcher.Run(ctx); err != nil {
				a.logger.Warn("content watcher stopped", zap.Error(err))
			}
		})
	}

	stdio := server.NewStdioServer(a.MCP)
	stdio.SetErrorLogger(zap.NewStdLog(a.logger.Named("stdio")))

	err := stdio.Listen(ctx, in, out)
	cancel()
	wg.Wait()

	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// Close releases the ledger and flushes telemetry.
func (a *App) Close() error {
	var errs []error
	if a.ledger != nil {
		errs = append(errs, a.ledger.Close())
	}
	if a.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		errs = append(errs, a.telemetry(ctx))
	}
	return errors.Join(errs...)
}

func serverInstructions() string {
	return `You have access to the BMAD method knowledge base: agent personas, task recipes, document templates, workflows, and checklists.

## WHEN TO USE IT

- The user wants to plan, build, or review software "the BMAD way"
- The user names a BMAD agent (analyst, pm, architect, po, sm, dev, qa, ux-expert) or a workflow
- The user asks which persona or workflow fits their project

## HOW TO USE IT

1. Discover: bmad_list_agents (filter by category), bmad_list_workflows (filter by projectType), bmad_list_tasks, bmad_list_templates.
2. Inspect: bmad_get_agent, bmad_get_task, bmad_get_template, bmad_get_workflow (includeAgentDetails for phase owners).
3. Activate: bmad_activate_agent returns an activationPrompt. Adopt it as your persona until the user exits.
   Pass projectPath and initialCommand when the user gives them.
4. Reference: bmad_get_kb returns the method's knowledge base (use max_tokens to cap its size).

## RESPONSES

Every tool answers with JSON: {success, data | error{code, message}, metadata}.
- NOT_FOUND: the agent, task, template, or workflow does not exist, or an agent's required dependency is missing.
- INVALID_INPUT: fix the arguments and retry.
- metadata.warnings lists optional dependencies that could not be loaded; mention them to the user.

If definitions were edited on disk, call bmad_clear_cache before reading them again.`
}
