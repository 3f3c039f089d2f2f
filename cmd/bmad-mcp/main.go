// bmad-mcp: BMAD method knowledge base over MCP.
//
// Serves BMAD agents, tasks, templates, workflows, and the knowledge base
// to any MCP host, and renders agent activation prompts.
//
// Usage:
//
//	bmad-mcp serve [--config FILE] [--core PATH]   # Start MCP server (stdio transport)
//	bmad-mcp activate AGENT [--project P]          # Print an agent's activation prompt
//	bmad-mcp agents [--packs] [--category C]       # List agents
//	bmad-mcp version
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/HendryAvila/bmad-mcp/internal/agents"
	"github.com/HendryAvila/bmad-mcp/internal/config"
	"github.com/HendryAvila/bmad-mcp/internal/logging"
	bmadserver "github.com/HendryAvila/bmad-mcp/internal/server"
)

var (
	app = kingpin.New("bmad-mcp", "BMAD method knowledge base MCP server")

	configFile = app.Flag("config", "YAML config file (default $BMAD_CONFIG)").String()
	corePath   = app.Flag("core", "BMAD content root (default bmad-core)").String()
	settings   = app.Flag("set", "Override a config key, e.g. --set log.level=debug").StringMap()

	serveCmd = app.Command("serve", "Start the MCP server on stdio").Default()

	activateCmd     = app.Command("activate", "Print an agent's activation prompt")
	activateAgent   = activateCmd.Arg("agent", "Agent name").Required().String()
	activateProject = activateCmd.Flag("project", "Project path to include as context").String()
	activateCommand = activateCmd.Flag("command", "Initial command for the agent").String()

	agentsCmd      = app.Command("agents", "List available agents")
	agentsPacks    = agentsCmd.Flag("packs", "Include expansion pack agents").Bool()
	agentsCategory = agentsCmd.Flag("category", "Filter by category").Default("all").
			Enum("planning", "development", "quality", "orchestration", "general", "all")

	versionCmd = app.Command("version", "Print the version")
)

func main() {
	app.Version(bmadserver.Version)
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	if command == versionCmd.FullCommand() {
		fmt.Printf("bmad-mcp v%s\n", bmadserver.Version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, command); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, command string) error {
	overrides := map[string]string{}
	for k, v := range *settings {
		overrides[k] = v
	}
	if *corePath != "" {
		overrides["core.path"] = *corePath
	}

	cfg, err := config.Load(*configFile, overrides)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	a, err := bmadserver.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("shutdown", zap.Error(err))
		}
	}()

	switch command {
	case serveCmd.FullCommand():
		logger.Info("listening on stdio", zap.String("version", bmadserver.Version))
		return a.Serve(ctx, os.Stdin, os.Stdout)

	case activateCmd.FullCommand():
		act, err := a.Agents.Activate(ctx, agents.Request{
			Agent:          *activateAgent,
			ProjectPath:    *activateProject,
			InitialCommand: *activateCommand,
		})
		if err != nil {
			return err
		}
		printActivation(os.Stdout, os.Stderr, act)
		return nil

	case agentsCmd.FullCommand():
		list, err := a.Agents.List(ctx, *agentsPacks, agents.Category(*agentsCategory))
		if err != nil {
			return err
		}
		return printAgents(os.Stdout, list)
	}
	return fmt.Errorf("unknown command: %s", command)
}
