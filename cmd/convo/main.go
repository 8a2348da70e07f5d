package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jmuk/convo/pkg/agent"
	"github.com/jmuk/convo/pkg/agent/backends"
	"github.com/jmuk/convo/pkg/chat"
	"github.com/jmuk/convo/pkg/config"
	"github.com/jmuk/convo/pkg/conversation"
	"github.com/jmuk/convo/pkg/session"
	"github.com/jmuk/convo/pkg/tools"
)

func run(ctx context.Context) error {
	configFile, err := config.DefaultConfigFile()
	if err != nil {
		return err
	}
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	assistant, err := chat.ChooseAssistant(cfg, configFile)
	if err != nil {
		return err
	}

	s, err := session.New(assistant.Name, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer s.Close()
	ctx = s.With(ctx)
	log.Printf("Logs are stored into %s", s.Path())

	backendConfig, err := cfg.FindBackend(assistant.Backend)
	if err != nil {
		return err
	}
	backend, err := backends.New(ctx, backendConfig, nil)
	if err != nil {
		return fmt.Errorf("backend %s: %w", assistant.Backend, err)
	}

	toolsLogger, err := s.GetLogger("tools")
	if err != nil {
		return err
	}
	builtin, err := tools.Builtins(assistant.BuiltinTools)
	if err != nil {
		return fmt.Errorf("assistant %s: %w", assistant.Name, err)
	}
	mgrs := tools.NewManagers(assistant.MCP, s)
	defer tools.CloseAll(mgrs)
	fmt.Printf("Starting %s...\n", assistant.DisplayName())
	runner, err := tools.Collect(ctx, builtin, mgrs, toolsLogger)
	if err != nil {
		return err
	}

	agentLogger, err := s.GetLogger("agent")
	if err != nil {
		return err
	}
	responder := agent.New(backend, runner, agent.Options{
		SystemPrompt:  assistant.SystemPrompt,
		MaxToolRounds: cfg.MaxToolRounds,
		ToolTimeout:   cfg.ToolTimeout,
		Logger:        agentLogger,
	})

	convLogger, err := s.GetLogger("conversation")
	if err != nil {
		return err
	}
	mgr := conversation.New(responder, conversation.Config{
		MaxShow: cfg.HistorySize,
		Help:    assistant.Help,
		Timeout: cfg.TurnTimeout,
		Logger:  convLogger,
	})

	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	root, err := os.OpenRoot(cwd)
	if err != nil {
		return err
	}
	defer root.Close()
	chatLogger, err := s.GetLogger("chat")
	if err != nil {
		return err
	}
	rl, err := chat.NewReadline(root)
	if err != nil {
		return err
	}
	chatLogger.Info("Run started", "id", s.ID(), "timestamp", s.Timestamp(), "assistant", assistant.Name)
	c := chat.New(mgr, assistant, rl, chat.Options{
		Root:   root,
		Out:    rl.Stdout(),
		Logger: chatLogger,
	})
	defer c.Close()
	return c.RunLoop(ctx)
}

func main() {
	if err := run(context.Background()); err != nil {
		log.Fatal(err)
	}
}
