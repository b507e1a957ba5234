package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/weiheng-lim/kopibot/agent/controller"
	dispatchx "github.com/weiheng-lim/kopibot/agent/dispatch"
	entityx "github.com/weiheng-lim/kopibot/agent/entity"
	intentx "github.com/weiheng-lim/kopibot/agent/intent"
	statex "github.com/weiheng-lim/kopibot/agent/state"
	"github.com/weiheng-lim/kopibot/pkg/calc"
	configx "github.com/weiheng-lim/kopibot/pkg/config"
	logx "github.com/weiheng-lim/kopibot/pkg/logger"
	outletsx "github.com/weiheng-lim/kopibot/pkg/outlets"
	productsx "github.com/weiheng-lim/kopibot/pkg/products"
)

type AppConfig struct {
	ToolTimeout   time.Duration `envconfig:"TOOL_TIMEOUT" split_words:"true" default:"10s"`
	GazetteerFile string        `envconfig:"GAZETTEER_FILE" split_words:"true"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")
	logCfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*logCfg)

	gaz := entityx.DefaultGazetteer()
	if appCfg.GazetteerFile != "" {
		loaded, err := entityx.LoadGazetteer(appCfg.GazetteerFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", appCfg.GazetteerFile).Msg("load gazetteer")
		}
		gaz = loaded
	}

	productsCfg := configx.MustNew[productsx.Config]("PRODUCTS")
	productsClient := productsx.MustNew(*productsCfg)

	outletsCfg := configx.MustNew[outletsx.Config]("OUTLETS")
	outletsClient := outletsx.MustNew(*outletsCfg)

	dispatcher, err := dispatchx.New(calc.New(), productsClient, outletsClient, dispatchx.Config{
		ToolTimeout: appCfg.ToolTimeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build dispatcher")
	}

	ctrl, err := controller.New(
		statex.NewMemoryStore(),
		entityx.New(gaz),
		intentx.New(gaz),
		dispatcher,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("build controller")
	}

	runREPL(context.Background(), ctrl)
}

func runREPL(ctx context.Context, ctrl *controller.Controller) {
	sessionID := uuid.NewString()

	fmt.Println("Task-oriented dialogue agent")
	fmt.Println("Type 'exit' to quit, 'reset' to start over, 'state' to inspect the session.")
	fmt.Println()
	fmt.Println("Try:")
	fmt.Println("- 'Hello'")
	fmt.Println("- 'What is 5 plus 3?'")
	fmt.Println("- 'Is there an outlet in Petaling Jaya?'")
	fmt.Println("- 'I want to buy a coffee cup'")
	fmt.Println("- 'What time does SS 2 outlet open?'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()

		switch strings.ToLower(strings.TrimSpace(line)) {
		case "exit", "quit", "q":
			fmt.Println("Goodbye!")
			return
		case "reset":
			if _, err := ctrl.Reset(ctx, sessionID); err != nil {
				log.Error().Err(err).Msg("reset session")
				continue
			}
			fmt.Println("Session reset.")
			continue
		case "state":
			result, err := ctrl.Handle(ctx, sessionID, "")
			if err != nil {
				log.Error().Err(err).Msg("read session")
				continue
			}
			printState(result.State)
			continue
		}

		result, err := ctrl.Handle(ctx, sessionID, line)
		if err != nil {
			log.Error().Err(err).Msg("handle turn")
			continue
		}
		fmt.Println("bot>", result.Reply)
	}

	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("read input")
	}
}

func printState(st statex.Session) {
	raw, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("marshal session state")
		return
	}
	fmt.Println(string(raw))
}
