// Command agentloop serves an agent over HTTP, or runs a single turn with
// -once.
//
//	agentloop -config agentloop.json
//	agentloop -config agentloop.json -once "What is the weather in Berlin?"
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hupe1980/agentloop"
	"github.com/hupe1980/agentloop/config"
	"github.com/hupe1980/agentloop/core"
)

func main() {
	configPath := flag.String("config", "", "path to the JSON config file")
	once := flag.String("once", "", "run a single turn with this input, print the payload and exit")
	threadID := flag.String("thread", "", "thread id for -once (default: a new id)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	app, err := agentloop.New(cfg)
	if err != nil {
		log.Fatalf("assemble agent: %v", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			log.Printf("close: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *once != "" {
		id := *threadID
		if id == "" {
			id = core.NewID()
		}

		if err := runOnce(ctx, app, id, *once); err != nil {
			log.Printf("turn failed: %v", err)
			stop()
			_ = app.Close()
			os.Exit(1)
		}

		return
	}

	if err := app.Serve(ctx); err != nil {
		log.Printf("server stopped: %v", err)
		stop()
		_ = app.Close()
		os.Exit(1)
	}
}

func runOnce(ctx context.Context, app *agentloop.App, threadID, input string) error {
	resp, err := app.Run(ctx, threadID, input)
	if err != nil {
		return err
	}

	if text, ok := resp.Payload.(string); ok {
		fmt.Println(text)
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")

	return enc.Encode(resp.Payload)
}
