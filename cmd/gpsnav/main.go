package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"gpsnav/internal/config"
	"gpsnav/internal/web"
)

func main() {
	var configPath string
	var summaryPath string
	var dumpPath string
	var dumpAtomic bool
	flag.StringVar(&configPath, "config", "./gpsnav.yaml", "Path to YAML config")
	flag.StringVar(&summaryPath, "summary", "", "Summarize a recorded sentence log and exit")
	flag.StringVar(&dumpPath, "dump", "", "Replay a recorded sentence log and print the final navigation state")
	flag.BoolVar(&dumpAtomic, "dump-atomic", false, "Use atomic commits when replaying for -dump")
	flag.Parse()

	if summaryPath != "" {
		if err := printLogSummary(os.Stdout, summaryPath); err != nil {
			log.Fatalf("summary failed: %v", err)
		}
		return
	}
	if dumpPath != "" {
		if err := printDump(os.Stdout, dumpPath, dumpAtomic); err != nil {
			log.Fatalf("dump failed: %v", err)
		}
		return
	}

	logs := web.NewLogBuffer(2000)
	log.SetOutput(logs.Tee(os.Stderr))

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	log.Printf("gpsnav starting config=%s", configPath)
	rt, err := newLiveRuntime(ctx, cfg, logs)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	rt.Run(ctx)
	rt.Close()
	log.Printf("gpsnav stopped")
}
