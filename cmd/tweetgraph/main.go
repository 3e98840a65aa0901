package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"tweetgraph/internal/cmdlog"
	"tweetgraph/internal/config"
	"tweetgraph/internal/graph"
	"tweetgraph/internal/logging"
	"tweetgraph/internal/metrics"
	"tweetgraph/internal/process"
	"tweetgraph/internal/store/tweetstore"
	"tweetgraph/internal/theme"
)

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		cmdInit()
	case "extract":
		cmdExtract()
	default:
		printHelp()
	}
}

func printHelp() {
	theme.PrintBanner()
	fmt.Println("Usage: tweetgraph <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create a config file at ./tweetgraph.yaml")
	fmt.Println("  extract     Build a <topic>.graphml interaction graph for a hashtag")
}

func cmdInit() {
	out := flag.NewFlagSet("init", flag.ExitOnError)
	path := out.String("path", "./tweetgraph.yaml", "path to write config")
	_ = out.Parse(os.Args[2:])
	cfg := config.Default()
	if err := config.Save(*path, cfg); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(*path)
	theme.PrintBanner()
	fmt.Println("Config written to:", abs)
}

func cmdExtract() {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	cfgPath := fs.String("config", "./tweetgraph.yaml", "config path")
	outPath := fs.String("out", "", "output file (default <export.dir>/<topic>.graphml)")
	_ = fs.Parse(os.Args[2:])
	topic := fs.Arg(0)
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if cfg.Logging.Path != "" {
		if err := logging.Init(cfg.Logging.Path); err != nil {
			fmt.Println("warning: log file unavailable:", err)
		}
	}
	metrics.StartServer(cfg.Metrics.Addr)
	runID := uuid.NewString()
	ctx := context.Background()
	err = cmdlog.Run("extract", func() error {
		db, err := tweetstore.Open(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()
		stored, err := db.Count(ctx)
		if err != nil {
			return err
		}
		logging.Info("extract_begin", map[string]any{"run": runID, "topic": topic, "stored": stored})
		g := graph.NewBuilder()
		proc := process.New(db, g)
		start := time.Now()
		rep, err := proc.ProcessTopic(ctx, topic)
		if err != nil {
			return err
		}
		metrics.ObserveExtractDuration(start)
		dest := *outPath
		if dest == "" {
			dest = filepath.Join(cfg.Export.Dir, topic+".graphml")
		}
		if err := g.ExportFile(dest); err != nil {
			return err
		}
		logging.Info("extract_done", map[string]any{
			"run": runID, "topic": topic, "tweets": rep.Tweets,
			"relations": rep.Relations, "anomalies": len(rep.Anomalies),
			"nodes": g.NodeCount(), "edges": g.EdgeCount(), "file": dest,
		})
		fmt.Printf("Network has %d nodes, %d edges -> %s\n", g.NodeCount(), g.EdgeCount(), dest)
		if n := len(rep.Anomalies); n > 0 {
			fmt.Printf("%d recoverable anomalies, see log\n", n)
		}
		return nil
	})
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}
