package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/furydoc/cybersyn/config"
	"github.com/furydoc/cybersyn/internal/index"
	"github.com/furydoc/cybersyn/internal/llm"
	"github.com/furydoc/cybersyn/internal/research"
	"github.com/furydoc/cybersyn/internal/server"
)

func main() {
	var cfgPath string
	root := &cobra.Command{Use: "cybersyn", Short: "Documentary transcript research assistant"}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path")

	var serveAddr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if serveAddr != "" {
				cfg.Server.Address = serveAddr
			}
			if err := cfg.LLM.Validate(); err != nil {
				return err
			}

			ix, err := index.Open(cfg.Search.IndexPath, nil)
			if err != nil {
				return err
			}
			defer ix.Close()

			pipeline, gen, err := buildPipeline(cfg, ix)
			if err != nil {
				return err
			}
			return server.New(cfg.Server, pipeline, ix, gen, nil).Run()
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")

	ingest := &cobra.Command{
		Use:   "ingest [path...]",
		Short: "Index transcript files or directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			ix, err := index.Open(cfg.Search.IndexPath, nil)
			if err != nil {
				return err
			}
			defer ix.Close()

			total := 0
			for _, path := range args {
				info, err := os.Stat(path)
				if err != nil {
					return err
				}
				var n int
				if info.IsDir() {
					n, err = ix.IngestDir(path)
				} else {
					n, err = ix.IngestFile(path)
				}
				if err != nil {
					return err
				}
				total += n
			}
			fmt.Printf("indexed %d chunks\n", total)
			return nil
		},
	}

	ask := &cobra.Command{
		Use:   "ask [query]",
		Short: "Run one research query from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.LLM.Validate(); err != nil {
				return err
			}
			ix, err := index.Open(cfg.Search.IndexPath, nil)
			if err != nil {
				return err
			}
			defer ix.Close()

			pipeline, _, err := buildPipeline(cfg, ix)
			if err != nil {
				return err
			}

			res, err := pipeline.Research(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Println(res.Content)
			fmt.Fprintf(os.Stderr, "\n(%d terms, %d hits, %d batches, %v)\n", res.Terms, res.Hits, res.Batches, res.Duration)
			return nil
		},
	}

	root.AddCommand(serve, ingest, ask)
	if err := root.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func buildPipeline(cfg *config.Config, ix *index.Index) (*research.Pipeline, research.Generator, error) {
	gen, err := llm.New(llm.Options{
		APIKey:       cfg.LLM.APIKey,
		BaseURL:      cfg.LLM.BaseURL,
		SystemPrompt: research.TimecodeAgentPrompt,
		Timeout:      cfg.LLM.Timeout,
		Referer:      cfg.LLM.Referer,
		Title:        cfg.LLM.Title,
	}, nil)
	if err != nil {
		return nil, nil, err
	}

	var cache research.PlanCache
	if cfg.Redis.Enabled {
		cache = research.NewRedisPlanCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
	}

	logger := log.New(log.Writer(), "[RESEARCH] ", log.LstdFlags)
	pipeline := research.NewPipeline(
		research.Config{
			MaxContextTokens:    cfg.Research.MaxContextTokens,
			ChunkTokens:         cfg.Research.ChunkTokens,
			OverlapTokens:       cfg.Research.OverlapTokens,
			MaxConcurrentChunks: cfg.Research.MaxConcurrentChunks,
			Model:               cfg.LLM.Model,
			Temperature:         cfg.Research.Temperature,
			MaxOutputTokens:     cfg.Research.MaxOutputTokens,
		},
		research.NewExpander(gen, cache, cfg.LLM.Model, nil),
		research.NewCollector(ix, research.CollectorOptions{
			PageSize:    cfg.Search.PageSize,
			DedupPrefix: cfg.Research.DedupPrefix,
		}, nil),
		research.NewBuilder(nil, 0),
		gen,
		logger,
	)
	return pipeline, gen, nil
}
