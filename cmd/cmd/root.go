/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"curator/internal/analyze"
	"curator/internal/config"
	"curator/internal/llm"
	"curator/internal/search"
	"curator/internal/snippet"
	"curator/internal/store"
	"curator/internal/suggest"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "curator",
		Short: "Curator collects news and community content and suggests topics to write about.",
		Long: `Curator scrapes news headlines and community discussions, stores them with
vector embeddings, and uses an LLM to turn semantically similar content into
deduplicated topic suggestions.

Typical flow:
  curator scrape        # collect articles and posts
  curator embed         # backfill embeddings for new content
  curator suggest "AI"  # generate suggestions for a query
  curator schedule      # run everything on a daily schedule`,
	}

	// Initialize configuration
	cobra.OnInitialize(initConfig)

	// Add persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.curator.yaml)")

	// Add subcommands
	rootCmd.AddCommand(NewScrapeCmd())
	rootCmd.AddCommand(NewEmbedCmd())
	rootCmd.AddCommand(NewSuggestCmd())
	rootCmd.AddCommand(NewCleanupCmd())
	rootCmd.AddCommand(NewScheduleCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if _, err := config.Load(cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
}

// pipeline bundles the shared dependencies of the content commands.
type pipeline struct {
	cfg      *config.Config
	store    *store.Store
	llm      *llm.Client
	analyzer *analyze.Analyzer
}

// newPipeline connects the store and the model provider and wires the
// suggestion pipeline. Callers must Close when done.
func newPipeline(ctx context.Context) (*pipeline, error) {
	cfg := config.Get()
	if err := config.RequireProviders(cfg); err != nil {
		return nil, err
	}

	st, err := store.NewStore(ctx, cfg.Mongo)
	if err != nil {
		return nil, fmt.Errorf("connecting to store: %w", err)
	}

	client, err := llm.NewClient(cfg.AI.Gemini.Model, cfg.AI.Gemini.Timeout)
	if err != nil {
		st.Close(ctx)
		return nil, fmt.Errorf("creating model client: %w", err)
	}

	retriever := search.NewRetriever(client, st, cfg.Suggest.Diversity)
	writer := suggest.NewWriter(st)
	builder := snippet.NewBuilder(cfg.Suggest.MaxSentences, cfg.Suggest.MaxComments, cfg.Suggest.SnippetBudget)
	analyzer := analyze.NewAnalyzer(client, retriever, writer, builder)

	return &pipeline{cfg: cfg, store: st, llm: client, analyzer: analyzer}, nil
}

func (p *pipeline) Close(ctx context.Context) {
	if p.store != nil {
		if err := p.store.Close(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: closing store: %v\n", err)
		}
	}
}
