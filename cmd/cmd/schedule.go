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
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"curator/internal/embeddings"
	"curator/internal/retention"
	"curator/internal/scheduler"
	"curator/internal/scrape"
)

// NewScheduleCmd creates the schedule command
func NewScheduleCmd() *cobra.Command {
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the daily scrape, embed, and suggest jobs until interrupted",
		Long: `Start the daily job loop: news scrape, reddit scrape, embedding backfill,
and suggestion generation at their configured UTC times, with retention
applied after each write-heavy job. Runs until SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, err := newPipeline(ctx)
			if err != nil {
				return err
			}
			defer p.Close(ctx)
			if err := p.store.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("ensuring indexes: %w", err)
			}

			news, err := scrape.NewNewsScraper(p.cfg.Scrape.NewsAPI, p.store)
			if err != nil {
				return err
			}
			reddit := scrape.NewRedditScraper(p.cfg.Scrape.Reddit, p.store)
			embedder := embeddings.NewContentEmbedder(p.llm, p.store, p.cfg.Suggest.EmbeddingBatch, p.cfg.Suggest.EmbeddingBudget)
			enforcer := retention.NewEnforcer(p.store)

			sched := scheduler.New(p.cfg, news, reddit, embedder, p.analyzer, enforcer)
			fmt.Println("Scheduler running, press Ctrl+C to stop")
			return sched.Run(ctx)
		},
	}
	return scheduleCmd
}
