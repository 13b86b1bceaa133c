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

	"github.com/spf13/cobra"

	"curator/internal/config"
	"curator/internal/scrape"
	"curator/internal/store"
)

// NewScrapeCmd creates the scrape command
func NewScrapeCmd() *cobra.Command {
	var newsOnly bool
	var redditOnly bool

	scrapeCmd := &cobra.Command{
		Use:   "scrape",
		Short: "Collect news articles and community posts into the store",
		Long: `Scrape top headlines per news category and posts from the configured
subreddits, then upsert everything into the content collections.

Examples:
  curator scrape
  curator scrape --news-only
  curator scrape --reddit-only`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if newsOnly && redditOnly {
				return fmt.Errorf("--news-only and --reddit-only are mutually exclusive")
			}

			ctx := cmd.Context()
			cfg := config.Get()
			st, err := store.NewStore(ctx, cfg.Mongo)
			if err != nil {
				return fmt.Errorf("connecting to store: %w", err)
			}
			defer st.Close(ctx)
			if err := st.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("ensuring indexes: %w", err)
			}

			if !redditOnly {
				news, err := scrape.NewNewsScraper(cfg.Scrape.NewsAPI, st)
				if err != nil {
					return err
				}
				total, err := news.Run(ctx, scrape.NewsCategories)
				if err != nil {
					return fmt.Errorf("news scrape: %w", err)
				}
				fmt.Printf("Stored %d news articles\n", total)
			}

			if !newsOnly {
				reddit := scrape.NewRedditScraper(cfg.Scrape.Reddit, st)
				total, err := reddit.Run(ctx, nil)
				if err != nil {
					return fmt.Errorf("reddit scrape: %w", err)
				}
				fmt.Printf("Stored %d posts\n", total)
			}
			return nil
		},
	}

	scrapeCmd.Flags().BoolVar(&newsOnly, "news-only", false, "Scrape only news headlines")
	scrapeCmd.Flags().BoolVar(&redditOnly, "reddit-only", false, "Scrape only subreddit posts")
	return scrapeCmd
}
