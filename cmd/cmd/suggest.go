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
	"strings"

	"github.com/spf13/cobra"

	"curator/internal/core"
)

// NewSuggestCmd creates the suggest command
func NewSuggestCmd() *cobra.Command {
	var limit int
	var label string

	suggestCmd := &cobra.Command{
		Use:   "suggest [query]",
		Short: "Generate topic suggestions for a query from stored content",
		Long: `Embed the query, retrieve semantically similar articles and posts, and ask
the LLM to extract topic suggestions. Novel suggestions are stored; known
ones are skipped.

Examples:
  curator suggest "AI developments"
  curator suggest "market trends" --limit 10
  curator suggest "wellness" --label health`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if label != "" && !core.ValidLabel(label) {
				return fmt.Errorf("unknown label %q, valid labels: %s", label, strings.Join(core.Labels, ", "))
			}

			ctx := cmd.Context()
			p, err := newPipeline(ctx)
			if err != nil {
				return err
			}
			defer p.Close(ctx)

			if limit <= 0 {
				limit = p.cfg.Suggest.ResultLimit
			}
			result, err := p.analyzer.AnalyzeAndStore(ctx, query, limit, label)
			if err != nil {
				return fmt.Errorf("generating suggestions: %w", err)
			}

			if len(result.Suggestions) == 0 {
				fmt.Println("No suggestions generated.")
				return nil
			}
			for i, s := range result.Suggestions {
				url := "-"
				if s.URL != nil && *s.URL != "" {
					url = *s.URL
				}
				fmt.Printf("%d. [%s] %s\n   %s\n   keywords: %s\n   url: %s\n",
					i+1, s.Label, s.Topic, s.Description, strings.Join(s.Keywords, ", "), url)
			}
			fmt.Printf("\nStored %d article and %d post suggestions (skipped %d duplicates)\n",
				result.Stored.StoredArticles, result.Stored.StoredPosts,
				result.Stored.SkippedArticles+result.Stored.SkippedPosts)
			return nil
		},
	}

	suggestCmd.Flags().IntVar(&limit, "limit", 0, "Results per content type (default from config)")
	suggestCmd.Flags().StringVar(&label, "label", "", "Keep only suggestions with this label")
	return suggestCmd
}
