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

	"curator/internal/embeddings"
	"curator/internal/store"
)

// NewEmbedCmd creates the embed command
func NewEmbedCmd() *cobra.Command {
	embedCmd := &cobra.Command{
		Use:   "embed",
		Short: "Backfill vector embeddings for stored content without them",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := newPipeline(ctx)
			if err != nil {
				return err
			}
			defer p.Close(ctx)

			newsMissing, err := p.store.CountMissingEmbeddings(ctx, store.NewsCollection)
			if err != nil {
				return fmt.Errorf("counting missing embeddings: %w", err)
			}
			postsMissing, err := p.store.CountMissingEmbeddings(ctx, store.PostsCollection)
			if err != nil {
				return fmt.Errorf("counting missing embeddings: %w", err)
			}
			fmt.Printf("Missing embeddings: %d articles, %d posts\n", newsMissing, postsMissing)

			embedder := embeddings.NewContentEmbedder(p.llm, p.store, p.cfg.Suggest.EmbeddingBatch, p.cfg.Suggest.EmbeddingBudget)
			counts, err := embedder.Run(ctx)
			if err != nil {
				return fmt.Errorf("embedding backfill: %w", err)
			}
			fmt.Printf("Embedded %d articles and %d posts\n", counts.Articles, counts.Posts)
			return nil
		},
	}
	return embedCmd
}
