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
	"curator/internal/retention"
	"curator/internal/store"
)

// NewCleanupCmd creates the cleanup command
func NewCleanupCmd() *cobra.Command {
	var capOnly bool

	cleanupCmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Apply retention policy to the content collections",
		Long: `Delete documents older than the retention age, while never shrinking a
collection below its configured document floor. With --cap-only, ignore age
and only trim each collection down to the document cap, oldest first.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Get()
			st, err := store.NewStore(ctx, cfg.Mongo)
			if err != nil {
				return fmt.Errorf("connecting to store: %w", err)
			}
			defer st.Close(ctx)

			enforcer := retention.NewEnforcer(st)
			targets := []struct {
				coll      string
				timeField string
			}{
				{store.NewsCollection, "scraped_at"},
				{store.PostsCollection, "scraped_at"},
				{store.SuggestionsCollection, "analyzed_at"},
			}
			for _, target := range targets {
				var removed int64
				if capOnly {
					removed, err = enforcer.EnforceMaxDocs(ctx, target.coll, cfg.Retention.MaxDocs)
				} else {
					removed, err = enforcer.Enforce(ctx, target.coll, target.timeField,
						cfg.Retention.MaxAge, cfg.Retention.MaxDocs)
				}
				if err != nil {
					return fmt.Errorf("cleaning %s: %w", target.coll, err)
				}
				fmt.Printf("%s: removed %d documents\n", target.coll, removed)
			}
			return nil
		},
	}

	cleanupCmd.Flags().BoolVar(&capOnly, "cap-only", false, "Only trim collections to the document cap, ignoring age")
	return cleanupCmd
}
