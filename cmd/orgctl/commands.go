package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/noah-isme/orgcms-api/internal/models"
	"github.com/noah-isme/orgcms-api/internal/service"
)

const operatorID = "orgctl"

func newRootCmd(open storeOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "orgctl",
		Short:         "Operate the organization CMS record store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newMigrateCmd(open),
		newSeedCmd(open),
		newPeriodCmd(open),
		newStatsCmd(open),
	)
	return root
}

func withEnvironment(cmd *cobra.Command, open storeOpener, fn func(ctx context.Context, env *environment) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	env, err := open(ctx)
	if err != nil {
		return err
	}
	defer env.close()
	return fn(ctx, env)
}

func newMigrateCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the document and globals tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnvironment(cmd, open, func(ctx context.Context, env *environment) error {
				if env.migrate == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "store needs no migration")
					return nil
				}
				if err := env.migrate(ctx); err != nil {
					return fmt.Errorf("migrate: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
				return nil
			})
		},
	}
}

// seedFile is the import format: documents per collection plus globals by slug.
type seedFile struct {
	Collections map[string][]models.Document `json:"collections"`
	Globals     map[string]models.Document   `json:"globals"`
}

// seedOrder creates referenced collections before the ones pointing at them.
var seedOrder = []string{
	models.CollectionUsers,
	models.CollectionPeriods,
	models.CollectionPositions,
	models.CollectionMembers,
	models.CollectionGalleries,
	models.CollectionPosts,
	models.CollectionDocuments,
	models.CollectionPages,
}

func newSeedCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.json>",
		Short: "Import documents and globals from a JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read seed file: %w", err)
			}
			var seed seedFile
			if err := json.Unmarshal(raw, &seed); err != nil {
				return fmt.Errorf("parse seed file: %w", err)
			}

			return withEnvironment(cmd, open, func(ctx context.Context, env *environment) error {
				out := cmd.OutOrStdout()
				created, failed := 0, 0
				for _, collection := range orderedCollections(seed.Collections) {
					for _, doc := range seed.Collections[collection] {
						if _, err := env.store.Create(ctx, collection, doc); err != nil {
							fmt.Fprintf(out, "skip %s/%v: %v\n", collection, doc["id"], err)
							failed++
							continue
						}
						created++
					}
				}
				slugs := make([]string, 0, len(seed.Globals))
				for slug := range seed.Globals {
					slugs = append(slugs, slug)
				}
				sort.Strings(slugs)
				for _, slug := range slugs {
					if _, err := env.store.UpsertGlobal(ctx, slug, seed.Globals[slug]); err != nil {
						fmt.Fprintf(out, "skip global %s: %v\n", slug, err)
						failed++
						continue
					}
					created++
				}
				fmt.Fprintf(out, "imported %d, skipped %d\n", created, failed)
				return nil
			})
		},
	}
}

func orderedCollections(collections map[string][]models.Document) []string {
	seen := make(map[string]bool, len(collections))
	ordered := make([]string, 0, len(collections))
	for _, name := range seedOrder {
		if _, ok := collections[name]; ok {
			ordered = append(ordered, name)
			seen[name] = true
		}
	}
	var rest []string
	for name := range collections {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(ordered, rest...)
}

func newPeriodCmd(open storeOpener) *cobra.Command {
	period := &cobra.Command{
		Use:   "period",
		Short: "Inspect and switch organizational periods",
	}

	period.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List periods, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnvironment(cmd, open, func(ctx context.Context, env *environment) error {
				periods, err := service.NewPeriodService(env.store, nil, env.logger).List(ctx)
				if err != nil {
					return err
				}
				for _, p := range periods {
					marker := " "
					if p.IsActive {
						marker = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s %s\t%s\n", marker, p.ID, p.Name)
				}
				return nil
			})
		},
	})

	period.AddCommand(&cobra.Command{
		Use:   "activate <id>",
		Short: "Make one period active and deactivate every other",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, open, func(ctx context.Context, env *environment) error {
				recorder := service.NewRecorderService(env.store, nil, nil, service.RecorderConfig{Workers: 1}, env.logger)
				recorder.Start(ctx)
				defer recorder.Stop()

				p, err := service.NewPeriodService(env.store, recorder, env.logger).Activate(ctx, args[0], service.ActivateRequest{ActorID: operatorID})
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "active period: %s (%s)\n", p.Name, p.ID)
				return nil
			})
		},
	})
	return period
}

func newStatsCmd(open storeOpener) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print headline counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnvironment(cmd, open, func(ctx context.Context, env *environment) error {
				stats, err := service.NewContentService(env.store, nil, env.logger).Stats(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "members\t%d\n", stats.TotalMembers)
				fmt.Fprintf(out, "posts\t%d\n", stats.TotalPosts)
				fmt.Fprintf(out, "galleries\t%d\n", stats.TotalGalleries)
				fmt.Fprintf(out, "documents\t%d\n", stats.TotalDocuments)
				return nil
			})
		},
	}
}
