package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/pathway"
)

func cacheCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Build, inspect and clear route caches",
		Long: `A route cache holds the ordered rule list together with each compiled
expression. Servers load it at startup instead of re-registering rules.`,
	}

	cmd.AddCommand(
		cacheBuildCmd(cfg),
		cacheShowCmd(cfg),
		cacheClearCmd(cfg),
	)

	return cmd
}

func cacheBuildCmd(cfg *config) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile the definitions file into a cache",
		Long: `Compile --routes and store the result in --cache, or in a file with --out.

Examples:
  pathway cache build --routes routes.yaml --out routes.cache.json
  pathway cache build --routes routes.yaml --cache redis://localhost:6379/0
  pathway cache build --routes routes.yaml --cache s3://my-bucket/pathway`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.routes == "" {
				return fmt.Errorf("%w: --routes", errMissingValue)
			}
			r, err := cfg.loadDefinitions()
			if err != nil {
				return err
			}

			if out != "" {
				if err := pathway.WriteCacheFile(out, r); err != nil {
					return err
				}
				success(cmd, "Wrote %d rules to %s", r.Len(), out)
				return nil
			}

			rc, closeStore, err := cfg.routeCache(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()
			if err := rc.Save(cmd.Context(), r); err != nil {
				return err
			}
			success(cmd, "Stored %d rules under %s", r.Len(), cfg.cacheKey)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Write the cache to a file instead of --cache")

	return cmd
}

func cacheShowCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [FILE]",
		Short: "Print cache metadata",
		Long: `Validate a cache blob and print its metadata as JSON. Reads FILE when
given, otherwise the blob stored in --cache.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				info pathway.CacheInfo
				err  error
			)
			if len(args) == 1 {
				var blob []byte
				blob, err = os.ReadFile(args[0])
				if err != nil {
					return err
				}
				info, err = pathway.InspectCache(blob)
			} else {
				rc, closeStore, openErr := cfg.routeCache(cmd.Context())
				if openErr != nil {
					return openErr
				}
				defer closeStore()
				info, err = rc.Info(cmd.Context())
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}

	return cmd
}

func cacheClearCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the blob stored in --cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rc, closeStore, err := cfg.routeCache(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()
			if err := rc.Invalidate(cmd.Context()); err != nil {
				return err
			}
			success(cmd, "Removed %s", cfg.cacheKey)
			return nil
		},
	}
}
