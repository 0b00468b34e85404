package main

import (
	"fmt"
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	err := rootCmd().Execute()
	sentry.Flush(2 * time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cfg := &config{}

	cmd := &cobra.Command{
		Use:   "pathway",
		Short: "Inspect, cache and serve rule-based route tables",
		Long: `pathway loads route definitions from a YAML file or a route cache and
lets you list them, resolve URLs against them, build caches and serve
them over HTTP.

Configuration comes from flags, falling back to environment variables:

  --routes        PATHWAY_ROUTES         YAML definitions file
  --root-domain   PATHWAY_ROOT_DOMAIN    domain bare labels expand under
  --cache         PATHWAY_CACHE          file:///dir, redis://host/db or s3://bucket/prefix
  --cache-key     PATHWAY_CACHE_KEY      key of the cache blob
  --log-level     PATHWAY_LOG_LEVEL      debug, info, warn or error

S3 credentials are read from PATHWAY_S3_ACCESS_KEY, PATHWAY_S3_SECRET_KEY,
PATHWAY_S3_REGION and PATHWAY_S3_ENDPOINT. Errors are reported to Sentry
when SENTRY_DSN is set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return cfg.complete(cmd.ErrOrStderr())
		},
	}

	cfg.bind(cmd)

	cmd.AddCommand(
		routesCmd(cfg),
		matchCmd(cfg),
		cacheCmd(cfg),
		serveCmd(cfg),
		versionCmd(),
	)

	return cmd
}

// success prints a success message.
func success(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}
