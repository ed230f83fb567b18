package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/repolens/repolens/internal/cache"
	"github.com/repolens/repolens/internal/config"
	"github.com/repolens/repolens/internal/domain"
	"github.com/repolens/repolens/internal/output"
	"github.com/repolens/repolens/internal/reader"
	"github.com/repolens/repolens/internal/utils"
	"github.com/repolens/repolens/pkg/version"
)

var (
	cfgFile string
	verbose bool
	log     *utils.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "repolens <owner>/<repo>",
	Short: "Crawl a GitHub repository into normalized text documents",
	Long: `Repolens crawls a GitHub repository at a branch or commit, walks the
full tree through the git-data API, and synthesizes a plain-text
document per file — either by UTF-8 pass-through or by dispatching
recognized extensions (html, md, csv, ipynb, yaml) to extractors.`,
	Version: version.Full(),
	Args:    cobra.ExactArgs(1),
	RunE:    run,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.repolens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.Flags().String("branch", "", "Branch to crawl")
	rootCmd.Flags().String("commit", "", "Commit SHA to crawl")
	rootCmd.Flags().String("token", "", "GitHub token (default: GITHUB_TOKEN env)")

	rootCmd.Flags().StringP("output", "o", config.DefaultOutputDir, "Output directory")
	rootCmd.Flags().Bool("flat", false, "Flat output structure")
	rootCmd.Flags().Bool("json-meta", true, "Write metadata.json index")
	rootCmd.Flags().Bool("force", false, "Overwrite existing files")
	rootCmd.Flags().Bool("dry-run", false, "Crawl and report without writing files")

	rootCmd.Flags().IntP("concurrency", "j", config.DefaultWorkers, "Number of concurrent blob workers")
	rootCmd.Flags().IntP("max-depth", "d", config.DefaultMaxDepth, "Max tree depth (0=unbounded)")
	rootCmd.Flags().Duration("timeout", config.DefaultTimeout, "Overall crawl timeout")
	rootCmd.Flags().Bool("no-extractors", false, "Disable extractor dispatch")

	rootCmd.Flags().Bool("no-cache", false, "Disable the blob cache")
	rootCmd.Flags().Duration("cache-ttl", config.DefaultCacheTTL, "Blob cache TTL")

	mustBind("output.directory", "output")
	mustBind("output.flat", "flat")
	mustBind("output.json_metadata", "json-meta")
	mustBind("output.overwrite", "force")
	mustBind("concurrency.workers", "concurrency")
	mustBind("concurrency.max_depth", "max-depth")
	mustBind("concurrency.timeout", "timeout")
	mustBind("cache.ttl", "cache-ttl")
	mustBind("github.token", "token")
}

func mustBind(key, flag string) {
	if err := viper.BindPFlag(key, rootCmd.Flags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logLevel := cfg.Logging.Level
	if verbose {
		logLevel = "debug"
	}
	utils.SetGlobalLevel(logLevel)
	log = utils.NewLogger(utils.LoggerOptions{
		Level:   logLevel,
		Format:  cfg.Logging.Format,
		Verbose: verbose,
	})

	owner, repo, err := splitRepoArg(args[0])
	if err != nil {
		return err
	}

	branch, _ := cmd.Flags().GetString("branch")
	commitSHA, _ := cmd.Flags().GetString("commit")
	noExtractors, _ := cmd.Flags().GetBool("no-extractors")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	opts := []reader.Option{
		reader.WithToken(cfg.GitHub.Token),
		reader.WithBaseURL(cfg.GitHub.BaseURL),
		reader.WithMaxRetries(cfg.GitHub.MaxRetries),
		reader.WithConcurrency(cfg.Concurrency.Workers),
		reader.WithMaxDepth(cfg.Concurrency.MaxDepth),
		reader.WithExtractors(extractorsEnabled(cfg.Extract.Enabled, noExtractors)),
		reader.WithLogger(log),
	}

	if cfg.Cache.Enabled && !noCache {
		blobCache, err := cache.NewBadgerCache(cache.Options{
			Directory: utils.ExpandPath(cfg.Cache.Directory),
		})
		if err != nil {
			return fmt.Errorf("open cache: %w", err)
		}
		defer blobCache.Close()
		opts = append(opts, reader.WithCache(blobCache, cfg.Cache.TTL))
	}

	r, err := reader.New(owner, repo, opts...)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if cfg.Concurrency.Timeout > 0 {
		var tcancel context.CancelFunc
		ctx, tcancel = context.WithTimeout(ctx, cfg.Concurrency.Timeout)
		defer tcancel()
	}

	start := time.Now()
	docs, report, err := r.LoadDataReport(ctx, reader.Ref{CommitSHA: commitSHA, Branch: branch})
	if err != nil {
		return err
	}

	writer := output.NewWriter(output.WriterOptions{
		BaseDir:      utils.ExpandPath(cfg.Output.Directory),
		Flat:         cfg.Output.Flat,
		JSONMetadata: cfg.Output.JSONMetadata,
		Force:        cfg.Output.Overwrite,
		DryRun:       dryRun,
	})

	bar := utils.NewProgressBar(len(docs), utils.DescWriting)
	ref := branch
	if ref == "" {
		ref = commitSHA
	}
	if err := writer.WriteAll(ctx, owner+"/"+repo, ref, docs, func() { _ = bar.Add(1) }); err != nil {
		return err
	}
	_ = bar.Finish()

	log.Info().
		Int("documents", len(docs)).
		Int("skipped", len(report.Skipped)).
		Dur("elapsed", time.Since(start)).
		Msg("done")
	for _, skip := range report.Skipped {
		log.Debug().Str("path", skip.Path).Str("reason", string(skip.Reason)).Err(skip.Err).Msg("skipped")
	}
	return nil
}

// extractorsEnabled combines the config key with the kill-switch flag:
// dispatch runs only when the config allows it and --no-extractors was
// not given.
func extractorsEnabled(cfgEnabled, noExtractors bool) bool {
	return cfgEnabled && !noExtractors
}

// splitRepoArg parses "owner/repo".
func splitRepoArg(arg string) (string, string, error) {
	parts := strings.Split(strings.Trim(arg, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("expected <owner>/<repo>, got %q: %w", arg, domain.ErrInvalidArgument)
	}
	return parts[0], parts[1], nil
}
