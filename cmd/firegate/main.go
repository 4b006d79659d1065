package main

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/firegate/pkg/catalog"
	"github.com/coolbeans/firegate/pkg/engine"
	"github.com/coolbeans/firegate/pkg/format"
	"github.com/coolbeans/firegate/pkg/profile"
)

var version = "0.1.0"

var verbose bool

func main() {
	rootCmd := &cobra.Command{
		Use:   "firegate",
		Short: "Fire-safety requirement matcher",
		Long: `Firegate resolves which fire-safety requirements apply to an
Israeli business based on its size, occupancy, and special features.

It loads a requirement catalog, matches a business profile against
the applicability ranges of every requirement, resolves conflicts
between the small-business (chapter 5) and general (chapter 6)
regimes, and produces a structured, prioritized result in Hebrew.`,
		Version: version,
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(matchCmd())
	rootCmd.AddCommand(catalogCmd())
	rootCmd.AddCommand(profileCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the CLI logger. Debug output goes to stderr so JSON
// output on stdout stays machine-readable.
func newLogger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func matchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match a business profile against the requirement catalog",
		Long: `Match a business profile against the requirement catalog and print
the applicable requirements with priorities and Hebrew justifications.

The profile comes either from flags or from a YAML/JSON file:

  firegate match --catalog requirements.json --size 80 --capacity 30
  firegate match --catalog requirements.json --size 150 --capacity 50 --feature gas_usage
  firegate match --catalog requirements.json --profile business.yaml --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogPath, _ := cmd.Flags().GetString("catalog")
			profilePath, _ := cmd.Flags().GetString("profile")
			size, _ := cmd.Flags().GetInt("size")
			capacity, _ := cmd.Flags().GetInt("capacity")
			features, _ := cmd.Flags().GetStringSlice("feature")
			asJSON, _ := cmd.Flags().GetBool("json")
			asTable, _ := cmd.Flags().GetBool("table")
			full, _ := cmd.Flags().GetBool("full")

			if catalogPath == "" {
				return fmt.Errorf("--catalog flag is required")
			}

			prof, err := resolveProfile(profilePath, size, capacity, features)
			if err != nil {
				return err
			}

			logger := newLogger()
			defer logger.Sync()

			cat, err := catalog.Load(catalogPath)
			if err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}

			result, err := engine.New(cat, logger).Evaluate(prof)
			if err != nil {
				return err
			}

			if asJSON {
				data, err := result.ToJSON()
				if err != nil {
					return fmt.Errorf("encoding result: %w", err)
				}
				fmt.Println(string(data))
				return nil
			}
			if asTable {
				printTable(result)
				return nil
			}

			printResult(result, full)
			return nil
		},
	}

	cmd.Flags().String("catalog", "", "path to the requirement catalog (JSON or YAML)")
	cmd.Flags().String("profile", "", "path to a business profile file (overrides profile flags)")
	cmd.Flags().Int("size", 0, "business floor area in square meters")
	cmd.Flags().Int("capacity", 0, "maximum occupancy in people")
	cmd.Flags().StringSlice("feature", nil, "special feature (gas_usage, delivery, alcohol, meat); repeatable")
	cmd.Flags().Bool("json", false, "print the full structured result as JSON")
	cmd.Flags().Bool("table", false, "print the matches as an aligned table")
	cmd.Flags().Bool("full", false, "print the full regulatory text of every match")

	return cmd
}

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and watch requirement catalogs",
	}
	cmd.AddCommand(catalogStatsCmd())
	cmd.AddCommand(catalogValidateCmd())
	cmd.AddCommand(catalogWatchCmd())
	return cmd
}

func catalogStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print catalog statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogPath, _ := cmd.Flags().GetString("catalog")
			if catalogPath == "" {
				return fmt.Errorf("--catalog flag is required")
			}

			cat, err := catalog.Load(catalogPath)
			if err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}

			stats := cat.Stats()
			fmt.Printf("Catalog: %s\n", catalogPath)
			fmt.Printf("Requirements: %d\n", stats.TotalRequirements)

			fmt.Println("\nBy chapter:")
			chapters := make([]int, 0, len(stats.ByChapter))
			for ch := range stats.ByChapter {
				chapters = append(chapters, ch)
			}
			sort.Ints(chapters)
			for _, ch := range chapters {
				fmt.Printf("  chapter %d: %d\n", ch, stats.ByChapter[ch])
			}

			fmt.Println("\nBy category:")
			categories := make([]string, 0, len(stats.ByCategory))
			for name := range stats.ByCategory {
				categories = append(categories, string(name))
			}
			sort.Strings(categories)
			for _, name := range categories {
				fmt.Printf("  %-16s %d\n", name, stats.ByCategory[catalog.Category(name)])
			}

			fmt.Printf("\nThresholds: chapter 5 up to %d sqm / %d people\n",
				cat.Thresholds.Chapter5MaxSqm, cat.Thresholds.Chapter5MaxPeople)
			if n := stats.AreaThresholds + stats.CapacityThresholds + stats.CombinedThresholds; n > 0 {
				fmt.Printf("Auxiliary thresholds: %d area, %d capacity, %d combined\n",
					stats.AreaThresholds, stats.CapacityThresholds, stats.CombinedThresholds)
			}
			return nil
		},
	}
	cmd.Flags().String("catalog", "", "path to the requirement catalog (JSON or YAML)")
	return cmd
}

func catalogValidateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate a catalog file without running a match",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogPath, _ := cmd.Flags().GetString("catalog")
			if catalogPath == "" {
				return fmt.Errorf("--catalog flag is required")
			}

			cat, err := catalog.Load(catalogPath)
			if err != nil {
				return fmt.Errorf("catalog invalid: %w", err)
			}

			fmt.Printf("Catalog valid: %d requirements\n", cat.Len())
			return nil
		},
	}
	cmd.Flags().String("catalog", "", "path to the requirement catalog (JSON or YAML)")
	return cmd
}

func catalogWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a catalog file and reload it on changes",
		Long: `Watch a catalog file and reload it whenever it changes on disk.
A reload that fails validation keeps the previous catalog in place.
Runs until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			catalogPath, _ := cmd.Flags().GetString("catalog")
			if catalogPath == "" {
				return fmt.Errorf("--catalog flag is required")
			}

			logger := newLogger()
			defer logger.Sync()

			watcher, err := catalog.NewWatcher(catalogPath, logger)
			if err != nil {
				return fmt.Errorf("loading catalog: %w", err)
			}
			watcher.SetOnReload(func(c *catalog.Catalog) {
				fmt.Printf("catalog reloaded: %d requirements\n", c.Len())
			})

			if err := watcher.Watch(); err != nil {
				return err
			}
			defer watcher.Stop()

			fmt.Printf("watching %s (%d requirements), Ctrl-C to stop\n",
				catalogPath, watcher.Catalog().Len())

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
			<-sigChan
			return nil
		},
	}
	cmd.Flags().String("catalog", "", "path to the requirement catalog (JSON or YAML)")
	return cmd
}

func profileCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Work with business profiles",
	}
	cmd.AddCommand(profileCheckCmd())
	return cmd
}

func profileCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a business profile and print its summary",
		Long: `Validate a business profile and print its derived summary:
size and capacity categories plus the complexity score.

  firegate profile check --size 80 --capacity 30 --feature gas_usage
  firegate profile check --profile business.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			profilePath, _ := cmd.Flags().GetString("profile")
			size, _ := cmd.Flags().GetInt("size")
			capacity, _ := cmd.Flags().GetInt("capacity")
			features, _ := cmd.Flags().GetStringSlice("feature")

			prof, err := resolveProfile(profilePath, size, capacity, features)
			if err != nil {
				return err
			}

			summary := profile.Summarize(prof)
			fmt.Println(prof.String())
			fmt.Printf("size category:     %s\n", summary.SizeCategory)
			fmt.Printf("capacity category: %s\n", summary.CapacityCategory)
			fmt.Printf("features:          %d\n", summary.FeatureCount)
			fmt.Printf("complexity score:  %.2f\n", summary.ComplexityScore)
			return nil
		},
	}
	cmd.Flags().String("profile", "", "path to a business profile file (overrides profile flags)")
	cmd.Flags().Int("size", 0, "business floor area in square meters")
	cmd.Flags().Int("capacity", 0, "maximum occupancy in people")
	cmd.Flags().StringSlice("feature", nil, "special feature (gas_usage, delivery, alcohol, meat); repeatable")
	return cmd
}

// resolveProfile builds a validated profile from a file or from flags.
// A file, when given, wins over the flags.
func resolveProfile(path string, size, capacity int, features []string) (*profile.Profile, error) {
	if path != "" {
		return loadProfileFile(path)
	}

	parsed := make([]profile.Feature, 0, len(features))
	for _, raw := range features {
		f := profile.Feature(strings.ToLower(strings.TrimSpace(raw)))
		if !f.Valid() {
			return nil, fmt.Errorf("unknown feature %q (known: gas_usage, delivery, alcohol, meat)", raw)
		}
		parsed = append(parsed, f)
	}

	prof := profile.New(size, capacity, parsed...)
	if err := prof.Validate(); err != nil {
		return nil, fmt.Errorf("invalid business profile: %w", err)
	}
	return prof, nil
}

func loadProfileFile(path string) (*profile.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var prof *profile.Profile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		prof = &profile.Profile{}
		if err := yaml.Unmarshal(data, prof); err != nil {
			return nil, fmt.Errorf("parsing profile %s: %w", path, err)
		}
	default:
		prof, err = profile.FromJSON(data)
		if err != nil {
			return nil, fmt.Errorf("parsing profile %s: %w", path, err)
		}
	}

	if err := prof.Validate(); err != nil {
		return nil, fmt.Errorf("invalid business profile: %w", err)
	}
	return prof, nil
}

// printResult prints the human-readable rendering: profile, summary or
// full text, conflict notes, and headline counts.
func printResult(result *format.Result, full bool) {
	fmt.Println(result.ProfileText)
	fmt.Println()

	if full {
		fmt.Println(result.FullText)
	} else {
		fmt.Println(result.SummaryText)
	}

	if len(result.ConflictsResolved) > 0 {
		fmt.Println("\nהתנגשויות שנפתרו:")
		for _, c := range result.ConflictsResolved {
			fmt.Printf("• %s מול %s: %s\n", c.RequirementID1, c.RequirementID2, c.Resolution)
		}
	}

	s := result.Statistics
	fmt.Printf("\nסה\"כ דרישות חלות: %d (קריטי %d, חשוב %d, מומלץ %d)\n",
		s.TotalRequirements, s.ByPriority.Critical, s.ByPriority.Important, s.ByPriority.Recommended)
}

// printTable prints one row per match, aligned for terminal reading.
func printTable(result *format.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCHAPTER\tSECTION\tCATEGORY\tPRIORITY\tTITLE")
	for _, r := range result.Requirements {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d (%s)\t%s\n",
			r.RequirementID, r.Chapter, r.Section, r.Category, r.Priority, r.PriorityHebrew, r.Title)
	}
	w.Flush()
	fmt.Printf("\n%d requirements, %d conflicts resolved\n",
		result.TotalRequirements, len(result.ConflictsResolved))
}
