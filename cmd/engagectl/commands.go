package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/okian/engage/internal/adapters/quickchart"
	"github.com/okian/engage/internal/adapters/workbook"
	"github.com/okian/engage/internal/config"
	"github.com/okian/engage/internal/domain/analytics"
	"github.com/okian/engage/internal/domain/types"
	"github.com/okian/engage/internal/sampledata"
	"github.com/okian/engage/pkg/logger"
	"github.com/spf13/cobra"
)

// filterFlags are the analysis flags shared by charts and export.
type filterFlags struct {
	workbook       string
	gradYear       int
	majors         []string
	graduatesOnly  bool
	aggregation    string
	minSample      int
	percentile     float64
	trendCategory  []string
	includeBefore  bool
	includeAfter   bool
	steppedColors  bool
	colorDivisions int
}

func (f *filterFlags) bind(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVarP(&f.workbook, "workbook", "w", "", "workbook (.xlsx) to analyze")
	fl.IntVar(&f.gradYear, "grad-year", 0, "restrict to the class graduating this year")
	fl.StringSliceVar(&f.majors, "major", nil, "restrict to students with these major categories")
	fl.BoolVar(&f.graduatesOnly, "graduates-only", false, "restrict to known graduates")
	fl.StringVar(&f.aggregation, "aggregation", "", "none, class_year_term or class_year")
	fl.IntVar(&f.minSample, "min-sample", 0, "smallest group shown in rate charts")
	fl.Float64Var(&f.percentile, "percentile-cap", 0, "clip color scales at this percentile")
	fl.StringSliceVar(&f.trendCategory, "trend-category", nil, "categories of the trend charts")
	fl.BoolVar(&f.includeBefore, "never-before", false, "show the never-before node in pathways")
	fl.BoolVar(&f.includeAfter, "never-after", false, "show the never-after node in pathways")
	fl.BoolVar(&f.steppedColors, "stepped", false, "use stepped color scales")
	fl.IntVar(&f.colorDivisions, "color-divisions", 0, "divisions of a stepped color scale")
	_ = cmd.MarkFlagRequired("workbook")
}

// settings overlays the flags that were set on the configured defaults.
func (f *filterFlags) settings(cmd *cobra.Command, base analytics.Settings) analytics.Settings {
	s := base
	fl := cmd.Flags()
	if fl.Changed("grad-year") {
		s.Cohort.GraduationYear = f.gradYear
	}
	if fl.Changed("major") {
		s.Cohort.Majors = f.majors
	}
	if fl.Changed("graduates-only") {
		s.Cohort.KnownGraduatesOnly = f.graduatesOnly
	}
	if fl.Changed("aggregation") {
		s.Aggregation = f.aggregation
	}
	if fl.Changed("min-sample") {
		s.MinSampleSize = f.minSample
	}
	if fl.Changed("percentile-cap") {
		s.PercentileCap = f.percentile
	}
	if fl.Changed("trend-category") {
		s.TrendCategories = f.trendCategory
	}
	if fl.Changed("never-before") {
		s.IncludeNeverBefore = f.includeBefore
	}
	if fl.Changed("never-after") {
		s.IncludeNeverAfter = f.includeAfter
	}
	if fl.Changed("stepped") {
		s.SteppedColors = f.steppedColors
	}
	if fl.Changed("color-divisions") {
		s.ColorDivisions = f.colorDivisions
	}
	return s
}

func newRootCmd() *cobra.Command {
	var logLevel string
	root := &cobra.Command{
		Use:          "engagectl",
		Short:        "Engagement sequence analytics for career-center workbooks",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := logger.Init(logger.WithWriter(cmd.ErrOrStderr())); err != nil {
				return err
			}
			return logger.SetLevelString(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "debug, info, warn or error")
	root.AddCommand(newChartsCmd(), newExportCmd(), newSampleCmd(), newKindsCmd())
	return root
}

func newChartsCmd() *cobra.Command {
	var (
		f      filterFlags
		kinds  []string
		images bool
		pretty bool
	)
	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Build charts from a workbook and print them as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			engine, base, err := openEngine(ctx, f.workbook, images)
			if err != nil {
				return err
			}
			want := make([]types.ChartKind, 0, len(kinds))
			for _, k := range kinds {
				want = append(want, types.ChartKind(k))
			}
			if len(want) == 0 {
				want = types.AllKinds
			}

			start := time.Now()
			res, err := engine.Run(ctx, f.settings(cmd, base), want)
			if err != nil {
				return err
			}
			logger.Named("engagectl").Info(ctx, "charts built",
				logger.Int("charts", len(res.Charts)),
				logger.Int("failed", len(res.Errors)),
				logger.Duration("took", time.Since(start)),
			)

			enc := json.NewEncoder(cmd.OutOrStdout())
			if pretty {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(types.ChartRun{
				Description: res.Description,
				Records:     res.Records,
				People:      res.People,
				Charts:      res.Charts,
				Errors:      res.Errors,
			})
		},
	}
	f.bind(cmd)
	cmd.Flags().StringSliceVarP(&kinds, "kind", "k", nil, "chart kinds to build (default all)")
	cmd.Flags().BoolVar(&images, "images", false, "attach chart image URLs to line and bar charts")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	return cmd
}

func newExportCmd() *cobra.Command {
	var (
		f   filterFlags
		out string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered records of a workbook to a new workbook",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			engine, base, err := openEngine(ctx, f.workbook, false)
			if err != nil {
				return err
			}
			table, err := engine.Export(ctx, f.settings(cmd, base))
			if err != nil {
				return err
			}
			if err := writeFile(out, func(w *os.File) error { return workbook.WriteTable(w, table) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows to %s\n", len(table.Rows), out)
			return nil
		},
	}
	f.bind(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "engagement-data.xlsx", "output workbook")
	return cmd
}

func newSampleCmd() *cobra.Command {
	var (
		out        string
		students   int
		seed       uint64
		firstClass int
		classes    int
		maxEvents  int
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a synthetic workbook with every sheet the analyzer reads",
		RunE: func(cmd *cobra.Command, _ []string) error {
			sheets := sampledata.Generate(
				sampledata.WithPeople(students),
				sampledata.WithSeed(seed),
				sampledata.WithClasses(firstClass, classes),
				sampledata.WithMaxEvents(maxEvents),
			)
			if err := writeFile(out, func(w *os.File) error { return workbook.WriteSheets(w, sheets) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d students to %s\n", students, out)
			return nil
		},
	}
	d := sampledata.DefaultConfig()
	cmd.Flags().StringVarP(&out, "out", "o", "sample.xlsx", "output workbook")
	cmd.Flags().IntVar(&students, "students", d.People, "number of students")
	cmd.Flags().Uint64Var(&seed, "seed", d.Seed, "random seed")
	cmd.Flags().IntVar(&firstClass, "first-class", d.FirstClass, "graduation year of the earliest class")
	cmd.Flags().IntVar(&classes, "classes", d.Classes, "number of graduating classes")
	cmd.Flags().IntVar(&maxEvents, "max-events", d.MaxEvents, "most engagements per student")
	return cmd
}

func newKindsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kinds",
		Short: "List the chart kinds",
		Run: func(cmd *cobra.Command, _ []string) {
			for _, k := range types.AllKinds {
				fmt.Fprintln(cmd.OutOrStdout(), k)
			}
		},
	}
}

// openEngine loads a workbook and the configured analysis defaults.
func openEngine(ctx context.Context, path string, images bool) (*analytics.Engine, analytics.Settings, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, analytics.Settings{}, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, analytics.Settings{}, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = file.Close() }()

	data, err := workbook.Load(file)
	if err != nil {
		return nil, analytics.Settings{}, err
	}
	logger.Named("engagectl").Debug(ctx, "workbook loaded",
		logger.String("path", path),
		logger.Int("records", len(data.Records)),
	)
	var opts []analytics.Option
	if images {
		opts = append(opts, analytics.WithImages(quickchart.Renderer{}))
	}
	return analytics.New(data, opts...), cfg.Analysis.Settings(), nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
