package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"gokundoluk/app"
	"gokundoluk/internal"
	"gokundoluk/internal/config"
	"gokundoluk/internal/container"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:          "kundoluk-report",
		Short:        "Build class-quarter grade reports from the Kundoluk gradebook",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newReportCmd(),
		newRebuildCmd(),
		newClassesCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newContainer(online bool) (*container.Container, error) {
	load := config.LoadOffline
	if online {
		load = config.Load
	}
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	logger := internal.NewLogger(internal.ParseLogLevel(cfg.LogLevel))
	return container.New(cfg, logger)
}

func newReportCmd() *cobra.Command {
	var class, outDir string
	var quarter int
	var open, asJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Fetch a class-quarter and write its report workbook",
		Long: `Fetch every subject of a class for one quarter, aggregate the grades
and write <class>-<quarter>.xlsx with raw subject sheets and a Result sheet.

Example: kundoluk-report report --class 4Б --quarter 2 --open`,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(true)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			req := c.Request(class, quarter)
			if cmd.Flags().Changed("out") {
				req.OutputDir = outDir
			}
			if cmd.Flags().Changed("open") {
				req.Open = open
			}

			result, err := c.Pipeline.Run(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printResult(result, asJSON)
		},
	}

	cmd.Flags().StringVar(&class, "class", "", "Class label, e.g. 4Б")
	cmd.Flags().IntVar(&quarter, "quarter", 0, "Quarter number")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default from OUTPUT_DIR)")
	cmd.Flags().BoolVar(&open, "open", false, "Open the report when done")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("class")
	_ = cmd.MarkFlagRequired("quarter")

	return cmd
}

func newRebuildCmd() *cobra.Command {
	var open, asJSON bool

	cmd := &cobra.Command{
		Use:   "rebuild <file>",
		Short: "Recompute the Result sheet of an existing report offline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(false)
			if err != nil {
				return err
			}
			defer c.Shutdown(context.Background())

			result, err := c.Pipeline.Rebuild(cmd.Context(), args[0], open)
			if err != nil {
				return err
			}
			return printResult(result, asJSON)
		},
	}

	cmd.Flags().BoolVar(&open, "open", false, "Open the report when done")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

func newClassesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "List the known classes",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newContainer(false)
			if err != nil {
				return err
			}
			for _, class := range c.Registry.Classes() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-4s %d\n", class.Label, class.ID)
			}
			return nil
		},
	}
}

func printResult(result *app.BuildResult, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Printf("Report: %s\n", result.Path)
	fmt.Printf("Run: %s\n", result.RunID)
	fmt.Printf("Subjects (%d): %s\n", len(result.Subjects), strings.Join(result.Subjects, ", "))
	fmt.Printf("Students: %d\n", result.Students)
	for _, share := range result.Distribution.Shares {
		fmt.Printf("  %-5s %3d  %s\n", share.Label, share.Count, share.PercentText())
	}
	if result.Summary.Students > 0 {
		fmt.Printf("Class mean %.2f, median %.2f, std dev %.2f\n",
			result.Summary.Mean, result.Summary.Median, result.Summary.StdDev)
	}
	return nil
}
