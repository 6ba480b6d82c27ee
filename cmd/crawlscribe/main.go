package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/crawlscribe/pkg/reporter"
	"github.com/amosWeiskopf/crawlscribe/pkg/utils"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "crawlscribe",
		Short: "CrawlScribe - turn a website into structured Markdown",
		Long: `CrawlScribe crawls a website's seed page and the same-site pages it links to,
extracts their visible text and has a language model restructure it into a
Markdown report. It can also turn that report into a persona prompt for a
conversational agent.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	scanCmd := &cobra.Command{
		Use:   "scan [URL]",
		Short: "Crawl a website and structure its content as Markdown",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			maxPages := a.maxPages(cmd)
			report, err := a.crawler.Run(cmd.Context(), args[0], maxPages)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			format, _ := cmd.Flags().GetString("format")
			out, err := reporter.New().Render(report, format)
			if err != nil {
				return fmt.Errorf("report generation failed: %w", err)
			}

			output, _ := cmd.Flags().GetString("output")
			return writeOutput(cmd, output, out)
		},
	}

	linksCmd := &cobra.Command{
		Use:   "links [URL]",
		Short: "Print the pages a scan of URL would visit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			frontier, err := a.crawler.Frontier(cmd.Context(), args[0], a.maxPages(cmd))
			if err != nil {
				return fmt.Errorf("link discovery failed: %w", err)
			}
			for _, u := range frontier {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			return nil
		},
	}

	personaCmd := &cobra.Command{
		Use:   "persona [URL]",
		Short: "Crawl a website and generate a conversational agent prompt for its business",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			guide, err := a.loadGuide(cmd)
			if err != nil {
				return err
			}

			report, err := a.crawler.Run(cmd.Context(), args[0], a.maxPages(cmd))
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}
			if report.Processed() == 0 {
				return fmt.Errorf("no page of %s could be processed", args[0])
			}

			aggregate, err := reporter.New().Render(report, "markdown")
			if err != nil {
				return fmt.Errorf("report generation failed: %w", err)
			}
			if reportOutput, _ := cmd.Flags().GetString("report-output"); reportOutput != "" {
				if err := writeOutput(cmd, reportOutput, aggregate); err != nil {
					return err
				}
			}

			business, _ := cmd.Flags().GetString("business")
			if business == "" {
				business = a.cfg.Transform.Business
			}
			if business == "" {
				business = utils.GetDomainFromURL(report.Seed)
			}

			prompt, err := a.transform.BuildPersona(cmd.Context(), aggregate, guide, business)
			if err != nil {
				return fmt.Errorf("persona generation failed: %w", err)
			}

			output, _ := cmd.Flags().GetString("output")
			return writeOutput(cmd, output, prompt+"\n")
		},
	}

	// Scan command flags
	scanCmd.Flags().Int("max-pages", 0, "Maximum pages to analyze (default from config)")
	scanCmd.Flags().String("mode", "", "Transform mode: structure or summarize (default from config)")
	scanCmd.Flags().String("format", "markdown", "Report format (markdown, json, html)")
	scanCmd.Flags().String("output", "", "Output file for the report")

	// Links command flags
	linksCmd.Flags().Int("max-pages", 0, "Maximum pages in the frontier (default from config)")

	// Persona command flags
	personaCmd.Flags().Int("max-pages", 0, "Maximum pages to analyze (default from config)")
	personaCmd.Flags().String("mode", "", "Transform mode: structure or summarize (default from config)")
	personaCmd.Flags().String("guide", "", "Guide template file for the persona prompt (default from config)")
	personaCmd.Flags().String("business", "", "Business name the agent represents")
	personaCmd.Flags().String("output", "", "Output file for the persona prompt")
	personaCmd.Flags().String("report-output", "", "Also save the aggregate report to this file")

	// Add commands to root
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(linksCmd)
	rootCmd.AddCommand(personaCmd)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file path")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose output")

	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
