package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hts-tools/rfq-processor/internal/common"
	"github.com/hts-tools/rfq-processor/internal/document"
	"github.com/hts-tools/rfq-processor/internal/enrich"
	"github.com/hts-tools/rfq-processor/internal/enrich/mistral"
	"github.com/hts-tools/rfq-processor/internal/parser"
	"github.com/hts-tools/rfq-processor/internal/pipeline"
	"github.com/hts-tools/rfq-processor/internal/repository"
	"github.com/hts-tools/rfq-processor/internal/sheet"
)

var version = "dev"

var (
	cfgFile string
	verbose bool
	outDir  string
	outName string
)

func main() {
	root := &cobra.Command{
		Use:   "rfqproc",
		Short: "Process procurement documents into the Upload File and Final Sheet layouts",
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "rfqproc.yaml", "path to the configuration file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	processPDF := &cobra.Command{
		Use:   "process-pdf <rfq.pdf>",
		Short: "Parse an RFQ PDF and write both spreadsheet outputs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd.Context(), args[0], func(ctx context.Context, p *pipeline.Processor, upload, final string) error {
				return p.ProcessPDF(ctx, args[0], upload, final)
			})
		},
	}
	processWorkbook := &cobra.Command{
		Use:   "process-workbook <envelope.xlsx>",
		Short: "Process a Techno-Commercial Envelope workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd.Context(), args[0], func(ctx context.Context, p *pipeline.Processor, upload, final string) error {
				return p.ProcessWorkbook(ctx, args[0], upload, final)
			})
		},
	}
	for _, c := range []*cobra.Command{processPDF, processWorkbook} {
		c.Flags().StringVar(&outDir, "out-dir", ".", "directory for the generated workbooks")
		c.Flags().StringVar(&outName, "name", "", "name suffix for the generated workbooks (required)")
		_ = c.MarkFlagRequired("name")
	}

	summarize := &cobra.Command{
		Use:   "summarize <final-sheet.xlsx>",
		Short: "Print the manufacturer summary for a completed Final Sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := common.LoadConfigFile(cfgFile)
			if err != nil {
				return err
			}
			p, db, err := buildProcessor(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer repository.Close(db, logger)
			out, err := p.Summarize(args[0])
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}

	runs := &cobra.Command{
		Use:   "runs",
		Short: "List recent processing runs from the journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			cfg, err := common.LoadConfigFile(cfgFile)
			if err != nil {
				return err
			}
			db, err := repository.Open(cmd.Context(), repository.Config{
				Path:        cfg.Journal.Path,
				BusyTimeout: cfg.Journal.BusyTimeout,
			}, logger)
			if err != nil {
				return err
			}
			defer repository.Close(db, logger)
			list, err := repository.NewRunRepository(db, logger).List(cmd.Context(), 20)
			if err != nil {
				return err
			}
			for _, r := range list {
				fmt.Printf("%s  %-8s  %-8s  items=%-3d  %s\n",
					r.StartedAt.Format("2006-01-02 15:04:05"), r.Status, r.Kind, r.ItemCount, r.SourcePath)
			}
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the rfqproc version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("rfqproc", version)
		},
	}

	root.AddCommand(processPDF, processWorkbook, summarize, runs, versionCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runProcess(ctx context.Context, source string, fn func(context.Context, *pipeline.Processor, string, string) error) error {
	logger := newLogger()
	cfg, err := common.LoadConfigFile(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	p, db, err := buildProcessor(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repository.Close(db, logger)

	uploadOut := filepath.Join(outDir, fmt.Sprintf("upload file - %s.xlsx", outName))
	finalOut := filepath.Join(outDir, fmt.Sprintf("FINAL SHEET - %s.xlsx", outName))
	if err := fn(ctx, p, uploadOut, finalOut); err != nil {
		return err
	}
	logger.Info("outputs written", "source", source, "upload", uploadOut, "final", finalOut)
	return nil
}

func buildProcessor(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*pipeline.Processor, *sql.DB, error) {
	db, err := repository.Open(ctx, repository.Config{
		Path:        cfg.Journal.Path,
		BusyTimeout: cfg.Journal.BusyTimeout,
	}, logger)
	if err != nil {
		return nil, nil, err
	}

	client := mistral.NewClient(mistral.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		CleanerAgentID: cfg.LLM.CleanerAgentID,
		Timeout:        cfg.LLM.Timeout,
	}, logger)
	enricher := enrich.NewEnricher(client, client, enrich.Config{
		MaxAttempts: cfg.LLM.MaxAttempts,
		BackoffBase: cfg.LLM.BackoffBase,
	}, logger)

	proc := pipeline.NewProcessor(
		logger,
		document.NewExtractor(document.Config{}, logger),
		parser.NewParser(logger),
		pipeline.NewEnrichStage(enricher, cfg.Pipeline.EnrichWorkers, logger),
		sheet.NewWriter(logger),
		repository.NewRunRepository(db, logger),
		cfg.Templates,
	)
	return proc, db, nil
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}
