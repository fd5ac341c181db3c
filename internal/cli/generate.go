// Package cli implements the doxyrst command-line interface.
package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/example/doxyrst/internal/assemble"
	"github.com/example/doxyrst/internal/doxygen"
	"github.com/example/doxyrst/internal/report"
	"github.com/example/doxyrst/internal/rst"
	"github.com/example/doxyrst/internal/symboldb"
)

// NewRootCommand returns the doxyrst root command with subcommands attached.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "doxyrst",
		Short: "Generate reStructuredText pages from doxygen XML",
	}
	root.AddCommand(newGenerateCommand())
	return root
}

func newGenerateCommand() *cobra.Command {
	var config Config
	var configPath string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the documentation pages described by the page specs",
		RunE: func(_ *cobra.Command, _ []string) error {
			level := log.InfoLevel
			if config.Verbose {
				level = log.DebugLevel
			}
			logger := newLogger(os.Stderr, level)
			if err := loadConfigFile(&config, configPath); err != nil {
				return err
			}
			if err := config.Validate(); err != nil {
				return err
			}
			runner := &doxygen.ExecRunner{Command: config.DoxygenCommand}
			return Generate(&config, logger, runner)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to a .doxyrst.yml config file")
	cmd.Flags().StringVar(&config.SpecDir, "yml-dir", "", "Directory of page-specification files")
	cmd.Flags().StringVar(&config.XMLDir, "xml-dir", "", "Directory of doxygen XML output")
	cmd.Flags().StringVar(&config.OutDir, "out-dir", "", "Directory receiving the generated pages")
	cmd.Flags().StringVar(&config.HeaderDir, "header-dir", "", "Tracked header directory for the staleness check")
	cmd.Flags().StringVar(&config.Project, "project", "", "Project name used in embedding directives")
	cmd.Flags().StringVar(&config.Namespace, "namespace", "", "Root library namespace")
	cmd.Flags().BoolVar(&config.SkipDoxygen, "skip-doxygen", false, "Never invoke doxygen, even when the XML is stale")
	cmd.Flags().BoolVarP(&config.Verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}

// Generate runs a full generation pass with an already validated config.
func Generate(config *Config, logger *log.Logger, runner doxygen.Runner) error {
	regenerate(config, logger, runner)

	if err := os.MkdirAll(config.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	db := symboldb.Open(config.XMLDir)
	reporter := report.New(logger)
	writer := assemble.NewWriter(logger)
	detail := config.DetailNamespace
	if detail == "" {
		detail = "detail::"
	}
	asm := &assemble.Assembler{
		DB: db,
		Renderer: &rst.Renderer{
			Project:         config.Project,
			RootNamespace:   config.Namespace,
			DetailNamespace: detail,
		},
		Writer:   writer,
		Reporter: reporter,
		OutDir:   config.OutDir,
		Header:   config.AttributionHeader(),
	}

	specs, err := listSpecs(config.SpecDir)
	if err != nil {
		return err
	}
	for _, path := range specs {
		logger.Info("processing", "file", path)
		if err := asm.ProcessFile(path); err != nil {
			reporter.Warnf(path, "skipping: %v", err)
		}
	}

	if err := writer.CleanOrphans(config.OutDir); err != nil {
		return err
	}
	logger.Info(fmt.Sprintf("summary: %d / %d files rewritten, %d warnings",
		writer.Rewritten(), writer.Attempted(), reporter.Warnings()))
	return nil
}

// regenerate runs doxygen when the XML predates the headers. The run is
// blocking; its exit status is logged but does not stop generation, the next
// staleness decision relies on timestamps alone.
func regenerate(config *Config, logger *log.Logger, runner doxygen.Runner) {
	if config.SkipDoxygen || config.HeaderDir == "" {
		return
	}
	if !doxygen.Stale(config.HeaderDir, config.XMLDir) {
		logger.Info("introspection output is up to date, not running doxygen")
		return
	}
	logger.Info("running doxygen")
	if err := runner.Run(config.DoxygenDir); err != nil {
		logger.Error("doxygen failed", "err", err)
	}
	if err := doxygen.TouchAll(config.XMLDir); err != nil {
		logger.Warn("could not normalize timestamps", "err", err)
	}
}

// listSpecs returns every non-hidden file in dir, sorted, so runs are
// deterministic.
func listSpecs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list page specs: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// newLogger creates the CLI logger with timestamp formatting.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}
