package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cognicore/senrich/pkg/senrich/config"
	"github.com/cognicore/senrich/pkg/senrich/enrich"
	"github.com/cognicore/senrich/pkg/senrich/ingest"
	"github.com/cognicore/senrich/pkg/senrich/internalerr"
	"github.com/cognicore/senrich/pkg/senrich/lang"
	"github.com/cognicore/senrich/pkg/senrich/ledger"
	"github.com/cognicore/senrich/pkg/senrich/ledger/sqlite"
	"github.com/cognicore/senrich/pkg/senrich/pipeline"
)

// cliFlags holds raw flag values; only flags the user set override the
// config file.
type cliFlags struct {
	configPath    string
	log           bool
	ignoreCase    bool
	language      string
	tool          string
	input         string
	output        string
	logDir        string
	ledgerPath    string
	javaBin       string
	javaHeap      string
	progressWidth int
	unicodeNFC    bool
	stripMarkup   bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	var f cliFlags
	cmd := &cobra.Command{
		Use:   "senrich",
		Short: "Semantic enrichment of text collections: NER ('word') and WSD ('id') procedures",
		Long: `Normalizes every file of a two-level input collection in place, writes one
tokenized sentence per line under <output>/raw_texts/, then runs the
disambiguation tool on each token file to produce <output>/recognized_words/
and <output>/disambiguated_ids/.

Settings can be loaded from a YAML file using --config. Command-line flags
override config file values.`,
		Example:       "  senrich --language EN --s_enrich_bfy tools/S-Enrich_Bfy.jar --input in/db/ --output in/db/enriched/",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := buildConfig(cmd.Flags(), &f, os.LookupEnv, stderr)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", internalerr.ErrInvalidConfig, err)
	})

	f.register(cmd.Flags())
	return cmd
}

// register defines the command-line flags on fs.
func (f *cliFlags) register(fs *pflag.FlagSet) {
	fs.SetNormalizeFunc(underscoreAliases)
	fs.StringVarP(&f.configPath, "config", "c", "", "Path to a YAML config file (values can be overridden by other flags)")
	yesNoVarP(fs, &f.log, "log", "", "Display log during the process: y, [N]")
	yesNoVarP(fs, &f.ignoreCase, "ignore-case", "", "Ignore case: y, [N]")
	fs.StringVar(&f.language, "language", "", "Language of the texts: EN, ES, FR, DE, IT, PT (default EN)")
	fs.StringVarP(&f.tool, "s-enrich-bfy", "g", "", `File path to the "S-Enrich_Bfy.jar" tool`)
	fs.StringVarP(&f.input, "input", "i", "", "Input directory of the dataset")
	fs.StringVarP(&f.output, "output", "o", "", `Output directory for disambiguated texts ("words" and "ids")`)
	fs.StringVar(&f.logDir, "log-dir", "", "Directory for the run log file (default: working directory)")
	fs.StringVar(&f.ledgerPath, "ledger", "", "SQLite file recording runs and artifacts (disabled when empty)")
	fs.StringVar(&f.javaBin, "java", "", "Java launcher used for .jar tools (env "+config.EnvJavaBin+")")
	fs.StringVar(&f.javaHeap, "java-heap", "", "Maximum JVM heap, e.g. 5g (env "+config.EnvJavaHeap+")")
	fs.IntVar(&f.progressWidth, "progress-width", 0, "Progress bar width in columns")
	yesNoVarP(fs, &f.unicodeNFC, "unicode-nfc", "", "Apply Unicode NFC normalization to every line: y, [N]")
	yesNoVarP(fs, &f.stripMarkup, "strip-markup", "", "Strip HTML markup from input lines: y, [N]")
}

// buildConfig layers defaults, the config file, the environment and the
// flags that were set, then validates the result. An unsupported language
// is reported on warn before it falls back to English.
func buildConfig(fs *pflag.FlagSet, f *cliFlags, lookup func(string) (string, bool), warn io.Writer) (*config.Config, error) {
	cfg := config.Default()
	if f.configPath != "" {
		loaded, err := config.Load(f.configPath)
		if err != nil {
			if errors.Is(err, internalerr.ErrInvalidConfig) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: load config: %w", internalerr.ErrInvalidConfig, err)
		}
		cfg = *loaded
	}
	cfg.ApplyEnv(lookup)

	if fs.Changed("log") {
		cfg.Log = f.log
	}
	if fs.Changed("ignore-case") {
		cfg.IgnoreCase = f.ignoreCase
	}
	if fs.Changed("language") {
		cfg.Language = f.language
	}
	if fs.Changed("s-enrich-bfy") {
		cfg.ExternalToolPath = f.tool
	}
	if fs.Changed("input") {
		cfg.InputDir = f.input
	}
	if fs.Changed("output") {
		cfg.OutputDir = f.output
	}
	if fs.Changed("log-dir") {
		cfg.LogDir = f.logDir
	}
	if fs.Changed("ledger") {
		cfg.LedgerPath = f.ledgerPath
	}
	if fs.Changed("java") {
		cfg.JavaBin = f.javaBin
	}
	if fs.Changed("java-heap") {
		cfg.JavaHeap = f.javaHeap
	}
	if fs.Changed("progress-width") {
		cfg.ProgressWidth = f.progressWidth
	}
	if fs.Changed("unicode-nfc") {
		cfg.UnicodeNFC = f.unicodeNFC
	}
	if fs.Changed("strip-markup") {
		cfg.StripMarkup = f.stripMarkup
	}

	if cfg.Language != "" && !lang.Known(cfg.Language) {
		fmt.Fprintf(warn, "Warning: unsupported language %q, using %s (%s)\n",
			cfg.Language, lang.English, lang.English.Name())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func run(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	logger := newLogger(cfg.Log, stderr)
	defer func() { _ = logger.Sync() }()
	defer zap.ReplaceGlobals(logger)()

	opts := []enrich.Option{enrich.WithJava(cfg.JavaBin, cfg.JavaHeap), enrich.WithLogger(logger)}
	if cfg.Log {
		opts = append(opts, enrich.WithStderr(stderr))
	}
	tool, err := enrich.NewProcess(cfg.ExternalToolPath, opts...)
	if err != nil {
		return fmt.Errorf("%w: %w", internalerr.ErrInvalidConfig, err)
	}

	var rec ledger.Recorder = ledger.Nop{}
	if cfg.LedgerPath != "" {
		rec, err = sqlite.OpenSQLite(ctx, cfg.LedgerPath)
		if err != nil {
			return err
		}
		defer rec.Close()
	}

	c, err := pipeline.New(pipeline.Options{
		Input:         cfg.InputDir,
		Output:        cfg.OutputDir,
		Language:      cfg.Lang(),
		IgnoreCase:    cfg.IgnoreCase,
		Tool:          tool,
		Normalizer:    ingest.Normalizer{NFC: cfg.UnicodeNFC, StripMarkup: cfg.StripMarkup},
		Console:       stdout,
		ProgressWidth: cfg.ProgressWidth,
		LogDir:        cfg.LogDir,
		Ledger:        rec,
		Logger:        logger,
	})
	if err != nil {
		return err
	}

	logger.Info("senrich: configuration loaded",
		zap.String("tool", tool.Tool()),
		zap.String("language", cfg.Language),
		zap.String("language_name", cfg.Lang().Name()),
		zap.String("wiki", cfg.Lang().WikiCode()),
		zap.Bool("ledger", cfg.LedgerPath != ""))

	if _, err := c.Run(ctx); err != nil {
		if path := c.LogPath(); path != "" {
			fmt.Fprintf(stderr, "Run log: %s\n", path)
		}
		if id := c.RunID(); id != "" && cfg.LedgerPath != "" {
			fmt.Fprintf(stderr, "Run id: %s (ledger %s)\n", id, cfg.LedgerPath)
		}
		return err
	}
	return nil
}

// newLogger returns a console logger on w when enabled, a no-op otherwise.
func newLogger(enabled bool, w io.Writer) *zap.Logger {
	if !enabled {
		return zap.NewNop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(w),
		zap.InfoLevel,
	)
	return zap.New(core)
}
