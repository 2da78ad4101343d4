package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/leadsend/replytag/internal/classifier"
	"github.com/leadsend/replytag/internal/config"
	"github.com/leadsend/replytag/internal/corpus"
	"github.com/leadsend/replytag/internal/label"
	"github.com/leadsend/replytag/internal/logging"
	"github.com/leadsend/replytag/internal/reply"
	"github.com/leadsend/replytag/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile    string
	corpusFile string
	logLevel   string
)

func resolveConfigPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "replytag",
		Short: "replytag - label inbound replies to outbound email",
		Long: `replytag assigns an intent label (interested, out_of_office, unsubscribed, ...)
and a confidence score to replies received during outbound email campaigns.

Classification runs a rule table first, then a naive Bayes model and a
nearest-example search trained on a small labelled corpus.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.replytag/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&corpusFile, "corpus", "", "training corpus, YAML or SQLite (default is the built-in corpus)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(labelsCmd())
	rootCmd.AddCommand(evalCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func classifyCmd() *cobra.Command {
	var (
		file    string
		eml     string
		explain bool
		asJSON  bool
	)

	cmd := &cobra.Command{
		Use:   "classify [text...]",
		Short: "Classify a reply",
		Long: `Classify reply text given as arguments, read from --file, parsed out of a
raw message with --eml, or read from stdin when nothing else is given.

With --eml the quoted thread below the reply is removed before classifying.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd.InOrStdin(), args, file, eml)
			if err != nil {
				return err
			}
			return runClassify(cmd.OutOrStdout(), text, explain, asJSON)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "read the reply text from a file")
	cmd.Flags().StringVar(&eml, "eml", "", "read the reply from an RFC 5322 message file")
	cmd.Flags().BoolVar(&explain, "explain", false, "show which stage decided and why")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.MarkFlagsMutuallyExclusive("file", "eml")

	return cmd
}

func serveCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP classification API",
		Long: `Start a JSON API exposing the classifier:

  POST /api/classify        {"text": "..."}
  POST /api/classify/batch  {"texts": ["...", "..."]}
  GET  /api/labels
  GET  /healthz`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(port)
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "port to listen on (default from config, 8080)")

	return cmd
}

func labelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List the labels and their interest types",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLabels(cmd.OutOrStdout())
		},
	}
}

func evalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "eval",
		Short: "Classify every corpus example and report agreement per label",
		Long: `Run the full pipeline over each training example and compare the result
with the example's own label. Useful after editing the corpus or the thresholds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd.OutOrStdout())
		},
	}
}

// app is what every command needs once flags and config are resolved
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	corpus     corpus.Corpus
	classifier *classifier.Classifier
}

func setup() (*app, error) {
	cfg, err := config.LoadOrDefault(resolveConfigPath())
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if corpusFile != "" {
		cfg.Corpus.Path, cfg.Corpus.SQLitePath = "", ""
		if isSQLitePath(corpusFile) {
			cfg.Corpus.SQLitePath = corpusFile
		} else {
			cfg.Corpus.Path = corpusFile
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}

	corp, err := loadCorpus(context.Background(), cfg.Corpus)
	if err != nil {
		return nil, err
	}

	c, err := classifier.New(
		classifier.WithCorpus(corp),
		classifier.WithThresholds(cfg.Thresholds),
		classifier.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build classifier: %w", err)
	}
	return &app{cfg: cfg, logger: logger, corpus: corp, classifier: c}, nil
}

func loadCorpus(ctx context.Context, cc config.CorpusConfig) (corpus.Corpus, error) {
	switch {
	case cc.Path != "":
		c, err := corpus.LoadFile(cc.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to load corpus: %w", err)
		}
		return c, nil
	case cc.SQLitePath != "":
		c, err := corpus.LoadSQLite(ctx, cc.SQLitePath, cc.Query)
		if err != nil {
			return nil, fmt.Errorf("failed to load corpus: %w", err)
		}
		return c, nil
	default:
		return corpus.Default(), nil
	}
}

func isSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

func readInput(stdin io.Reader, args []string, file, eml string) (string, error) {
	switch {
	case eml != "":
		f, err := os.Open(eml)
		if err != nil {
			return "", fmt.Errorf("failed to open message: %w", err)
		}
		defer f.Close()
		msg, err := reply.ParseMessage(f)
		if err != nil {
			return "", err
		}
		return msg.ReplyText(), nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), nil
	case len(args) > 0:
		return strings.Join(args, " "), nil
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
}

func runClassify(w io.Writer, text string, explain, asJSON bool) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	d := a.classifier.Explain(text)
	switch {
	case asJSON && explain:
		return printJSON(w, d)
	case asJSON:
		return printJSON(w, d.Result)
	case explain:
		fmt.Fprintln(w, d.String())
	default:
		fmt.Fprintf(w, "%s (%s, %.2f)\n", d.Label, d.InterestType, d.Confidence)
	}
	return nil
}

func runServe(port int) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	if port == 0 {
		port = a.cfg.Server.Port
	}

	srv := server.NewServer(a.classifier, server.Options{
		Port:       port,
		RateLimit:  a.cfg.Server.RateLimit,
		RateWindow: time.Duration(a.cfg.Server.RateWindowSec) * time.Second,
		MaxBatch:   a.cfg.Server.MaxBatch,
		TrustProxy: a.cfg.Server.TrustProxy,
	}, a.logger)

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Starting replytag API at http://localhost:%d\n", port)
	fmt.Println("Press Ctrl+C to stop")

	return srv.Run(ctx)
}

func runLabels(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LABEL\tINTEREST")
	for _, l := range label.All() {
		fmt.Fprintf(tw, "%s\t%s\n", l, label.Interest(l))
	}
	return tw.Flush()
}

func runEval(w io.Writer) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.logger.Sync()

	return evaluate(a.classifier, a.corpus).Print(w)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
