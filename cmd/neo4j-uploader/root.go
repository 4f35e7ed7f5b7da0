package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	neoupload "github.com/Sojamann/neo4j-uploader"
)

var (
	flagHost         string
	flagPort         int
	flagUser         string
	flagPassword     string
	flagDatabase     string
	flagFile         string
	flagNoPriorClear bool
	flagNonEncrypted bool
	flagVerbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "neo4j-uploader",
	Short: "Upload a JSON graph description into a Neo4j database",
	Long: `Upload a JSON graph description into a Neo4j database.

The document maps node ids to labeled nodes and edge keys of the form
"a->b" or "a<-b" to labeled relationships between them:

  {
    "nodes": {
      "n1": {"label": "Person"},
      "n2": {"label": "Person", "properties": {"name": "A"}}
    },
    "edges": {
      "n1->n2": {"label": "KNOWS"}
    }
  }

By default the target database is cleared before uploading; pass
--no-prior-clear to keep its current contents. Connection settings may
also come from the environment (NEO4J_HOST, NEO4J_PORT, NEO4J_USER,
NEO4J_PASSWORD, NEO4J_DATABASE), including a .env file in the working
directory.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	// A missing .env file is fine; flags and the process environment
	// still apply.
	_ = godotenv.Load()

	f := rootCmd.Flags()
	f.StringVar(&flagHost, "host", envOr("NEO4J_HOST", ""), "Neo4j host to connect to (required)")
	f.IntVarP(&flagPort, "port", "p", envOrInt("NEO4J_PORT", 7687), "bolt port of the Neo4j host")
	f.StringVarP(&flagUser, "user", "u", envOr("NEO4J_USER", ""), "username to authenticate with (required)")
	f.StringVar(&flagPassword, "password", envOr("NEO4J_PASSWORD", ""), "password to authenticate with (required, --pw also accepted)")
	f.StringVarP(&flagDatabase, "database", "d", envOr("NEO4J_DATABASE", "neo4j"), "database to upload into")
	f.StringVarP(&flagFile, "file", "f", "", "graph document to upload (required)")
	f.BoolVar(&flagNoPriorClear, "no-prior-clear", false, "do not clear the database before uploading")
	f.BoolVar(&flagNonEncrypted, "non-encrypted", false, "disable transport encryption on the connection")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "log every statement that is executed")
	f.SetNormalizeFunc(normalizeFlags)
}

// normalizeFlags lets --pw act as an alias for --password. pflag has no
// multi-letter shorthands, so the alias is spelled with two dashes.
func normalizeFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	if name == "pw" {
		name = "password"
	}
	return pflag.NormalizedName(name)
}

// validateRequired checks the flags that have no usable default. They
// count as set when either the flag or its environment variable
// supplied a value.
func validateRequired() error {
	var missing []string
	for _, req := range []struct{ name, value string }{
		{"host", flagHost},
		{"user", flagUser},
		{"password", flagPassword},
		{"file", flagFile},
	} {
		if req.value == "" {
			missing = append(missing, "--"+req.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("required flag(s) not set: %s", strings.Join(missing, ", "))
	}
	return nil
}

func run(cmd *cobra.Command, _ []string) error {
	if err := validateRequired(); err != nil {
		return err
	}

	logger, err := newLogger(flagVerbose)
	if err != nil {
		return fmt.Errorf("could not set up logging: %w", err)
	}
	defer logger.Sync()

	g, err := neoupload.ParseFile(flagFile)
	if err != nil {
		return err
	}
	logger.Info("graph parsed",
		zap.String("file", flagFile),
		zap.Int("nodes", g.NodeCount()),
		zap.Int("edges", g.EdgeCount()),
	)

	uri := neoupload.URI(flagHost, flagPort, !flagNonEncrypted)
	executor, err := neoupload.NewNeo4jExecutor(uri, flagUser, flagPassword, flagDatabase)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	defer executor.Close(ctx)

	logger.Info("connecting", zap.String("uri", uri), zap.String("database", flagDatabase))
	if err := executor.Connect(ctx); err != nil {
		return err
	}

	manager := neoupload.NewUploadManager(executor, logger)
	if err := manager.Upload(ctx, g, !flagNoPriorClear); err != nil {
		return err
	}

	nodes, edges, err := manager.Stats(ctx)
	if err != nil {
		return err
	}
	logger.Info("database totals", zap.Int64("nodes", nodes), zap.Int64("edges", edges))
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	return cfg.Build()
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
