package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	managed "github.com/goliatone/go-managed"
	"github.com/goliatone/go-managed/pkg/schema"
	"github.com/goliatone/go-managed/pkg/store"
	"github.com/goliatone/go-managed/pkg/typedesc"
)

const envPrefix = "MANAGED"

// Configuration keys shared by flags, environment and config files.
const (
	keyTypes       = "types"
	keyOpenAPI     = "openapi"
	keyLogLevel    = "log-level"
	keyConcurrency = "concurrency"
	keyFormat      = "format"
	keySanitize    = "sanitize-html"
)

// app carries the per-invocation configuration and the lazily built store.
type app struct {
	v      *viper.Viper
	logger *slog.Logger
	store  *store.Store
	source *typedesc.Registry
}

func newRootCommand() *cobra.Command {
	a := &app{v: viper.New()}
	var configFile string

	root := &cobra.Command{
		Use:           "managed-cli",
		Short:         "Inspect, validate and populate managed model types",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd, configFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	flags.String(keyTypes, "", "directory or file of type declarations (bundled examples when empty)")
	flags.String(keyOpenAPI, "", "OpenAPI document whose component schemas declare the types")
	flags.String(keyLogLevel, "warn", "log level: debug, info, warn or error")
	flags.Int(keyConcurrency, 0, "maximum concurrent extractions (0 uses GOMAXPROCS)")
	_ = a.v.BindPFlags(flags)

	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(
		newDescribeCommand(a),
		newValidateCommand(a),
		newFillCommand(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command, configFile string) error {
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	if configFile != "" {
		a.v.SetConfigFile(configFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("managed-cli: read config: %w", err)
		}
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(a.v.GetString(keyLogLevel))); err != nil {
		return fmt.Errorf("managed-cli: %w", err)
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// open loads the configured type source and builds the store on first use.
func (a *app) open(ctx context.Context) (*store.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	source, err := a.loadSource(ctx)
	if err != nil {
		return nil, err
	}
	a.source = source
	a.store = managed.NewStore(
		store.WithTypeSource(source),
		store.WithLogger(a.logger),
		store.WithConcurrency(a.v.GetInt(keyConcurrency)),
	)
	a.logger.Debug("type source loaded", "types", len(source.Names()))
	return a.store, nil
}

func (a *app) loadSource(ctx context.Context) (*typedesc.Registry, error) {
	if path := a.v.GetString(keyOpenAPI); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("managed-cli: read openapi document: %w", err)
		}
		return managed.LoadOpenAPI(ctx, raw)
	}

	path := a.v.GetString(keyTypes)
	if path == "" {
		return managed.LoadDeclarations(managed.DeclarationsFS())
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("managed-cli: %w", err)
	}
	if info.IsDir() {
		return managed.LoadDeclarations(os.DirFS(path))
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("managed-cli: read declarations: %w", err)
	}
	return typedesc.Parse(raw, filepath.Base(path))
}

func (a *app) schema(ctx context.Context, name string) (*schema.StructSchema, error) {
	s, err := a.open(ctx)
	if err != nil {
		return nil, err
	}
	return s.Schema(ctx, name)
}

func writeLine(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
