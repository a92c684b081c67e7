// doclocal — translation-augmented documentation builder.
//
// doclocal walks a book's Markdown content, extracts translatable
// fragments, batch-translates them through a remote service, caches the
// results in a JSON file next to the book, and renders fully localized
// output per target language. Manually curated per-language override
// blocks in the content always win over machine translation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/doclocal/doclocal/build"
	"github.com/doclocal/doclocal/config"
	"github.com/doclocal/doclocal/deepl"
	"github.com/doclocal/doclocal/i18n"
	"github.com/doclocal/doclocal/langcodes"
	"github.com/doclocal/doclocal/markdown"
	"github.com/doclocal/doclocal/settings"
	"github.com/doclocal/doclocal/store"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// authKeyEnv is the environment variable holding the service credential.
const authKeyEnv = "DOCLOCAL_AUTH_KEY"

// ANSI colors
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[0;31m"
	colorGreen  = "\033[0;32m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorBlue+"[INFO]"+colorReset+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorGreen+"[OK]"+colorReset+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorYellow+"[WARN]"+colorReset+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, colorRed+"[ERROR]"+colorReset+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Global flags
// ---------------------------------------------------------------------------

var (
	rootDir  string
	authKey  string
	onlyLang string
)

// resolveAuthKey applies the documented lookup order:
// flag > environment > settings store.
func resolveAuthKey() string {
	if authKey != "" {
		return authKey
	}
	if key := os.Getenv(authKeyEnv); key != "" {
		return key
	}
	return settings.AuthKey()
}

// loadConfig reads .doclocal.yaml from the book root, falling back to the
// built-in defaults when the file is absent.
func loadConfig() (*config.File, error) {
	cfg, err := config.Load(rootDir)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg = config.Default()
	}
	if onlyLang != "" {
		if !langcodes.Supported(onlyLang) {
			return nil, fmt.Errorf("unsupported language %q", onlyLang)
		}
		cfg.Languages = []string{onlyLang}
	}
	return cfg, nil
}

// newBuilder wires the pipeline from the resolved configuration.
func newBuilder(cfg *config.File) *build.Builder {
	st := store.New(filepath.Join(rootDir, cfg.CacheFile))
	return &build.Builder{
		Config:  cfg,
		RootDir: rootDir,
		Store:   st,
		Fetcher: &deepl.Client{
			AuthKey: resolveAuthKey(),
			OnLog:   logInfo,
			OnWarn:  logWarning,
		},
		Codec: markdown.Codec{},
		OnLog: logInfo,
	}
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "doclocal",
		Short: "Localized documentation builder with cached machine translation",
		Long: `doclocal — localized documentation builder.

Walks the book's Markdown content per target language, substitutes cached
translations, batch-fetches what is missing from the translation service,
and renders per-language output. Without a credential it builds offline
from the cache alone, falling back to the source text for anything
untranslated.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
	}

	root.PersistentFlags().StringVarP(&rootDir, "root", "r", ".", "book root directory")
	root.PersistentFlags().StringVar(&authKey, "auth-key", "", "translation service API key")

	root.AddCommand(newBuildCmd())
	root.AddCommand(newWatchCmd())
	root.AddCommand(newLanguagesCmd())
	root.AddCommand(newCacheCmd())
	root.AddCommand(newAuthCmd())
	return root
}

// ---------------------------------------------------------------------------
// build / watch
// ---------------------------------------------------------------------------

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: i18n.T("Build localized output for every configured language"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := newBuilder(cfg).Run(cmd.Context()); err != nil {
				return err
			}
			logSuccess("build complete")
			return nil
		},
	}
	cmd.Flags().StringVarP(&onlyLang, "lang", "l", "", "build a single target language")
	return cmd
}

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: i18n.T("Rebuild automatically when content changes"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			b := newBuilder(cfg)
			if err := b.Run(cmd.Context()); err != nil {
				logError("initial build failed: %v", err)
			}
			err = b.Watch(cmd.Context())
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&onlyLang, "lang", "l", "", "watch and build a single target language")
	return cmd
}

// ---------------------------------------------------------------------------
// languages
// ---------------------------------------------------------------------------

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: i18n.T("List supported languages"),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, id := range langcodes.Identifiers() {
				m := langcodes.Registry[id]
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %s (%s)\n", id, m.Name, m.Code)
			}
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// cache
// ---------------------------------------------------------------------------

func newCacheCmd() *cobra.Command {
	cache := &cobra.Command{
		Use:   "cache",
		Short: i18n.T("Inspect or clear the translation cache"),
	}

	cache.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show per-language entry counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			st := store.New(filepath.Join(rootDir, cfg.CacheFile))
			if err := st.Load(); err != nil {
				return err
			}
			stats := st.Stats()
			if len(stats) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("cache is empty"))
				return nil
			}
			for _, s := range stats {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %d\n", s.Language, s.Entries)
			}
			return nil
		},
	})

	cache.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Delete the cache file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			path := filepath.Join(rootDir, cfg.CacheFile)
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing cache: %w", err)
			}
			logSuccess("removed %s", path)
			return nil
		},
	})

	return cache
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	auth := &cobra.Command{
		Use:   "auth",
		Short: i18n.T("Manage the translation service credential"),
	}

	auth.AddCommand(&cobra.Command{
		Use:   "set <auth-key>",
		Short: "Store the API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := settings.SetAuthKey(args[0]); err != nil {
				return err
			}
			logSuccess("stored credential in %s", settings.FilePath())
			return nil
		},
	})

	auth.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the stored credential (masked)",
		RunE: func(cmd *cobra.Command, args []string) error {
			key := settings.AuthKey()
			if key == "" {
				fmt.Fprintln(cmd.OutOrStdout(), i18n.T("no credential stored"))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", settings.MaskKey(key), settings.FilePath())
			return nil
		},
	})

	auth.AddCommand(&cobra.Command{
		Use:   "remove",
		Short: "Delete the stored credential",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := settings.Remove(); err != nil {
				return err
			}
			logSuccess("credential removed")
			return nil
		},
	})

	return auth
}

func main() {
	// A .env next to the invocation directory may carry DOCLOCAL_AUTH_KEY.
	_ = godotenv.Load()
	i18n.Init("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}
