// potranslator — translates gettext catalogs and inline gettext() strings
// using the OpenAI API.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/potools/potranslator/config"
	"github.com/potools/potranslator/inline"
	"github.com/potools/potranslator/langname"
	"github.com/potools/potranslator/logger"
	"github.com/potools/potranslator/openai"
	"github.com/potools/potranslator/pofile"
	"github.com/potools/potranslator/settings"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const defaultSourceExt = ".ex"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "potranslator",
		Short: "Translate gettext catalogs and inline gettext() strings with AI",
		Long: `potranslator — AI translation for gettext projects.

Commands:
  translate   Fill missing msgstr entries in .po catalogs
  inline      Translate gettext("...") string literals in source files to English
  status      Show untranslated entry counts per language
  auth        Manage the stored OpenAI API key

The API key is resolved from --api-key, then the OPENAI_API_KEY environment
variable (a .env file in the working directory is honored), then the key
stored by 'potranslator auth set'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newTranslateCmd(),
		newInlineCmd(),
		newStatusCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	// Pick up OPENAI_API_KEY from a local .env if present.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("potranslator version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// translate (fill missing msgstr entries in .po catalogs)
// ---------------------------------------------------------------------------

func newTranslateCmd() *cobra.Command {
	var (
		langs   string
		apiKey  string
		model   string
		baseURL string
		dryRun  bool
		force   bool
	)

	cmd := &cobra.Command{
		Use:   "translate <folder>",
		Short: "Translate missing entries in .po catalogs",
		Long: `Translate missing msgstr entries in gettext .po catalogs.

Catalogs are expected under <folder>/<lang>/, one directory per target
language. Each untranslated entry is sent to the API individually; plural
records get the same translation in both msgstr slots.

Examples:
  potranslator translate priv/gettext --lang de,fr
  potranslator translate priv/gettext --lang de --dry-run
  potranslator translate priv/gettext --lang de --force`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := args[0]

			cfg, err := config.Load(folder)
			if err != nil {
				return err
			}
			applyConfig(cfg, cmd, &langs, &model, &baseURL, nil)

			targets, err := splitLangs(langs)
			if err != nil {
				return err
			}

			client, err := newClient(apiKey, model, baseURL)
			if err != nil {
				return err
			}

			ctx, cancel := interruptContext()
			defer cancel()

			return runTranslate(ctx, folder, targets, client, dryRun, force)
		},
	}

	cmd.Flags().StringVar(&langs, "lang", "", "Target languages (comma-separated ISO codes, required)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "OpenAI API key (or OPENAI_API_KEY env var)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (default: "+openai.DefaultModel+")")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL (for OpenAI-compatible endpoints)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without calling the API or writing files")
	cmd.Flags().BoolVar(&force, "force", false, "Re-translate entries that already have a translation")

	return cmd
}

func runTranslate(ctx context.Context, folder string, targets []string, client *openai.Client, dryRun, force bool) error {
	for _, lang := range targets {
		langDir := filepath.Join(folder, lang)
		if !dirExists(langDir) {
			logger.Warn("no catalog directory for %s (%s), skipping", lang, langDir)
			continue
		}

		files, err := collectFiles(langDir, ".po")
		if err != nil {
			return err
		}
		if len(files) == 0 {
			logger.Warn("no .po files under %s", langDir)
			continue
		}

		for _, path := range files {
			if err := translateFile(ctx, path, lang, client, dryRun, force); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
	}
	return nil
}

func translateFile(ctx context.Context, path, lang string, client *openai.Client, dryRun, force bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	content := string(data)

	// Dry-run still computes every translation so the per-entry preview
	// matches what a real run would write; only the rewrite is skipped.
	updated, count, err := pofile.TranslateCatalog(ctx, content, lang, client, pofile.Options{
		Force: force,
		OnChange: func(msgid, translated string) {
			logger.Change(msgid, translated, lang, dryRun)
		},
	})
	if err != nil {
		return err
	}

	if count == 0 {
		logger.NoChanges(lang, path)
		return nil
	}

	if dryRun {
		logger.FileSuccess(lang, count, path, true)
		return nil
	}

	if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
		return err
	}
	logger.FileSuccess(lang, count, path, false)
	return nil
}

// ---------------------------------------------------------------------------
// inline (translate gettext("...") literals in source files to English)
// ---------------------------------------------------------------------------

func newInlineCmd() *cobra.Command {
	var (
		apiKey  string
		model   string
		baseURL string
		ext     string
		dryRun  bool
	)

	cmd := &cobra.Command{
		Use:   "inline <folder>",
		Short: `Translate gettext("...") literals in source files to English`,
		Long: `Translate the quoted first argument of every gettext() call found in
source files to English, rewriting the files in place.

Only the matched string literal is replaced; trailing call arguments and
the rest of the line stay untouched.

Examples:
  potranslator inline lib
  potranslator inline lib --ext .exs --dry-run`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := args[0]

			cfg, err := config.Load(folder)
			if err != nil {
				return err
			}
			applyConfig(cfg, cmd, nil, &model, &baseURL, &ext)

			client, err := newClient(apiKey, model, baseURL)
			if err != nil {
				return err
			}

			ctx, cancel := interruptContext()
			defer cancel()

			return runInline(ctx, folder, ext, client, dryRun)
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "OpenAI API key (or OPENAI_API_KEY env var)")
	cmd.Flags().StringVar(&model, "model", "", "Model name (default: "+openai.DefaultModel+")")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "API base URL (for OpenAI-compatible endpoints)")
	cmd.Flags().StringVar(&ext, "ext", defaultSourceExt, "Source file extension to scan")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing files")

	return cmd
}

func runInline(ctx context.Context, folder, ext string, client *openai.Client, dryRun bool) error {
	files, err := collectFiles(folder, ext)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warn("no %s files under %s", ext, folder)
		return nil
	}

	const lang = "en"
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		content := string(data)

		count := 0
		updated, changed, err := inline.TranslateContent(ctx, content, client,
			func(original, translated string) {
				count++
				logger.Change(original, translated, lang, dryRun)
			})
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		if !changed {
			logger.NoChanges(lang, path)
			continue
		}

		logger.Diff(path, content, updated)

		if dryRun {
			logger.FileSuccess(lang, count, path, true)
			continue
		}

		if err := os.WriteFile(path, []byte(updated), 0644); err != nil {
			return err
		}
		logger.FileSuccess(lang, count, path, false)
	}
	return nil
}

// ---------------------------------------------------------------------------
// status (read-only untranslated counts)
// ---------------------------------------------------------------------------

func newStatusCmd() *cobra.Command {
	var langs string

	cmd := &cobra.Command{
		Use:   "status <folder>",
		Short: "Show untranslated entry counts per language",
		Long: `Show how many catalog entries are still untranslated, per language.
Does not modify any files and needs no API key.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := args[0]

			cfg, err := config.Load(folder)
			if err != nil {
				return err
			}
			applyConfig(cfg, cmd, &langs, nil, nil, nil)

			targets, err := splitLangs(langs)
			if err != nil {
				return err
			}

			return runStatus(folder, targets)
		},
	}

	cmd.Flags().StringVar(&langs, "lang", "", "Target languages (comma-separated ISO codes, required)")

	return cmd
}

func runStatus(folder string, targets []string) error {
	fmt.Fprintf(os.Stderr, "\n%-8s %-16s %10s %10s\n", "Lang", "Language", "Missing", "Total")
	fmt.Fprintln(os.Stderr, strings.Repeat("─", 48))

	for _, lang := range targets {
		langDir := filepath.Join(folder, lang)
		if !dirExists(langDir) {
			fmt.Fprintf(os.Stderr, "%-8s %-16s %10s %10s\n", lang, langname.FromCode(lang), "-", "-")
			continue
		}

		files, err := collectFiles(langDir, ".po")
		if err != nil {
			return err
		}

		missing, total := 0, 0
		for _, path := range files {
			data, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			m, n, err := pofile.ScanMissing(string(data))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			missing += m
			total += n
		}
		fmt.Fprintf(os.Stderr, "%-8s %-16s %10d %10d\n", lang, langname.FromCode(lang), missing, total)
	}

	fmt.Fprintln(os.Stderr)
	return nil
}

// ---------------------------------------------------------------------------
// auth (stored API key management)
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored OpenAI API key",
		Long: `Manage the OpenAI API key stored in ` + settings.FilePath() + `.

Examples:
  potranslator auth set       Prompt for and store an API key
  potranslator auth status    Show whether a key is stored (masked)
  potranslator auth remove    Delete the stored key`,
	}

	cmd.AddCommand(
		newAuthSetCmd(),
		newAuthStatusCmd(),
		newAuthRemoveCmd(),
	)

	return cmd
}

func newAuthSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set",
		Short: "Store an OpenAI API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprint(os.Stderr, "Enter OpenAI API key: ")
			scanner := bufio.NewScanner(os.Stdin)
			if !scanner.Scan() {
				return fmt.Errorf("no input received")
			}
			key := strings.TrimSpace(scanner.Text())
			if key == "" {
				return fmt.Errorf("empty API key")
			}
			if err := settings.SetAPIKey(key); err != nil {
				return err
			}
			logger.Info("API key stored in %s", settings.FilePath())
			return nil
		},
	}
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether an API key is stored",
		Run: func(cmd *cobra.Command, args []string) {
			key := settings.APIKey()
			if key == "" {
				logger.Info("no API key stored (%s)", settings.FilePath())
				return
			}
			logger.Info("API key %s stored in %s", settings.MaskKey(key), settings.FilePath())
		},
	}
}

func newAuthRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove",
		Short: "Delete the stored API key",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := settings.Remove(); err != nil {
				return err
			}
			logger.Info("stored API key removed")
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// newClient builds the API client from flag values, falling back to the
// environment and the credential store for the key.
func newClient(flagKey, model, baseURL string) (*openai.Client, error) {
	var opts []openai.Option
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	if baseURL != "" {
		opts = append(opts, openai.WithBaseURL(baseURL))
	}
	return openai.New(settings.ResolveAPIKey(flagKey), opts...)
}

// applyConfig fills unset flags from the .potranslator.yaml file, if one
// exists in the scan root. Explicit flags always win.
func applyConfig(cfg *config.File, cmd *cobra.Command, langs, model, baseURL, ext *string) {
	if cfg == nil {
		return
	}
	if langs != nil && *langs == "" && !cmd.Flags().Changed("lang") {
		*langs = cfg.LangList()
	}
	if model != nil && *model == "" && cfg.Model != "" {
		*model = cfg.Model
	}
	if baseURL != nil && *baseURL == "" && cfg.BaseURL != "" {
		*baseURL = cfg.BaseURL
	}
	if ext != nil && cfg.SourceExt != "" && !cmd.Flags().Changed("ext") {
		*ext = cfg.SourceExt
	}
}

func splitLangs(langs string) ([]string, error) {
	var out []string
	for _, l := range strings.Split(langs, ",") {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		if !langname.Known(l) {
			logger.Warn("unknown language code %q, translations will target %s", l, langname.Fallback)
		}
		out = append(out, l)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no target languages: pass --lang (e.g. --lang de,fr)")
	}
	return out, nil
}

// collectFiles walks root and returns all files with the given extension,
// sorted, skipping hidden directories.
func collectFiles(root, ext string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ext {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// interruptContext returns a context canceled on the first SIGINT.
func interruptContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logger.Warn("interrupted, stopping after the current request")
		cancel()
	}()

	return ctx, cancel
}
