package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shoalcove/scalegen/internal/catalog"
	"github.com/shoalcove/scalegen/internal/generate"
	"github.com/shoalcove/scalegen/internal/model"
)

// GenerateOptions holds flags for the generate command.
type GenerateOptions struct {
	*RootOptions
	Algorithm       string
	Database        string
	Selections      []string // dimension=mode1,mode2 pairs
	MaxCombinations int

	// IDGen allows overriding the token id generator (for testing).
	// If nil, defaults to UUIDv7.
	IDGen generate.IDGenerator
}

// GenerateReport is the JSON shape of one generation run.
type GenerateReport struct {
	Algorithm string                 `json:"algorithm"`
	Tokens    []model.GeneratedToken `json:"tokens"`
	Errors    []string               `json:"errors,omitempty"`
	Persisted bool                   `json:"persisted"`
}

// NewGenerateCommand creates the generate command.
func NewGenerateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GenerateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "generate <definitions-dir>",
		Short: "Expand an algorithm into a batch of tokens",
		Long: `Expand an algorithm across its iteration range and mode combinations,
producing a batch of concrete tokens.

With --db, the catalog database supplies dimensions, taxonomies, and the
existing-token collision set, and successful output is persisted back.
Without it, catalogs come from the definitions directory only.

Example:
  scalegen generate ./defs --algorithm spacing
  scalegen generate ./defs --algorithm spacing --db ./tokens.db --select viewport=mobile,desktop`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Algorithm, "algorithm", "", "algorithm name or id (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite catalog database")
	cmd.Flags().StringArrayVar(&opts.Selections, "select", nil, "restrict candidate modes as dimension=mode1,mode2 (repeatable)")
	cmd.Flags().IntVar(&opts.MaxCombinations, "max-combinations", 0, "ceiling on the mode combination product (0 = default)")
	_ = cmd.MarkFlagRequired("algorithm")

	return cmd
}

func runGenerate(opts *GenerateOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	loadResult, loadErrors := LoadDefinitions(dir, LoadModeFailFast)
	if len(loadErrors) > 0 {
		_ = formatter.Error(ErrCodeLoadFailed, loadErrors[0].Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load definitions", loadErrors[0])
	}

	alg, ok := loadResult.AlgorithmByName(opts.Algorithm)
	if !ok {
		msg := fmt.Sprintf("algorithm %q not found", opts.Algorithm)
		_ = formatter.Error(ErrCodeNotFound, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	selection, err := parseSelectFlags(opts.Selections)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid --select flag", err)
	}

	req := generate.Request{
		Algorithm:       alg,
		Dimensions:      loadResult.Dimensions,
		Taxonomies:      loadResult.Taxonomies,
		ModeSelection:   selection,
		MaxCombinations: opts.MaxCombinations,
		IDGen:           opts.IDGen,
	}

	// The catalog database, when present, supplies the collision set
	// and extends the definition catalogs.
	ctx := context.Background()
	var store *catalog.Store
	if opts.Database != "" {
		logger.Info("opening catalog database", "path", opts.Database)
		store, err = catalog.Open(opts.Database)
		if err != nil {
			_ = formatter.Error(ErrCodeNotFound, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := store.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		if err := mergeStoreCatalogs(ctx, store, &req); err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to read catalogs", err)
		}
	}

	logger.Debug("generating", "algorithm", alg.Name, "iterations", alg.Generation.Range.Count())
	result, err := generate.Generate(req)
	if err != nil {
		_ = formatter.Error(ErrCodeGenerateFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "generation failed", err)
	}
	logger.Info("generation complete", "tokens", len(result.Tokens), "errors", len(result.Errors))

	persisted := false
	if store != nil {
		if err := persistResult(ctx, store, result); err != nil {
			_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
			return WrapExitError(ExitCommandError, "failed to persist batch", err)
		}
		persisted = true
	}

	report := GenerateReport{
		Algorithm: alg.Name,
		Tokens:    result.Tokens,
		Errors:    result.Errors,
		Persisted: persisted,
	}
	if opts.Format == "json" {
		return formatter.Success(report)
	}
	return writeGenerateText(formatter, report)
}

// mergeStoreCatalogs layers stored catalogs under the definitions:
// definitions win on id conflicts, and the stored token ids become the
// collision set.
func mergeStoreCatalogs(ctx context.Context, store *catalog.Store, req *generate.Request) error {
	dims, err := store.Dimensions(ctx)
	if err != nil {
		return err
	}
	for id, dim := range dims {
		if _, ok := req.Dimensions[id]; !ok {
			req.Dimensions[id] = dim
		}
	}

	taxonomies, err := store.Taxonomies(ctx)
	if err != nil {
		return err
	}
	for id, tax := range taxonomies {
		if _, ok := req.Taxonomies[id]; !ok {
			req.Taxonomies[id] = tax
		}
	}

	req.ExistingTokenIDs, err = store.TokenIDs(ctx)
	return err
}

// persistResult writes the surviving tokens and any new or grown
// taxonomies back to the store.
func persistResult(ctx context.Context, store *catalog.Store, result *generate.Result) error {
	for _, tax := range result.NewTaxonomies {
		if err := store.SaveTaxonomy(ctx, tax); err != nil {
			return err
		}
	}
	if result.UpdatedTaxonomy != nil {
		if err := store.SaveTaxonomy(ctx, *result.UpdatedTaxonomy); err != nil {
			return err
		}
	}
	return store.SaveTokens(ctx, result.Tokens)
}

func writeGenerateText(formatter *OutputFormatter, report GenerateReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d token(s)", report.Algorithm, len(report.Tokens))
	if len(report.Errors) > 0 {
		fmt.Fprintf(&b, ", %d error(s)", len(report.Errors))
	}
	b.WriteByte('\n')
	for _, tok := range report.Tokens {
		fmt.Fprintf(&b, "  %-20s %s", tok.DisplayName, tok.Value)
		if len(tok.ModeScope) > 0 {
			fmt.Fprintf(&b, "  %v", tok.ModeScope)
		}
		b.WriteByte('\n')
	}
	for _, msg := range report.Errors {
		fmt.Fprintf(&b, "  error: %s\n", msg)
	}
	return formatter.Success(strings.TrimRight(b.String(), "\n"))
}

// parseSelectFlags turns repeated "dimension=mode1,mode2" flags into a
// per-dimension mode selection.
func parseSelectFlags(pairs []string) (map[string][]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	selection := make(map[string][]string, len(pairs))
	for _, pair := range pairs {
		dim, modeList, ok := strings.Cut(pair, "=")
		if !ok || dim == "" || modeList == "" {
			return nil, fmt.Errorf("invalid selection %q: expected dimension=mode1,mode2", pair)
		}
		modes := strings.Split(modeList, ",")
		for i := range modes {
			modes[i] = strings.TrimSpace(modes[i])
		}
		selection[dim] = modes
	}
	return selection, nil
}
