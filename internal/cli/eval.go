package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shoalcove/scalegen/internal/eval"
)

// EvalOptions holds flags for the eval command.
type EvalOptions struct {
	*RootOptions
	Algorithm string
	Iteration int
	Modes     []string // dimension=mode pairs
}

// EvalReport is the JSON shape of a single evaluation pass.
type EvalReport struct {
	Algorithm string            `json:"algorithm"`
	Iteration int               `json:"iteration"`
	Final     string            `json:"final"`
	Results   map[string]string `json:"results"`
}

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EvalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "eval <definitions-dir>",
		Short: "Run one algorithm for a single iteration",
		Long: `Run one algorithm's steps for a single iteration value and print the
final result plus every named intermediate result.

Mode-based variables resolve through --mode flags, e.g.:
  scalegen eval ./defs --algorithm spacing --iteration 2 --mode viewport=mobile`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Algorithm, "algorithm", "", "algorithm name or id (required)")
	cmd.Flags().IntVarP(&opts.Iteration, "iteration", "n", 0, "iteration value")
	cmd.Flags().StringArrayVar(&opts.Modes, "mode", nil, "mode context as dimension=mode (repeatable)")
	_ = cmd.MarkFlagRequired("algorithm")

	return cmd
}

func runEval(opts *EvalOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

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

	modeCtx, err := parseModeFlags(opts.Modes)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "invalid --mode flag", err)
	}

	ec, err := eval.Run(alg, opts.Iteration, nil, modeCtx)
	if err != nil {
		_ = formatter.Error(ErrCodeEvalFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "evaluation failed", err)
	}

	report := EvalReport{
		Algorithm: alg.Name,
		Iteration: ec.Iteration,
		Final:     ec.FinalText,
		Results:   make(map[string]string, len(ec.Results)),
	}
	for name, v := range ec.Results {
		report.Results[name] = eval.Format(v)
	}

	if opts.Format == "json" {
		return formatter.Success(report)
	}
	return writeEvalText(formatter, report)
}

func writeEvalText(formatter *OutputFormatter, report EvalReport) error {
	names := make([]string, 0, len(report.Results))
	for name := range report.Results {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	fmt.Fprintf(&b, "%s @ n=%d\n", report.Algorithm, report.Iteration)
	for _, name := range names {
		fmt.Fprintf(&b, "  %s = %s\n", name, report.Results[name])
	}
	fmt.Fprintf(&b, "final: %s", report.Final)
	return formatter.Success(b.String())
}

// parseModeFlags turns repeated "dimension=mode" flags into a mode
// context.
func parseModeFlags(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	ctx := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		dim, mode, ok := strings.Cut(pair, "=")
		if !ok || dim == "" || mode == "" {
			return nil, fmt.Errorf("invalid mode %q: expected dimension=mode", pair)
		}
		ctx[dim] = mode
	}
	return ctx, nil
}
