package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/shoalcove/scalegen/internal/model"
)

// ValidationReport holds validation results for one algorithm.
type ValidationReport struct {
	Algorithm string   `json:"algorithm"`
	Valid     bool     `json:"valid"`
	Errors    []string `json:"errors,omitempty"`
	Warnings  []string `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <definitions-dir>",
		Short: "Validate algorithm definitions without generating",
		Long: `Validate CUE algorithm definitions and catalogs without generating tokens.

Performs syntax checking, schema validation, and the structural pass
(dangling step references, invalid identifiers, generation config).
Warnings are advisory and do not fail the command.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := LoadDefinitions(dir, LoadModeCollectAll)
	if loadResult == nil && len(loadErrors) > 0 {
		var loadErr *LoadError
		if errors.As(loadErrors[0], &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return NewExitError(ExitCommandError, loadErr.Message)
		}
		_ = formatter.Error(ErrCodeGeneric, loadErrors[0].Error(), nil)
		return NewExitError(ExitCommandError, loadErrors[0].Error())
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, dir)

	var reports []ValidationReport
	failed := len(loadErrors) > 0
	for i := range loadResult.Algorithms {
		alg := &loadResult.Algorithms[i]
		res := model.Validate(alg)
		reports = append(reports, ValidationReport{
			Algorithm: alg.Name,
			Valid:     res.Valid,
			Errors:    res.Errors,
			Warnings:  res.Warnings,
		})
		if !res.Valid {
			failed = true
		}
	}

	for _, err := range loadErrors {
		reports = append(reports, ValidationReport{Valid: false, Errors: []string{err.Error()}})
	}

	if failed {
		_ = formatter.Error(ErrCodeInvalidAlgorithm, "validation failed", reports)
		return NewExitError(ExitFailure, "validation failed")
	}
	return formatter.Success(reports)
}
