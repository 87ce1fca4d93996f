package cli

import (
	"github.com/spf13/cobra"

	"github.com/shoalcove/scalegen/internal/expr"
)

// TranslateOptions holds flags for the translate command.
type TranslateOptions struct {
	*RootOptions
	FromDisplay bool
}

// TranslateReport is the JSON shape of one translation.
type TranslateReport struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// NewTranslateCommand creates the translate command.
func NewTranslateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TranslateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "translate <expression>",
		Short: "Convert a formula between linear and display notation",
		Long: `Convert a formula from linear notation to display (typeset) notation,
or back with --from-display.

Example:
  scalegen translate "base * pow(ratio, n)"
  scalegen translate --from-display '\mathit{base} \times \mathit{ratio}^{n}'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranslate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.FromDisplay, "from-display", false, "translate display notation to linear notation")

	return cmd
}

func runTranslate(opts *TranslateOptions, input string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var output string
	var err error
	if opts.FromDisplay {
		output, err = expr.FromDisplay(input)
	} else {
		output, err = expr.ToDisplay(input)
	}
	if err != nil {
		_ = formatter.Error(ErrCodeTranslateFailed, err.Error(), nil)
		return WrapExitError(ExitFailure, "translation failed", err)
	}

	if opts.Format == "json" {
		return formatter.Success(TranslateReport{Input: input, Output: output})
	}
	return formatter.Success(output)
}
