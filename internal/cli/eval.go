package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ohare93/formula/internal/formula"
	"github.com/spf13/cobra"
)

var evalStrictFlag bool

var evalCmd = &cobra.Command{
	Use:   "eval <expression>",
	Short: "Evaluate an arithmetic formula",
	Long: `Evaluate an arithmetic formula the way a formula cell does and print the
result with two decimals, or "Error" when it cannot be evaluated.

Supports + - * / % ^ and parentheses.

Examples:
  formula eval "2 * (3 + 4)"
  formula eval --strict "10 / 0"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runEval,
}

func runEval(cmd *cobra.Command, args []string) error {
	expr := strings.Join(args, " ")
	result := formula.Evaluate(expr)
	fmt.Fprintln(cmd.OutOrStdout(), result)

	if evalStrictFlag && result == formula.ErrorResult {
		_, err := formula.Compute(expr)
		if err == nil {
			err = errors.New("invalid formula")
		}
		return fmt.Errorf("cannot evaluate %q: %w", expr, err)
	}
	return nil
}

func init() {
	evalCmd.Flags().BoolVar(&evalStrictFlag, "strict", false, "Exit with an error when the formula cannot be evaluated")
}
