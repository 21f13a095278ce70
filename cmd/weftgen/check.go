package main

import (
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/cpcf/weftgen/lint"
	"github.com/cpcf/weftgen/templates"
)

func newCheckCmd(newLogger func(io.Writer) *slog.Logger) *cobra.Command {
	var (
		dir    string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a template tree without generating anything",
		Long: `Check every <language>/<name>.tmpl file for syntax errors, unbalanced
braces, and references to templates that are not defined in the same file.
Without --templates the built-in templates are checked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var fsys fs.FS = templates.FS
			if dir != "" {
				fsys = os.DirFS(dir)
			}

			checker := lint.NewChecker(fsys,
				lint.WithStrict(strict),
				lint.WithLogger(newLogger(cmd.ErrOrStderr())),
			)

			failed := 0
			out := cmd.OutOrStdout()
			for _, r := range checker.CheckAll() {
				for _, f := range r.Errors {
					fmt.Fprintln(out, "error:", f)
				}
				for _, f := range r.Warnings {
					fmt.Fprintln(out, "warning:", f)
				}
				if !r.OK() {
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d template file(s) failed checks", failed)
			}
			fmt.Fprintln(out, "templates ok")
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "templates", "t", "", "Template directory (defaults to the built-in templates)")
	cmd.Flags().BoolVar(&strict, "strict", false, "Also warn about trailing whitespace")
	return cmd
}
