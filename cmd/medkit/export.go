// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/invowk/medkit/internal/inventory"
	"github.com/invowk/medkit/internal/issue"
	"github.com/invowk/medkit/pkg/medicine"
	"github.com/invowk/medkit/pkg/snapshot"
)

func newExportCommand(app *App) *cobra.Command {
	var (
		format string
		output string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the inventory as JSON or TOML",
		Long: `Write the whole inventory as a snapshot document.

The format defaults to the extension of --output, or JSON when writing to
standard output.`,
		Example: `  medkit export
  medkit export --format toml
  medkit export -o backup.toml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := resolveFormat(format, output)
			if err != nil {
				return app.fail(err)
			}
			return app.withSession(cmd.Context(), func(s *session) error {
				data, err := snapshot.Marshal(snapshot.Encode(s.manager.Packages(), s.manager.LastID()), f)
				if err != nil {
					return err
				}
				if output == "" {
					_, err := app.stdout.Write(data)
					return err
				}
				if err := os.WriteFile(output, data, 0o644); err != nil {
					return issue.NewErrorContext().
						WithOperation("write export").
						WithResource(output).
						WithSuggestion("Check that the directory exists and is writable").
						Wrap(err).
						BuildError()
				}
				fmt.Fprintf(app.stdout, "%s Exported %d package(s) to %s\n", SuccessStyle.Render("✓"),
					s.manager.Count(), output)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or toml")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: standard output)")
	return cmd
}

func newImportCommand(app *App) *cobra.Command {
	var (
		format   string
		renumber bool
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Add packages from a JSON or TOML snapshot",
		Long: `Add the packages of a snapshot file to the inventory.

The file is decoded completely first; one malformed record rejects the
whole file. Packages keep their IDs unless --renumber is given, in which
case they get fresh ones. A package whose ID is already taken is skipped
and reported; the rest are still imported.`,
		Example: `  medkit import backup.json
  medkit import other-cabinet.toml --renumber`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f, err := resolveFormat(format, path)
			if err != nil {
				return app.fail(err)
			}
			return app.withSession(cmd.Context(), func(s *session) error {
				packages, err := readSnapshot(path, f, s.manager.Factory())
				if err != nil {
					return err
				}
				imported, failed := importPackages(s.manager, packages, renumber)
				for _, failure := range failed {
					fmt.Fprintf(app.stderr, "%s skipped %s: %v\n", WarningStyle.Render("Warning:"),
						failure.Package, failure.Err)
				}
				if imported > 0 {
					s.dirty = true
				}
				fmt.Fprintf(app.stdout, "%s Imported %d package(s), skipped %d\n", SuccessStyle.Render("✓"),
					imported, len(failed))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "json or toml (default: from the file extension)")
	cmd.Flags().BoolVar(&renumber, "renumber", false, "assign fresh IDs instead of keeping the stored ones")
	return cmd
}

// resolveFormat picks the explicit format, else the one implied by path.
func resolveFormat(format, path string) (snapshot.Format, error) {
	if format != "" {
		return snapshot.ParseFormat(format)
	}
	if path == "" {
		return snapshot.FormatJSON, nil
	}
	return snapshot.FormatFromPath(path), nil
}

func readSnapshot(path string, f snapshot.Format, factory medicine.Factory) ([]medicine.Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		ec := issue.NewErrorContext().WithOperation("read import file").WithResource(path)
		if errors.Is(err, os.ErrNotExist) {
			ec = ec.WithSuggestion("Verify the file path is correct")
		}
		return nil, ec.Wrap(err).BuildError()
	}

	importErr := func(err error) error {
		return issue.NewErrorContext().
			WithOperation("import").
			WithResource(path).
			WithIssue(issue.ImportFailedId).
			Wrap(err).
			BuildError()
	}
	doc, err := snapshot.Unmarshal(data, f)
	if err != nil {
		return nil, importErr(err)
	}
	packages, err := snapshot.Decode(doc, factory)
	if err != nil {
		return nil, importErr(err)
	}
	return packages, nil
}

// importFailure is one package import could not store.
type importFailure struct {
	Package medicine.Package
	Err     error
}

// importPackages stores packages, either keeping their IDs (conflicts are
// skipped) or as new packages with fresh IDs.
func importPackages(m *inventory.Manager, packages []medicine.Package, renumber bool) (int, []importFailure) {
	var failed []importFailure
	if !renumber {
		for _, f := range m.Seed(packages) {
			failed = append(failed, importFailure{Package: f.Package, Err: f.Err})
		}
		return len(packages) - len(failed), failed
	}

	imported := 0
	for _, p := range packages {
		qty := p.CurrentQuantity()
		if _, err := m.Add(inventory.AddRequest{
			Variant:         p.Variant(),
			Title:           p.Title(),
			ExpirationDate:  p.ExpirationDate(),
			Capacity:        p.Capacity(),
			CurrentQuantity: &qty,
		}); err != nil {
			failed = append(failed, importFailure{Package: p, Err: err})
			continue
		}
		imported++
	}
	return imported, failed
}
