// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/invowk/medkit/internal/issue"
)

func newIssuesCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "issues [number]",
		Short: "List or show the troubleshooting guides",
		Long: `List the troubleshooting guides medkit prints when a command fails,
or render one of them by number.`,
		Example: `  medkit issues
  medkit issues 1`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(app.stdout, issueTable(issue.Values()).Render())
				return nil
			}

			n, err := strconv.Atoi(args[0])
			if err != nil {
				return &ExitError{Code: ExitInvalidInput, Err: fmt.Errorf("issue number %q is not an integer", args[0])}
			}
			entry := issue.Get(issue.Id(n))
			if entry == nil {
				return &ExitError{Code: ExitNotFound, Err: fmt.Errorf("no issue %d; run 'medkit issues' for the list", n)}
			}
			rendered, err := entry.Render(app.issueStyle())
			if err != nil {
				return app.fail(err)
			}
			fmt.Fprint(app.stdout, rendered)
			return nil
		},
	}
}

func issueTable(issues []*issue.Issue) *table.Table {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(tableBorderStyle).
		Headers("#", "GUIDE")
	for _, is := range issues {
		t.Row(strconv.Itoa(int(is.Id())), is.Title())
	}
	return t.StyleFunc(func(row, _ int) lipgloss.Style {
		if row == table.HeaderRow {
			return tableHeaderStyle
		}
		return tableCellStyle
	})
}
