// SPDX-License-Identifier: MPL-2.0

// Package report summarizes an inventory: what has expired, what expires
// soon, what is running low, and what is empty. Summaries render to Markdown
// and from there to the terminal through glamour.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/invowk/medkit/pkg/medicine"
)

type (
	// Options tunes the thresholds of a Summary.
	Options struct {
		// Today is the civil date the report is computed for.
		Today time.Time
		// ExpiringWithinDays marks unexpired packages expiring in at most
		// this many days.
		ExpiringWithinDays int
		// LowStockRatio marks non-empty packages whose remaining share of
		// capacity is below this ratio.
		LowStockRatio float64
	}

	// Summary is a categorized view of an inventory. A package may appear in
	// more than one category.
	Summary struct {
		Today        time.Time
		Total        int
		ByVariant    map[medicine.Variant]int
		Expired      []medicine.Package
		ExpiringSoon []medicine.Package
		LowStock     []medicine.Package
		Empty        []medicine.Package
		Options      Options
	}

	// RenderOptions configures terminal rendering.
	RenderOptions struct {
		// Style is a glamour standard style name ("dark", "light", "notty")
		// or "auto"/"" to detect from the terminal.
		Style string
		// Width is the word wrap width (0 for no wrap).
		Width int
	}
)

// Build categorizes packages.
func Build(packages []medicine.Package, opts Options) Summary {
	today := medicine.DateOf(opts.Today)
	s := Summary{
		Today:     today,
		Total:     len(packages),
		ByVariant: make(map[medicine.Variant]int),
		Options:   opts,
	}
	for _, p := range packages {
		s.ByVariant[p.Variant()]++
		switch {
		case !p.ExpirationDate().After(today):
			s.Expired = append(s.Expired, p)
		case medicine.DaysBetween(today, p.ExpirationDate()) <= opts.ExpiringWithinDays:
			s.ExpiringSoon = append(s.ExpiringSoon, p)
		}
		switch {
		case p.IsEmpty():
			s.Empty = append(s.Empty, p)
		case p.CurrentQuantity()/p.Capacity() < opts.LowStockRatio:
			s.LowStock = append(s.LowStock, p)
		}
	}
	return s
}

// Markdown renders s as a Markdown document.
func (s Summary) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Medicine report for %s\n\n", medicine.FormatDate(s.Today))
	fmt.Fprintf(&sb, "**%d** package(s) tracked", s.Total)
	if s.Total > 0 {
		parts := make([]string, 0, len(s.ByVariant))
		for _, v := range medicine.Variants() {
			if n := s.ByVariant[v]; n > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", n, v))
			}
		}
		sb.WriteString(": " + strings.Join(parts, ", "))
	}
	sb.WriteString(".\n")

	s.section(&sb, "Expired", s.Expired, "Nothing has expired.", func(p medicine.Package) string {
		return fmt.Sprintf("expired %s", medicine.FormatDate(p.ExpirationDate()))
	})
	s.section(&sb, fmt.Sprintf("Expiring within %d days", s.Options.ExpiringWithinDays), s.ExpiringSoon,
		"Nothing expires soon.", func(p medicine.Package) string {
			return fmt.Sprintf("in %d day(s), on %s", medicine.DaysBetween(s.Today, p.ExpirationDate()),
				medicine.FormatDate(p.ExpirationDate()))
		})
	s.section(&sb, fmt.Sprintf("Low stock (below %.0f%%)", s.Options.LowStockRatio*100), s.LowStock,
		"Nothing is running low.", func(p medicine.Package) string {
			return fmt.Sprintf("%s of %s %s left", amount(p.CurrentQuantity()), amount(p.Capacity()), p.Variant().Unit())
		})
	s.section(&sb, "Empty", s.Empty, "No empty packages.", func(medicine.Package) string {
		return "nothing left"
	})
	return sb.String()
}

func (s Summary) section(sb *strings.Builder, title string, packages []medicine.Package, none string, detail func(medicine.Package) string) {
	fmt.Fprintf(sb, "\n## %s\n\n", title)
	if len(packages) == 0 {
		sb.WriteString("_" + none + "_\n")
		return
	}
	for _, p := range packages {
		fmt.Fprintf(sb, "- **#%d %s** (%s): %s\n", p.ID(), p.Title(), p.Variant(), detail(p))
	}
}

// Render renders Markdown for the terminal.
func Render(markdown string, opts RenderOptions) (string, error) {
	var rendererOpts []glamour.TermRendererOption
	switch opts.Style {
	case "", "auto":
		rendererOpts = append(rendererOpts, glamour.WithAutoStyle())
	default:
		rendererOpts = append(rendererOpts, glamour.WithStandardStyle(opts.Style))
	}
	if opts.Width > 0 {
		rendererOpts = append(rendererOpts, glamour.WithWordWrap(opts.Width))
	}

	renderer, err := glamour.NewTermRenderer(rendererOpts...)
	if err != nil {
		return "", err
	}
	return renderer.Render(markdown)
}

func amount(f float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", f), "0"), ".")
}
