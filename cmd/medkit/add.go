// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/invowk/medkit/internal/inventory"
	"github.com/invowk/medkit/pkg/medicine"
)

// packageFlags are the field flags shared by add and edit.
type packageFlags struct {
	variant  string
	title    string
	expires  string
	capacity float64
	quantity float64
}

func (f *packageFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.variant, "variant", "", "dosage form: pills or drops (or 1 / 0)")
	cmd.Flags().StringVar(&f.title, "title", "", "package title, 3-50 letters, digits or spaces")
	cmd.Flags().StringVar(&f.expires, "expires", "", "expiration date as YYYY-MM-DD")
	cmd.Flags().Float64Var(&f.capacity, "capacity", 0, "package capacity (tablets or ml)")
	cmd.Flags().Float64Var(&f.quantity, "quantity", 0, "current quantity (default: full)")
}

func newAddCommand(app *App) *cobra.Command {
	var (
		fields       packageFlags
		noDuplicates bool
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a medicine package",
		Long: `Add a medicine package to the inventory.

The package gets the next free ID. Quantity defaults to the full capacity.`,
		Example: `  medkit add --variant pills --title aspirin --expires 2026-11-17 --capacity 20
  medkit add --variant drops --title "eye drops" --expires 2026-03-01 --capacity 10 --quantity 4.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := fields.addRequest(cmd)
			if err != nil {
				return app.fail(err)
			}
			return app.withSession(cmd.Context(), func(s *session) error {
				return addPackage(app, s, req, noDuplicates)
			})
		},
	}
	fields.register(cmd)
	cmd.Flags().BoolVar(&noDuplicates, "no-duplicates", false, "refuse to add a package identical to a stored one")
	for _, name := range []string{"variant", "title", "expires", "capacity"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func addPackage(app *App, s *session, req inventory.AddRequest, noDuplicates bool) error {
	dups, err := s.manager.Duplicates(req)
	if err != nil {
		return err
	}
	if len(dups) > 0 {
		ids := make([]string, 0, len(dups))
		for _, d := range dups {
			ids = append(ids, fmt.Sprintf("#%d", d.ID()))
		}
		if noDuplicates {
			return &medicine.Error{Op: "add", Kind: medicine.KindConflict, Value: strings.Join(ids, ", "),
				Reason: "an identical package is already stored"}
		}
		fmt.Fprintf(app.stderr, "%s an identical package is already stored (%s); adding anyway\n",
			WarningStyle.Render("Warning:"), strings.Join(ids, ", "))
	}

	p, err := s.manager.Add(req)
	if err != nil {
		return err
	}
	s.dirty = true
	fmt.Fprintf(app.stdout, "%s Added %s %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(fmt.Sprintf("#%d", p.ID())), p)
	return nil
}

// addRequest converts the flags into an AddRequest. Field validation is
// left to the factory.
func (f *packageFlags) addRequest(cmd *cobra.Command) (inventory.AddRequest, error) {
	variant, err := medicine.ParseVariant(f.variant)
	if err != nil {
		return inventory.AddRequest{}, err
	}
	exp, err := medicine.ParseDate(f.expires)
	if err != nil {
		return inventory.AddRequest{}, err
	}
	req := inventory.AddRequest{
		Variant:        variant,
		Title:          f.title,
		ExpirationDate: exp,
		Capacity:       f.capacity,
	}
	if cmd.Flags().Changed("quantity") {
		qty := f.quantity
		req.CurrentQuantity = &qty
	}
	return req, nil
}

// editRequest converts the flags that were given into an EditRequest.
// It fails when no field flag was given.
func (f *packageFlags) editRequest(cmd *cobra.Command) (inventory.EditRequest, error) {
	var req inventory.EditRequest
	changed := false
	flags := cmd.Flags()
	if flags.Changed("variant") {
		v, err := medicine.ParseVariant(f.variant)
		if err != nil {
			return req, err
		}
		req.Variant = &v
		changed = true
	}
	if flags.Changed("title") {
		title := f.title
		req.Title = &title
		changed = true
	}
	if flags.Changed("expires") {
		exp, err := medicine.ParseDate(f.expires)
		if err != nil {
			return req, err
		}
		req.ExpirationDate = &exp
		changed = true
	}
	if flags.Changed("capacity") {
		capacity := f.capacity
		req.Capacity = &capacity
		changed = true
	}
	if flags.Changed("quantity") {
		qty := f.quantity
		req.CurrentQuantity = &qty
		changed = true
	}
	if !changed {
		return req, &medicine.Error{Op: "edit", Kind: medicine.KindState,
			Reason: "nothing to change; pass at least one of --variant, --title, --expires, --capacity, --quantity"}
	}
	return req, nil
}
