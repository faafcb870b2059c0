// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	DataFileCorruptId Id = iota + 1
	DataFileUnwritableId
	PackageNotFoundId
	InvalidInputId
	UnknownVariantId
	DuplicatePackageId
	ConfigLoadFailedId
	ImportFailedId
)

type MarkdownMsg string

type Issue struct {
	id    Id          // ID used to lookup the issue
	mdMsg MarkdownMsg // Markdown text that will be rendered
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

// Title returns the text of the first top-level Markdown heading.
func (i *Issue) Title() string {
	for line := range strings.Lines(string(i.mdMsg)) {
		if title, ok := strings.CutPrefix(line, "# "); ok {
			return strings.TrimSpace(title)
		}
	}
	return ""
}

// Render renders the guidance with the glamour style at stylePath
// ("dark", "light", "notty" or a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

var (
	render = glamour.Render

	dataFileCorruptIssue = &Issue{
		id: DataFileCorruptId,
		mdMsg: `
# The inventory file could not be read!

medkit found your data file but could not restore it. Restoring is
all-or-nothing, so **no packages were loaded** and nothing was changed.

## Things you can try
- Look at the record number in the error above and fix that entry by hand.
  Every record needs ` + "`id`, `title`, `expirationDate` (YYYY-MM-DD), `capacity`, `currentQuantity` and `variant`" + `.
- Valid variants are ` + "`0`" + ` (drops) and ` + "`1`" + ` (pills).
- Point medkit at a fresh file while you investigate:
~~~
$ MEDKIT_STORAGE_PATH=/tmp/medicines.json medkit list
~~~`,
	}

	dataFileUnwritableIssue = &Issue{
		id: DataFileUnwritableId,
		mdMsg: `
# The inventory could not be saved!

Your change was applied in memory but writing it to disk failed, so it
will be lost when this command exits.

## Things you can try
- Check that the data directory exists and is writable:
~~~
$ medkit config show
~~~
- Choose another location with ` + "`storage.path`" + ` in config.cue or ` + "`MEDKIT_STORAGE_PATH`" + `.`,
	}

	packageNotFoundIssue = &Issue{
		id: PackageNotFoundId,
		mdMsg: `
# No such package!

Nothing in the inventory matches the ID or title you gave.

## Things you can try
- List what is stored, with IDs:
~~~
$ medkit list
~~~
- Titles are matched exactly after trimming and lower-casing.`,
	}

	invalidInputIssue = &Issue{
		id: InvalidInputId,
		mdMsg: `
# Invalid package data!

## Rules every package follows
- **title**: 3 to 50 characters; letters (Latin or Cyrillic), digits and spaces; not only digits
- **expiration date**: YYYY-MM-DD, at most two years away from today in either direction
- **capacity**: greater than zero
- **current quantity**: zero or more, never above capacity`,
	}

	unknownVariantIssue = &Issue{
		id: UnknownVariantId,
		mdMsg: `
# Unknown package variant!

medkit knows two dosage forms:

| Variant | Index | Unit | One unit consumes |
|---------|-------|------|-------------------|
| drops   | 0     | ml   | 0.05 ml           |
| pills   | 1     | tab. | 1 tablet          |

Pass either the name or the index, e.g. ` + "`--variant pills`" + `.`,
	}

	duplicatePackageIssue = &Issue{
		id: DuplicatePackageId,
		mdMsg: `
# Identical package already stored!

A package with the same variant, title, expiration date, capacity and
quantity already exists. Duplicates are allowed; run the command again
without ` + "`--no-duplicates`" + ` to add it anyway.`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

## Things you can try
- Check the CUE syntax of your config file
- Print a valid configuration to start from:
~~~
$ medkit config dump
~~~
- Check ` + "`MEDKIT_*`" + ` environment variables and any ` + "`--env-file`" + ` for typos`,
	}

	importFailedIssue = &Issue{
		id: ImportFailedId,
		mdMsg: `
# Import failed!

The import file is decoded completely before anything is stored. A single
malformed record rejects the whole file.

## Things you can try
- Export the current inventory to see the expected layout:
~~~
$ medkit export --format toml
~~~
- JSON and TOML files are recognised by their extension.`,
	}

	issues = map[Id]*Issue{
		dataFileCorruptIssue.Id():    dataFileCorruptIssue,
		dataFileUnwritableIssue.Id(): dataFileUnwritableIssue,
		packageNotFoundIssue.Id():    packageNotFoundIssue,
		invalidInputIssue.Id():       invalidInputIssue,
		unknownVariantIssue.Id():     unknownVariantIssue,
		duplicatePackageIssue.Id():   duplicatePackageIssue,
		configLoadFailedIssue.Id():   configLoadFailedIssue,
		importFailedIssue.Id():       importFailedIssue,
	}
)

// Values returns every catalogued issue ordered by ID.
func Values() []*Issue {
	ids := make([]Id, 0, len(issues))
	for id := range maps.Keys(issues) {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	out := make([]*Issue, 0, len(ids))
	for _, id := range ids {
		out = append(out, issues[id])
	}
	return out
}

// Get returns the catalogued issue with the given ID, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
