// SPDX-License-Identifier: MPL-2.0

// medkit is a command-line inventory for a home medicine cabinet.
package main

import "github.com/invowk/medkit/cmd/medkit"

func main() {
	cmd.Execute()
}
