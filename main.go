// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/runwk/runwk/cmd/runwk"

func main() {
	cmd.Execute()
}
