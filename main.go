// Command g10 is the CLI entry point for the G10 toolchain's assembler and
// CPU simulator.
package main

import "github.com/dgdev1024/g10/cmd"

func main() {
	cmd.Execute()
}
