// Command fangmatch is the command-line interface: parse herb lists,
// match them against the formula catalog, and inspect formulas.
package main

import "github.com/herbwise/fangmatch/internal/interfaces/cli"

func main() {
	cli.Execute()
}
