// Command yw7tools converts yWriter 7 projects to and from novx host projects.
package main

import "github.com/erraggy/yw7tools/cmd/yw7tools/commands"

func main() {
	commands.Execute()
}
