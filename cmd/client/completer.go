// cmd/client/completer.go
package main

import (
	"github.com/chzyer/readline"
)

// getCompleter returns the readline completer for the flat command set this
// client supports. There is no longer a contextual (per-collection)
// completion branch since the store has no collection concept.
func (c *cli) getCompleter() readline.AutoCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("begin"),
		readline.PcItem("put"),
		readline.PcItem("get"),
		readline.PcItem("del"),
		readline.PcItem("commit"),
		readline.PcItem("rollback"),
		readline.PcItem("commitall"),
		readline.PcItem("showall"),
		readline.PcItem("clear"),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}
