// cmd/client/cli.go
package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
)

// command is one entry in the client's dispatch table: its help text, the
// category it's grouped under in `help`, and the handler that sends the
// wire command and renders the response.
type command struct {
	help     string
	handler  func(c *cli, args string) error
	category string
}

// cli drives the interactive REPL against a single storekv connection. It
// tracks the most recently begun transaction id so commands that default to
// "the current transaction" (commit, rollback, and bare put/get/del) don't
// require the caller to repeat the tid on every line.
type cli struct {
	conn              net.Conn
	reader            *bufio.Reader
	rl                *readline.Instance
	rlConfig          *readline.Config
	commands          map[string]command
	multiWordCommands []string
	connMutex         sync.Mutex
	activeTxn         *int64
}

func newCLI(conn net.Conn) *cli {
	c := &cli{conn: conn, reader: bufio.NewReader(conn)}
	c.commands = c.getCommands()

	var mwCmds []string
	for cmd := range c.commands {
		if strings.Contains(cmd, " ") {
			mwCmds = append(mwCmds, cmd)
		}
	}
	sort.Slice(mwCmds, func(i, j int) bool {
		return len(mwCmds[i]) > len(mwCmds[j])
	})
	c.multiWordCommands = mwCmds

	return c
}

func (c *cli) run() error {
	c.rlConfig = &readline.Config{
		Prompt:          "> ",
		HistoryFile:     "/tmp/storekv_readline_history.tmp",
		AutoComplete:    c.getCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	}

	var err error
	c.rl, err = readline.NewEx(c.rlConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize readline: %w", err)
	}
	defer c.rl.Close()

	return c.mainLoop()
}

func (c *cli) mainLoop() error {
	for {
		prompt := "> "
		if c.activeTxn != nil {
			prompt = fmt.Sprintf("tx%d> ", *c.activeTxn)
		}
		c.rl.SetPrompt(colorPrompt(prompt))

		input, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				if len(input) == 0 {
					break
				}
				continue
			} else if errors.Is(err, io.EOF) {
				break
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		cmd, args := c.getCommandAndRawArgs(input)

		handler, found := c.commands[cmd]
		if !found {
			fmt.Println(colorErr(fmt.Sprintf("Error: Unknown command '%s'. Type 'help' for commands.", cmd)))
			continue
		}

		startTime := time.Now()
		if err := handler.handler(c, args); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			fmt.Println(colorErr(fmt.Sprintf("Command failed: %v", err)))
		}
		duration := time.Since(startTime)
		if cmd != "clear" && cmd != "help" {
			fmt.Println(colorInfo(fmt.Sprintf("Request time: %v", duration.Round(time.Millisecond))))
		}
	}
	fmt.Println(colorInfo("Exiting client. Goodbye!"))
	return nil
}
