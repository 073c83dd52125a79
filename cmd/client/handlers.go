// cmd/client/handlers.go
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
)

// getCommands defines all available commands, their help, handler, and
// category, the same dispatch-table shape the teacher's CLI used for its
// collection/user surface, generalized onto the transactional KV wire
// protocol's eight verbs.
func (c *cli) getCommands() map[string]command {
	return map[string]command{
		"help":  {help: "help - Shows this help message", handler: (*cli).handleHelp, category: "General"},
		"exit":  {help: "exit - Exits the client", handler: (*cli).handleExit, category: "General"},
		"clear": {help: "clear - Clears the screen", handler: (*cli).handleClear, category: "General"},

		"begin":    {help: "begin - Starts a new transaction and makes it the active one", handler: (*cli).handleBegin, category: "Transactions"},
		"commit":   {help: "commit [tid] - Commits a transaction (defaults to the active one)", handler: (*cli).handleCommit, category: "Transactions"},
		"rollback": {help: "rollback [tid] - Rolls back a transaction (defaults to the active one)", handler: (*cli).handleRollback, category: "Transactions"},
		"commitall": {help: "commitall - Commits every live transaction, best-effort",
			handler: (*cli).handleCommitAll, category: "Transactions"},

		"put":     {help: "put <key> <value> [tid] - Writes a key (defaults to the active transaction)", handler: (*cli).handlePut, category: "Data"},
		"get":     {help: "get <key> [tid] - Reads a key (defaults to the active transaction)", handler: (*cli).handleGet, category: "Data"},
		"del":     {help: "del <key> [tid] - Deletes a key (defaults to the active transaction)", handler: (*cli).handleDel, category: "Data"},
		"showall": {help: "showall - Best-effort snapshot of every committed key", handler: (*cli).handleShowAll, category: "Data"},
	}
}

func (c *cli) handleBegin(args string) error {
	resp, err := c.sendCommand("BEGIN")
	if err != nil {
		return err
	}
	c.printStatusLine(resp)
	if resp["status"] == "Ok" {
		if tid, ok := asInt64(resp["transaction_id"]); ok {
			c.activeTxn = &tid
			fmt.Println(colorOK(fmt.Sprintf("Transaction %d started and made active.", tid)))
		}
	}
	return nil
}

func (c *cli) handleCommit(args string) error {
	tid, err := c.resolveTid(args)
	if err != nil {
		return err
	}
	resp, err := c.sendCommand(fmt.Sprintf("COMMIT %d", tid))
	if err != nil {
		return err
	}
	c.printStatusLine(resp)
	if resp["status"] == "Ok" {
		c.clearActiveIfMatches(tid)
		fmt.Println(colorOK(fmt.Sprintf("Transaction %d committed.", tid)))
	}
	return nil
}

func (c *cli) handleRollback(args string) error {
	tid, err := c.resolveTid(args)
	if err != nil {
		return err
	}
	resp, err := c.sendCommand(fmt.Sprintf("ROLLBACK %d", tid))
	if err != nil {
		return err
	}
	c.printStatusLine(resp)
	if resp["status"] == "Ok" {
		c.clearActiveIfMatches(tid)
		fmt.Println(colorInfo(fmt.Sprintf("Transaction %d rolled back.", tid)))
	}
	return nil
}

func (c *cli) handleCommitAll(args string) error {
	resp, err := c.sendCommand("COMMITALL")
	if err != nil {
		return err
	}
	c.printStatusLine(resp)
	if resp["status"] == "Ok" {
		c.activeTxn = nil
	}
	return nil
}

func (c *cli) handlePut(args string) error {
	parts := strings.Fields(args)
	if len(parts) < 2 {
		return errors.New("usage: put <key> <value> [tid]")
	}
	key, value := parts[0], parts[1]
	tid, err := c.resolveTidFromTrailing(parts[2:])
	if err != nil {
		return err
	}
	resp, err := c.sendCommand(fmt.Sprintf("PUT %s %s %d", key, value, tid))
	if err != nil {
		return err
	}
	c.printStatusLine(resp)
	return nil
}

func (c *cli) handleGet(args string) error {
	parts := strings.Fields(args)
	if len(parts) < 1 {
		return errors.New("usage: get <key> [tid]")
	}
	key := parts[0]
	tid, err := c.resolveTidFromTrailing(parts[1:])
	if err != nil {
		return err
	}
	resp, err := c.sendCommand(fmt.Sprintf("GET %s %d", key, tid))
	if err != nil {
		return err
	}
	c.printStatusLine(resp)
	if resp["status"] == "Ok" {
		if resp["result"] == nil {
			fmt.Println(colorInfo("(not found)"))
		} else {
			fmt.Printf("  %s %v\n", colorInfo("Value:"), resp["result"])
		}
	}
	return nil
}

func (c *cli) handleDel(args string) error {
	parts := strings.Fields(args)
	if len(parts) < 1 {
		return errors.New("usage: del <key> [tid]")
	}
	key := parts[0]
	tid, err := c.resolveTidFromTrailing(parts[1:])
	if err != nil {
		return err
	}
	resp, err := c.sendCommand(fmt.Sprintf("DEL %s %d", key, tid))
	if err != nil {
		return err
	}
	c.printStatusLine(resp)
	return nil
}

func (c *cli) handleShowAll(args string) error {
	resp, err := c.sendCommand("SHOWALL")
	if err != nil {
		return err
	}
	if resp["status"] != "Ok" {
		c.printStatusLine(resp)
		return nil
	}

	data, _ := resp["data"].(map[string]any)
	if len(data) == 0 {
		fmt.Println("(no committed keys)")
		return nil
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Key", "Value", "Pending Transaction"})
	table.SetAutoWrapText(false)
	for _, k := range keys {
		row, _ := data[k].(map[string]any)
		value := fmt.Sprintf("%v", row["value"])
		pending := "-"
		if tid := row["transaction_id"]; tid != nil {
			pending = fmt.Sprintf("%v", tid)
		}
		table.Append([]string{k, value, pending})
	}
	table.Render()
	return nil
}

func (c *cli) handleHelp(args string) error {
	fmt.Println(colorInfo("storekv client help"))
	fmt.Println("---------------------")

	categories := make(map[string][]string)
	for cmdName, cmdDetails := range c.commands {
		categories[cmdDetails.category] = append(categories[cmdDetails.category], cmdName)
	}

	categoryNames := make([]string, 0, len(categories))
	for name := range categories {
		categoryNames = append(categoryNames, name)
	}
	sort.Strings(categoryNames)

	for _, category := range categoryNames {
		fmt.Printf("\n%s\n", colorOK("== "+category+" =="))
		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"Command", "Description"})
		table.SetAutoWrapText(false)

		cmds := categories[category]
		sort.Strings(cmds)
		for _, cmd := range cmds {
			table.Append([]string{cmd, c.commands[cmd].help})
		}
		table.Render()
	}
	fmt.Println("---------------------")
	return nil
}

func (c *cli) handleExit(args string) error {
	return io.EOF
}

func (c *cli) handleClear(args string) error {
	clearScreen()
	return nil
}

// resolveTid picks an explicit tid out of args if present, else falls back
// to the active transaction, else errors.
func (c *cli) resolveTid(args string) (int64, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		if c.activeTxn == nil {
			return 0, errors.New("no active transaction; begin one or pass a tid")
		}
		return *c.activeTxn, nil
	}
	n, err := strconv.ParseInt(args, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid transaction id %q", args)
	}
	return n, nil
}

// resolveTidFromTrailing is resolveTid applied to an already-tokenized
// trailing argument list (0 or 1 tokens).
func (c *cli) resolveTidFromTrailing(trailing []string) (int64, error) {
	if len(trailing) == 0 {
		return c.resolveTid("")
	}
	return c.resolveTid(trailing[0])
}

func (c *cli) clearActiveIfMatches(tid int64) {
	if c.activeTxn != nil && *c.activeTxn == tid {
		c.activeTxn = nil
	}
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
