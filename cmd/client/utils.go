// cmd/client/utils.go
package main

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	colorOK     = color.New(color.FgGreen, color.Bold).SprintFunc()
	colorErr    = color.New(color.FgRed, color.Bold).SprintFunc()
	colorPrompt = color.New(color.FgMagenta).SprintFunc()
	colorInfo   = color.New(color.FgBlue).SprintFunc()
)

// getCommandAndRawArgs parses user input into a command and its raw
// arguments, checking the dynamically built multi-word command list first
// (there is currently only one word per command, but the mechanism stays in
// case the surface grows).
func (c *cli) getCommandAndRawArgs(input string) (string, string) {
	for _, mwCmd := range c.multiWordCommands {
		if strings.HasPrefix(input, mwCmd+" ") || input == mwCmd {
			return mwCmd, strings.TrimSpace(input[len(mwCmd):])
		}
	}

	parts := strings.SplitN(input, " ", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

// sendCommand writes line plus the protocol's newline terminator and reads
// back exactly one JSON response line, decoding it into a generic map —
// the client has no need of the server's internal Response builders, only
// the wire bytes they produce.
func (c *cli) sendCommand(line string) (map[string]any, error) {
	c.connMutex.Lock()
	defer c.connMutex.Unlock()

	if _, err := fmt.Fprintf(c.conn, "%s\n", line); err != nil {
		return nil, fmt.Errorf("failed to send command: %w", err)
	}

	respLine, err := c.reader.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp map[string]any
	if err := json.Unmarshal([]byte(respLine), &resp); err != nil {
		return nil, fmt.Errorf("failed to decode response %q: %w", respLine, err)
	}
	return resp, nil
}

// printStatusLine renders the status/mesg fields every response carries.
func (c *cli) printStatusLine(resp map[string]any) {
	status, _ := resp["status"].(string)
	if status == "Ok" {
		fmt.Println(colorOK("Status: Ok"))
		return
	}
	mesg, _ := resp["mesg"].(string)
	fmt.Println(colorErr(fmt.Sprintf("Status: %s - %s", status, mesg)))
}

func clearScreen() {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("cmd", "/c", "cls")
	default:
		cmd = exec.Command("clear")
	}
	cmd.Stdout = os.Stdout
	_ = cmd.Run()
}
