// cmd/client/main.go
package main

import (
	"fmt"
	"net"
	"os"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Println("Usage: client <address>")
		fmt.Println("Example: client localhost:8000")
		return
	}
	addr := os.Args[1]

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		fmt.Println(colorErr(fmt.Sprintf("Failed to connect to %s: %v", addr, err)))
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Println(colorInfo(fmt.Sprintf("Connected to storekv at %s. Type 'help' for commands, 'exit' to quit.", addr)))

	c := newCLI(conn)
	if err := c.run(); err != nil {
		fmt.Println(colorErr(fmt.Sprintf("client exited with error: %v", err)))
		os.Exit(1)
	}
}
