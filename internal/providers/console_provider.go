package providers

import (
	"backlog/internal/structures"
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// ConsoleProviderInterface is the line-oriented terminal the shell and the
// views share. It serves confirmations and notices as well as command input.
type ConsoleProviderInterface interface {
	ReadLine() (string, error)
	Confirm(prompt string) bool
	Info(msg string)
	Error(msg string)
	Printf(format string, args ...interface{})
	Out() io.Writer
}

type ConsoleProvider struct {
	in  *bufio.Reader
	out io.Writer
	mu  sync.Mutex
}

func NewStdConsole() *structures.Console {
	return &structures.Console{In: os.Stdin, Out: os.Stdout}
}

func NewConsoleProvider(console *structures.Console) ConsoleProviderInterface {
	return &ConsoleProvider{in: bufio.NewReader(console.In), out: console.Out}
}

// ReadLine returns the next input line without its terminator. A final line
// without a newline is returned before io.EOF.
func (c *ConsoleProvider) ReadLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Confirm defaults to no on anything but y/yes, including end of input.
func (c *ConsoleProvider) Confirm(prompt string) bool {
	c.Printf("%s [y/N]: ", prompt)
	answer, err := c.ReadLine()
	if err != nil {
		c.Printf("\n")
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

func (c *ConsoleProvider) Info(msg string) {
	c.Printf("%s\n", msg)
}

func (c *ConsoleProvider) Error(msg string) {
	c.Printf("error: %s\n", msg)
}

func (c *ConsoleProvider) Printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = fmt.Fprintf(c.out, format, args...)
}

func (c *ConsoleProvider) Out() io.Writer {
	return c.out
}
