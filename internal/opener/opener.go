// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package opener hands generated notes to the desktop's default
// application. It backs the auto_open_generated setting.
package opener

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Opener opens files with an external program.
type Opener interface {
	// Name returns the program used, e.g. "xdg-open".
	Name() string

	// Open starts the program for path without waiting for it to exit.
	Open(path string) error
}

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	Start(name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Start(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// command is an opener program plus the arguments placed before the path.
type command struct {
	bin  string
	args []string
	exec executor
}

func (c *command) Name() string { return c.bin }

func (c *command) Open(path string) error {
	args := make([]string, 0, len(c.args)+1)
	args = append(args, c.args...)
	args = append(args, path)
	if err := c.exec.Start(c.bin, args...); err != nil {
		return fmt.Errorf("opening %s with %s: %w", path, c.bin, err)
	}
	return nil
}

// candidates lists the opener programs to try on goos, in order.
func candidates(goos string) []command {
	switch goos {
	case "darwin":
		return []command{{bin: "open"}}
	case "windows":
		return []command{{bin: "rundll32", args: []string{"url.dll,FileProtocolHandler"}}}
	default:
		return []command{
			{bin: "xdg-open"},
			{bin: "gio", args: []string{"open"}},
			{bin: "wslview"},
		}
	}
}

var defaultExec = &osExecutor{}

// Detect returns the first opener available on this system.
func Detect() (Opener, error) {
	return detect(runtime.GOOS, defaultExec)
}

func detect(goos string, exec executor) (Opener, error) {
	cands := candidates(goos)
	names := make([]string, 0, len(cands))
	for _, c := range cands {
		if _, err := exec.LookPath(c.bin); err == nil {
			c.exec = exec
			return &c, nil
		}
		names = append(names, c.bin)
	}
	return nil, fmt.Errorf("no program to open files with: tried %v", names)
}
