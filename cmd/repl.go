package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/brettbedarf/webterm/config"
	"github.com/brettbedarf/webterm/filesystem"
	"github.com/brettbedarf/webterm/internal/util"
	"github.com/brettbedarf/webterm/shell"
	"github.com/fatih/color"
)

// runREPL runs an interactive shell over a freshly seeded tree until EOF or
// "exit".
func runREPL(cfg *config.Config, in io.Reader, out io.Writer) error {
	logger := util.GetLogger("REPL")

	tree, err := filesystem.NewTree(cfg)
	if err != nil {
		return err
	}
	if err := tree.Seed(cfg.Seed); err != nil {
		logger.Warn().Err(err).Msg("Seeding incomplete")
	}

	w := shell.NewWriterOutput(out)
	sh := shell.New(cfg, tree, shell.DefaultRegistry(), w)
	prompt := color.New(color.FgGreen, color.Bold)

	scanner := bufio.NewScanner(in)
	for {
		w.EndLine()
		prompt.Fprint(out, sh.Prompt()) //nolint:errcheck
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := scanner.Text()
		if strings.TrimSpace(line) == "exit" {
			return nil
		}
		if err := sh.Exec(line); err != nil {
			logger.Debug().Err(err).Str("line", line).Msg("Command failed")
		}
	}
}
