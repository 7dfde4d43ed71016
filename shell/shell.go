package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brettbedarf/webterm/config"
	"github.com/brettbedarf/webterm/filesystem"
	"github.com/brettbedarf/webterm/internal/util"
)

// Shell is a single interactive session: a current directory over a shared
// [filesystem.Tree] plus the output it writes to. A Shell runs one command at
// a time and is not safe for concurrent use.
type Shell struct {
	tree     *filesystem.Tree
	registry *Registry
	out      Output
	user     string
	host     string
	cwd      string // display form, "~" for the home dir
}

// New creates a shell in the home directory
func New(cfg *config.Config, tree *filesystem.Tree, registry *Registry, out Output) *Shell {
	return &Shell{
		tree:     tree,
		registry: registry,
		out:      out,
		user:     cfg.User,
		host:     cfg.Host,
		cwd:      "~",
	}
}

// Cwd returns the current directory with the home dir shown as "~"
func (s *Shell) Cwd() string {
	return s.cwd
}

// Prompt renders "<user>@<host>:<cwd>$ "
func (s *Shell) Prompt() string {
	return s.user + "@" + s.host + ":" + s.cwd + "$ "
}

func (s *Shell) Tree() *filesystem.Tree {
	return s.tree
}

func (s *Shell) Registry() *Registry {
	return s.registry
}

// resolve turns a command argument into a tree path. Absolute and "~" paths
// are used as is, anything else is relative to cwd.
func (s *Shell) resolve(p string) string {
	if p == "~" || strings.HasPrefix(p, "/") || strings.HasPrefix(p, "~/") {
		return p
	}
	return s.cwd + "/" + p
}

// Exec parses and runs one input line. Failures a command reports to the user
// are printed and swallowed; Exec only returns errors nobody anticipated,
// after printing them too. Neither ever ends the session.
func (s *Shell) Exec(line string) error {
	logger := util.GetLogger("Shell.Exec")

	args := Parse(line)
	if len(args) == 0 {
		return nil
	}
	args, redir, err := splitRedirect(args)
	if err != nil {
		s.out.Println(err.Error())
		return nil
	}
	if len(args) == 0 {
		// bare "> file" creates or truncates
		return s.redirect(redir, "")
	}

	name := args[0].String()
	cmd, err := s.registry.Lookup(name)
	if err != nil {
		logger.Debug().Str("name", name).Msg("Unknown command")
		s.out.Println(name + ": command not found")
		return nil
	}

	out := s.out
	var captured *BufferOutput
	if redir != nil {
		captured = &BufferOutput{}
		out = captured
	}

	logger.Trace().Strs("args", Strings(args)).Msg("Running command")
	runErr := cmd.Run(s, out, args)
	if captured != nil {
		if err := s.redirect(redir, captured.String()); err != nil {
			return err
		}
	}
	if runErr == nil {
		return nil
	}

	var ce *CommandError
	if errors.As(runErr, &ce) {
		s.out.Println(ce.Msg)
		return nil
	}
	logger.Error().Err(runErr).Str("name", name).Msg("Command failed")
	s.out.Println(runErr.Error())
	return fmt.Errorf("%s: %w", name, runErr)
}

// redirection is a trailing "> file" or ">> file"
type redirection struct {
	target string
	append bool
}

// splitRedirect strips an unquoted ">" or ">>" and its target from args
func splitRedirect(args []Token) ([]Token, *redirection, error) {
	for i, a := range args {
		if a.quoted || (a.text != ">" && a.text != ">>") {
			continue
		}
		if i+1 >= len(args) {
			return nil, nil, cmdErr(ErrInvalidArgument, "syntax error near unexpected token `newline'")
		}
		r := &redirection{target: args[i+1].String(), append: a.text == ">>"}
		rest := append(append([]Token{}, args[:i]...), args[i+2:]...)
		return rest, r, nil
	}
	return args, nil, nil
}

func (s *Shell) redirect(r *redirection, content string) error {
	flags := filesystem.Create | filesystem.Trunc
	if r.append {
		flags = filesystem.Create | filesystem.Append
	}
	_, err := s.tree.Write(s.resolve(r.target), flags, []byte(content))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, filesystem.ErrNotFound), errors.Is(err, filesystem.ErrNotDir):
		s.out.Println(r.target + ": No such file or directory")
		return nil
	case errors.Is(err, filesystem.ErrIsDir):
		s.out.Println(r.target + ": Is a directory")
		return nil
	default:
		s.out.Println(err.Error())
		return fmt.Errorf("redirect to %s: %w", r.target, err)
	}
}
