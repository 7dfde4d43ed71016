package shell

import (
	"errors"
	"fmt"
	"strings"

	"github.com/brettbedarf/webterm/filesystem"
)

// builtins lists every command the shell knows, in help order
func builtins() []Command {
	return []Command{
		{Name: "cd", Usage: "cd [dir|..]", Summary: "change the current directory", Run: cd},
		{Name: "ls", Usage: "ls [-a] [dir]", Summary: "list directory entries", Run: ls},
		{Name: "pwd", Usage: "pwd", Summary: "print the current directory", Run: pwd},
		{Name: "echo", Usage: "echo [-n] args...", Summary: "print arguments", Run: echo},
		{Name: "printf", Usage: "printf format args...", Summary: "print formatted arguments", Run: printf},
		{Name: "mkdir", Usage: "mkdir name...", Summary: "create directories", Run: mkdir},
		{Name: "rm", Usage: "rm -rf", Summary: "remove files (not really)", Run: rm},
		{Name: "cat", Usage: "cat file...", Summary: "print file contents", Run: cat},
		{Name: "touch", Usage: "touch file...", Summary: "create empty files", Run: touch},
		{Name: "clear", Usage: "clear", Summary: "clear the terminal", Run: clearScreen},
		{Name: "help", Usage: "help", Summary: "list available commands", Run: help},
	}
}

func cd(s *Shell, out Output, args []Token) error {
	switch len(args) {
	case 1:
		s.cwd = "~"
		return nil
	case 2:
	default:
		return cmdErr(ErrInvalidArgument, "Too many args for cd command")
	}

	name := args[1].String()
	if name == ".." {
		s.cwd = parentOf(s.cwd)
		return nil
	}

	target := s.resolve(name)
	info, err := s.tree.Stat(target)
	if err != nil || !info.IsDir() {
		return cmdErr(ErrNotFound, `cd: The directory "`+name+`" does not exist`)
	}
	s.cwd = s.tree.Display(target)
	return nil
}

// parentOf pops the last segment of a display path. "~" and "/" have no
// parent.
func parentOf(cwd string) string {
	if cwd == "~" || cwd == "/" {
		return cwd
	}
	i := strings.LastIndex(cwd, "/")
	if i <= 0 {
		return "/"
	}
	return cwd[:i]
}

func ls(s *Shell, out Output, args []Token) error {
	all := false
	name, dir := "", s.cwd
	for _, a := range args[1:] {
		if a.String() == "-a" {
			all = true
			continue
		}
		name, dir = a.String(), s.resolve(a.String())
	}

	info, err := s.tree.Stat(dir)
	if err != nil {
		return cmdErr(ErrNotFound, fmt.Sprintf("ls: cannot access '%s': No such file or directory", name))
	}
	if !info.IsDir() {
		out.Println(info.Name)
		return nil
	}
	entries, err := s.tree.ReadDir(dir)
	if err != nil {
		return err
	}

	var visible []string
	for _, e := range entries {
		name := e.Name
		if e.IsDir() {
			name += "/"
		}
		if all {
			out.Print(name + "  ")
			continue
		}
		if !strings.HasPrefix(name, ".") {
			visible = append(visible, name)
		}
	}
	if len(visible) > 0 {
		out.Println(strings.Join(visible, "  "))
	}
	return nil
}

func pwd(s *Shell, out Output, args []Token) error {
	h, err := s.tree.Open(s.cwd, 0)
	if err != nil {
		return err
	}
	defer s.tree.Close(h) //nolint:errcheck

	p, err := s.tree.Getcwd(h)
	if err != nil {
		return err
	}
	out.Println(p)
	return nil
}

func echo(s *Shell, out Output, args []Token) error {
	words := Strings(args[1:])
	if len(words) > 0 && words[0] == "-n" {
		out.Print(strings.Join(words[1:], " "))
		return nil
	}
	out.Println(strings.Join(words, " "))
	return nil
}

func printf(s *Shell, out Output, args []Token) error {
	if len(args) < 2 {
		return cmdErr(ErrInvalidArgument, "printf: usage: printf format [arguments]")
	}
	text, err := formatPrintf(args[1].String(), args[2:])
	if err != nil {
		return err
	}
	out.Print(text)
	return nil
}

func mkdir(s *Shell, out Output, args []Token) error {
	if len(args) < 2 {
		return cmdErr(ErrInvalidArgument, "mkdir: missing operand")
	}
	for _, a := range args[1:] {
		name := a.String()
		if name == "mkdir" || strings.Contains(name, "/") {
			continue
		}
		err := s.tree.Mkdir(s.resolve(name), filesystem.DirPerm)
		switch {
		case err == nil:
		case errors.Is(err, filesystem.ErrExists):
			out.Println(fmt.Sprintf("mkdir: cannot create directory '%s': File exists", name))
		case errors.Is(err, filesystem.ErrNotFound):
			out.Println(fmt.Sprintf("mkdir: cannot create directory '%s': No such file or directory", name))
		default:
			return err
		}
	}
	return nil
}

func rm(s *Shell, out Output, args []Token) error {
	if len(args) > 1 && args[1].String() == "-rf" {
		out.Println("hahaha so funny")
	}
	return nil
}

func cat(s *Shell, out Output, args []Token) error {
	for _, a := range args[1:] {
		name := a.String()
		content, err := s.tree.Read(s.resolve(name))
		switch {
		case err == nil:
			out.Print(string(content))
		case errors.Is(err, filesystem.ErrNotFound):
			out.Println("cat: " + name + ": No such file or directory")
		case errors.Is(err, filesystem.ErrIsDir):
			out.Println("cat: " + name + ": Is a directory")
		default:
			return err
		}
	}
	return nil
}

func touch(s *Shell, out Output, args []Token) error {
	if len(args) < 2 {
		return cmdErr(ErrInvalidArgument, "touch: missing file operand")
	}
	for _, a := range args[1:] {
		name := a.String()
		h, err := s.tree.Open(s.resolve(name), filesystem.Create)
		if err != nil {
			out.Println(fmt.Sprintf("touch: cannot touch '%s': No such file or directory", name))
			continue
		}
		if err := s.tree.Close(h); err != nil {
			return err
		}
	}
	return nil
}

func clearScreen(s *Shell, out Output, args []Token) error {
	out.Clear()
	return nil
}

func help(s *Shell, out Output, args []Token) error {
	for _, name := range s.registry.Names() {
		cmd, err := s.registry.Lookup(name)
		if err != nil {
			return err
		}
		out.Println(fmt.Sprintf("%-24s %s", cmd.Usage, cmd.Summary))
	}
	return nil
}
