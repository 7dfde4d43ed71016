package shell

import (
	"strings"
	"sync"

	"github.com/brettbedarf/webterm/config"
	"github.com/brettbedarf/webterm/filesystem"
	"github.com/brettbedarf/webterm/internal/util"
)

// Terminal is the editable text surface in front of a [Shell]. Everything up
// to the current prompt is read-only; a trailing newline submits the pending
// input. Terminal is safe for concurrent use and runs one command at a time.
type Terminal struct {
	mu         sync.Mutex
	shell      *Shell
	buf        *BufferOutput
	restricted string // buffer prefix that may not be edited
}

// NewTerminal creates a terminal showing the first prompt of a new shell
func NewTerminal(cfg *config.Config, tree *filesystem.Tree, registry *Registry) *Terminal {
	buf := &BufferOutput{}
	t := &Terminal{
		shell: New(cfg, tree, registry, buf),
		buf:   buf,
	}
	buf.Print(t.shell.Prompt())
	t.restricted = buf.String()
	return t
}

// Buffer returns the full terminal content
func (t *Terminal) Buffer() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}

// Prompt returns the prompt of the underlying shell
func (t *Terminal) Prompt() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.shell.Prompt()
}

// OnInput handles a change of the whole buffer and returns what the buffer
// must show afterwards. An edit that touches the read-only prefix is reverted.
// If the buffer ends with a newline every pending line runs in order.
func (t *Terminal) OnInput(buffer string) string {
	logger := util.GetLogger("Terminal.OnInput")

	t.mu.Lock()
	defer t.mu.Unlock()

	if !strings.HasPrefix(buffer, t.restricted) {
		logger.Trace().Msg("Reverting edit before the prompt")
		t.buf.Set(t.restricted)
		return t.restricted
	}

	pending := buffer[len(t.restricted):]
	if !strings.HasSuffix(pending, "\n") {
		t.buf.Set(buffer)
		return buffer
	}

	t.buf.Set(t.restricted)
	lines := strings.Split(strings.TrimSuffix(pending, "\n"), "\n")
	for i, line := range lines {
		if i > 0 {
			t.buf.Print(t.shell.Prompt())
		}
		t.buf.Println(line)
		if err := t.shell.Exec(line); err != nil {
			logger.Warn().Err(err).Str("line", line).Msg("Command failed")
		}
		t.newLineLocked()
	}
	t.buf.Print(t.shell.Prompt())
	t.restricted = t.buf.String()
	return t.restricted
}

// Submit runs line as if it had been typed after the prompt and returns the
// output it produced. The output is empty when the command cleared the screen.
func (t *Terminal) Submit(line string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.buf.Set(t.restricted)
	t.buf.Println(line)
	mark, clears := t.buf.Len(), t.buf.Clears()

	err := t.shell.Exec(line)

	var output string
	if t.buf.Clears() == clears {
		output = t.buf.String()[mark:]
	}
	t.newLineLocked()
	t.buf.Print(t.shell.Prompt())
	t.restricted = t.buf.String()
	return output, err
}

// newLineLocked makes sure the next prompt starts on its own line
func (t *Terminal) newLineLocked() {
	if s := t.buf.String(); s != "" && !strings.HasSuffix(s, "\n") {
		t.buf.Print("\n")
	}
}
