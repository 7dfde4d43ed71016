package shell

import (
	"sync"
	"testing"

	"github.com/brettbedarf/webterm/config"
	"github.com/brettbedarf/webterm/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const homePrompt = "N@castle:~$ "

func createTestTerminal(t *testing.T) *Terminal {
	t.Helper()
	cfg := config.NewDefaultConfig()
	tree, err := filesystem.NewTree(cfg)
	require.NoError(t, err)
	require.NoError(t, tree.Seed(cfg.Seed))
	return NewTerminal(cfg, tree, DefaultRegistry())
}

func TestTerminal_New(t *testing.T) {
	t.Parallel()

	term := createTestTerminal(t)

	assert.Equal(t, homePrompt, term.Buffer())
	assert.Equal(t, homePrompt, term.Prompt())
}

func TestTerminal_OnInput_Typing(t *testing.T) {
	t.Parallel()

	term := createTestTerminal(t)

	got := term.OnInput(homePrompt + "ec")

	assert.Equal(t, homePrompt+"ec", got)
	assert.Equal(t, homePrompt+"ec", term.Buffer())
}

func TestTerminal_OnInput_Submit(t *testing.T) {
	t.Parallel()

	term := createTestTerminal(t)

	got := term.OnInput(homePrompt + "echo hi\n")

	assert.Equal(t, homePrompt+"echo hi\nhi\n"+homePrompt, got)
}

func TestTerminal_OnInput_PromptFollowsCd(t *testing.T) {
	t.Parallel()

	term := createTestTerminal(t)

	got := term.OnInput(homePrompt + "cd Idk\n")

	assert.Equal(t, homePrompt+"cd Idk\nN@castle:~/Idk$ ", got)
	assert.Equal(t, "N@castle:~/Idk$ ", term.Prompt())
}

func TestTerminal_OnInput_NoTrailingNewline(t *testing.T) {
	t.Parallel()

	term := createTestTerminal(t)

	got := term.OnInput(homePrompt + "echo -n x\n")

	assert.Equal(t, homePrompt+"echo -n x\nx\n"+homePrompt, got, "prompt starts on a new line")
}

func TestTerminal_OnInput_RevertsEditsBeforePrompt(t *testing.T) {
	t.Parallel()

	term := createTestTerminal(t)
	after := term.OnInput(homePrompt + "echo one\n")

	tests := []string{
		"",
		"N@castle:~",
		after[:len(after)-3],
		"X" + after + "ls\n",
	}
	for _, edit := range tests {
		got := term.OnInput(edit)
		assert.Equal(t, after, got, "edit %q must be reverted", edit)
		assert.Equal(t, after, term.Buffer())
	}
}

func TestTerminal_OnInput_MultipleLines(t *testing.T) {
	t.Parallel()

	term := createTestTerminal(t)

	got := term.OnInput(homePrompt + "cd Idk\npwd\n")

	assert.Equal(t, homePrompt+"cd Idk\nN@castle:~/Idk$ pwd\n~/Idk\nN@castle:~/Idk$ ", got)
}

func TestTerminal_OnInput_Clear(t *testing.T) {
	t.Parallel()

	term := createTestTerminal(t)
	term.OnInput(homePrompt + "echo hi\n")

	got := term.OnInput(term.Buffer() + "clear\n")

	assert.Equal(t, homePrompt, got)
}

func TestTerminal_OnInput_UnknownCommand(t *testing.T) {
	t.Parallel()

	term := createTestTerminal(t)

	got := term.OnInput(homePrompt + "foo\n")

	assert.Equal(t, homePrompt+"foo\nfoo: command not found\n"+homePrompt, got)
}

func TestTerminal_Submit(t *testing.T) {
	t.Parallel()

	term := createTestTerminal(t)

	out, err := term.Submit("echo hi")
	require.NoError(t, err)
	assert.Equal(t, "hi\n", out)
	assert.Equal(t, homePrompt+"echo hi\nhi\n"+homePrompt, term.Buffer())

	out, err = term.Submit("clear")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, homePrompt, term.Buffer())
}

func TestTerminal_Submit_DropsUnsubmittedInput(t *testing.T) {
	t.Parallel()

	term := createTestTerminal(t)
	term.OnInput(homePrompt + "half typed")

	_, err := term.Submit("pwd")

	require.NoError(t, err)
	assert.Equal(t, homePrompt+"pwd\n~\n"+homePrompt, term.Buffer())
}

func TestTerminal_ConcurrentSubmits(t *testing.T) {
	t.Parallel()

	term := createTestTerminal(t)
	var wg sync.WaitGroup

	for range 20 {
		wg.Go(func() {
			_, err := term.Submit("mkdir d")
			assert.NoError(t, err)
		})
	}
	wg.Wait()

	entries, err := term.shell.Tree().ReadDir("~")
	require.NoError(t, err)
	count := 0
	for _, e := range entries {
		if e.Name == "d" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}
