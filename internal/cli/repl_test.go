package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/dsbrowser/internal/ui"
)

type fakeExec struct {
	calls  []string
	fields map[ui.Field]string

	promptErr error
}

func newFakeExec() *fakeExec {
	return &fakeExec{fields: map[ui.Field]string{}}
}

func (f *fakeExec) SetField(_ context.Context, field ui.Field, value string) error {
	f.fields[field] = value
	return nil
}
func (f *fakeExec) PromptSecret(context.Context) error {
	f.calls = append(f.calls, "prompt")
	return f.promptErr
}
func (f *fakeExec) ShowForm(context.Context) error  { f.calls = append(f.calls, "form"); return nil }
func (f *fakeExec) Connect(context.Context) error   { f.calls = append(f.calls, "connect"); return nil }
func (f *fakeExec) Save(context.Context) error      { f.calls = append(f.calls, "save"); return nil }
func (f *fakeExec) Clear(context.Context) error     { f.calls = append(f.calls, "clear"); return nil }
func (f *fakeExec) Disconnect(context.Context) error {
	f.calls = append(f.calls, "disconnect")
	return nil
}
func (f *fakeExec) Status(context.Context) error { f.calls = append(f.calls, "status"); return nil }

// capturePrintln records everything the REPL prints.
func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var out []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		out = append(out, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &out
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := capturePrintln(t)

	input := strings.Join([]string{
		"help",
		"server   https://10ax.online.tableau.com  ",
		"site sales",
		"token-name ci bot",
		"token s3cr3t",
		"",
		"form",
		"connect",
		"status",
		"save",
		"disconnect",
		"clear",
		"foobar",
		"exit",
		"connect",
	}, "\n")

	exec := newFakeExec()
	runREPL(context.Background(), exec, func() string { return "(idle)" }, bufio.NewScanner(strings.NewReader(input)))

	assert.Equal(t, []string{"form", "connect", "status", "save", "disconnect", "clear"}, exec.calls)
	assert.Equal(t, map[ui.Field]string{
		ui.FieldServerURL:   "https://10ax.online.tableau.com",
		ui.FieldSiteName:    "sales",
		ui.FieldTokenName:   "ci bot",
		ui.FieldTokenSecret: "s3cr3t",
	}, exec.fields)

	assert.Contains(t, *out, "dsb (idle) > ")
	assert.Contains(t, *out, helpText)
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Equal(t, "Bye!", (*out)[len(*out)-1])
}

func TestRunREPL_FieldWithoutValuePrintsUsage(t *testing.T) {
	out := capturePrintln(t)

	exec := newFakeExec()
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("server\nsite   \n")))

	assert.Empty(t, exec.fields)
	assert.Contains(t, *out, "Usage: server <value>")
	assert.Contains(t, *out, "Usage: site <value>")
}

func TestRunREPL_TokenWithoutValuePrompts(t *testing.T) {
	out := capturePrintln(t)

	exec := newFakeExec()
	exec.promptErr = ErrNoTerminal
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("token\n")))

	require.Equal(t, []string{"prompt"}, exec.calls)
	assert.Contains(t, *out, "error: "+ErrNoTerminal.Error())
}

func TestRunREPL_StopsAtEOF(t *testing.T) {
	capturePrintln(t)

	exec := newFakeExec()
	runREPL(context.Background(), exec, func() string { return "" }, bufio.NewScanner(strings.NewReader("connect")))

	assert.Equal(t, []string{"connect"}, exec.calls)
}
