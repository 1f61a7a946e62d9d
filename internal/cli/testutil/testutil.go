// Package testutil provides helpers for testing commands and their rendered
// output.
package testutil

import (
	"bytes"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/dessist/internal/cli/output"
)

// TestRenderer is a Renderer writing into buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a renderer in mode with a simulated terminal state.
func NewTestRenderer(mode output.OutputMode, isTTY bool) *TestRenderer {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererText creates a text renderer on a simulated terminal.
func NewTestRendererText() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererMarkdown creates a markdown renderer.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererJSON creates a JSON renderer.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns what was written to the output writer.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns what was written to the error writer.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ExecuteCommand runs cmd with args and returns its captured streams.
func ExecuteCommand(cmd *cobra.Command, args ...string) (stdout, stderr string, err error) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI fails when s contains ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown checks headers have text and that the rows of each
// table have as many cells as its header.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	cells := -1
	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
		if !strings.HasPrefix(trimmed, "|") {
			cells = -1
			continue
		}
		n := strings.Count(strings.ReplaceAll(trimmed, `\|`, ""), "|") - 1
		if cells < 0 {
			cells = n
		} else if n != cells {
			t.Errorf("table row at line %d has %d cells, header has %d: %q", i+1, n, cells, line)
		}
	}
}
