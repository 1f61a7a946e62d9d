package output_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/dessist/internal/cli/output"
	"github.com/leapstack-labs/dessist/internal/cli/testutil"
)

func TestMode(t *testing.T) {
	tests := []struct {
		in   string
		want output.OutputMode
	}{
		{"text", output.ModeText},
		{"TEXT", output.ModeText},
		{"markdown", output.ModeMarkdown},
		{"json", output.ModeJSON},
		{"auto", output.ModeAuto},
		{"", output.ModeAuto},
		{"yaml", output.ModeAuto},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, output.Mode(tt.in))
		})
	}
}

func TestEffectiveMode(t *testing.T) {
	assert.Equal(t, output.ModeText, testutil.NewTestRenderer(output.ModeAuto, true).EffectiveMode())
	assert.Equal(t, output.ModeMarkdown, testutil.NewTestRenderer(output.ModeAuto, false).EffectiveMode())
	assert.Equal(t, output.ModeJSON, testutil.NewTestRenderer(output.ModeJSON, true).EffectiveMode())
}

func TestRenderer_Markdown(t *testing.T) {
	tr := testutil.NewTestRendererMarkdown()

	tr.Header(1, "Conversion")
	tr.Success("load.dtsx converted")
	tr.Warning("one diagnostic")
	tr.Muted("1 converted")
	tr.Table([]string{"Package", "Status"}, [][]string{{"Customer Load", "succeeded"}})
	tr.Error("broken.dtsx failed")

	out := tr.Output()
	testutil.AssertNoANSI(t, out)
	testutil.AssertValidMarkdown(t, out)
	assert.True(t, strings.HasPrefix(out, "# Conversion\n\n"))
	assert.Contains(t, out, "- ✓ load.dtsx converted")
	assert.Contains(t, out, "- ! one diagnostic")
	assert.Contains(t, out, "1 converted")
	assert.Contains(t, out, "| Customer Load | succeeded |")
	assert.Equal(t, "Error: broken.dtsx failed\n", tr.ErrorOutput())
}

func TestRenderer_Text(t *testing.T) {
	tr := testutil.NewTestRendererText()

	tr.Header(1, "Conversion")
	tr.Table([]string{"Package", "Status"}, [][]string{{"Customer Load", "succeeded"}})
	tr.Error("broken")

	assert.Contains(t, tr.Output(), "Conversion")
	assert.Contains(t, tr.Output(), "Customer Load")
	assert.NotContains(t, tr.Output(), "| Customer Load |")
	assert.Contains(t, tr.ErrorOutput(), "✗ broken")
}

func TestRenderer_JSON(t *testing.T) {
	tr := testutil.NewTestRendererJSON()

	require.NoError(t, tr.JSON(output.ConvertSummary{Total: 2, Succeeded: 1, Failed: 1}))
	testutil.AssertNoANSI(t, tr.Output())

	var got output.ConvertSummary
	require.NoError(t, json.Unmarshal(tr.Out.Bytes(), &got))
	assert.Equal(t, 2, got.Total)
	assert.Equal(t, 1, got.Failed)
	assert.Contains(t, tr.Output(), "\n  \"succeeded\": 1")
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "# Plan", output.FormatHeader(0, "Plan"))
	assert.Equal(t, "### Plan", output.FormatHeader(3, "Plan"))
	assert.Equal(t, "- **Status**: failed", output.FormatKeyValue("Status", "failed"))
}
