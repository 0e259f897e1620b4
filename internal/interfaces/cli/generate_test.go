package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brailleforge/brailleforge/internal/infrastructure/export"
	"github.com/brailleforge/brailleforge/internal/interfaces/cli"
)

// smallParams keeps boolean work cheap in CLI round trips.
func smallParams() []string {
	return []string{
		"--param", "grid_columns=5",
		"--param", "grid_rows=2",
		"--param", "card_width=40",
		"--param", "card_height=30",
		"--param", "dot_segments=8",
	}
}

func TestGenerateCommand_WritesSTL(t *testing.T) {
	out := filepath.Join(t.TempDir(), "plate.stl")

	cmd := cli.NewRootCommand()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stdout)
	args := append([]string{
		"generate",
		"--line", "⠁⠃",
		"--source", "ab",
		"-o", out,
	}, smallParams()...)
	cmd.SetArgs(args)

	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), out)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	m, err := export.DecodeSTL(f)
	require.NoError(t, err)
	assert.Positive(t, m.Len())
}

func TestGenerateCommand_CounterPlateDefaultFilename(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "ab_counter_plate.stl")

	cmd := cli.NewRootCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	args := append([]string{
		"generate",
		"--line", "⠁",
		"--source", "ab",
		"--plate", "counter",
		"-o", out,
	}, smallParams()...)
	cmd.SetArgs(args)

	require.NoError(t, cmd.Execute())
	_, err := os.Stat(out)
	assert.NoError(t, err)
}

func TestGenerateCommand_RequiresLine(t *testing.T) {
	cmd := cli.NewRootCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"generate"})

	assert.Error(t, cmd.Execute())
}

func TestGenerateCommand_RejectsMalformedParam(t *testing.T) {
	cmd := cli.NewRootCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"generate", "--line", "⠁", "--param", "noequals"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key=value")
}

func TestGenerateCommand_UnknownParamRejected(t *testing.T) {
	cmd := cli.NewRootCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"generate", "--line", "⠁", "--param", "dot_diamter=2.0",
		"-o", filepath.Join(t.TempDir(), "x.stl")})

	assert.Error(t, cmd.Execute())
}
