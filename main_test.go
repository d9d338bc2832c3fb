package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/moalang/moavm/internal/loader"
	"github.com/moalang/moavm/internal/logio"
)

type cliResult struct {
	stdout string
	stderr string
	code   int
}

func runCLI(t *testing.T, dir string, args ...string) cliResult {
	var stdout, stderr strings.Builder
	log := logio.NewLogger(&stderr)
	c := newCLI(&stdout, log)
	c.dir = dir
	cmd := c.command()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	log.ErrorIf(cmd.ExecuteContext(context.Background()))
	res := cliResult{stdout.String(), stderr.String(), log.ExitCode()}
	t.Logf("moavm %v => %v", strings.Join(args, " "), res.code)
	return res
}

func writeFile(t *testing.T, dir, name, content string) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const divByZeroSource = `
ERR_DATA "DivisionByZero" 1 0 1 "x" "t"
INT_PUSH 5
INT_PUSH 0
INT_DIV
`

func Test_CLI_asmRun(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "div.masm", divByZeroSource)
	prog := filepath.Join(dir, "div.mvm")

	res := runCLI(t, dir, "asm", src)
	require.Equal(t, 0, res.code, "stderr: %v", res.stderr)
	assert.Equal(t, "INFO: wrote 49 bytes to "+prog+"\n", res.stderr)

	res = runCLI(t, dir, "run", "--stacks", prog)
	assert.Equal(t, 1, res.code, "expected a halted program to exit non-zero")
	assert.Equal(t, divReport+"int_stack: []\nfloat_stack: []\n", res.stdout)
	assert.Equal(t, "", res.stderr)

	res = runCLI(t, dir, "disasm", prog)
	assert.Equal(t, 0, res.code)
	assert.Equal(t, lines(
		`0000  ERR_DATA "DivisionByZero" 1 0 1 "x" "t"`,
		`0030  INT_PUSH 5`,
		`0039  INT_PUSH 0`,
		`0048  INT_DIV`,
	), res.stdout)
}

func Test_CLI_compressed(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "sub.masm", "INT_PUSH 10\nINT_PUSH 3\nINT_SUB\n")
	prog := filepath.Join(dir, "out.bin")

	res := runCLI(t, dir, "asm", "--compress", "-o", prog, src)
	require.Equal(t, 0, res.code, "stderr: %v", res.stderr)

	data, err := os.ReadFile(prog)
	require.NoError(t, err)
	assert.True(t, loader.IsCompressed(data), "expected a zstd frame")

	res = runCLI(t, dir, "run", "--stacks", prog)
	assert.Equal(t, 0, res.code, "stderr: %v", res.stderr)
	assert.Equal(t, "int_stack: [7]\nfloat_stack: []\n", res.stdout)
}

func Test_CLI_raw(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "magic.masm", ".byte 0x28 0xb5 0x2f 0xfd 0x18\nINT_PUSH 1\n")
	require.Equal(t, 0, runCLI(t, dir, "asm", src).code)
	prog := filepath.Join(dir, "magic.mvm")

	res := runCLI(t, dir, "run", "--stacks", prog)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, "zstd")

	res = runCLI(t, dir, "run", "--stacks", "--raw", prog)
	assert.Equal(t, 0, res.code, "stderr: %v", res.stderr)
	assert.Equal(t, "int_stack: [1]\nfloat_stack: []\n", res.stdout)

	res = runCLI(t, dir, "disasm", "--raw", prog)
	assert.Equal(t, 0, res.code, "stderr: %v", res.stderr)
	assert.Equal(t, lines(
		"0000  .byte 0x28",
		"0001  .byte 0xb5",
		"0002  .byte 0x2f",
		"0003  .byte 0xfd",
		"0004  .byte 0x18",
		"0005  INT_PUSH 1",
	), res.stdout)
}

func Test_CLI_yaml(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "mix.masm", "INT_PUSH 10\nINT_PUSH 3\nINT_SUB\nFLOAT_PUSH 18\n")
	require.Equal(t, 0, runCLI(t, dir, "asm", src).code)

	res := runCLI(t, dir, "run", "--stacks", "--format", "yaml", filepath.Join(dir, "mix.mvm"))
	require.Equal(t, 0, res.code, "stderr: %v", res.stderr)

	var snap vmSnapshot
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &snap))
	assert.Equal(t, vmSnapshot{
		State:      "running",
		Pos:        28,
		IntStack:   []int64{7},
		FloatStack: []float64{18},
		ErrorStack: 0,
	}, snap)
}

func Test_CLI_config(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "one.masm", "INT_PUSH 1\n")
	require.Equal(t, 0, runCLI(t, dir, "asm", src).code)
	prog := filepath.Join(dir, "one.mvm")

	res := runCLI(t, dir, "run", prog)
	assert.Equal(t, "", res.stdout, "expected no stacks by default")

	writeFile(t, dir, "moavm.toml", "[run]\nstacks = true\n")
	res = runCLI(t, dir, "run", prog)
	assert.Equal(t, "int_stack: [1]\nfloat_stack: []\n", res.stdout, "expected stacks from moavm.toml")

	res = runCLI(t, dir, "run", "--stacks=false", prog)
	assert.Equal(t, "", res.stdout, "expected flag to override moavm.toml")

	other := writeFile(t, t.TempDir(), "other.toml", "[run]\nformat = \"xml\"\n")
	res = runCLI(t, dir, "--config", other, "run", prog)
	assert.Equal(t, 1, res.code)
	assert.Contains(t, res.stderr, `run.format must be "text" or "yaml", not "xml"`)
}

func Test_CLI_errors(t *testing.T) {
	dir := t.TempDir()

	mixed := filepath.Join(dir, "mixed.mvm")
	require.NoError(t, os.WriteFile(mixed, mixedProgram, 0o644))

	for _, tc := range []struct {
		name   string
		args   []string
		stdout string
		stderr string
	}{
		{
			name:   "contract violation",
			args:   []string{"run", "--stacks", mixed},
			stdout: "int_stack: [8, 7]\nfloat_stack: []\n",
			stderr: "ERROR: " + mixed + ": FLOAT_DIV @38: float stack: stack underflow\n",
		},
		{
			name:   "missing program",
			args:   []string{"run", filepath.Join(dir, "nope.mvm")},
			stderr: "ERROR: cannot open program: open " + filepath.Join(dir, "nope.mvm") + ": no such file or directory\n",
		},
		{
			name:   "bad format",
			args:   []string{"run", "--format", "xml", mixed},
			stderr: `ERROR: invalid flags: run.format must be "text" or "yaml", not "xml"` + "\n",
		},
		{
			name:   "asm overwrite",
			args:   []string{"asm", mixed},
			stderr: "ERROR: refusing to overwrite " + mixed + ", use -o\n",
		},
		{
			name:   "asm error",
			args:   []string{"asm", writeFile(t, dir, "bad.masm", "NOP\nJMP 4\n")},
			stderr: "ERROR: " + filepath.Join(dir, "bad.masm") + `: line 2: unknown mnemonic "JMP"` + "\n",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			res := runCLI(t, dir, tc.args...)
			assert.Equal(t, 1, res.code)
			assert.Equal(t, tc.stdout, res.stdout)
			assert.Equal(t, tc.stderr, res.stderr)
		})
	}
}
