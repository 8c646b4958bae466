package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/tabtext"
)

const peopleCSV = "name,age\nann,30\nbob,4\n"

// These tests swap the global logger and run sequentially.

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_CONFIG_DIRS", filepath.Join(dir, "config"))
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return dir
}

func writeInput(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestConvert(t *testing.T) {
	dir := setup(t)
	csvPath := writeInput(t, dir, "people.csv", peopleCSV)
	mdPath := writeInput(t, dir, "people.md", "| name | age |\n| ---- | --- |\n| ann  | 30  |\n| bob  | 4   |\n")

	tests := map[string]struct {
		stdin string
		args  []string
		want  string
	}{
		"csv to csv": {
			args: []string{csvPath, "-f", "csv"},
			want: "name;age\nann;30\nbob;4\n",
		},
		"markdown by extension": {
			args: []string{mdPath, "-f", "tsv"},
			want: "name\tage\nann\t30\nbob\t4\n",
		},
		"selects": {
			args: []string{csvPath, "-f", "csv", "age", "name"},
			want: "age;name\n30;ann\n4;bob\n",
		},
		"format directive": {
			args: []string{mdPath, "name", "@csv"},
			want: "name\nann\nbob\n",
		},
		"directive beats flag": {
			args: []string{csvPath, "-f", "json", "name", "@data"},
			want: "ann\nbob\n",
		},
		"stdin": {
			stdin: peopleCSV,
			args:  []string{"-", "-i", "csv", "-f", "data"},
			want:  "ann\t30\nbob\t4\n",
		},
		"filter": {
			args: []string{csvPath, "-f", "list", "name", "age>10"},
			want: "ann;30\n",
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got, _, err := execute(t, tt.stdin, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConvertToFile(t *testing.T) {
	dir := setup(t)
	in := writeInput(t, dir, "people.csv", peopleCSV)
	out := filepath.Join(dir, "people.json")

	stdout, _, err := execute(t, "", in, "-o", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	table, headers, err := tabtext.Load(f, tabtext.JSON)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"name", "age"}, headers)
	require.Len(t, table, 2)
	name, ok := table[0].Get("name")
	require.True(t, ok)
	assert.Equal(t, "ann", name.String())
}

func TestXLSXRoundTrip(t *testing.T) {
	dir := setup(t)
	in := writeInput(t, dir, "people.csv", peopleCSV)
	book := filepath.Join(dir, "people.xlsx")

	_, _, err := execute(t, "", in, "-o", book)
	require.NoError(t, err)
	assert.FileExists(t, book)

	got, _, err := execute(t, "", book, "-f", "csv")
	require.NoError(t, err)
	assert.Equal(t, "name;age\nann;30\nbob;4\n", got)
}

func TestXLSXNeedsOutputFile(t *testing.T) {
	dir := setup(t)
	in := writeInput(t, dir, "people.csv", peopleCSV)

	_, _, err := execute(t, "", in, "-f", "xlsx")
	require.ErrorIs(t, err, errNeedOutputFile)
}

func TestConfigFile(t *testing.T) {
	dir := setup(t)
	in := writeInput(t, dir, "people.csv", peopleCSV)
	cfg := writeInput(t, dir, "tabtext.toml", "format = \"tsv\"\nnoheaders = true\n")

	got, _, err := execute(t, "", in, "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "ann\t30\nbob\t4\n", got)

	got, _, err = execute(t, "", in, "--config", cfg, "-f", "list")
	require.NoError(t, err)
	assert.Equal(t, "ann;30\nbob;4\n", got, "flags beat the config file")
}

func TestVerboseLogsToStderr(t *testing.T) {
	dir := setup(t)
	in := writeInput(t, dir, "people.csv", peopleCSV)

	_, stderr, err := execute(t, "", in, "-f", "csv", "-v")
	require.NoError(t, err)
	assert.Contains(t, stderr, "table loaded")
	assert.Contains(t, stderr, "component=cli")
}

func TestBareLogFileUsesStateDir(t *testing.T) {
	dir := setup(t)
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	xdg.Reload()
	in := writeInput(t, dir, "people.csv", peopleCSV)

	_, _, err := execute(t, "", in, "-f", "csv", "-v", "--log-file")
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dir, "state", "tabtext", "tabtext.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"message":"table loaded"`)
}

func TestXLSXKeepsSelects(t *testing.T) {
	dir := setup(t)
	in := writeInput(t, dir, "people.csv", peopleCSV)
	book := filepath.Join(dir, "ages.xlsx")

	_, _, err := execute(t, "", in, "-o", book, "age@years", "name")
	require.NoError(t, err)

	got, _, err := execute(t, "", book, "-f", "csv")
	require.NoError(t, err)
	assert.Equal(t, "years;name\n4;bob\n30;ann\n", got)
}

func TestErrors(t *testing.T) {
	dir := setup(t)
	in := writeInput(t, dir, "people.csv", peopleCSV)

	tests := map[string]struct {
		args   []string
		target error
	}{
		"missing input": {
			args:   []string{filepath.Join(dir, "missing.csv")},
			target: os.ErrNotExist,
		},
		"unknown output format": {
			args:   []string{in, "-f", "xml"},
			target: tabtext.ErrUnsupportedFormat,
		},
		"unknown input format": {
			args:   []string{in, "-i", "xml"},
			target: tabtext.ErrUnsupportedFormat,
		},
		"input format without loader": {
			args:   []string{in, "-i", "html"},
			target: tabtext.ErrUnsupportedFormat,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := execute(t, "", tt.args...)
			require.ErrorIs(t, err, tt.target)
		})
	}

	_, _, err := execute(t, "")
	require.Error(t, err, "FILE is required")
}
