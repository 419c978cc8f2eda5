package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exampleNS = "http://example/"

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--space", filepath.Join("testdata", "space.yaml")}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "uanode", cmd.Use)

	for _, name := range []string{"members", "resolve", "read", "write", "graph", "refresh", "types"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}

	verbose := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verbose)
	assert.Equal(t, "v", verbose.Shorthand)
	require.NotNil(t, cmd.PersistentFlags().Lookup("space"))
	require.NotNil(t, cmd.PersistentFlags().Lookup("ns"))
}

func TestMissingSpace(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"members", "i=85"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, ExitCode(err))
}

func TestMembers(t *testing.T) {
	out, _, err := run(t, "members", "i=85", "Pump", "--ns", exampleNS)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "{http://example/}Modes")
	assert.Contains(t, lines[0], "ns=1;s=Pump.Modes")
	assert.Contains(t, lines[0], "i=68")
	assert.Contains(t, lines[1], "{http://example/}Motor")
	assert.Contains(t, lines[1], "Object")
	assert.Contains(t, lines[2], "{http://example/}Severity")
}

func TestResolve(t *testing.T) {
	out, _, err := run(t, "resolve", "i=85", "Pump", "Motor", "{http://example/}Speed", "--ns", exampleNS)
	require.NoError(t, err)
	assert.Equal(t, "ns=1;s=Pump.Motor.Speed Variable {http://example/}Speed\n", out)

	_, _, err = run(t, "resolve", "i=85", "Pump", "Pressure", "--ns", exampleNS)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Contains(t, err.Error(), "has no member {http://example/}Pressure")

	_, _, err = run(t, "resolve", "not-a-node", "Pump")
	assert.Equal(t, ExitCommandError, ExitCode(err))
}

func TestRead(t *testing.T) {
	tests := []struct {
		path []string
		want string
	}{
		{path: []string{"Pump", "Severity"}, want: "100 Good\n"},
		{path: []string{"Pump", "Modes"}, want: "[1 0 2] Good\n"},
		{path: []string{"Pump", "Motor", "Label"}, want: "en:Main motor Good\n"},
		{path: []string{"Pump", "Motor", "Speed"}, want: "1500.5 Good\n"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.path, "."), func(t *testing.T) {
			args := append([]string{"read", "i=85"}, tt.path...)
			out, _, err := run(t, append(args, "--ns", exampleNS)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestWrite(t *testing.T) {
	out, _, err := run(t, "write", "i=85", "Pump", "Severity", "--ns", exampleNS, "--type", "uint16", "--value", "250")
	require.NoError(t, err)
	assert.Equal(t, "Good\n", out)

	out, _, err = run(t, "write", "ns=1;s=Pump.Modes", "--type", "int32[]", "--value", "[2, 2]")
	require.NoError(t, err)
	assert.Equal(t, "Good\n", out)

	_, _, err = run(t, "write", "ns=1;s=Pump.Modes", "--type", "decimal", "--value", "1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, ExitCode(err))

	_, _, err = run(t, "write", "ns=1;s=Pump.Modes", "--type", "int32")
	require.Error(t, err, "--value is required")
}

func TestGraph(t *testing.T) {
	gold := goldie.New(t)

	out, _, err := run(t, "graph", "i=85", "Pump", "--ns", exampleNS)
	require.NoError(t, err)
	gold.Assert(t, "graph_dot", []byte(out))

	out, _, err = run(t, "graph", "i=85", "Pump", "--ns", exampleNS, "--format", "mermaid", "--depth", "1")
	require.NoError(t, err)
	gold.Assert(t, "graph_mermaid_depth1", []byte(out))

	_, _, err = run(t, "graph", "i=85", "--format", "svg")
	assert.Equal(t, ExitCommandError, ExitCode(err))
}

func TestRefresh(t *testing.T) {
	out, _, err := run(t, "refresh", "i=85", "Pump", "--ns", exampleNS, "--concurrency", "2")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "ns=1;s=Pump.Modes")
	assert.Contains(t, lines[1], "ns=1;s=Pump.Motor.Label")
	assert.Contains(t, lines[2], "ns=1;s=Pump.Motor.Speed")
	assert.Contains(t, lines[2], "1500.5")
	assert.Contains(t, lines[3], "ns=1;s=Pump.Severity")
}

func TestTypes(t *testing.T) {
	out, _, err := run(t, "types", "ServerStatusType")
	require.NoError(t, err)
	assert.Contains(t, out, "ServerStatusType (i=2138, VariableType)")
	assert.Contains(t, out, "BuildInfo")
	assert.Contains(t, out, "HasComponent")

	out, _, err = run(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "NamespaceMetadataType")
	assert.Contains(t, out, "StaticNodeIdTypes")

	_, _, err = run(t, "types", "NoSuchType")
	assert.Equal(t, ExitCommandError, ExitCode(err))
}

func TestConfigAndVerbose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uanode.yaml")
	require.NoError(t, os.WriteFile(path, []byte("session_id: cli-test\nbrowse_cache:\n  driver: memory\n"), 0o600))

	_, stderr, err := run(t, "--config", path, "--verbose", "resolve", "i=85", "Pump", "--ns", exampleNS)
	require.NoError(t, err)
	assert.Contains(t, stderr, `msg="browse cache enabled"`)
	assert.Contains(t, stderr, "session_id=cli-test")

	_, _, err = run(t, "--config", filepath.Join(t.TempDir(), "missing.yaml"), "resolve", "i=85", "Pump")
	assert.Equal(t, ExitCommandError, ExitCode(err))
}
