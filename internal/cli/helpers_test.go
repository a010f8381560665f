package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

const socialTriples = `triples:
  - ["<alice>", "<type>", "<Person>"]
  - ["<bob>", "<type>", "<Person>"]
  - ["<carol>", "<type>", "<Robot>"]
  - ["<alice>", "<knows>", "<bob>"]
  - ["<bob>", "<knows>", "<carol>"]
  - ["<alice>", "<knows>", "<carol>"]
  - ["<alice>", "<name>", '"Alice"']
  - ["<bob>", "<name>", '"Bob"']
`

const personsKnowsPlan = `query: join: {
	on: ["person"]
	lhs: bgp: [["?person", "<type>", "<Person>"]]
	rhs: bgp: [["?person", "<knows>", "?friend"]]
}
`

// writeFile writes content to name inside dir and returns its path.
func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(cmd *cobra.Command, args ...string) (string, string, error) {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}
