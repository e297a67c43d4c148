package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_PrintsInfo(t *testing.T) {
	cmd := versionCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "Solekit version: "+version)
	assert.Contains(t, out, "Go version:")
	assert.Contains(t, out, "Platform:")
}

func TestVersion_RunsWithoutConfig(t *testing.T) {
	t.Setenv("SOLEKIT_API_REFRESH_MODE", "not-a-mode")

	var out, errOut bytes.Buffer
	code := run([]string{"version"}, strings.NewReader(""), &out, &errOut)
	assert.Equal(t, 0, code, errOut.String())
	assert.Contains(t, out.String(), "Solekit version:")
	assert.Nil(t, state)
}
