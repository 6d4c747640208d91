package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func grep(t *testing.T, content string, args ...string) (string, bool) {
	t.Helper()
	name := filepath.Join(t.TempDir(), "input.txt")
	require.NoError(t, os.WriteFile(name, []byte(content), 0o644))
	opts, err := parseArgs(append(append([]string{"--color", "never"}, args...), name))
	require.NoError(t, err)
	var out bytes.Buffer
	found, err := run(opts, &out)
	require.NoError(t, err)
	return out.String(), found
}

func TestLiteral(t *testing.T) {
	out, found := grep(t, "first line\nthe cat sat\non the mat\n", "at")
	assert.True(t, found)
	assert.Equal(t, "16: the cat sat\n20: the cat sat\n31: on the mat\n", out)
}

func TestRegex(t *testing.T) {
	content := strings.Repeat("-", 100) + "id=4711\n"
	out, found := grep(t, content, "--chunk", "16", "--regex", `id=[0-9]+`)
	assert.True(t, found)
	assert.Equal(t, "100: ------------------------id=4711\n", out)
}

func TestNoMatch(t *testing.T) {
	out, found := grep(t, "nothing to see", "needle")
	assert.False(t, found)
	assert.Empty(t, out)
}

func TestBadArguments(t *testing.T) {
	_, err := parseArgs([]string{"only-pattern"})
	assert.True(t, errors.IsNotValid(err))
	_, err = parseArgs([]string{"--color", "sometimes", "p", "f"})
	assert.True(t, errors.IsNotValid(err))
	opts, err := parseArgs([]string{"p", filepath.Join(t.TempDir(), "missing")})
	require.NoError(t, err)
	_, err = run(opts, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestColor(t *testing.T) {
	assert.True(t, useColor("always", &bytes.Buffer{}))
	assert.False(t, useColor("never", os.Stdout))
	assert.False(t, useColor("auto", &bytes.Buffer{}))
}

func TestHTML(t *testing.T) {
	out, found := grep(t, "<p>the <b>cat</b> sat</p>", "--html", "cat")
	assert.True(t, found)
	assert.Equal(t, "4: the cat sat\n", out)
}

func TestContextIsLimited(t *testing.T) {
	content := strings.Repeat("a", 50) + "X" + strings.Repeat("ŵ", 50)
	out, found := grep(t, content, "X")
	assert.True(t, found)
	assert.Equal(t, "50: "+strings.Repeat("a", contextCols)+"X"+strings.Repeat("ŵ", contextCols)+"\n", out)
}
