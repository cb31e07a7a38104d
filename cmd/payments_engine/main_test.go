package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_SingleFile(t *testing.T) {
	path := writeFile(t, "tx.csv", `type, client, tx, amount
deposit, 1, 1, 1.0
deposit, 2, 2, 2.0
deposit, 1, 3, 2.0
withdrawal, 1, 4, 1.5
withdrawal, 2, 5, 3.0
`)

	var stdout, stderr bytes.Buffer
	code := run([]string{path}, strings.NewReader(""), &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, `client,available,held,total,locked
1,1.5000,0.0000,1.5000,false
2,2.0000,0.0000,2.0000,false
`, stdout.String())
}

func TestRun_ManyFilesShareOneLedger(t *testing.T) {
	first := writeFile(t, "a.csv", "type,client,tx,amount\ndeposit,1,1,10\n")
	second := writeFile(t, "b.csv", "type,client,tx,amount\ndeposit,1,2,5\n")
	stdin := strings.NewReader("type,client,tx,amount\ndeposit,2,3,1.2345\nchargeback,2,3,\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"--log-level", "error", first, second, "-"}, stdin, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())
	assert.Equal(t, `client,available,held,total,locked
1,15.0000,0.0000,15.0000,false
2,1.2345,0.0000,1.2345,false
`, stdout.String())
}

func TestRun_MissingFileFailsButPrintsLedger(t *testing.T) {
	good := writeFile(t, "a.csv", "deposit,1,1,1\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{good, filepath.Join(t.TempDir(), "missing.csv")}, strings.NewReader(""), &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "1,1.0000,0.0000,1.0000,false")
	assert.Contains(t, stderr.String(), "Stream ended early")
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, 2, run(nil, strings.NewReader(""), &stdout, &stderr))
	assert.Contains(t, stderr.String(), "usage")
	assert.Empty(t, stdout.String())
}
