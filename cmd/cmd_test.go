package cmd

import (
	"bytes"
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func inProcess(t *testing.T) {
	t.Setenv("MOTIFSAT_ORACLE_MODE", "inprocess")
	t.Setenv("MOTIFSAT_WORK_DIR", t.TempDir())
}

func TestOptimizeCommand(t *testing.T) {
	inProcess(t)
	data := writeFile(t, "data.txt", "1 2\n2 3\n3 1\n3 4\n")
	t.Setenv("MOTIFSAT_DATA_GRAPH", data)
	metricsFile := filepath.Join(t.TempDir(), "metrics.prom")
	t.Setenv("MOTIFSAT_METRICS_OUT", metricsFile)
	patterns := writeFile(t, "patterns.txt", `
; a triangle and a 3-star
(Match (-- a b) (-- a c) (-- b c))
(Match (-- a d) (-- b d) (-- c d))
`)

	out := &bytes.Buffer{}
	OptimizeCmd.SetOut(out)
	OptimizeCmd.SetContext(context.Background())
	require.NoError(t, runOptimize(OptimizeCmd, []string{patterns}))

	printed := out.String()
	assert.Contains(t, printed, "generation time:")
	assert.Contains(t, printed, "(Match (-- a b) (-- a c) (-- b c))")
	assert.Contains(t, printed, "input 1:")
	assert.Contains(t, printed, "(Count 1 (Const (Pi 1) Fa))")

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "motifsat_extract_best_cost")
}

func TestOptimizeCommandErrors(t *testing.T) {
	inProcess(t)
	OptimizeCmd.SetContext(context.Background())

	err := runOptimize(OptimizeCmd, []string{filepath.Join(t.TempDir(), "missing.txt")})
	assert.ErrorContains(t, err, "could not open patterns file")

	empty := writeFile(t, "empty.txt", "# nothing here\n")
	err = runOptimize(OptimizeCmd, []string{empty})
	assert.ErrorContains(t, err, "holds no patterns")

	bad := writeFile(t, "bad.txt", "(Match (-- a b)\n")
	err = runOptimize(OptimizeCmd, []string{bad})
	assert.ErrorContains(t, err, "line 1")
}

func TestCanonCommand(t *testing.T) {
	inProcess(t)
	patterns := writeFile(t, "patterns.txt", "(Match (-- c a) (-- b c))\n(Match (-- a b) (-- b c) (-- c a))\n")

	out := &bytes.Buffer{}
	CanonCmd.SetOut(out)
	CanonCmd.SetContext(context.Background())
	require.NoError(t, runCanon(CanonCmd, []string{patterns}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "(Match (-- a b) (-- a c) (-- b c))", lines[1])
	assert.True(t, strings.HasPrefix(lines[0], "(Match"))
}

func TestCollaboratorsClose(t *testing.T) {
	inProcess(t)
	cfg, err := loadConfig(CanonCmd)
	require.NoError(t, err)
	c, err := newCollaborators(cfg)
	require.NoError(t, err)
	assert.NoError(t, c.close())
}
