package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isws/wqrun/internal/app"
	"github.com/isws/wqrun/internal/config"
)

const stationsCSV = `DateTime,Station_ID,DTW_FT
2024-01-01 00:00:00,403609,12.5
2024-01-02 00:00:00,403609,12.7
2024-01-01 00:00:00,403610,8.1
2024-01-02 00:00:00,403610,8.4
2024-01-03 00:00:00,403610,8.2
`

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_Plot(t *testing.T) {
	in := writeFile(t, "dtw.csv", stationsCSV)
	out := filepath.Join(t.TempDir(), "dtw.png")

	code, _, stderr := runCLI(t, "plot", "--from", in, "--field", "DTW_FT", "--multipanel", "-o", out)
	require.Equal(t, 0, code, stderr)

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(b, []byte("\x89PNG")))
}

func TestRun_PlotMissingColumnIsSoft(t *testing.T) {
	in := writeFile(t, "dtw.csv", stationsCSV)
	out := filepath.Join(t.TempDir(), "dtw.png")

	code, _, stderr := runCLI(t, "plot", "--from", in, "--field", "Nitrate", "-o", out)
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "Nitrate")
	assert.NoFileExists(t, out)
}

func TestRun_QueryRejectedIsSoft(t *testing.T) {
	csvOut := filepath.Join(t.TempDir(), "out.csv")

	code, _, stderr := runCLI(t, "query", "DELETE FROM dbo.Sample", "--csv", csvOut)
	assert.Equal(t, 0, code)
	assert.Contains(t, stderr, "only SELECT")
	assert.NoFileExists(t, csvOut)
}

func TestRun_QueryBadParam(t *testing.T) {
	code, _, stderr := runCLI(t, "query", "SELECT 1", "--param", "oops")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "name=value")
}

func TestRun_MissingConfig(t *testing.T) {
	code, _, stderr := runCLI(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "tables")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "config error")
}

func TestRun_Tables(t *testing.T) {
	code, _, stderr := runCLI(t, "tables")
	assert.Equal(t, 0, code, stderr)
}

func TestRun_Summary(t *testing.T) {
	in := writeFile(t, "samples.csv", `ParamName,Name,Result_Value,Start_Date
Chloride,Well 1,10,1/1/2020 12:00:00 AM
Chloride,Well 1,20,1/2/2020 12:00:00 AM
Chloride,Well 2,5,1/1/2020 12:00:00 AM
Nitrate,Well 1,1,1/1/2020 12:00:00 AM
`)
	out := filepath.Join(t.TempDir(), "box.svg")

	code, _, stderr := runCLI(t, "summary", "--from", in, "--param", "Chloride", "--min-count=-1", "-o", out)
	require.Equal(t, 0, code, stderr)
	assert.FileExists(t, out)
}

func TestRun_Trend(t *testing.T) {
	in := writeFile(t, "samples.csv", `ParamName,Name,Result_Value,Start_Date
Nitrate,Well 1,1,1/1/2020 12:00:00 AM
Nitrate,Well 1,3,1/1/2020 06:00:00 PM
Nitrate,Well 2,4,1/2/2020 12:00:00 AM
`)
	dir := t.TempDir()
	csvOut := filepath.Join(dir, "daily.csv")
	out := filepath.Join(dir, "trend.png")

	code, _, stderr := runCLI(t, "trend", "--from", in, "--param", "Nitrate",
		"--site", "Well 1", "--site", "Well 2", "--csv", csvOut, "-o", out)
	require.Equal(t, 0, code, stderr)

	b, err := os.ReadFile(csvOut)
	require.NoError(t, err)
	assert.Equal(t, "Date,Well 1,Well 2\n01/01/2020,2,\n01/02/2020,,4\n", string(b))
	assert.FileExists(t, out)
}

func TestRun_Init(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	code, _, stderr := runCLI(t, "--config", path, "init",
		"--driver", "postgres", "--server", "db", "--database", "estl", "--username", "reader")
	require.Equal(t, 0, code, stderr)

	cfg, err := config.Load(path)
	require.NoError(t, err)
	conn, err := cfg.Select("")
	require.NoError(t, err)
	assert.Equal(t, "postgres", conn.Driver)
	assert.Equal(t, "reader", conn.Username)
	assert.False(t, conn.Trusted)

	code, _, stderr = runCLI(t, "--config", path, "init")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "already exists")
}

func TestReadQuery(t *testing.T) {
	q, err := readQuery("-", nil, strings.NewReader("  SELECT 1\n"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1", q)

	file := writeFile(t, "q.sql", "SELECT * FROM dbo.Sample")
	q, err = readQuery(file, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM dbo.Sample", q)

	_, err = readQuery(file, []string{"SELECT 2"}, nil)
	assert.Error(t, err)

	_, err = readQuery("", nil, nil)
	assert.Error(t, err)

	_, err = readQuery("", []string{"   "}, nil)
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	var stderr bytes.Buffer

	assert.Equal(t, 0, exitCode(nil, &stderr))
	assert.Equal(t, 0, exitCode(&app.ErrMissingColumn{Columns: []string{"DateTime"}}, &stderr))
	assert.Equal(t, 1, exitCode(&app.ErrConnection{Driver: "sqlserver", Cause: errors.New("refused")}, &stderr))
	assert.Equal(t, 1, exitCode(&app.ErrConfig{Cause: errors.New("bad")}, &stderr))
	assert.Equal(t, 130, exitCode(context.Canceled, &stderr))
}
