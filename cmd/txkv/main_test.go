package main

import (
	"bytes"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/arwendowers/data-processing/testing/fake"
	"github.com/stretchr/testify/require"
)

func TestDemo(t *testing.T) {
	out := new(bytes.Buffer)

	err := run([]string{"txkv", "--loglevel", "disabled", "demo"}, nil, out)
	require.NoError(t, err)

	expected := "null\n" +
		"no active transaction\n" +
		"null\n" +
		"null\n" +
		"6\n" +
		"no active transaction\n" +
		"no active transaction\n" +
		"null\n" +
		"null\n"

	require.Equal(t, expected, out.String())
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ops.yaml")

	doc := `
- op: begin
- op: put
  key: A
  value: 3
- op: commit
- op: get
  key: A
  expect: "3"
`

	require.NoError(t, os.WriteFile(path, []byte(doc), 0644))

	out := new(bytes.Buffer)

	err := run([]string{"txkv", "run", "--file", path, "--verbose"}, nil, out)
	require.NoError(t, err)
	require.Equal(t, "ok\nok\nok\n3\n", out.String())
}

func TestRunFile_Failures(t *testing.T) {
	dir := t.TempDir()

	err := run([]string{"txkv", "run", "--file", filepath.Join(dir, "missing.yaml")},
		nil, io.Discard)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to open script: ")

	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- op: get\n"), 0644))

	err = run([]string{"txkv", "run", "--file", path}, nil, io.Discard)
	require.EqualError(t, err, "failed to parse '"+path+
		"': invalid operation #0: get: missing key")

	path = filepath.Join(dir, "expect.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- op: commit\n  expect: ok\n"), 0644))

	err = run([]string{"txkv", "run", "--file", path}, nil, io.Discard)
	require.EqualError(t, err, "script failed: operation #0 'commit': "+
		"expected 'ok' but got 'no active transaction'")
}

func TestShell(t *testing.T) {
	in := strings.NewReader(`
# comment
get A
put A 5
begin
put A 5
get A
peek A
delete A
commit
get A
`)

	out := new(bytes.Buffer)

	err := run([]string{"txkv", "shell"}, in, out)
	require.NoError(t, err)

	expected := "null\n" +
		"no active transaction\n" +
		"null\n" +
		"5\n" +
		"error: unknown operation 'delete'\n" +
		"5\n"

	require.Equal(t, expected, out.String())
}

func TestShell_Metrics(t *testing.T) {
	out := new(bytes.Buffer)

	err := run([]string{"txkv", "shell", "--metrics", "127.0.0.1:0"},
		strings.NewReader("begin\ncommit\n"), out)
	require.NoError(t, err)
	require.Contains(t, out.String(), "metrics served on http://127.0.0.1:")
}

func TestServeMetrics(t *testing.T) {
	addr, stop, err := serveMetrics("127.0.0.1:0")
	require.NoError(t, err)

	defer stop()

	resp, err := http.Get("http://" + addr.String() + "/metrics")
	require.NoError(t, err)

	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Contains(t, string(body), "txkv_transactions_begun_total")

	_, _, err = serveMetrics("127.0.0.1:-1")
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to listen: ")
}

func TestServeHTTP_Failure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	logger, check := fake.CheckLog("metrics server failed")

	serveHTTP(&http.Server{}, ln, logger)

	check(t)
}

func TestServeHTTP_Closed(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &http.Server{}
	require.NoError(t, srv.Close())

	logger, check := fake.CheckNoLog("metrics server failed")

	serveHTTP(srv, ln, logger)

	check(t)
}
