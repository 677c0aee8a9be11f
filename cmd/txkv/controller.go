package main

import (
	"bufio"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"

	txkv "github.com/arwendowers/data-processing"
	"github.com/arwendowers/data-processing/cli"
	"github.com/arwendowers/data-processing/core/store/txn"
	"github.com/arwendowers/data-processing/script"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/xerrors"
)

// controller holds the input and output of the actions.
type controller struct {
	in  io.Reader
	out io.Writer
}

// setup applies the global flags.
func (c controller) setup(flags cli.Flags) error {
	lvl := flags.String("loglevel")
	if lvl != "" {
		txkv.Logger = txkv.Logger.Level(txkv.ParseLevel(lvl))
	}

	return nil
}

func (c controller) demo(flags cli.Flags) error {
	err := c.newRunner(txn.NewStore(), flags).Run(script.Demo())
	if err != nil {
		return xerrors.Errorf("demo failed: %v", err)
	}

	return nil
}

func (c controller) runFile(flags cli.Flags) error {
	path := flags.Path("file")

	f, err := os.Open(path)
	if err != nil {
		return xerrors.Errorf("failed to open script: %v", err)
	}

	defer f.Close()

	ops, err := script.Parse(f)
	if err != nil {
		return xerrors.Errorf("failed to parse '%s': %v", path, err)
	}

	err = c.newRunner(txn.NewStore(), flags).Run(ops)
	if err != nil {
		return xerrors.Errorf("script failed: %v", err)
	}

	return nil
}

func (c controller) shell(flags cli.Flags) error {
	addr := flags.String("metrics")
	if addr != "" {
		bound, stop, err := serveMetrics(addr)
		if err != nil {
			return xerrors.Errorf("failed to serve metrics: %v", err)
		}

		defer stop()

		fmt.Fprintf(c.out, "metrics served on http://%s/metrics\n", bound)
	}

	store := txn.NewStore()
	runner := c.newRunner(store, flags)

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		op, err := script.ParseLine(line)
		if err != nil {
			fmt.Fprintf(c.out, "error: %v\n", err)
			continue
		}

		err = runner.Run([]script.Op{op})
		if err != nil {
			return xerrors.Errorf("failed to execute '%s': %v", line, err)
		}
	}

	err := scanner.Err()
	if err != nil {
		return xerrors.Errorf("failed to read input: %v", err)
	}

	if store.InTransaction() {
		txkv.Logger.Warn().Msg("input closed with an open transaction, writes are discarded")
	}

	return nil
}

func (c controller) newRunner(store *txn.Store, flags cli.Flags) script.Runner {
	var opts []script.RunnerOption
	if flags.Bool("verbose") {
		opts = append(opts, script.WithVerbose())
	}

	return script.NewRunner(store, c.out, opts...)
}

// serveMetrics registers the collectors of the module on a dedicated registry
// and serves them over HTTP. It returns the bound address and a function to
// stop the server.
func serveMetrics(addr string) (net.Addr, func(), error) {
	reg := prometheus.NewRegistry()

	for _, c := range txkv.PromCollectors {
		err := reg.Register(c)
		if err != nil {
			return nil, nil, xerrors.Errorf("failed to register: %v", err)
		}
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, xerrors.Errorf("failed to listen: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	srv := &http.Server{Handler: mux}

	go serveHTTP(srv, ln, txkv.Logger)

	stop := func() {
		srv.Close()
	}

	return ln.Addr(), stop, nil
}

// serveHTTP serves the requests until the server is closed and logs the error
// that made it stop otherwise.
func serveHTTP(srv *http.Server, ln net.Listener, logger zerolog.Logger) {
	err := srv.Serve(ln)
	if err != nil && err != http.ErrServerClosed {
		logger.Err(err).Str("addr", ln.Addr().String()).Msg("metrics server failed")
	}
}
