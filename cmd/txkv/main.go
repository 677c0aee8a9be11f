// Package main implements the txkv command-line application that drives an
// in-memory transactional store.
//
//	txkv demo
//	txkv run --file ops.yaml
//	txkv --loglevel debug shell --metrics 127.0.0.1:9100
//
// The shell reads one operation per line: get KEY, peek KEY, put KEY VALUE,
// begin, commit or rollback.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/arwendowers/data-processing/cli"
	"github.com/arwendowers/data-processing/cli/ucli"
)

func main() {
	err := run(os.Args, os.Stdin, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%+v\n", err)
		os.Exit(1)
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	return newApp(in, out).Run(args)
}

func newApp(in io.Reader, out io.Writer) cli.Application {
	ctrl := controller{in: in, out: out}

	builder := ucli.NewBuilder("txkv", "in-memory key/value store with a single transaction",
		cli.StringFlag{
			Name:    "loglevel",
			Usage:   "logging level (error, warn, info, debug, trace, disabled)",
			EnvVars: []string{"LLVL"},
		},
	)

	builder.SetBefore(ctrl.setup)

	cmd := builder.SetCommand("demo")
	cmd.SetDescription("run the reference trace against a fresh store")
	cmd.SetFlags(verboseFlag)
	cmd.SetAction(ctrl.demo)

	cmd = builder.SetCommand("run")
	cmd.SetDescription("run a YAML script of operations against a fresh store")
	cmd.SetFlags(
		cli.PathFlag{
			Name:     "file",
			Usage:    "path to the YAML script",
			Required: true,
		},
		verboseFlag,
	)
	cmd.SetAction(ctrl.runFile)

	cmd = builder.SetCommand("shell")
	cmd.SetDescription("read operations from the standard input, one per line")
	cmd.SetFlags(
		cli.StringFlag{
			Name:  "metrics",
			Usage: "address to serve the Prometheus metrics, disabled if empty",
		},
		verboseFlag,
	)
	cmd.SetAction(ctrl.shell)

	return builder.Build()
}

var verboseFlag = cli.BoolFlag{
	Name:  "verbose",
	Usage: "print the result of every operation",
}
