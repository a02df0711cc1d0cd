// Command lessc compiles LESS files to CSS from the command line.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	lessoxide "github.com/dellyoung/less-oxide"
)

func main() {
	app := &cli.App{
		Name:  "lessc",
		Usage: "compile LESS stylesheets to CSS",
		Commands: []*cli.Command{
			compileCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "lessc: %v\n", err)
		os.Exit(1)
	}
}

func compileCommand() *cli.Command {
	return &cli.Command{
		Name:      "compile",
		Usage:     "compile a .less file to CSS",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "minify", Aliases: []string{"m"}, Usage: "emit minified CSS"},
			&cli.StringSliceFlag{Name: "include", Aliases: []string{"I"}, Usage: "additional @import search directory"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "write output to this path instead of stdout"},
			&cli.BoolFlag{Name: "debug", Usage: "emit development-format debug logs to stderr"},
		},
		Action: runCompile,
	}
}

func runCompile(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("compile requires exactly one file argument", 2)
	}
	path := c.Args().Get(0)

	log := newLogger(c.Bool("debug"))
	defer log.Sync()

	start := time.Now()
	log.Debug("compiling", zap.String("path", path), zap.Bool("minify", c.Bool("minify")))

	opts := lessoxide.Options{
		Minify:       c.Bool("minify"),
		IncludePaths: c.StringSlice("include"),
	}
	if dir := filepath.Dir(path); dir != "" {
		opts.CurrentDir = dir
	}

	css, err := lessoxide.CompileFile(path, opts)
	if err != nil {
		log.Error("compile failed", zap.String("path", path), zap.Error(err))
		return cli.Exit(err.Error(), 1)
	}

	log.Debug("compiled", zap.String("path", path), zap.Duration("elapsed", time.Since(start)), zap.Int("bytes", len(css)))

	out := c.String("out")
	if out == "" {
		fmt.Println(css)
		return nil
	}
	return os.WriteFile(out, []byte(css), 0o644)
}

func newLogger(debug bool) *zap.Logger {
	if debug {
		log, err := zap.NewDevelopment()
		if err != nil {
			return zap.NewNop()
		}
		return log
	}
	return zap.NewNop()
}
