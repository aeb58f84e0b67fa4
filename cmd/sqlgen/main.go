// Command sqlgen compiles SQL template host files (*.sqlg) into Go code.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/Konsultn-Engineering/sqlgen/engine"
	"github.com/fatih/color"

	_ "github.com/Konsultn-Engineering/sqlgen/providers/postgres"
	_ "github.com/Konsultn-Engineering/sqlgen/providers/sqlite"
)

const usage = `usage: sqlgen [options] command [args...]

commands:
  generate [dir]                     generate code for every host file below dir
  watch [dir]                        regenerate changed host files until interrupted
  render file statement [name=value...]
                                     print a statement rendered with the given values
  crud                               write host files for the crud targets of the config
  types                              list the template types

options:
  -C FILE  config file (default: ./sqlgen.yaml when present)
  -o DIR   output root (default: the source root)
  -p NAME  package of generated files at the output root
  -d NAME  dialect bound by generated constructors
  -j N     compile N files in parallel
  -i DUR   watch interval, e.g. 500ms
  -f       regenerate up-to-date outputs, overwrite existing crud files
  -k       stop starting new files after the first failure
  -v       also report skipped outputs
  -h       show this help
`

type options struct {
	configPath string
	cfg        *engine.Config
	force      bool
	verbose    bool
}

func main() {
	log.SetFlags(0)
	log.SetPrefix("sqlgen: ")
	os.Exit(run(os.Args))
}

func run(args []string) int {
	opts, optind, err := getopt.Getopts(args, "C:o:p:d:j:i:fkvh")
	if err != nil {
		log.Println(err)
		fmt.Fprint(os.Stderr, usage)
		return 2
	}
	args = args[optind:]

	o := &options{}
	overrides := []func(*engine.Config){}
	for _, opt := range opts {
		optarg := opt.Value
		switch opt.Option {
		case 'C':
			o.configPath = optarg
		case 'o':
			overrides = append(overrides, func(c *engine.Config) { c.Out = optarg })
		case 'p':
			overrides = append(overrides, func(c *engine.Config) { c.Package = optarg })
		case 'd':
			overrides = append(overrides, func(c *engine.Config) { c.Dialect = optarg })
		case 'j':
			value, err := strconv.Atoi(optarg)
			if err != nil || value < 0 {
				log.Fatalln("invalid -j parameter")
			}
			overrides = append(overrides, func(c *engine.Config) { c.Jobs = value })
		case 'i':
			value, err := time.ParseDuration(optarg)
			if err != nil || value <= 0 {
				log.Fatalln("invalid -i parameter")
			}
			overrides = append(overrides, func(c *engine.Config) { c.Interval = value })
		case 'f':
			o.force = true
		case 'k':
			overrides = append(overrides, func(c *engine.Config) { c.FailFast = true })
		case 'v':
			o.verbose = true
		default: // case 'h':
			fmt.Print(usage)
			return 0
		}
	}
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	o.cfg, err = loadConfig(o.configPath)
	if err != nil {
		log.Println(err)
		return 1
	}
	for _, apply := range overrides {
		apply(o.cfg)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	command, rest := args[0], args[1:]
	switch command {
	case "generate", "gen":
		return o.generate(ctx, rest)
	case "watch":
		return o.watch(ctx, rest)
	case "render":
		return o.render(rest)
	case "crud":
		return o.crud(ctx)
	case "types":
		return listTypes()
	}
	log.Printf("unknown command %q", command)
	fmt.Fprint(os.Stderr, usage)
	return 2
}

// loadConfig reads path, or sqlgen.yaml when path is empty and the file
// exists. Without either the defaults apply.
func loadConfig(path string) (*engine.Config, error) {
	if path == "" {
		if _, err := os.Stat(engine.ConfigFile); errors.Is(err, fs.ErrNotExist) {
			return engine.DefaultConfig(), nil
		}
		path = engine.ConfigFile
	}
	return engine.LoadConfig(path)
}

// sourceRoot lets a command line directory replace the configured root.
func (o *options) sourceRoot(args []string) {
	if len(args) > 0 {
		o.cfg.Root = args[0]
	}
}

func (o *options) engineOptions() engine.Options {
	opts, err := o.cfg.Options()
	if err != nil {
		log.Fatalln(err)
	}
	opts.Force = o.force
	return opts
}

func (o *options) generate(ctx context.Context, args []string) int {
	o.sourceRoot(args)
	report, err := engine.Walk(ctx, o.cfg.Root, o.cfg.OutRoot(), o.engineOptions())
	o.report(report, err)
	if err != nil {
		return 1
	}
	return 0
}

func (o *options) watch(ctx context.Context, args []string) int {
	o.sourceRoot(args)
	opts := o.engineOptions()

	w, err := engine.NewWatcher(o.cfg.Root, o.cfg.OutRoot(), o.cfg.Interval, opts, o.report)
	if err != nil {
		log.Println(err)
		return 1
	}
	if err := w.Start(ctx); err != nil {
		log.Println(err)
		return 1
	}
	color.Cyan("watching %s every %s", o.cfg.Root, o.cfg.Interval)

	<-ctx.Done()
	if err := w.Stop(); err != nil {
		log.Println(err)
		return 1
	}
	return 0
}

func (o *options) report(report *engine.Report, err error) {
	if report != nil {
		for _, path := range report.Generated {
			color.Green("generated %s", path)
		}
		if o.verbose {
			for _, path := range report.Skipped {
				color.Yellow("up to date %s", path)
			}
		}
	}
	if err != nil {
		for _, e := range unjoin(err) {
			color.Red("%v", e)
		}
	}
}

// unjoin splits an errors.Join result into its parts.
func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
