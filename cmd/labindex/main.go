package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/google/shlex"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	li "github.com/t7a/labindex"
	"github.com/t7a/labindex/tui"
	"gopkg.in/yaml.v3"
)

func init() {
	if os.Getenv("DEBUG") == "1" {
		log.SetLevel(log.DebugLevel)
	}
	log.SetReportCaller(true)
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat:  "15:04:05.000",
		CallerPrettyfier: shortCaller,
		FieldMap:         log.FieldMap{log.FieldKeyFile: "at"},
	})
}

// shortCaller reports log call sites as file:line without the directory.
func shortCaller(f *runtime.Frame) (function, file string) {
	return "", fmt.Sprintf("%s:%d", filepath.Base(f.File), f.Line)
}

const usage = `labindex

Usage:
  labindex init
  labindex put <filename> [<name>]
  labindex get [-j] <name>
  labindex hash <name>
  labindex rm <name>
  labindex ls [-l]
  labindex wipe
  labindex fsck [-p]
  labindex batch <filename>
  labindex tui

Options:
  -h --help     Show this screen.
  --version     Show version.
  -j            Print JSON instead of YAML.
  -l            Show a summary of each labware type.
  -p            Delete objects no name refers to.

The registry lives in .labware under $LABINDEX_DIR, or under the
current directory if that is not set.
`

const version = "0.1"

// exit codes
const (
	rcOK        = 0
	rcNotFound  = 2
	rcProblems  = 3
	rcUsage     = 22
	rcFailure   = 42
	rcMalformed = 65
)

type Opts struct {
	Init     bool
	Put      bool
	Get      bool
	Hash     bool
	Rm       bool
	Ls       bool
	Wipe     bool
	Fsck     bool
	Batch    bool
	Tui      bool
	Filename string
	Name     string
	Json     bool `docopt:"-j"`
	Long     bool `docopt:"-l"`
	Prune    bool `docopt:"-p"`
}

func main() {
	// see https://github.com/google/go-cmdtest
	os.Exit(run())
}

func run() (rc int) {
	return dispatch(os.Args[1:])
}

// dispatch parses one command line and runs it.
func dispatch(argv []string) (rc int) {
	parser := &docopt.Parser{
		HelpHandler:  docopt.PrintHelpOnly,
		OptionsFirst: false,
	}
	o, err := parser.ParseArgs(usage, argv, version)
	if err != nil {
		log.Error(err)
		return rcUsage
	}
	if len(o) == 0 {
		// --help or --version
		return rcOK
	}
	var opts Opts
	err = o.Bind(&opts)
	if err != nil {
		log.Error(err)
		return rcUsage
	}
	log.Debug(opts)

	if opts.Batch {
		return batch(opts.Filename)
	}

	reg, err := opendb()
	if err != nil {
		log.Error(err)
		return rcFailure
	}

	switch true {
	case opts.Init:
		fmt.Printf("Initialized labware registry in %s\n", reg.Dir())
	case opts.Put:
		name, hash, err := put(reg, opts.Filename, opts.Name)
		if err != nil {
			return fail(err)
		}
		fmt.Printf("%s -> %s\n", name, hash)
	case opts.Get:
		buf, err := get(reg, opts.Name, opts.Json)
		if err != nil {
			return fail(err)
		}
		fmt.Print(string(buf))
	case opts.Hash:
		hash, err := reg.Resolve(opts.Name)
		if err != nil {
			return fail(err)
		}
		fmt.Println(hash)
	case opts.Rm:
		err := reg.Remove(opts.Name)
		if err != nil {
			return fail(err)
		}
	case opts.Ls:
		lines, err := ls(reg, opts.Long)
		if err != nil {
			return fail(err)
		}
		for _, line := range lines {
			fmt.Println(line)
		}
	case opts.Wipe:
		err := reg.Wipe()
		if err != nil {
			return fail(err)
		}
		fmt.Printf("Wiped %s\n", reg.Dir())
	case opts.Fsck:
		problems, err := reg.Fsck()
		if err != nil {
			return fail(err)
		}
		for _, problem := range problems {
			fmt.Println(problem)
		}
		if opts.Prune {
			removed, err := reg.Prune()
			if err != nil {
				return fail(err)
			}
			for _, hash := range removed {
				fmt.Printf("pruned %s\n", hash)
			}
		}
		if len(problems) > 0 {
			return rcProblems
		}
	case opts.Tui:
		err := tui.Run(reg, reg.Dir())
		if err != nil {
			return fail(err)
		}
	}
	return rcOK
}

// fail logs err and maps it to an exit code.
func fail(err error) (rc int) {
	log.Error(err)
	var merr *li.MalformedRecordError
	var nerr *li.NameNotFoundError
	switch {
	case errors.As(err, &merr):
		return rcMalformed
	case errors.As(err, &nerr):
		return rcNotFound
	}
	return rcFailure
}

func dbdir() (dir string, err error) {
	dir = os.Getenv("LABINDEX_DIR")
	if dir == "" {
		dir, err = os.Getwd()
	}
	return
}

func opendb() (reg *li.Registry, err error) {
	dir, err := dbdir()
	if err != nil {
		return
	}
	return li.Open(dir)
}

func put(reg *li.Registry, fn, name string) (gotname, hash string, err error) {
	lw, err := li.LoadFile(fn)
	if err != nil {
		return
	}
	if name == "" {
		name = lw.Name()
	}
	err = reg.Put(name, lw)
	if err != nil {
		return
	}
	hash, err = reg.Resolve(name)
	return name, hash, err
}

func get(reg *li.Registry, name string, asJSON bool) (buf []byte, err error) {
	lw, err := reg.Get(name)
	if err != nil {
		return
	}
	rec := lw.Record()
	if asJSON {
		buf, err = json.MarshalIndent(rec, "", "    ")
		if err != nil {
			return
		}
		return append(buf, '\n'), nil
	}
	return yaml.Marshal(rec)
}

func ls(reg *li.Registry, long bool) (lines []string, err error) {
	for _, name := range reg.List() {
		if !long {
			lines = append(lines, name)
			continue
		}
		lw, err := reg.Get(name)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fmt.Sprintf("%s\t%s", name, lw))
	}
	return
}

// batch runs each line of fn as a command line.  Lines are split the
// way a shell would; blank lines and # comments are skipped.  It stops
// at the first failing line.  Batch files can't run other batch files.
func batch(fn string) (rc int) {
	buf, err := ioutil.ReadFile(fn)
	if err != nil {
		log.Error(err)
		return rcFailure
	}
	for i, line := range strings.Split(string(buf), "\n") {
		argv, err := shlex.Split(line)
		if err != nil {
			log.Errorf("%s:%d: %v", fn, i+1, err)
			return rcUsage
		}
		if len(argv) == 0 {
			continue
		}
		if argv[0] == "labindex" {
			argv = argv[1:]
		}
		if len(argv) > 0 && argv[0] == "batch" {
			log.Errorf("%s:%d: nested batch", fn, i+1)
			return rcUsage
		}
		rc = dispatch(argv)
		if rc != rcOK {
			log.Errorf("%s:%d: exit %d", fn, i+1, rc)
			return
		}
	}
	return rcOK
}
