package main

import (
	"flag"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmdtest"
	"github.com/pkg/fileutils"
	log "github.com/sirupsen/logrus"
)

var update = flag.Bool("update", false, "update test files with results")

// records copied into each test's root directory
var records = []string{
	"lp_0200.json",
	"lp_0200.yaml",
	"corning_3960.json",
	"biorad_HSP9601B.json",
	"bad_data.json",
}

func TestCLI(t *testing.T) {
	ts, err := cmdtest.Read("testdata")
	if err != nil {
		t.Fatal(err)
	}
	ts.KeepRootDirs = true
	srcdir, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	ts.Setup = func(dir string) (err error) {
		for _, fn := range records {
			err = fileutils.CopyFile(fn, filepath.Join(srcdir, "../../testdata", fn))
			if err != nil {
				return
			}
		}
		for _, fn := range []string{"import.batch", "nested.batch"} {
			err = fileutils.CopyFile(fn, filepath.Join(srcdir, "testdata", fn))
			if err != nil {
				return
			}
		}
		return
	}
	// the registry goes in each test's root directory
	os.Unsetenv("LABINDEX_DIR")
	// keep timestamped log lines out of the compared output
	log.SetOutput(ioutil.Discard)
	ts.Commands["labindex"] = cmdtest.InProcessProgram("labindex", run)
	ts.Run(t, *update)
}
