// Package fixture locates the file triples that make up a test case.
package fixture

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// File extensions of the three resources that back a fixture.
const (
	SourceExt = ".lang"
	InputExt  = ".in"
	OutputExt = ".out"
)

// ErrMissing is returned when one of a fixture's files does not exist.
var ErrMissing = errors.New("fixture file missing")

// Fixture is a named test case: <Dir>/<Name>.lang is run with <Name>.in on
// stdin and must print exactly <Name>.out.
type Fixture struct {
	Name string `json:"name"`
	Dir  string `json:"dir"`
}

// New returns the fixture called name inside dir.
func New(dir, name string) Fixture {
	return Fixture{Name: name, Dir: dir}
}

// SourcePath returns the path of the program passed to the binary.
func (f Fixture) SourcePath() string { return filepath.Join(f.Dir, f.Name+SourceExt) }

// InputPath returns the path connected to the child's stdin.
func (f Fixture) InputPath() string { return filepath.Join(f.Dir, f.Name+InputExt) }

// OutputPath returns the path holding the expected stdout.
func (f Fixture) OutputPath() string { return filepath.Join(f.Dir, f.Name+OutputExt) }

// Check verifies that all three files exist and are regular files.
func (f Fixture) Check() error {
	for _, p := range []string{f.SourcePath(), f.InputPath(), f.OutputPath()} {
		info, err := os.Stat(p)
		if err != nil {
			if os.IsNotExist(err) {
				return errors.Wrapf(ErrMissing, "fixture %q: %s", f.Name, p)
			}
			return errors.Wrapf(err, "fixture %q", f.Name)
		}
		if !info.Mode().IsRegular() {
			return errors.Wrapf(ErrMissing, "fixture %q: %s is not a regular file", f.Name, p)
		}
	}
	return nil
}

// Expected reads the expected stdout of the fixture.
func (f Fixture) Expected() ([]byte, error) {
	data, err := os.ReadFile(f.OutputPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(ErrMissing, "fixture %q: %s", f.Name, f.OutputPath())
		}
		return nil, errors.Wrap(err, "read expected output")
	}
	return data, nil
}

// Discover lists dir and returns one fixture per *.lang file, in
// directory-listing order. A file named just ".lang" is the fixture with
// the empty name. Only the source file is required to exist here;
// the remaining files are checked when the fixture runs.
func Discover(dir string) ([]Fixture, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrap(err, "read fixture dir")
	}

	var fixtures []Fixture
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if !strings.HasSuffix(name, SourceExt) {
			continue
		}
		fixtures = append(fixtures, New(dir, strings.TrimSuffix(name, SourceExt)))
	}
	return fixtures, nil
}

// IsFixtureFile reports whether name carries one of the fixture extensions.
func IsFixtureFile(name string) bool {
	switch filepath.Ext(name) {
	case SourceExt, InputExt, OutputExt:
		return true
	}
	return false
}
