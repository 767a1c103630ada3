package runner

import (
	"github.com/google/shlex"
	"github.com/pkg/errors"
)

// ParseCommand splits a configured binary invocation such as
// `node build/lang.js --quiet` into argv using shell quoting rules.
func ParseCommand(line string) ([]string, error) {
	fields, err := shlex.Split(line)
	if err != nil {
		return nil, errors.Wrapf(err, "parse binary command %q", line)
	}
	if len(fields) == 0 {
		return nil, errors.New("binary command is empty")
	}
	return fields, nil
}
