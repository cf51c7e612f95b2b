package toolchain

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Flag is one of the configuration queries understood by root-config and _cling_config.
type Flag string

const (
	FlagIncDir    Flag = "--incdir"
	FlagAuxCflags Flag = "--auxcflags"
)

// QueryError reports a configuration query that could not be started or exited abnormally.
type QueryError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *QueryError) Error() string {
	s := fmt.Sprintf("config query `%s` failed: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		s += "\n" + e.Stderr
	}
	return s
}

func (e *QueryError) Unwrap() error { return e.Err }

// Run runs the query prefix with flag appended and returns its trimmed stdout.
// Nothing is cached; every call spawns the command.
func (tc *Toolchain) Run(flag Flag) (string, error) {
	if len(tc.Query) == 0 {
		return "", &QueryError{Args: []string{string(flag)}, Err: errors.New("empty query command")}
	}
	args := append(append([]string{}, tc.Query[1:]...), string(flag))

	var stderr bytes.Buffer
	cmd := exec.Command(tc.Query[0], args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return "", &QueryError{
			Args:   append([]string{tc.Query[0]}, args...),
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return strings.TrimSpace(string(out)), nil
}

// IncludeDir returns the backend's include directory.
func (tc *Toolchain) IncludeDir() (string, error) {
	return tc.Run(FlagIncDir)
}

// AuxCflags returns the backend's auxiliary compiler flags split on whitespace.
func (tc *Toolchain) AuxCflags() ([]string, error) {
	out, err := tc.Run(FlagAuxCflags)
	if err != nil {
		return nil, err
	}
	return strings.Fields(out), nil
}
