// Copyright: This file is part of pedigree, released under https://github.com/pedigree/pedigree/blob/main/LICENSE

// package test contains helpers for writing tests
package test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"strings"
	"testing"
)

// SkipIfNoCommand skips a test if the cmd is not found in PATH
func SkipIfNoCommand(t *testing.T, cmd string) {
	t.Helper()
	if _, err := exec.LookPath(cmd); err != nil {
		skipf(t, "command %q not available", cmd)
	}
}

func skipf(t *testing.T, format string, args ...any) {
	t.Helper()
	msg := fmt.Sprintf(format, args...)
	if noSkip := os.Getenv("TEST_NO_SKIP"); noSkip != "" {
		t.Fatalf("TEST_NO_SKIP=%v failing: %v", noSkip, msg)
	} else {
		t.Skip(msg)
	}
}

// ListenPort returns a free ephemeral port for listening.
func ListenPort() (int, error) {
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}

// PanicErr panics if err is not nil
func PanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// Must panics if err is not nil, else returns v.
func Must[T any](v T, err error) T { PanicErr(err); return v }

// JSONString returns the JSON marshaled string from v, or the error message if marshal fails
func JSONString(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return err.Error()
	}
	return string(b)
}

// JSONPretty returns an indented JSON string, or error message if marshal fails.
func JSONPretty(v any) string {
	w := &bytes.Buffer{}
	e := json.NewEncoder(w)
	e.SetIndent("", "  ")
	if err := e.Encode(v); err != nil {
		return err.Error()
	}
	return w.String()
}

// FakeMain runs main with os.Args set to args, returns what main wrote to stdout and stderr.
// Not safe for parallel tests, it replaces the process-wide os.Stdout, os.Stderr and os.Args.
func FakeMain(args []string, main func()) (stdout, stderr []byte) {
	return FakeMainStdin("", args, main)
}

// FakeMainStdin is like FakeMain but also provides stdin.
// If args is nil, os.Args is not modified.
func FakeMainStdin(stdin string, args []string, main func()) (stdout, stderr []byte) {
	saveIn, saveOut, saveErr, saveArgs := os.Stdin, os.Stdout, os.Stderr, os.Args
	defer func() { os.Stdin, os.Stdout, os.Stderr, os.Args = saveIn, saveOut, saveErr, saveArgs }()
	if args != nil {
		os.Args = args
	}

	inR, inW := pipe()
	outR, outW := pipe()
	errR, errW := pipe()
	os.Stdin, os.Stdout, os.Stderr = inR, outW, errW
	go func() {
		defer inW.Close()
		_, _ = io.Copy(inW, strings.NewReader(stdin))
	}()
	outC, errC := readAll(outR), readAll(errR)
	func() {
		defer outW.Close()
		defer errW.Close()
		main()
	}()
	return <-outC, <-errC
}

func pipe() (r, w *os.File) { return Must2(os.Pipe()) }

// Must2 panics if err is not nil, else returns a and b.
func Must2[A, B any](a A, b B, err error) (A, B) { PanicErr(err); return a, b }

func readAll(r io.ReadCloser) <-chan []byte {
	c := make(chan []byte, 1)
	go func() {
		defer r.Close()
		b, _ := io.ReadAll(r)
		c <- b
	}()
	return c
}
