package secret

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Value holds a credential for the duration of a provisioning run. The
// backing buffer is overwritten by Wipe so the password does not outlive the
// run in process memory.
type Value struct {
	buf []byte
}

// New copies s into a fresh buffer.
func New(s string) *Value {
	return &Value{buf: []byte(s)}
}

// String returns the credential. Callers must not log the result.
func (v *Value) String() string {
	if v == nil {
		return ""
	}
	return string(v.buf)
}

// IsEmpty reports whether no credential was collected.
func (v *Value) IsEmpty() bool {
	return v == nil || len(v.buf) == 0
}

// Wipe zeroes the backing buffer. Safe to call more than once and on nil.
func (v *Value) Wipe() {
	if v == nil {
		return
	}
	for i := range v.buf {
		v.buf[i] = 0
	}
	v.buf = v.buf[:0]
}

// Source describes where the administrative password comes from.
type Source struct {
	// EnvVar names an environment variable holding the password.
	EnvVar string
	// Stdin reads a single line from standard input instead of prompting.
	Stdin bool
	// Prompt is shown when falling back to the interactive prompt.
	Prompt string
	// Reader overrides os.Stdin for Stdin mode (used by tests).
	Reader io.Reader
}

// Collect obtains the administrative password from the configured source. The
// interactive prompt suppresses echo. Any non-empty string is accepted; no
// format validation is applied.
func Collect(src Source) (*Value, error) {
	if src.EnvVar != "" {
		val := os.Getenv(src.EnvVar)
		if val == "" {
			return nil, fmt.Errorf("environment variable %s is not set or empty", src.EnvVar)
		}
		return New(val), nil
	}

	if src.Stdin {
		r := src.Reader
		if r == nil {
			r = os.Stdin
		}
		line, err := bufio.NewReader(r).ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read password from stdin: %w", err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return nil, fmt.Errorf("empty password on stdin")
		}
		return New(line), nil
	}

	prompt := src.Prompt
	if prompt == "" {
		prompt = "Password: "
	}
	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty password")
	}
	return &Value{buf: raw}, nil
}
