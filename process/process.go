// Package process runs external commands through the shell of the platform
// and renders their output.
package process

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/cloudworx/setup/glob"
	"github.com/cloudworx/setup/log"
	"github.com/cloudworx/setup/platform"
)

// Command is a single invocation of a command line.
type Command struct {
	// Line is the command line as it would be typed into a shell.
	Line string

	// Capture enables reading and rendering the output of the command.
	// Otherwise the command inherits the standard streams.
	Capture bool

	// Indent is the indentation for the rendered output.
	Indent int
}

// Runner runs commands. A command is successful if it exits with status 0.
// Failing to start a command is reported and counts as an unsuccessful run.
type Runner interface {
	// Run runs the command and waits for it to exit.
	Run(cmd Command) bool

	// Capture runs the command line quietly and returns its trimmed standard
	// output.
	Capture(line string) (string, bool)
}

// RunnerConfig is the configuration for a Runner.
type RunnerConfig struct {
	Printer  Printer
	Progress glob.Glob // Pattern for progress lines in captured output.

	// Shell returns the command and arguments for a command line. Defaults
	// to the shell of the platform.
	Shell func(line string) (string, []string)

	Stdin  io.Reader // Defaults to os.Stdin
	Stdout io.Writer // Defaults to os.Stdout
	Stderr io.Writer // Defaults to os.Stderr

	Logger log.Logger
}

type runner struct {
	printer  Printer
	progress glob.Glob
	shell    func(line string) (string, []string)

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	logger log.Logger
}

// NewRunner returns a Runner with the given configuration.
func NewRunner(config RunnerConfig) Runner {
	r := &runner{
		printer:  config.Printer,
		progress: config.Progress,
		shell:    config.Shell,
		stdin:    config.Stdin,
		stdout:   config.Stdout,
		stderr:   config.Stderr,
		logger:   config.Logger,
	}

	if r.printer == nil {
		r.printer = &nullPrinter{}
	}

	if r.shell == nil {
		r.shell = platform.Shell
	}

	if r.stdin == nil {
		r.stdin = os.Stdin
	}

	if r.stdout == nil {
		r.stdout = os.Stdout
	}

	if r.stderr == nil {
		r.stderr = os.Stderr
	}

	if r.logger == nil {
		r.logger = log.New("")
	}

	return r
}

func (r *runner) command(line string) *exec.Cmd {
	name, args := r.shell(line)

	cmd := exec.Command(name, args...)
	cmd.Stdin = r.stdin

	return cmd
}

func (r *runner) Run(c Command) bool {
	logger := r.logger.WithFields(log.Fields{
		"command": c.Line,
		"capture": c.Capture,
	})

	logger.Debug().Log("Running")

	cmd := r.command(c.Line)

	if !c.Capture {
		cmd.Stdout = r.stdout
		cmd.Stderr = r.stderr

		if err := cmd.Start(); err != nil {
			r.fault(c, logger, err)
			return false
		}

		return r.wait(cmd, logger)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		r.fault(c, logger, err)
		return false
	}

	// The standard error is collected in the background while the
	// standard output is streamed.
	stderr := &bytes.Buffer{}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		r.fault(c, logger, err)
		return false
	}

	parser := NewOutputParser(OutputParserConfig{
		Printer:  r.printer,
		Indent:   c.Indent,
		Progress: r.progress,
	})

	parser.ResetLog()

	r.read(stdout, parser, logger)

	ok := r.wait(cmd, logger)

	if parser.Printed() == 0 {
		r.read(stderr, parser, logger)
	}

	parser.Close()

	logger.Debug().WithField("lines", len(parser.Log())).Log("Output")

	return ok
}

func (r *runner) read(reader io.Reader, parser Parser, logger log.Logger) {
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	scanner.Split(scanLines)

	for scanner.Scan() {
		parser.Parse(scanner.Bytes())
	}

	if err := scanner.Err(); err != nil {
		logger.Debug().WithError(err).Log("Reading output failed")

		// Drain the rest, otherwise the command may block on writing
		io.Copy(io.Discard, reader)
	}
}

func (r *runner) wait(cmd *exec.Cmd, logger log.Logger) bool {
	err := cmd.Wait()
	if err == nil {
		logger.Debug().WithField("status", 0).Log("Finished")
		return true
	}

	var exiterr *exec.ExitError
	if errors.As(err, &exiterr) {
		logger.Debug().WithField("status", exiterr.ExitCode()).Log("Finished")
	} else {
		logger.Debug().WithError(err).Log("Waiting for the command failed")
	}

	return false
}

// fault reports a command that couldn't be started.
func (r *runner) fault(c Command, logger log.Logger, err error) {
	logger.Error().WithError(err).Log("Starting failed")

	r.printer.Error(c.Indent, "Failed to run command `%s`: %s: %s", c.Line, Kind(err), err.Error())
}

func (r *runner) Capture(line string) (string, bool) {
	logger := r.logger.WithField("command", line)

	cmd := r.command(line)

	output, err := cmd.Output()
	if err != nil {
		logger.Debug().WithError(err).Log("Capturing output failed")
		return "", false
	}

	return strings.TrimSpace(string(output)), true
}

// Kind classifies an error from starting a command.
func Kind(err error) string {
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return "NotFound"
	case errors.Is(err, fs.ErrPermission):
		return "PermissionDenied"
	case errors.Is(err, fs.ErrNotExist):
		return "NotExist"
	}

	name := fmt.Sprintf("%T", err)
	name = strings.TrimPrefix(name, "*")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}

	return name
}

// scanLines splits a data stream into lines. Lines are terminated by \n, \r,
// or \r\n. Empty lines between terminators are skipped.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	// Skip leading line terminators.
	start := 0
	for width := 0; start < len(data); start += width {
		var r rune
		r, width = utf8.DecodeRune(data[start:])
		if r != '\n' && r != '\r' {
			break
		}
	}

	// Scan until new line, marking end of line.
	for width, i := 0, start; i < len(data); i += width {
		var r rune
		r, width = utf8.DecodeRune(data[i:])
		if r == '\n' || r == '\r' {
			return i + width, data[start:i], nil
		}
	}

	// If we're at EOF, we have a final, non-empty, non-terminated line. Return it.
	if atEOF && len(data) > start {
		return len(data), data[start:], nil
	}

	// Request more data.
	return start, nil, nil
}
