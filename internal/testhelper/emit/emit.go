package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"strings"
)

// Writes each argument as a line to stdout. Arguments starting with
// "Progress" are terminated with a carriage return.
func main() {
	stderrBytes := flag.Int("stderr-bytes", 0, "Number of bytes to write to stderr first")
	stderrLine := flag.String("stderr", "", "Line to write to stderr")
	exitCode := flag.Int("exit", 0, "Exit code")

	flag.Parse()

	if *stderrBytes > 0 {
		line := []byte(strings.Repeat("e", 79) + "\n")
		os.Stderr.Write(bytes.Repeat(line, *stderrBytes/len(line)+1))
	}

	if len(*stderrLine) != 0 {
		fmt.Fprintln(os.Stderr, *stderrLine)
	}

	for _, arg := range flag.Args() {
		if strings.HasPrefix(arg, "Progress") {
			fmt.Fprintf(os.Stdout, "%s\r", arg)
		} else {
			fmt.Fprintf(os.Stdout, "%s\n", arg)
		}
	}

	os.Exit(*exitCode)
}
