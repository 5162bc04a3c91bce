// Package envfile validates and parses the environment file of the server.
//
// The file consists of KEY=VALUE lines. Blank lines and lines starting with
// # are ignored. Every key has to be one of a fixed set of recognized keys,
// may appear only once and must have a non-empty value.
package envfile

import (
	"bufio"
	"bytes"
	"io"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// IssueKind is the kind of problem found on a line.
type IssueKind int

const (
	IssueInvalidLine IssueKind = iota
	IssueUnknownKey
	IssueEmptyValue
	IssueDuplicateKey
)

func (k IssueKind) String() string {
	switch k {
	case IssueInvalidLine:
		return "invalid line"
	case IssueUnknownKey:
		return "unknown key"
	case IssueEmptyValue:
		return "empty value"
	case IssueDuplicateKey:
		return "duplicate key"
	}

	return "unknown"
}

// Issue is a problem found on a line of an environment file. Only the first
// problem of a line is reported.
type Issue struct {
	Kind IssueKind
	Line int    // Line number, starting at 1
	Text string // The line without surrounding whitespace
	Key  string // The trimmed key, empty for IssueInvalidLine
}

// KeySet is a set of recognized keys.
type KeySet struct {
	keys map[string]struct{}
}

func NewKeySet(keys ...string) KeySet {
	s := KeySet{
		keys: map[string]struct{}{},
	}

	for _, key := range keys {
		s.keys[key] = struct{}{}
	}

	return s
}

func (s KeySet) Has(key string) bool {
	_, ok := s.keys[key]
	return ok
}

func (s KeySet) Len() int {
	return len(s.keys)
}

// Sorted returns the keys in lexical order.
func (s KeySet) Sorted() []string {
	keys := make([]string, 0, len(s.keys))
	for key := range s.keys {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}

// MaxLineSize is the longest line Validate accepts. Longer lines make
// Validate fail with bufio.ErrTooLong.
const MaxLineSize = 1024 * 1024

// Validate reads the environment file from r and returns all issues in the
// order of their lines. An empty list means the file is valid.
func Validate(r io.Reader, keys KeySet) ([]Issue, error) {
	issues := []Issue{}
	seen := map[string]struct{}{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), MaxLineSize)
	n := 0

	for scanner.Scan() {
		n++

		line := strings.TrimSpace(scanner.Text())
		if len(line) == 0 || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			issues = append(issues, Issue{Kind: IssueInvalidLine, Line: n, Text: line})
			continue
		}

		key = strings.TrimSpace(key)

		issue := Issue{Line: n, Text: line, Key: key}

		if !keys.Has(key) {
			issue.Kind = IssueUnknownKey
			issues = append(issues, issue)
			continue
		}

		if len(strings.TrimSpace(value)) == 0 {
			issue.Kind = IssueEmptyValue
			issues = append(issues, issue)
			continue
		}

		if _, ok := seen[key]; ok {
			issue.Kind = IssueDuplicateKey
			issues = append(issues, issue)
			continue
		}

		seen[key] = struct{}{}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return issues, nil
}

// FromTemplate returns the content of a template without its first line. A
// template without any line break yields an empty file.
func FromTemplate(data []byte) []byte {
	i := bytes.IndexByte(data, '\n')
	if i < 0 {
		return []byte{}
	}

	content := make([]byte, len(data)-i-1)
	copy(content, data[i+1:])

	return content
}

// Record holds the values of an environment file.
type Record map[string]string

// Parse parses the content of a valid environment file.
func Parse(data []byte) (Record, error) {
	values, err := godotenv.Unmarshal(string(data))
	if err != nil {
		return nil, err
	}

	return Record(values), nil
}

// Missing returns the recognized keys that have no value in the record.
func (r Record) Missing(keys KeySet) []string {
	missing := []string{}

	for _, key := range keys.Sorted() {
		if len(r[key]) == 0 {
			missing = append(missing, key)
		}
	}

	return missing
}
