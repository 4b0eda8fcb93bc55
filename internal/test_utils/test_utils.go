package test_utils

import (
	"fmt"
	"strings"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/google/go-cmp/cmp"
	"github.com/iancoleman/strcase"
	"github.com/lithammer/dedent"
	"github.com/pkg/diff"
)

func Dedent(input string) string {
	return dedent.Dedent( // removes the indentation common to all lines
		strings.ReplaceAll( // one pass replacing each "\n\n\n" with "\n\n"
			strings.TrimLeft(
				strings.TrimRight(input, " \n\r"), // remove trailing spaces and line breaks
				" \t\r\n"),                        // remove leading whitespace
			"\n\n\n", "\n\n"),
	)
}

func ANSIDiff(x, y interface{}, opts ...cmp.Option) string {
	escapeCode := func(code int) string {
		return fmt.Sprintf("\x1b[%dm", code)
	}
	d := cmp.Diff(x, y, opts...)
	if d == "" {
		return ""
	}
	ss := strings.Split(d, "\n")
	for i, s := range ss {
		switch {
		case strings.HasPrefix(s, "-"):
			ss[i] = escapeCode(31) + s + escapeCode(0)
		case strings.HasPrefix(s, "+"):
			ss[i] = escapeCode(32) + s + escapeCode(0)
		}
	}
	return strings.Join(ss, "\n")
}

// TextDiff renders a unified diff between two rendered outputs, for test
// failures where a line-oriented view reads better than cmp's.
func TextDiff(want, got string) string {
	var sb strings.Builder
	if err := diff.Text("want", "got", want, got, &sb); err != nil {
		return fmt.Sprintf("diff failed: %v", err)
	}
	return sb.String()
}

// RedactTestName removes characters that cannot appear in a snapshot file
// name and normalizes the remainder.
func RedactTestName(testCaseName string) string {
	redacted := testCaseName
	for _, c := range []string{"#", "<", ">", "(", ")", ":", "'", "\"", "@", "`", "+", "{", "}", "/", "%", "=", "."} {
		redacted = strings.ReplaceAll(redacted, c, " ")
	}
	return strcase.ToSnake(strings.Join(strings.Fields(redacted), " "))
}

type OutputKind int

const (
	HTMLOutput OutputKind = iota
	DebugOutput
	JSONOutput
)

var outputKind = map[OutputKind]string{
	HTMLOutput:  "html",
	DebugOutput: "",
	JSONOutput:  "json",
}

type SnapshotOptions struct {
	Testing      *testing.T
	TestCaseName string
	Input        string
	Output       string
	Kind         OutputKind
	FolderName   string
}

// MakeSnapshot records the input and output of one renderer test case as
// a snapshot.
func MakeSnapshot(options *SnapshotOptions) {
	t := options.Testing

	folderName := "__snapshots__"
	if options.FolderName != "" {
		folderName = options.FolderName
	}
	snapshotName := RedactTestName(options.TestCaseName)

	s := snaps.WithConfig(
		snaps.Filename(snapshotName),
		snaps.Dir(folderName),
	)

	snapshot := "## Input\n\n```\n"
	snapshot += Dedent(options.Input)
	snapshot += "\n```\n\n## Output\n\n"
	snapshot += "```" + outputKind[options.Kind] + "\n"
	snapshot += Dedent(options.Output)
	snapshot += "\n```"

	s.MatchSnapshot(t, snapshot)
}
