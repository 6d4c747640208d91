// Command vbgrep searches a file for a literal pattern or a regular expression
// without loading more of the file into memory than a few chunks at a time.
//
//	vbgrep [--chunk N] [--overlap N] [--regex] [--html] [--color auto|always|never] PATTERN FILE
//
// Every match is printed as its byte offset followed by the match and some
// surrounding context from the same line. Context is limited by display width.
// With --html, the text content of an HTML file is searched and offsets refer
// to the extracted text. The exit status is 0 if a match has
// been found, 1 if not, and 2 on errors.
package main

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"os"
	"regexp"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/juju/errors"
	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/uax/grapheme"
	"github.com/npillmayer/uax/uax11"
	"github.com/npillmayer/vbuf"
	"github.com/npillmayer/vbuf/html"
	"github.com/npillmayer/vbuf/search"
	"github.com/npillmayer/vbuf/textfile"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

// display columns of context printed on either side of a match
const contextCols = 24

type options struct {
	chunk   uint64
	overlap int
	regex   bool
	html    bool
	color   string
	trace   bool
	pattern string
	file    string
}

func main() {
	opts, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "vbgrep: %s\n", err)
		os.Exit(2)
	}
	found, err := run(opts, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vbgrep: %s\n", err)
		if opts.trace {
			fmt.Fprintln(os.Stderr, errors.ErrorStack(err))
		}
		os.Exit(2)
	}
	if !found {
		os.Exit(1)
	}
}

func parseArgs(args []string) (*options, error) {
	opts := &options{}
	flags := pflag.NewFlagSet("vbgrep", pflag.ContinueOnError)
	flags.Uint64Var(&opts.chunk, "chunk", 0, "chunk size in bytes for reading the file; 0 picks one by file size")
	flags.IntVar(&opts.overlap, "overlap", search.RegexOverlap, "overlap of search windows in bytes, for regular expressions")
	flags.BoolVarP(&opts.regex, "regex", "E", false, "interpret PATTERN as a regular expression")
	flags.BoolVar(&opts.html, "html", false, "search the text content of an HTML file")
	flags.StringVar(&opts.color, "color", "auto", "colorize matches: auto, always or never")
	flags.BoolVar(&opts.trace, "trace", false, "trace buffer operations to the log")
	if err := flags.Parse(args); err != nil {
		return nil, errors.Trace(err)
	}
	if flags.NArg() != 2 {
		return nil, errors.NotValidf("argument count %d (usage: vbgrep [flags] PATTERN FILE)", flags.NArg())
	}
	switch opts.color {
	case "auto", "always", "never":
	default:
		return nil, errors.NotValidf("color mode %q", opts.color)
	}
	opts.pattern, opts.file = flags.Arg(0), flags.Arg(1)
	return opts, nil
}

func run(opts *options, out io.Writer) (bool, error) {
	gtrace.CoreTracer = gologadapter.New()
	if opts.trace {
		gtrace.CoreTracer.SetTraceLevel(tracing.LevelDebug)
	} else {
		gtrace.CoreTracer.SetTraceLevel(tracing.LevelError)
	}
	buf, closer, err := openBuffer(opts)
	if err != nil {
		return false, errors.Annotatef(err, "cannot open %s", opts.file)
	}
	defer closer.Close()
	var matches iter.Seq[search.Match]
	if opts.regex {
		re, err := regexp.Compile(opts.pattern)
		if err != nil {
			return false, errors.Annotate(err, "invalid regular expression")
		}
		matches = search.Regexp(buf.IterAt(0), 0, buf.Len(), re, opts.overlap)
	} else {
		matches = buf.FindAll([]byte(opts.pattern))
	}
	grapheme.SetupGraphemeClasses()
	ctx := uax11.ContextFromEnvironment()
	highlight := color.New(color.FgRed, color.Bold)
	if useColor(opts.color, out) {
		highlight.EnableColor()
	} else {
		highlight.DisableColor()
	}
	found := false
	for m := range matches {
		found = true
		before, match, after, err := excerpt(buf, m, ctx)
		if err != nil {
			return found, errors.Annotatef(err, "cannot read match at %d", m.Pos)
		}
		if _, err := fmt.Fprintf(out, "%d: %s%s%s\n", m.Pos, before, highlight.Sprint(string(match)), after); err != nil {
			return found, errors.Trace(err)
		}
	}
	return found, nil
}

// openBuffer returns a buffer for the input file and a closer to release it.
func openBuffer(opts *options) (*vbuf.Buffer, io.Closer, error) {
	if !opts.html {
		tf, err := textfile.OpenReadOnly(opts.file, opts.chunk)
		if err != nil {
			return nil, nil, err
		}
		return tf.Buffer, tf, nil
	}
	f, err := os.Open(opts.file)
	if err != nil {
		return nil, nil, err
	}
	buf, err := html.TextFromHTML(f)
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	return buf, f, nil
}

func useColor(mode string, out io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := out.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// excerpt reads the match m together with up to contextCols display columns
// of context on either side. Context stops at line breaks.
func excerpt(buf *vbuf.Buffer, m search.Match, ctx *uax11.Context) ([]byte, []byte, []byte, error) {
	const maxBytes = 4 * contextCols // runes are at most 4 bytes long
	start := m.Pos - min(m.Pos, maxBytes)
	end := min(buf.Len(), m.End()+maxBytes)
	c := buf.IterAt(start)
	text := make([]byte, 0, end-start)
	for pos := start; pos < end; pos++ {
		b, ok := c.Next()
		if !ok {
			break
		}
		text = append(text, b)
	}
	if err := c.Err(); err != nil {
		return nil, nil, nil, err
	}
	from, to := int(m.Pos-start), min(len(text), int(m.End()-start))
	before, match, after := text[:from], text[from:to], text[to:]
	if i := bytes.LastIndexByte(before, '\n'); i >= 0 {
		before = before[i+1:]
	}
	if i := bytes.IndexByte(after, '\n'); i >= 0 {
		after = after[:i]
	}
	return trimLeft(before, ctx), match, trimRight(after, ctx), nil
}

func width(b []byte, ctx *uax11.Context) int {
	return uax11.StringWidth(grapheme.StringFromString(string(b)), ctx)
}

// trimLeft drops leading bytes until b starts at a rune boundary and fits
// into contextCols columns.
func trimLeft(b []byte, ctx *uax11.Context) []byte {
	for len(b) > 0 && (!utf8.RuneStart(b[0]) || width(b, ctx) > contextCols) {
		b = b[1:]
	}
	return b
}

// trimRight drops trailing bytes until b ends with a complete rune and fits
// into contextCols columns.
func trimRight(b []byte, ctx *uax11.Context) []byte {
	for len(b) > 0 {
		if r, _ := utf8.DecodeLastRune(b); r != utf8.RuneError && width(b, ctx) <= contextCols {
			break
		}
		b = b[:len(b)-1]
	}
	return b
}
