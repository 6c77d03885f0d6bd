package extract

import (
	"context"
	"fmt"
	"unicode/utf8"
)

// scanMode selects which lexical rules apply in a nested scan.
type scanMode uint8

const (
	modeCode scanMode = iota
	modeString
	modeComment
)

// stop explains why a scan returned.
type stop uint8

const (
	stopCloser stop = iota // closer, or the newline ending a line comment
	stopEOF
	stopMismatch
	stopAborted
)

// ctxCheckEvery is how many loop steps pass between context polls.
const ctxCheckEvery = 1 << 12

// sink is shared by every state of one file scan.
type sink struct {
	ctx        context.Context
	err        error
	steps      int
	sourceFile string
	table      *PatternTable
	strict     bool
	maxDepth   int

	records     []Record
	diagnostics []Diagnostic
}

func (k *sink) interrupted() bool {
	if k.err != nil {
		return true
	}
	k.steps++
	if k.steps%ctxCheckEvery != 0 {
		return false
	}
	if err := k.ctx.Err(); err != nil {
		k.err = err
		return true
	}
	return false
}

// scanState is one frame of the recursive scan. Nested scans run on a copy
// and hand back only the cursor.
type scanState struct {
	text      string
	index     int
	line      int
	lineStart int

	closer            string
	newlineTerminates bool
	extractionEnabled bool
	mode              scanMode
	balance           bool
	depth             int

	sink *sink
}

func newTopState(text string, k *sink) *scanState {
	return &scanState{
		text:              text,
		line:              1,
		extractionEnabled: true,
		mode:              modeCode,
		sink:              k,
	}
}

// scan consumes text until its closer, the newline ending a line comment, or
// the end of the buffer. The terminator is never consumed.
func (s *scanState) scan() stop {
	for s.index < len(s.text) {
		if s.sink.interrupted() {
			return stopAborted
		}
		if s.closer != "" && hasPrefixAt(s.text, s.index, s.closer) {
			return stopCloser
		}

		c := s.text[s.index]
		if c == '\n' || c == '\r' {
			if s.newlineTerminates {
				return stopCloser
			}
			s.newline()
			continue
		}

		switch {
		case c == '\\' && (s.mode != modeComment || !s.sink.strict):
			s.escape()
		case c == ' ' || c == '\t' || c == '\v':
			s.index++
		case s.mode != modeCode:
			s.index++
		case c == '"' || c == '\'' || c == '`':
			s.literal(c)
		case c == '/' && s.peek(1) == '*':
			s.blockComment()
		case c == '/' && s.peek(1) == '/':
			s.lineComment()
		case s.balance && isOpener(c):
			if st := s.group(c); st != stopCloser {
				return st
			}
		case s.balance && isCloser(c):
			return stopMismatch
		case s.extractionEnabled && s.extractAt():
		default:
			s.index++
		}
	}

	if s.closer == "" {
		return stopCloser
	}
	return stopEOF
}

// newline consumes one line break. CRLF and LFCR count as a single break.
func (s *scanState) newline() {
	c := s.text[s.index]
	s.index++
	if s.index < len(s.text) {
		if n := s.text[s.index]; (n == '\n' || n == '\r') && n != c {
			s.index++
		}
	}
	s.line++
	s.lineStart = s.index
}

func (s *scanState) escape() {
	s.index++
	if s.index >= len(s.text) {
		return
	}
	if c := s.text[s.index]; c == '\n' || c == '\r' {
		s.newline()
		return
	}
	s.index++
}

// advanceTo moves the cursor forward to end, counting line breaks on the way.
func (s *scanState) advanceTo(end int) {
	for s.index < end {
		if c := s.text[s.index]; c == '\n' || c == '\r' {
			s.newline()
			continue
		}
		s.index++
	}
}

func (s *scanState) peek(n int) byte {
	if s.index+n < len(s.text) {
		return s.text[s.index+n]
	}
	return 0
}

func (s *scanState) column(offset int) int {
	return utf8.RuneCountInString(s.text[s.lineStart:offset]) + 1
}

// descend runs a nested scan from the current cursor and resumes the caller
// exactly where the nested scan stopped.
func (s *scanState) descend(closer string, mode scanMode, newlineTerminates, balance bool) stop {
	child := *s
	child.closer = closer
	child.mode = mode
	child.newlineTerminates = newlineTerminates
	child.extractionEnabled = false
	child.balance = balance
	child.depth = s.depth + 1

	st := child.scan()
	s.index, s.line, s.lineStart = child.index, child.line, child.lineStart
	return st
}

func (s *scanState) canDescend(at int) bool {
	if s.depth < s.sink.maxDepth {
		return true
	}
	s.report(DiagNestingTooDeep, at, s.line, s.column(at), "",
		fmt.Sprintf("nesting deeper than %d levels", s.sink.maxDepth))
	return false
}

func (s *scanState) literal(quote byte) {
	start, line, col := s.index, s.line, s.column(s.index)
	if !s.canDescend(start) {
		s.index++
		return
	}
	s.index++

	switch s.descend(string(quote), modeString, false, false) {
	case stopCloser:
		s.index++
	case stopEOF:
		s.report(DiagUnterminatedString, start, line, col, "",
			fmt.Sprintf("string opened with %c is never closed", quote))
	}
}

func (s *scanState) blockComment() {
	start, line, col := s.index, s.line, s.column(s.index)
	if !s.canDescend(start) {
		s.index++
		return
	}
	s.index += 2

	switch s.descend("*/", modeComment, false, false) {
	case stopCloser:
		s.index += 2
	case stopEOF:
		s.report(DiagUnterminatedComment, start, line, col, "", "block comment is never closed")
	}
}

func (s *scanState) lineComment() {
	if !s.canDescend(s.index) {
		s.index++
		return
	}
	s.index += 2
	s.descend("", modeComment, true, false)
}

// group balances a bracket pair inside an argument list in strict mode.
func (s *scanState) group(open byte) stop {
	if !s.canDescend(s.index) {
		s.index++
		return stopCloser
	}
	s.index++

	st := s.descend(string(closerFor(open)), modeCode, false, true)
	if st == stopCloser {
		s.index++
	}
	return st
}

func (s *scanState) report(kind DiagnosticKind, offset, line, col int, function, msg string) {
	s.sink.diagnostics = append(s.sink.diagnostics, Diagnostic{
		Kind:       kind,
		SourceFile: s.sink.sourceFile,
		Offset:     offset,
		Line:       line,
		Column:     col,
		Function:   function,
		Message:    msg,
	})
}

func hasPrefixAt(text string, at int, prefix string) bool {
	if len(prefix) == 1 {
		return text[at] == prefix[0]
	}
	return len(text)-at >= len(prefix) && text[at:at+len(prefix)] == prefix
}

func isOpener(c byte) bool { return c == '(' || c == '[' || c == '{' }

func isCloser(c byte) bool { return c == ')' || c == ']' || c == '}' }

func closerFor(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	default:
		return '}'
	}
}
