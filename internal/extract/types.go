package extract

import "fmt"

// Record is one recognized localization call site.
type Record struct {
	// SourceTexts holds the raw message literals: one for plain and domained
	// calls, singular then plural for plural calls.
	SourceTexts []string `json:"source_texts"`
	// Domain is the raw domain argument, empty unless the pattern is domained.
	Domain string `json:"domain,omitempty"`
	// FunctionName is the matched pattern name.
	FunctionName string `json:"function_name"`
	// Line and Column are 1-based and point at the first character of the call name.
	Line   int `json:"line"`
	Column int `json:"column"`
	// AllArguments are the trimmed raw argument texts in source order.
	AllArguments []string `json:"all_arguments"`
	// FullSnippet is the call from its name through the closing parenthesis.
	FullSnippet string `json:"full_snippet"`
	// ArgumentsSnippet is the trimmed text between the parentheses.
	ArgumentsSnippet string `json:"arguments_snippet"`
	// SourceFile is passed through from the caller untouched.
	SourceFile string `json:"source_file"`
}

// Message returns the domain and texts with literals decoded, so "Hi" and 'Hi'
// compare equal. Arguments that are not literals are returned raw.
func (r Record) Message() (domain string, texts []string) {
	texts = make([]string, len(r.SourceTexts))
	for i, raw := range r.SourceTexts {
		texts[i] = decodedOrRaw(raw)
	}
	return decodedOrRaw(r.Domain), texts
}

func decodedOrRaw(raw string) string {
	if s, err := Unquote(raw); err == nil {
		return s
	}
	return raw
}

// DiagnosticKind classifies a recoverable scan problem.
type DiagnosticKind string

const (
	DiagUnterminatedString  DiagnosticKind = "unterminated-string"
	DiagUnterminatedComment DiagnosticKind = "unterminated-comment"
	DiagUnterminatedCall    DiagnosticKind = "unterminated-call"
	DiagUnbalancedDelimiter DiagnosticKind = "unbalanced-delimiter"
	DiagNestingTooDeep      DiagnosticKind = "nesting-too-deep"
	DiagMissingArgument     DiagnosticKind = "missing-argument"
	DiagNonLiteralArgument  DiagnosticKind = "non-literal-argument"
)

// Diagnostic reports a construct the scanner could not handle. Diagnostics
// never stop a scan.
type Diagnostic struct {
	Kind       DiagnosticKind `json:"kind"`
	SourceFile string         `json:"source_file"`
	// Offset is the byte offset where the offending construct starts.
	Offset   int    `json:"offset"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Function string `json:"function,omitempty"`
	Message  string `json:"message"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.SourceFile, d.Line, d.Column, d.Kind, d.Message)
}

// Result is everything one file scan produced.
type Result struct {
	Records     []Record     `json:"records"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}
