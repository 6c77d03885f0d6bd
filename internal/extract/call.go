package extract

import (
	"fmt"
	"strings"
)

// extractAt tests the pattern table at the cursor. On a match it consumes the
// whole call and reports true; the caller must not advance further.
func (s *scanState) extractAt() bool {
	p, afterParen, ok := s.sink.table.match(s.text, s.index)
	if !ok {
		return false
	}

	start, line, col := s.index, s.line, s.column(s.index)
	mark := len(s.sink.diagnostics)

	s.advanceTo(afterParen)
	openLine, openLineStart := s.line, s.lineStart

	st := s.descend(")", modeCode, false, s.sink.strict)
	switch st {
	case stopAborted:
		return true
	case stopEOF, stopMismatch:
		s.sink.diagnostics = s.sink.diagnostics[:mark]
		if st == stopEOF {
			s.report(DiagUnterminatedCall, start, line, col, p.Name,
				fmt.Sprintf("call to %s has no closing parenthesis", p.Name))
		} else {
			s.report(DiagUnbalancedDelimiter, s.index, s.line, s.column(s.index), p.Name,
				fmt.Sprintf("unexpected %q in arguments of %s at line %d", s.text[s.index], p.Name, line))
		}
		s.index, s.line, s.lineStart = afterParen, openLine, openLineStart
		return true
	}

	argsSnippet := strings.TrimSpace(s.text[afterParen:s.index])
	fullSnippet := strings.TrimSpace(s.text[start : s.index+1])
	s.index++

	args := s.sink.splitArguments(argsSnippet)
	texts, domain, missing := classify(p, args)
	if missing > 0 {
		s.report(DiagMissingArgument, start, line, col, p.Name,
			fmt.Sprintf("%s call needs %d more argument(s)", p.Kind(), missing))
		return true
	}

	if s.sink.strict {
		if bad := firstNonLiteral(domain, texts, p.Domained); bad != "" {
			s.report(DiagNonLiteralArgument, start, line, col, p.Name,
				fmt.Sprintf("argument %s is not a string literal", bad))
			return true
		}
	}

	s.sink.records = append(s.sink.records, Record{
		SourceTexts:      texts,
		Domain:           domain,
		FunctionName:     p.Name,
		Line:             line,
		Column:           col,
		AllArguments:     args,
		FullSnippet:      fullSnippet,
		ArgumentsSnippet: argsSnippet,
		SourceFile:       s.sink.sourceFile,
	})
	return true
}

// splitArguments rescans an argument list as its own buffer and cuts it at
// every comma outside strings and comments.
func (k *sink) splitArguments(snippet string) []string {
	args := []string{}
	if snippet == "" {
		return args
	}

	quiet := &sink{ctx: k.ctx, table: k.table, strict: k.strict, maxDepth: k.maxDepth}
	sub := &scanState{
		text:    snippet,
		line:    1,
		closer:  ",",
		mode:    modeCode,
		balance: k.strict,
		sink:    quiet,
	}

	for sub.index < len(snippet) {
		begin := sub.index
		sub.scan()
		args = append(args, strings.TrimSpace(snippet[begin:sub.index]))
		if sub.index < len(snippet) {
			sub.index++
		}
	}
	return args
}

// classify picks the domain and message texts out of args. missing is the
// number of arguments the pattern needs beyond what the call supplied.
func classify(p Pattern, args []string) (texts []string, domain string, missing int) {
	offset := 0
	if p.Domained {
		offset = 1
	}

	need := offset + 1
	if p.Plural {
		need = offset + 3
	}
	if len(args) < need {
		return nil, "", need - len(args)
	}

	if p.Domained {
		domain = args[0]
	}
	if p.Plural {
		// args[offset] is the count.
		return []string{args[offset+1], args[offset+2]}, domain, 0
	}
	return []string{args[offset]}, domain, 0
}

func firstNonLiteral(domain string, texts []string, domained bool) string {
	if domained && !IsLiteral(domain) {
		return domain
	}
	for _, t := range texts {
		if !IsLiteral(t) {
			return t
		}
	}
	return ""
}
