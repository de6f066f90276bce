// Package lint is a static heuristic scan for Lua menu code: a block
// balance check plus a few obvious-mistake patterns. It keeps no
// state between calls and never executes anything.
package lint

import (
	"regexp"
	"strings"
)

// Issue is one finding, 1-based line number.
type Issue struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

var (
	commentRe  = regexp.MustCompile(`--.*$`)
	functionRe = regexp.MustCompile(`\bfunction\b`)
	ifThenRe   = regexp.MustCompile(`\bif\b.*\bthen\b`)
	forDoRe    = regexp.MustCompile(`\bfor\b.*\bdo\b`)
	whileDoRe  = regexp.MustCompile(`\bwhile\b.*\bdo\b`)
	repeatRe   = regexp.MustCompile(`\brepeat\b`)
	endRe      = regexp.MustCompile(`\bend\b`)
	endLineRe  = regexp.MustCompile(`^\s*end\s*[)\s]*$`)
	untilRe    = regexp.MustCompile(`\buntil\b`)
	printBadRe = regexp.MustCompile(`\bprint\b\s*[^(]`)
	printOkRe  = regexp.MustCompile(`\bprint\b\s*\(`)
)

type block struct {
	kind string
	line int
}

// Check scans code line by line and reports unclosed blocks and
// malformed print calls. Single-line constructs that contain their
// own "end" never enter the stack.
func Check(code string) []Issue {
	var issues []Issue
	var stack []block

	lines := strings.Split(code, "\n")
	for i, raw := range lines {
		line := i + 1
		trimmed := strings.TrimSpace(commentRe.ReplaceAllString(raw, ""))
		if trimmed == "" {
			continue
		}

		selfClosed := endRe.MatchString(trimmed)
		if functionRe.MatchString(trimmed) && !selfClosed {
			stack = append(stack, block{"function", line})
		}
		if ifThenRe.MatchString(trimmed) && !selfClosed {
			stack = append(stack, block{"if", line})
		}
		if forDoRe.MatchString(trimmed) && !selfClosed {
			stack = append(stack, block{"for", line})
		}
		if whileDoRe.MatchString(trimmed) && !selfClosed {
			stack = append(stack, block{"while", line})
		}
		if repeatRe.MatchString(trimmed) {
			stack = append(stack, block{"repeat", line})
		}

		if endLineRe.MatchString(trimmed) || trimmed == "end" {
			// repeat blocks close with "until", not "end"
			if len(stack) > 0 && stack[len(stack)-1].kind != "repeat" {
				stack = stack[:len(stack)-1]
			}
		}
		if untilRe.MatchString(trimmed) {
			if len(stack) > 0 && stack[len(stack)-1].kind == "repeat" {
				stack = stack[:len(stack)-1]
			}
		}

		if printBadRe.MatchString(trimmed) && !printOkRe.MatchString(trimmed) {
			issues = append(issues, Issue{Line: line, Message: "print should be called as a function: print(...)"})
		}
	}

	for _, b := range stack {
		issues = append(issues, Issue{Line: b.line, Message: "Unclosed '" + b.kind + "' block (missing 'end' or 'until')"})
	}
	return issues
}
