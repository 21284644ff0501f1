package rules

import (
	"fmt"
	"regexp"
)

// RuleSet pairs match patterns with exception patterns for one severity.
// The zero value never matches.
type RuleSet struct {
	matches []*regexp.Regexp
	except  []*regexp.Regexp
}

// CompileError reports the first pattern of a rule set that failed to parse
type CompileError struct {
	Label   string // "critical" or "warning"
	List    string // "patterns" or "exceptions"
	Index   int    // 1-based position within List
	Pattern string
	Err     error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("failed to load %s %s: #%d %q: %v", e.Label, e.List, e.Index, e.Pattern, e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// NewRuleSet compiles match patterns and exceptions. label names the rule
// set in error messages.
func NewRuleSet(patterns, exceptions []string, label string) (RuleSet, error) {
	matches, err := compileAll(patterns, label, "patterns")
	if err != nil {
		return RuleSet{}, err
	}
	except, err := compileAll(exceptions, label, "exceptions")
	if err != nil {
		return RuleSet{}, err
	}
	return RuleSet{matches: matches, except: except}, nil
}

func compileAll(patterns []string, label, list string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, &CompileError{Label: label, List: list, Index: i + 1, Pattern: p, Err: err}
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// IsMatch returns true if line matches a pattern but no exception
func (rs RuleSet) IsMatch(line []byte) bool {
	return matchAny(rs.matches, line) && !matchAny(rs.except, line)
}

// Len returns the number of match patterns and exceptions
func (rs RuleSet) Len() (patterns, exceptions int) {
	return len(rs.matches), len(rs.except)
}

func matchAny(res []*regexp.Regexp, line []byte) bool {
	for _, re := range res {
		if re.Match(line) {
			return true
		}
	}
	return false
}
