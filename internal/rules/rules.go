// Package rules loads, parses and applies log matching rules.
package rules

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	connectTimeout = 30 * time.Second
	fetchTimeout   = 300 * time.Second

	// maxRulesSize caps remote documents; a rules file is a few KB.
	maxRulesSize = 4 * 1024 * 1024
)

// Category is the classification of a single log line
type Category int

const (
	None Category = iota
	Critical
	Warning
)

func (c Category) String() string {
	switch c {
	case Critical:
		return "critical"
	case Warning:
		return "warning"
	default:
		return "none"
	}
}

// Document is the on-disk YAML layout of a rules file
type Document struct {
	CriticalPatterns   []string `yaml:"criticalpatterns"`
	CriticalExceptions []string `yaml:"criticalexceptions"`
	WarningPatterns    []string `yaml:"warningpatterns"`
	WarningExceptions  []string `yaml:"warningexceptions"`
}

// Rules holds the critical and warning rule sets
type Rules struct {
	Critical RuleSet
	Warning  RuleSet

	UnknownKeys []string // top-level document keys that were ignored
}

// LoadError wraps any failure to obtain or parse a rules source
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load rules from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// New compiles both rule sets of a parsed document
func New(doc Document) (*Rules, error) {
	crit, err := NewRuleSet(doc.CriticalPatterns, doc.CriticalExceptions, "critical")
	if err != nil {
		return nil, err
	}
	warn, err := NewRuleSet(doc.WarningPatterns, doc.WarningExceptions, "warning")
	if err != nil {
		return nil, err
	}
	return &Rules{Critical: crit, Warning: warn}, nil
}

// Parse reads a YAML rules document. Unknown top-level keys do not fail the
// load; they are listed in UnknownKeys so callers can warn about typos.
func Parse(r io.Reader) (*Rules, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	rules, err := New(doc)
	if err != nil {
		return nil, err
	}
	rules.UnknownKeys = unknownKeys(data)
	return rules, nil
}

var documentKeys = map[string]bool{
	"criticalpatterns":   true,
	"criticalexceptions": true,
	"warningpatterns":    true,
	"warningexceptions":  true,
}

func unknownKeys(data []byte) []string {
	var top map[string]yaml.Node
	if err := yaml.Unmarshal(data, &top); err != nil {
		return nil
	}
	var keys []string
	for k := range top {
		if !documentKeys[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Load reads rules from a local file or, if source contains "://", from
// the network.
func Load(ctx context.Context, source string) (*Rules, error) {
	data, err := read(ctx, source)
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	r, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &LoadError{Source: source, Err: err}
	}
	return r, nil
}

// IsRemote reports whether source names a URL rather than a file
func IsRemote(source string) bool {
	return strings.Contains(source, "://")
}

func read(ctx context.Context, source string) ([]byte, error) {
	if !IsRemote(source) {
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("cannot open rules file: %w", err)
		}
		return data, nil
	}
	return fetch(ctx, source)
}

var httpClient = &http.Client{
	Timeout: fetchTimeout,
	Transport: &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
	},
}

func fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid rules URL: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve remote rules: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("failed to retrieve remote rules: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxRulesSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read remote rules: %w", err)
	}
	if len(data) > maxRulesSize {
		return nil, fmt.Errorf("rules document exceeds %d bytes", maxRulesSize)
	}
	return data, nil
}

// Classify applies the critical rule set first, then the warning rule set
func (r *Rules) Classify(line []byte) Category {
	switch {
	case r.Critical.IsMatch(line):
		return Critical
	case r.Warning.IsMatch(line):
		return Warning
	default:
		return None
	}
}
