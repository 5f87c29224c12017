package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"go.yaml.in/yaml/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/solrwrap-labs/solrwrap/internal/release"
)

//go:embed schema/config.schema.json
var schemaBytes []byte

var (
	compiledSchema *jsonschema.Schema
	compileOnce    sync.Once
	compileErr     error
	printer        = message.NewPrinter(language.English)
)

// ValidationResult contains the outcome of a config file validation.
type ValidationResult struct {
	Valid  bool
	Issues []ValidationIssue
}

// ValidationIssue represents a single problem found in a config file.
type ValidationIssue struct {
	Path    string // Instance location (e.g., "/port", "/log/level")
	Message string // Human-readable error message
	Keyword string // Schema keyword that failed, or "semver"
}

// getSchema compiles the embedded JSON schema once and returns it.
func getSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
		if err != nil {
			compileErr = fmt.Errorf("unmarshaling schema JSON: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource("config.schema.json", doc); err != nil {
			compileErr = fmt.Errorf("adding schema resource: %w", err)
			return
		}
		compiledSchema, compileErr = c.Compile("config.schema.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compiling schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Validate checks raw config YAML against the config schema, then checks that
// the Solr version is a semantic version.
// The error return is for parse or schema compilation failures.
// Validation issues are returned in the ValidationResult.
func Validate(data []byte) (*ValidationResult, error) {
	schema, err := getSchema()
	if err != nil {
		return nil, fmt.Errorf("loading schema: %w", err)
	}

	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}
	// An empty file is a valid, empty config.
	if raw == nil {
		raw = map[string]interface{}{}
	}

	jsonData, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("converting to JSON: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("preparing JSON for validation: %w", err)
	}

	var issues []ValidationIssue
	if err := schema.Validate(inst); err != nil {
		validationErr, ok := err.(*jsonschema.ValidationError)
		if !ok {
			return nil, fmt.Errorf("unexpected validation error type: %w", err)
		}
		issues = extractIssues(validationErr)
	}

	if doc, ok := raw.(map[string]interface{}); ok {
		if v, ok := doc[KeyVersion].(string); ok && v != "" {
			if _, err := release.ParseVersion(v); err != nil {
				issues = append(issues, ValidationIssue{
					Path:    "/" + KeyVersion,
					Message: printer.Sprintf("%q is not a semantic version", v),
					Keyword: "semver",
				})
			}
		}
	}

	return &ValidationResult{Valid: len(issues) == 0, Issues: issues}, nil
}

// ValidateFile reads a file and validates it.
func ValidateFile(path string) (*ValidationResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return Validate(data)
}

// extractIssues flattens the ValidationError tree into one issue per failing
// leaf keyword, ordered by instance location.
func extractIssues(ve *jsonschema.ValidationError) []ValidationIssue {
	seen := make(map[ValidationIssue]bool)
	var issues []ValidationIssue
	walkLeaves(ve, func(leaf *jsonschema.ValidationError) {
		issue, ok := leafIssue(leaf)
		if !ok || seen[issue] {
			return
		}
		seen[issue] = true
		issues = append(issues, issue)
	})

	if len(issues) == 0 {
		return []ValidationIssue{{Message: ve.Error()}}
	}
	sort.SliceStable(issues, func(i, j int) bool { return issues[i].Path < issues[j].Path })
	return issues
}

func walkLeaves(ve *jsonschema.ValidationError, fn func(*jsonschema.ValidationError)) {
	if len(ve.Causes) == 0 {
		fn(ve)
		return
	}
	for _, cause := range ve.Causes {
		walkLeaves(cause, fn)
	}
}

// leafIssue converts a leaf error. Combinator keywords carry no useful
// message of their own and are dropped.
func leafIssue(ve *jsonschema.ValidationError) (ValidationIssue, bool) {
	if ve.ErrorKind == nil {
		return ValidationIssue{}, false
	}
	kwPath := ve.ErrorKind.KeywordPath()
	if len(kwPath) == 0 {
		return ValidationIssue{}, false
	}
	keyword := kwPath[len(kwPath)-1]
	switch keyword {
	case "oneOf", "anyOf", "allOf", "$ref":
		return ValidationIssue{}, false
	}

	issue := ValidationIssue{
		Message: ve.ErrorKind.LocalizedString(printer),
		Keyword: keyword,
	}
	if len(ve.InstanceLocation) > 0 {
		issue.Path = "/" + strings.Join(ve.InstanceLocation, "/")
	}
	return issue, true
}
