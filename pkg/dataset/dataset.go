package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"osprey-hq/talon/pkg/abac/entity"
)

// User is one userAttrib record from a lab dataset.
type User struct {
	ID         string
	Attributes map[UserKey]entity.Value
}

// Resource is one resourceAttrib record from a lab dataset.
type Resource struct {
	ID         string
	Attributes map[ResourceKey]entity.Value
}

// Dataset holds a parsed lab file. Rule lines are retained verbatim;
// nothing in the analysis tooling interprets them.
type Dataset struct {
	Users     []User
	Resources []Resource
	Rules     []string
}

// ParseError reports a malformed dataset line.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("dataset line %d: %s", e.Line, e.Message)
}

// Parse reads a lab dataset. Lines are userAttrib(uid, k=v, ...),
// resourceAttrib(rid, k=v, ...), or rule(...); blank lines and
// #-comments are skipped.
func Parse(r io.Reader) (*Dataset, error) {
	ds := &Dataset{}
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(line, "userAttrib("):
			user, err := parseUser(line)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Message: err.Error()}
			}
			ds.Users = append(ds.Users, user)

		case strings.HasPrefix(line, "resourceAttrib("):
			resource, err := parseResource(line)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Message: err.Error()}
			}
			ds.Resources = append(ds.Resources, resource)

		case strings.HasPrefix(line, "rule("):
			ds.Rules = append(ds.Rules, line)

		default:
			return nil, &ParseError{Line: lineNo, Message: fmt.Sprintf("unrecognized line %q", line)}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return ds, nil
}

// ParseFile parses a lab dataset file.
func ParseFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset %q: %w", path, err)
	}
	defer f.Close()

	ds, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing dataset %q: %w", path, err)
	}
	return ds, nil
}

func parseUser(line string) (User, error) {
	id, pairs, err := recordBody(line, "userAttrib")
	if err != nil {
		return User{}, err
	}

	attrs := make(map[UserKey]entity.Value, len(pairs))
	for name, raw := range pairs {
		key, err := ParseUserKey(name)
		if err != nil {
			return User{}, err
		}
		attrs[key] = parseValue(raw)
	}
	return User{ID: id, Attributes: attrs}, nil
}

func parseResource(line string) (Resource, error) {
	id, pairs, err := recordBody(line, "resourceAttrib")
	if err != nil {
		return Resource{}, err
	}

	attrs := make(map[ResourceKey]entity.Value, len(pairs))
	for name, raw := range pairs {
		key, err := ParseResourceKey(name)
		if err != nil {
			return Resource{}, err
		}
		attrs[key] = parseValue(raw)
	}
	return Resource{ID: id, Attributes: attrs}, nil
}

// recordBody strips "prefix(" and ")" and splits the record into its
// ID and key=value pairs. Set values contain no commas in this
// format, so a flat comma split is safe.
func recordBody(line, prefix string) (string, map[string]string, error) {
	content, ok := strings.CutPrefix(line, prefix+"(")
	if !ok {
		return "", nil, fmt.Errorf("invalid %s format", prefix)
	}
	content, ok = strings.CutSuffix(content, ")")
	if !ok {
		return "", nil, fmt.Errorf("invalid %s format: missing closing parenthesis", prefix)
	}

	parts := strings.Split(content, ",")
	id := strings.TrimSpace(parts[0])
	if id == "" {
		return "", nil, fmt.Errorf("missing %s ID", prefix)
	}

	pairs := make(map[string]string, len(parts)-1)
	for _, part := range parts[1:] {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, value, found := strings.Cut(part, "=")
		if !found {
			return "", nil, fmt.Errorf("malformed attribute %q: missing '='", part)
		}
		pairs[strings.TrimSpace(name)] = strings.TrimSpace(value)
	}

	return id, pairs, nil
}

// parseValue converts a raw attribute token: True/False become Bool,
// {a b c} becomes a whitespace-split Set, anything else is a String.
func parseValue(raw string) entity.Value {
	switch {
	case raw == "True":
		return entity.Bool(true)
	case raw == "False":
		return entity.Bool(false)
	case strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}"):
		inner := raw[1 : len(raw)-1]
		return entity.Set(strings.Fields(inner)...)
	default:
		return entity.String(raw)
	}
}
