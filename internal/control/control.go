// Package control parses the per-directory control files that steer tree
// construction: redirects.json and toc.json.
package control

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

const (
	// RedirectsFile maps titles to redirect targets for one directory.
	RedirectsFile = "redirects.json"
	// TableOfContentsFile lists child titles in display order for one directory.
	TableOfContentsFile = "toc.json"
	// Wildcard is the redirects key that turns the whole directory into a redirect.
	Wildcard = "*"
)

// ErrMalformed is returned for control files that are not valid JSON or do
// not match their schema.
var ErrMalformed = errors.New("malformed control file")

//go:embed schemas/*.schema.json
var schemaFS embed.FS

// FieldError is a single schema violation.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError lists every schema violation found in a control file.
type ValidationError struct {
	File   string
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s: schema validation failed", ve.File)
	for _, fe := range ve.Errors {
		fmt.Fprintf(&sb, "; %s: %s", fe.Field, fe.Message)
	}
	return sb.String()
}

func (ve *ValidationError) Unwrap() error { return ErrMalformed }

var (
	schemaOnce sync.Once
	schemas    map[string]*gojsonschema.Schema
	schemaErr  error
)

func loadSchemas() (map[string]*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schemas = make(map[string]*gojsonschema.Schema, 2)
		for file, name := range map[string]string{
			RedirectsFile:       "schemas/redirects.schema.json",
			TableOfContentsFile: "schemas/toc.schema.json",
		} {
			raw, err := schemaFS.ReadFile(name)
			if err != nil {
				schemaErr = fmt.Errorf("read schema %s: %w", name, err)
				return
			}
			s, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
			if err != nil {
				schemaErr = fmt.Errorf("compile schema %s: %w", name, err)
				return
			}
			schemas[file] = s
		}
	})
	return schemas, schemaErr
}

func validate(file string, data []byte) error {
	all, err := loadSchemas()
	if err != nil {
		return err
	}
	result, err := all[file].Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMalformed, file, err)
	}
	if result.Valid() {
		return nil
	}
	ve := &ValidationError{File: file, Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}

// Redirect is one title to target rule.
type Redirect struct {
	Title  string
	Target string
}

// Redirects is the parsed content of a redirects.json file.
type Redirects struct {
	// Directory is the wildcard target; when set the rules are not used.
	Directory string
	// Rules are sorted by title.
	Rules []Redirect
}

// IsDirectoryRedirect reports whether the file redirects its whole directory.
func (r Redirects) IsDirectoryRedirect() bool {
	return r.Directory != ""
}

// ParseRedirects validates and decodes a redirects.json document.
func ParseRedirects(data []byte) (Redirects, error) {
	if err := validate(RedirectsFile, data); err != nil {
		return Redirects{}, err
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return Redirects{}, fmt.Errorf("%w: %s: %w", ErrMalformed, RedirectsFile, err)
	}
	if target, ok := raw[Wildcard]; ok {
		return Redirects{Directory: target}, nil
	}
	titles := make([]string, 0, len(raw))
	for title := range raw {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	rules := make([]Redirect, 0, len(titles))
	for _, title := range titles {
		rules = append(rules, Redirect{Title: title, Target: raw[title]})
	}
	return Redirects{Rules: rules}, nil
}

// ParseTableOfContents validates and decodes a toc.json document into an
// ordered list of titles.
func ParseTableOfContents(data []byte) ([]string, error) {
	if err := validate(TableOfContentsFile, data); err != nil {
		return nil, err
	}
	var titles []string
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&titles); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, TableOfContentsFile, err)
	}
	if titles == nil {
		titles = []string{}
	}
	return titles, nil
}
