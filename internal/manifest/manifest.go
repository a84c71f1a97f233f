// Package manifest reads and checks the application manifest exported by
// the Epinio console.
package manifest

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaJSON []byte

var schemaLoader = gojsonschema.NewBytesLoader(schemaJSON)

// ErrInvalid wraps schema violations.
var ErrInvalid = errors.New("invalid manifest")

// ErrMismatch is returned by Check when the manifest and the app disagree.
var ErrMismatch = errors.New("manifest does not match application")

type Manifest struct {
	Name          string        `yaml:"name"`
	Namespace     string        `yaml:"namespace,omitempty"`
	Configuration Configuration `yaml:"configuration"`
	Origin        Origin        `yaml:"origin,omitempty"`
	Staging       Staging       `yaml:"staging,omitempty"`
}

type Configuration struct {
	Instances      *int              `yaml:"instances,omitempty"`
	Configurations []string          `yaml:"configurations,omitempty"`
	Environment    map[string]string `yaml:"environment,omitempty"`
	Routes         []string          `yaml:"routes,omitempty"`
	AppChart       string            `yaml:"appchart,omitempty"`
}

// Origin is where the app sources came from. At most one field is set.
type Origin struct {
	Path      string  `yaml:"path,omitempty"`
	Container string  `yaml:"container,omitempty"`
	Git       *GitRef `yaml:"git,omitempty"`
}

type GitRef struct {
	URL      string `yaml:"url"`
	Revision string `yaml:"revision,omitempty"`
	Branch   string `yaml:"branch,omitempty"`
	Provider string `yaml:"provider,omitempty"`
}

type Staging struct {
	Builder string `yaml:"builder,omitempty"`
}

// Load reads path, validates it against the manifest schema and decodes it.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Manifest, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := validate(doc); err != nil {
		return nil, err
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	return &m, nil
}

func validate(doc map[string]any) error {
	if doc == nil {
		return fmt.Errorf("%w: empty document", ErrInvalid)
	}
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to convert manifest to JSON: %w", err)
	}
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(docJSON))
	if err != nil {
		return fmt.Errorf("manifest validation error: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var errs []error
	for _, re := range result.Errors() {
		errs = append(errs, fmt.Errorf("%s: %s", re.Field(), re.Description()))
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}

// Expectation is what the console showed for the exported app.
// Zero values are not compared.
type Expectation struct {
	Name          string
	Route         string
	Instances     int
	Configuration string
	Vars          []string
}

// Check compares the manifest with want and reports every difference.
func (m *Manifest) Check(want Expectation) error {
	var errs []error
	if want.Name != "" && m.Name != want.Name {
		errs = append(errs, fmt.Errorf("name is %q, want %q", m.Name, want.Name))
	}
	if want.Route != "" && !slices.Contains(m.Configuration.Routes, want.Route) {
		errs = append(errs, fmt.Errorf("routes %v lack %q", m.Configuration.Routes, want.Route))
	}
	if want.Instances > 0 {
		if got := m.Instances(); got != want.Instances {
			errs = append(errs, fmt.Errorf("instances is %d, want %d", got, want.Instances))
		}
	}
	if want.Configuration != "" && !slices.Contains(m.Configuration.Configurations, want.Configuration) {
		errs = append(errs, fmt.Errorf("configurations %v lack %q", m.Configuration.Configurations, want.Configuration))
	}
	for _, v := range want.Vars {
		if _, ok := m.Configuration.Environment[v]; !ok {
			errs = append(errs, fmt.Errorf("environment lacks %s", v))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrMismatch, errors.Join(errs...))
}

// Instances defaults to one when the manifest leaves it out.
func (m *Manifest) Instances() int {
	if m.Configuration.Instances == nil {
		return 1
	}
	return *m.Configuration.Instances
}

// SourceKind names the origin the way the console labels it.
func (m *Manifest) SourceKind() string {
	switch {
	case m.Origin.Git != nil && strings.HasPrefix(m.Origin.Git.Provider, "github"):
		return "GitHub"
	case m.Origin.Git != nil && strings.HasPrefix(m.Origin.Git.Provider, "gitlab"):
		return "GitLab"
	case m.Origin.Git != nil:
		return "Git URL"
	case m.Origin.Container != "":
		return "Container Image"
	case m.Origin.Path != "":
		return "Archive"
	}
	return ""
}
