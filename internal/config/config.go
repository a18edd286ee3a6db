// Package config loads and validates the YAML or JSON configuration
// document that drives a run (dataset/experiment settings, component
// wiring, and ambient toggles).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/2nod/evalrunner/pkg/hardcheck"
	"github.com/2nod/evalrunner/pkg/models"
	"github.com/2nod/evalrunner/pkg/pipeline"
)

// RunSettings controls concurrency, rate limits, and disk layout.
type RunSettings struct {
	Concurrency       int    `yaml:"concurrency" json:"concurrency"`
	RPM               int    `yaml:"rpm" json:"rpm"`
	TPM               int    `yaml:"tpm" json:"tpm"`
	MaxRepairs        int    `yaml:"maxRepairs" json:"maxRepairs"`
	JudgeRuns         int    `yaml:"judgeRuns" json:"judgeRuns"`
	OutputDir         string `yaml:"outputDir" json:"outputDir"`
	CacheDir          string `yaml:"cacheDir" json:"cacheDir"`
	ResolvedPromptDir string `yaml:"resolvedPromptDir" json:"resolvedPromptDir"`
}

// HardCheckSettings mirrors defaults.hardChecks.
type HardCheckSettings struct {
	NoDisallowedJapanese  bool `yaml:"noDisallowedJapanese" json:"noDisallowedJapanese"`
	GlossaryStrictMatches bool `yaml:"glossaryStrictMatches" json:"glossaryStrictMatches"`
	NoMetaTalk            bool `yaml:"noMetaTalk" json:"noMetaTalk"`
	FormatPreserved       bool `yaml:"formatPreserved" json:"formatPreserved"`
	MaxLength             int  `yaml:"maxLength" json:"maxLength"`
}

// Defaults mirrors the defaults block.
type Defaults struct {
	Constraints models.ConstraintPartial `yaml:"constraints" json:"constraints"`
	HardChecks  HardCheckSettings        `yaml:"hardChecks" json:"hardChecks"`
}

// Toggles converts the document's hard-check settings into the engine's
// Toggles type. The document has no toggle for the maxLength rule: it is
// always enabled and applies whenever format.maxChars or maxLength sets a
// bound (maxLength itself is passed to the verifier separately).
func (h HardCheckSettings) Toggles() hardcheck.Toggles {
	return hardcheck.Toggles{
		NoDisallowedJapanese:  h.NoDisallowedJapanese,
		GlossaryStrictMatches: h.GlossaryStrictMatches,
		MaxLength:             true,
		NoMetaTalk:            h.NoMetaTalk,
		FormatPreserved:       h.FormatPreserved,
	}
}

// Components mirrors the components block. Optional components are nil
// pointers when absent from the document. Each entry reuses
// pipeline.Component so the loaded document can be handed straight to
// the pipeline constructors without copying fields.
type Components struct {
	Translator          pipeline.Component  `yaml:"translator" json:"translator"`
	TranslatorWithState *pipeline.Component `yaml:"translatorWithState,omitempty" json:"translatorWithState,omitempty"`
	StateBuilder        *pipeline.Component `yaml:"stateBuilder,omitempty" json:"stateBuilder,omitempty"`
	Verifier            *pipeline.Component `yaml:"verifier,omitempty" json:"verifier,omitempty"`
	Repairer            *pipeline.Component `yaml:"repairer,omitempty" json:"repairer,omitempty"`
	Judge               *pipeline.Component `yaml:"judge,omitempty" json:"judge,omitempty"`
}

// LangfuseConfig mirrors the langfuse block (tracing façade toggle).
type LangfuseConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	BaseURL string `yaml:"baseUrl" json:"baseUrl"`
}

// Document is the fully parsed configuration document (§6.3).
type Document struct {
	RunSettings     RunSettings       `yaml:"runSettings" json:"runSettings"`
	Defaults        Defaults          `yaml:"defaults" json:"defaults"`
	Components      Components        `yaml:"components" json:"components"`
	PromptArtifacts map[string]string `yaml:"promptArtifacts,omitempty" json:"promptArtifacts,omitempty"`
	Langfuse        LangfuseConfig    `yaml:"langfuse" json:"langfuse"`

	// dir is the directory the document was loaded from; outputDir,
	// cacheDir, and resolvedPromptDir are resolved relative to it.
	dir string
}

// Load reads and validates a configuration document at path. Format is
// chosen by extension: .json is parsed as JSON, anything else as YAML.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &models.ConfigError{Path: path, Err: err}
	}

	var doc Document
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, &models.ConfigError{Path: path, Err: err}
		}
	} else {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, &models.ConfigError{Path: path, Err: err}
		}
	}

	doc.dir = filepath.Dir(path)
	doc.applyDefaults()

	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (d *Document) applyDefaults() {
	if d.RunSettings.Concurrency <= 0 {
		d.RunSettings.Concurrency = 2
	}
	if d.RunSettings.MaxRepairs <= 0 {
		d.RunSettings.MaxRepairs = 1
	}
	if d.RunSettings.JudgeRuns <= 0 {
		d.RunSettings.JudgeRuns = 3
	}
	if d.RunSettings.OutputDir == "" {
		d.RunSettings.OutputDir = "output"
	}
	if d.RunSettings.CacheDir == "" {
		d.RunSettings.CacheDir = "cache"
	}
	if d.RunSettings.ResolvedPromptDir == "" {
		d.RunSettings.ResolvedPromptDir = "resolved_prompts"
	}
	if d.Defaults.HardChecks == (HardCheckSettings{}) {
		d.Defaults.HardChecks = HardCheckSettings{
			NoDisallowedJapanese:  true,
			GlossaryStrictMatches: true,
			NoMetaTalk:            true,
			FormatPreserved:       true,
		}
	}
}

func (d *Document) validate() error {
	if d.Components.Translator.Model.Provider == "" {
		return &models.ValidationError{Field: "components.translator.model.provider", Message: "a translator component is required"}
	}
	if d.RunSettings.Concurrency < 1 {
		return &models.ValidationError{Field: "runSettings.concurrency", Message: "must be at least 1"}
	}
	return nil
}

// ResolvedPath joins a settings-relative path with the document's
// directory, leaving absolute paths untouched.
func (d *Document) ResolvedPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(d.dir, p)
}

// OutputDir, CacheDir, and ResolvedPromptDir return the document-relative
// disk locations resolved against the document's directory.
func (d *Document) OutputDir() string         { return d.ResolvedPath(d.RunSettings.OutputDir) }
func (d *Document) CacheDir() string          { return d.ResolvedPath(d.RunSettings.CacheDir) }
func (d *Document) ResolvedPromptDir() string { return d.ResolvedPath(d.RunSettings.ResolvedPromptDir) }

// ArtifactPaths resolves promptArtifacts entries against the document's
// directory, for use with pkg/prompt.Resolver.
func (d *Document) ArtifactPaths() map[string]string {
	out := make(map[string]string, len(d.PromptArtifacts))
	for id, p := range d.PromptArtifacts {
		out[id] = d.ResolvedPath(p)
	}
	return out
}

// OpenAIAPIKey reads the required environment variable for any
// components selecting provider=openai. Returns an error naming the
// missing variable if none is set but a component needs it.
func OpenAIAPIKey() (string, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return "", fmt.Errorf("OPENAI_API_KEY is not set")
	}
	return key, nil
}

// UsesOpenAI reports whether any configured component selects the
// openai provider, so callers know whether OPENAI_API_KEY is required.
func (d *Document) UsesOpenAI() bool {
	specs := []*pipeline.Component{&d.Components.Translator}
	for _, opt := range []*pipeline.Component{d.Components.TranslatorWithState, d.Components.StateBuilder, d.Components.Verifier, d.Components.Repairer, d.Components.Judge} {
		if opt != nil {
			specs = append(specs, opt)
		}
	}
	for _, s := range specs {
		if s.Model.Provider == "openai" {
			return true
		}
	}
	return false
}
