// Package prompt resolves a prompt source — inline template, file, or
// compiled artifact — into renderable template text.
package prompt

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/2nod/evalrunner/pkg/models"
)

// ArtifactField selects which field of a compiled-prompt artifact to use.
type ArtifactField string

const (
	FieldSystemPrompt ArtifactField = "systemPrompt"
	FieldUserPrompt   ArtifactField = "userPrompt"
	FieldTemplate     ArtifactField = "template"
)

// Source names exactly one of inline template, file path, or artifact
// reference as the origin of a prompt.
type Source struct {
	Template      string        `yaml:"template,omitempty"`
	File          string        `yaml:"file,omitempty"`
	Artifact      string        `yaml:"artifact,omitempty"`
	ArtifactField ArtifactField `yaml:"artifactField,omitempty"`
}

// Artifact is a compiled-prompt JSON document produced by an external
// optimizer. Resolve returns only the selected field, the system prompt,
// and the artifact's reference id; RunRecord has no provenance field, so
// neither the body nor the reference id is written to a RunRecord.
type Artifact struct {
	SystemPrompt string         `json:"systemPrompt"`
	UserPrompt   string         `json:"userPrompt"`
	Template     string         `json:"template"`
	FewShots     []any          `json:"fewShots,omitempty"`
	Params       map[string]any `json:"params,omitempty"`
	Provenance   string         `json:"provenance,omitempty"`
}

// Resolved is the template text and optional system message ready for
// rendering.
type Resolved struct {
	System   string
	Template string
	Artifact string // reference id of the artifact source, never the body
}

// Resolver resolves prompt Sources given a map of artifact id to file path
// (populated from the configuration document's promptArtifacts map).
type Resolver struct {
	ArtifactPaths map[string]string
}

// NewResolver builds a Resolver over the given artifact id -> file path map.
func NewResolver(artifactPaths map[string]string) *Resolver {
	return &Resolver{ArtifactPaths: artifactPaths}
}

// Resolve resolves a Source into rendering-ready text.
func (r *Resolver) Resolve(src Source) (Resolved, error) {
	set := 0
	for _, v := range []string{src.Template, src.File, src.Artifact} {
		if v != "" {
			set++
		}
	}
	if set > 1 {
		return Resolved{}, &models.ConfigError{Err: fmt.Errorf("prompt source must set exactly one of template, file, or artifact")}
	}
	switch {
	case src.Template != "":
		return Resolved{Template: src.Template}, nil
	case src.File != "":
		data, err := os.ReadFile(src.File)
		if err != nil {
			return Resolved{}, &models.ConfigError{Path: src.File, Err: err}
		}
		return Resolved{Template: string(data)}, nil
	case src.Artifact != "":
		return r.resolveArtifact(src)
	default:
		return Resolved{}, &models.ConfigError{Err: fmt.Errorf("prompt source must set exactly one of template, file, or artifact")}
	}
}

func (r *Resolver) resolveArtifact(src Source) (Resolved, error) {
	path, ok := r.ArtifactPaths[src.Artifact]
	if !ok {
		return Resolved{}, &models.ConfigError{Err: fmt.Errorf("unknown prompt artifact %q", src.Artifact)}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Resolved{}, &models.ConfigError{Path: path, Err: err}
	}
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return Resolved{}, &models.ConfigError{Path: path, Err: err}
	}

	field := src.ArtifactField
	if field == "" {
		field = FieldTemplate
	}
	var tmpl string
	switch field {
	case FieldSystemPrompt:
		tmpl = artifact.SystemPrompt
	case FieldUserPrompt:
		tmpl = artifact.UserPrompt
	case FieldTemplate:
		tmpl = artifact.Template
	default:
		return Resolved{}, &models.ConfigError{Err: fmt.Errorf("unknown artifactField %q", field)}
	}

	return Resolved{
		System:   artifact.SystemPrompt,
		Template: tmpl,
		Artifact: src.Artifact,
	}, nil
}
