// Package templateengine declares the YAML template engine contract (spec
// §6). The engine's concrete implementation is deliberately out of scope;
// PipelineRenderer (internal/pipeline/render) depends only on this
// interface, guarded by a process-wide exclusion lock it owns itself
// because the engine is assumed to have non-reentrant global state
// (spec §5, §9 "Template-engine global lock").
package templateengine

// MetadataBundle is everything the template needs to render one pipeline
// variant (spec §4.3 point 3).
type MetadataBundle struct {
	DefinitionAST       map[string]any
	PipelineName        string
	TargetTeam          string
	SecretConfigHandle   string
	JobMappingHandle     string
	RenderOrigin         string
	ToolingVersion       string
	Committish           string
	ReplicationPipeline  string // optional
	BackgroundImage      string // optional
}

// Engine renders a MetadataBundle into deployable pipeline text.
type Engine interface {
	// Render renders bundle using the named template and its include
	// directory. Errors must be of type *RenderError so callers can
	// extract the engine-native formatted trace rather than a raw Go
	// stack trace (spec §4.3 point 6).
	Render(templateName, includeDir string, bundle MetadataBundle) (string, error)
}

// RenderError is the error type Engine.Render must return on failure, so
// PipelineRenderer can record the engine's own formatted trace instead of
// a Go-level stack trace.
type RenderError struct {
	TemplateName    string
	FormattedTrace  string // the engine's native, human-readable trace
	Cause           error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.TemplateName + ": " + e.Cause.Error()
	}
	return e.TemplateName + ": template render failed"
}

func (e *RenderError) Unwrap() error { return e.Cause }
