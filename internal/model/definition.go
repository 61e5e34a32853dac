package model

// MainRepo identifies the source repository a pipeline definition is
// rooted at.
type MainRepo struct {
	Owner    string
	Name     string
	Branch   string
	Hostname string
}

// RenderOrigin describes what triggered a render, for diagnostics embedded
// in the rendered pipeline text.
type RenderOrigin string

const (
	RenderOriginLocal      RenderOrigin = "local"
	RenderOriginWebhook    RenderOrigin = "webhook"
	RenderOriginScheduled  RenderOrigin = "scheduled"
)

// DefinitionDescriptor is a pipeline-to-be-built. It is immutable once
// constructed; the preprocessor stage (replication.Preprocessor) mutates it
// only by producing a replacement value, never in place.
type DefinitionDescriptor struct {
	// PipelineName is the name as declared in the source definition.
	PipelineName string
	// EffectivePipelineName is set after preprocessing normalises the
	// declared name (e.g. disambiguating across branches).
	EffectivePipelineName string

	MainRepo MainRepo

	// BaseDefinition is the raw pipeline_definitions entry this descriptor
	// was built from.
	BaseDefinition map[string]any
	// OverrideDefinitions are applied, in order, over BaseDefinition by a
	// deep merge where later entries win.
	OverrideDefinitions []map[string]any

	TargetTeam      string
	SecretConfig    string
	JobMappingName  string
	Committish      string
	RenderOrigin    RenderOrigin

	// EnumerationError is set by an enumerator that could not fully
	// resolve this descriptor (e.g. missing job mapping). A non-nil value
	// causes the orchestrator to short-circuit straight to SKIPPED.
	EnumerationError error
}

// EffectiveName returns EffectivePipelineName if set, otherwise falls back
// to PipelineName, so callers never have to special-case the
// pre-preprocessing state.
func (d DefinitionDescriptor) EffectiveName() string {
	if d.EffectivePipelineName != "" {
		return d.EffectivePipelineName
	}
	return d.PipelineName
}

// WithReplacement returns a shallow copy of d. Callers that need to change
// a field build the copy then set the field on it, preserving the
// immutable-by-replacement discipline required by spec §3.
func (d DefinitionDescriptor) WithReplacement() DefinitionDescriptor {
	cp := d
	cp.OverrideDefinitions = append([]map[string]any(nil), d.OverrideDefinitions...)
	return cp
}

// Pipeline is produced by the webhook dispatcher when analysing events: the
// concrete (name, team, definition) triple a downstream action applies to.
type Pipeline struct {
	PipelineName       string
	TargetTeam         string
	EffectiveDefinition DefinitionDescriptor
}
