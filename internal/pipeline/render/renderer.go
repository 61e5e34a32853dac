// Package render implements PipelineRenderer (C3, spec §4.3): merges a
// DefinitionDescriptor's base and override definitions, builds the
// template-engine's metadata bundle, and renders it into deployable
// pipeline text, always returning a RenderResult rather than a Go error.
package render

import (
	"errors"
	"fmt"
	"sync"

	"github.com/giantswarm/pipeline-replicator/internal/model"
	"github.com/giantswarm/pipeline-replicator/internal/templateengine"
)

// Renderer renders DefinitionDescriptors via a templateengine.Engine,
// serialising every render call under renderLock because the engine is
// assumed to carry non-reentrant global state (spec §5, §9
// "Template-engine global lock" — a correctness requirement, not a
// performance hint).
type Renderer struct {
	engine         templateengine.Engine
	includeDir     string
	toolingVersion string

	renderLock sync.Mutex
}

func NewRenderer(engine templateengine.Engine, includeDir, toolingVersion string) *Renderer {
	return &Renderer{engine: engine, includeDir: includeDir, toolingVersion: toolingVersion}
}

// Render never returns an error: all failure modes are captured in the
// returned RenderResult (spec §4.3 "never throws").
func (r *Renderer) Render(descriptor model.DefinitionDescriptor) model.RenderResult {
	if descriptor.MainRepo.Owner == "" || descriptor.MainRepo.Name == "" {
		return model.RenderResult{
			Descriptor:   descriptor,
			Status:       model.RenderFailed,
			ErrorDetails: "pipeline variant does not declare a main repository",
		}
	}

	merged := mergeAll(descriptor.BaseDefinition, descriptor.OverrideDefinitions)

	templateName, _ := merged["template"].(string)
	if templateName == "" {
		return model.RenderResult{
			Descriptor:   descriptor,
			Status:       model.RenderFailed,
			ErrorDetails: "pipeline definition does not name a template",
		}
	}

	bundle := templateengine.MetadataBundle{
		DefinitionAST:      merged,
		PipelineName:       descriptor.EffectiveName(),
		TargetTeam:         descriptor.TargetTeam,
		SecretConfigHandle: descriptor.SecretConfig,
		JobMappingHandle:   descriptor.JobMappingName,
		RenderOrigin:       string(descriptor.RenderOrigin),
		ToolingVersion:     r.toolingVersion,
		Committish:         descriptor.Committish,
	}
	if name, ok := merged["replication_pipeline"].(string); ok {
		bundle.ReplicationPipeline = name
	}
	if img, ok := merged["background_image"].(string); ok {
		bundle.BackgroundImage = img
	}

	r.renderLock.Lock()
	text, err := r.engine.Render(templateName, r.includeDir, bundle)
	r.renderLock.Unlock()

	if err != nil {
		return model.RenderResult{
			Descriptor:   descriptor,
			Status:       model.RenderFailed,
			ErrorDetails: formatRenderError(err),
			Exception:    err,
		}
	}

	return model.RenderResult{
		Descriptor:   descriptor,
		Status:       model.RenderSucceeded,
		PipelineText: text,
	}
}

// formatRenderError prefers the template engine's own formatted trace over
// the bare Go error text, per spec §4.3 point 6.
func formatRenderError(err error) string {
	var renderErr *templateengine.RenderError
	if errors.As(err, &renderErr) && renderErr.FormattedTrace != "" {
		return renderErr.FormattedTrace
	}
	return fmt.Sprintf("rendering failed: %v", err)
}
