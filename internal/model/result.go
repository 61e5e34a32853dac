package model

// RenderStatus is the outcome of rendering a single pipeline definition.
type RenderStatus int

const (
	RenderSucceeded RenderStatus = iota
	RenderFailed
)

// RenderResult is never an error return — PipelineRenderer.Render never
// returns a Go error; failures are captured here instead (spec §4.3
// "never throws").
type RenderResult struct {
	Descriptor   DefinitionDescriptor
	Status       RenderStatus
	PipelineText string
	ErrorDetails string
	Exception    error
}

func (r RenderResult) Succeeded() bool { return r.Status == RenderSucceeded }

// DeployStatus is a bitfield: SUCCEEDED and CREATED can both be set (a
// first-time deploy that also succeeded), matching spec §3's
// "status-bitfield".
type DeployStatus uint8

const (
	DeploySucceeded DeployStatus = 1 << iota
	DeployCreated
	DeployFailed
	DeploySkipped
)

// Has reports whether bit is set in the status.
func (s DeployStatus) Has(bit DeployStatus) bool { return s&bit != 0 }

// Ok reports SUCCEEDED or SKIPPED, per spec §3 `ok() ≡ SUCCEEDED ∨ SKIPPED`.
func (s DeployStatus) Ok() bool { return s.Has(DeploySucceeded) || s.Has(DeploySkipped) }

// DeployResult is the outcome of deploying a single rendered pipeline.
type DeployResult struct {
	Descriptor   DefinitionDescriptor
	Status       DeployStatus
	ErrorDetails string
}

// UpgradeVector is a proposed version bump for one component, produced by
// dependency-upgrade detection ([SUPPLEMENT] DetectUpgrades).
type UpgradeVector struct {
	Whence ComponentIdentity
	Whither ComponentIdentity
}
