package replication

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/giantswarm/pipeline-replicator/internal/githubclient"
	"github.com/giantswarm/pipeline-replicator/internal/mailer"
	"github.com/giantswarm/pipeline-replicator/internal/model"
)

// pipelineDefinitionsPath is the conventional location CODEOWNERS is
// matched against when resolving notification recipients for a broken
// pipeline definition.
const pipelineDefinitionsPath = ".ci/pipeline_definitions"

// infrastructureErrorClasses are the exception classes spec §9's
// "Error-class filter for notifications" names: programmer/infrastructure
// errors that are never user-actionable, so notifying pipeline owners
// about them would only generate noise. original_source's runtime is
// Python; these are the semantic equivalents of its exception class
// names, matched against the rendered error text since Go has no
// matching exception hierarchy to type-switch on.
var infrastructureErrorClasses = []string{
	"arithmeticerror", "attributeerror", "buffererror", "eoferror",
	"importerror", "memoryerror", "nameerror", "oserror",
	"referenceerror", "recursionerror", "syntaxerror", "typeerror",
}

// Notifier decides whether a rendering failure should be surfaced to
// pipeline owners and sends the email when it should (spec §4.5 point 8).
type Notifier struct {
	gh   githubclient.Client
	mail *mailer.Mailer
	log  *slog.Logger
}

func NewNotifier(gh githubclient.Client, mail *mailer.Mailer, log *slog.Logger) *Notifier {
	return &Notifier{gh: gh, mail: mail, log: log}
}

// notifyFailures notifies owners of every user-actionable rendering
// failure among renders, and reports whether every notification attempt
// that was owed actually succeeded — the only thing that can make
// Orchestrator.Replicate return false (spec §7 point 7).
func (o *Orchestrator) notifyFailures(ctx context.Context, renders []model.RenderResult) bool {
	return o.notifier.notifyFailures(ctx, renders)
}

func (n *Notifier) notifyFailures(ctx context.Context, renders []model.RenderResult) bool {
	allOK := true
	for _, r := range renders {
		if r.Succeeded() {
			continue
		}
		if isInfrastructureError(r) {
			continue
		}
		if err := n.notifyOne(ctx, r); err != nil {
			n.log.Error("notifying pipeline owners failed", "pipeline", r.Descriptor.EffectiveName(), "error", err)
			allOK = false
		}
	}
	return allOK
}

func (n *Notifier) notifyOne(ctx context.Context, r model.RenderResult) error {
	repo := githubclient.Repository{Owner: r.Descriptor.MainRepo.Owner, Name: r.Descriptor.MainRepo.Name}

	recipients, err := mailer.ResolveRecipients(ctx, n.gh, repo, r.Descriptor.Committish, pipelineDefinitionsPath)
	if err != nil {
		return fmt.Errorf("resolving recipients: %w", err)
	}
	if len(recipients) == 0 {
		n.log.Info("no recipients resolved for rendering failure, skipping notification",
			"pipeline", r.Descriptor.EffectiveName(), "repo", repo.Name)
		return nil
	}

	subject := fmt.Sprintf("Pipeline definition %s failed to render", r.Descriptor.EffectiveName())
	body := fmt.Sprintf("Pipeline: %s\nRepository: %s/%s\nCommittish: %s\n\n%s",
		r.Descriptor.EffectiveName(), repo.Owner, repo.Name, r.Descriptor.Committish, r.ErrorDetails)

	return n.mail.Send(ctx, recipients, subject, body)
}

// isInfrastructureError reports whether r's failure belongs to one of the
// suppressed classes (spec §4.5 point 8, §9).
func isInfrastructureError(r model.RenderResult) bool {
	text := strings.ToLower(r.ErrorDetails)
	if r.Exception != nil {
		text += " " + strings.ToLower(r.Exception.Error())
	}
	for _, class := range infrastructureErrorClasses {
		if strings.Contains(text, class) {
			return true
		}
	}
	return false
}
