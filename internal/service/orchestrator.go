package service

import (
	"context"
	"crypto/rand"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-engine/internal/domain"
	"github.com/pgx-risk-engine/internal/vcf"
)

// Orchestrator runs the whole pipeline for one variant file and a set of
// drugs: parse once, then classify, explain, and assemble per distinct drug,
// sequentially. Sequential per-drug processing is deliberate: deterministic
// report ordering and a trivially bounded request volume against the
// text-generation endpoint.
type Orchestrator struct {
	logger     *logrus.Logger
	classifier *Classifier
	explainer  *Explainer
	assembler  *Assembler
}

// NewOrchestrator creates a new analysis orchestrator
func NewOrchestrator(logger *logrus.Logger, classifier *Classifier, explainer *Explainer, assembler *Assembler) *Orchestrator {
	return &Orchestrator{
		logger:     logger,
		classifier: classifier,
		explainer:  explainer,
		assembler:  assembler,
	}
}

// Run executes one analysis. An input-format failure does not abort: every
// requested drug still classifies (as Unknown via the no-variants path), and
// a schema failure on one drug's report never blocks the rest.
func (o *Orchestrator) Run(ctx context.Context, rawVariantText string, drugList []string) domain.AnalysisResult {
	parsed := vcf.Parse(rawVariantText)
	if !parsed.Success {
		o.logger.WithField("error", parsed.Error).Warn("Variant parsing failed; proceeding with zero variants")
	}

	patientID := newPatientID()
	drugs := dedupeDrugs(drugList)

	o.logger.WithFields(logrus.Fields{
		"patient_id":     patientID,
		"variants_found": len(parsed.Variants),
		"drugs":          len(drugs),
	}).Info("Starting analysis run")

	result := domain.AnalysisResult{
		PatientID:     patientID,
		VCFSuccess:    parsed.Success,
		VariantsFound: len(parsed.Variants),
		Variants:      parsed.Variants,
		Reports:       []domain.Report{},
		RiskResults:   []domain.RiskVerdict{},
		SchemaErrors:  []string{},
	}

	for _, drug := range drugs {
		verdict := o.classifier.Classify(drug, parsed.Variants)
		result.RiskResults = append(result.RiskResults, verdict)

		explanation := o.explainer.Explain(ctx, verdict)

		report, err := o.assembler.Assemble(patientID, verdict, parsed.Success, explanation)
		if err != nil {
			result.SchemaErrors = append(result.SchemaErrors, err.Error())
			continue
		}
		result.Reports = append(result.Reports, *report)
	}

	o.logger.WithFields(logrus.Fields{
		"patient_id":    patientID,
		"reports":       len(result.Reports),
		"schema_errors": len(result.SchemaErrors),
	}).Info("Analysis run completed")

	return result
}

// dedupeDrugs trims entries, drops empties, and deduplicates by canonical
// name, preserving first-seen order.
func dedupeDrugs(drugList []string) []string {
	seen := make(map[string]bool, len(drugList))
	out := make([]string, 0, len(drugList))
	for _, drug := range drugList {
		canonical := CanonicalDrugName(drug)
		if canonical == "" || seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	return out
}

const patientIDCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// newPatientID generates a session identifier of the form PG-XXXXXX.
func newPatientID() string {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; keep a fixed
		// sentinel rather than panicking mid-run.
		return "PG-000000"
	}
	var sb strings.Builder
	sb.WriteString("PG-")
	for _, b := range buf {
		sb.WriteByte(patientIDCharset[int(b)%len(patientIDCharset)])
	}
	return sb.String()
}
