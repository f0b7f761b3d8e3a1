package service

import (
	"regexp"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-engine/internal/domain"
	"github.com/pgx-risk-engine/internal/rules"
)

// timestampLayout is ISO-8601 with millisecond precision and a Z suffix.
const timestampLayout = "2006-01-02T15:04:05.000Z"

var patientIDPattern = regexp.MustCompile(`^PG-[A-Z0-9]{6}$`)

// Assembler merges classifier output, explanation output, and quality
// metadata into the canonical report, validating it unconditionally before
// returning. A report that fails validation is never surfaced to the caller.
type Assembler struct {
	logger *logrus.Logger
}

// NewAssembler creates a new report assembler
func NewAssembler(logger *logrus.Logger) *Assembler {
	return &Assembler{logger: logger}
}

// Assemble builds and validates the report for one drug.
func (a *Assembler) Assemble(patientID string, verdict domain.RiskVerdict, parseSucceeded bool, explanation domain.ExplanationBundle) (*domain.Report, error) {
	detected := verdict.DetectedVariants
	if detected == nil {
		detected = []domain.VariantRecord{}
	}

	report := &domain.Report{
		PatientID: patientID,
		Drug:      verdict.Drug,
		Timestamp: time.Now().UTC().Format(timestampLayout),
		RiskAssessment: domain.RiskAssessment{
			RiskLabel:       verdict.RiskLabel,
			ConfidenceScore: verdict.ConfidenceScore,
			Severity:        verdict.Severity,
		},
		PharmacogenomicProfile: domain.PharmacogenomicProfile{
			PrimaryGene:      verdict.PrimaryGene,
			Diplotype:        verdict.Diplotype,
			Phenotype:        verdict.Phenotype,
			DetectedVariants: detected,
		},
		ClinicalRecommendation: domain.ClinicalRecommendation{
			Action:               verdict.Action,
			DosingRecommendation: verdict.DosingRecommendation,
		},
		LLMGeneratedExplanation: explanation,
		QualityMetrics: domain.QualityMetrics{
			VCFParsingSuccess:     parseSucceeded,
			VariantsDetected:      len(detected),
			SupportedGeneDetected: verdict.PrimaryGene != domain.GeneNotDetected && rules.IsSupportedGene(verdict.PrimaryGene),
			CPICGuidelineVersion:  rules.GuidelineVersion,
		},
	}

	if err := Validate(report); err != nil {
		a.logger.WithError(err).WithField("drug", verdict.Drug).Error("Assembled report failed schema validation")
		return nil, err
	}
	return report, nil
}

var validRiskLabels = map[domain.RiskLabel]bool{
	domain.RiskSafe:         true,
	domain.RiskAdjustDosage: true,
	domain.RiskToxic:        true,
	domain.RiskIneffective:  true,
	domain.RiskUnknown:      true,
}

var validSeverities = map[domain.Severity]bool{
	domain.SeverityNone:     true,
	domain.SeverityLow:      true,
	domain.SeverityModerate: true,
	domain.SeverityHigh:     true,
	domain.SeverityCritical: true,
}

// Validate checks a report against the output schema. Validation stops at the
// first violation, which is reported with its field path.
func Validate(report *domain.Report) error {
	if report == nil {
		return domain.NewSchemaValidationError("report", "report is nil")
	}
	if report.PatientID == "" {
		return domain.NewSchemaValidationError("patient_id", "must be a non-empty string")
	}
	if !patientIDPattern.MatchString(report.PatientID) {
		return domain.NewSchemaValidationError("patient_id", "must match PG- followed by 6 uppercase alphanumeric characters")
	}
	if report.Drug == "" {
		return domain.NewSchemaValidationError("drug", "must be a non-empty string")
	}
	if _, err := time.Parse(timestampLayout, report.Timestamp); err != nil {
		return domain.NewSchemaValidationError("timestamp", "must be an ISO-8601 timestamp with millisecond precision")
	}
	if !validRiskLabels[report.RiskAssessment.RiskLabel] {
		return domain.NewSchemaValidationError("risk_assessment.risk_label", "must be one of Safe, Adjust Dosage, Toxic, Ineffective, Unknown")
	}
	if report.RiskAssessment.ConfidenceScore < 0 || report.RiskAssessment.ConfidenceScore > 1 {
		return domain.NewSchemaValidationError("risk_assessment.confidence_score", "must be a number in [0,1]")
	}
	if !validSeverities[report.RiskAssessment.Severity] {
		return domain.NewSchemaValidationError("risk_assessment.severity", "must be one of none, low, moderate, high, critical")
	}
	if report.PharmacogenomicProfile.PrimaryGene == "" {
		return domain.NewSchemaValidationError("pharmacogenomic_profile.primary_gene", "must be a non-empty string")
	}
	if report.PharmacogenomicProfile.Diplotype == "" {
		return domain.NewSchemaValidationError("pharmacogenomic_profile.diplotype", "must be a non-empty string")
	}
	if report.PharmacogenomicProfile.Phenotype == "" {
		return domain.NewSchemaValidationError("pharmacogenomic_profile.phenotype", "must be a non-empty string")
	}
	if report.PharmacogenomicProfile.DetectedVariants == nil {
		return domain.NewSchemaValidationError("pharmacogenomic_profile.detected_variants", "must be a list")
	}
	if report.ClinicalRecommendation.Action == "" {
		return domain.NewSchemaValidationError("clinical_recommendation.action", "must be a non-empty string")
	}
	if report.ClinicalRecommendation.DosingRecommendation == "" {
		return domain.NewSchemaValidationError("clinical_recommendation.dosing_recommendation", "must be a non-empty string")
	}
	if report.LLMGeneratedExplanation.Summary == "" {
		return domain.NewSchemaValidationError("llm_generated_explanation.summary", "must be a non-empty string")
	}
	if report.LLMGeneratedExplanation.Mechanism == "" {
		return domain.NewSchemaValidationError("llm_generated_explanation.mechanism", "must be a non-empty string")
	}
	if report.LLMGeneratedExplanation.ClinicalImpact == "" {
		return domain.NewSchemaValidationError("llm_generated_explanation.clinical_impact", "must be a non-empty string")
	}
	if report.QualityMetrics.VariantsDetected < 0 {
		return domain.NewSchemaValidationError("quality_metrics.variants_detected", "must be a non-negative count")
	}
	if report.QualityMetrics.CPICGuidelineVersion == "" {
		return domain.NewSchemaValidationError("quality_metrics.cpic_guideline_version", "must be a non-empty string")
	}
	return nil
}
