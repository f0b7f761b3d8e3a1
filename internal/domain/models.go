package domain

// Core Enums and Types

// RiskLabel represents the clinical risk verdict for a drug given a
// patient's pharmacogenomic profile.
type RiskLabel string

const (
	RiskSafe         RiskLabel = "Safe"
	RiskAdjustDosage RiskLabel = "Adjust Dosage"
	RiskToxic        RiskLabel = "Toxic"
	RiskIneffective  RiskLabel = "Ineffective"
	RiskUnknown      RiskLabel = "Unknown"
)

// Severity represents the clinical severity attached to a risk verdict.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityLow      Severity = "low"
	SeverityModerate Severity = "moderate"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// PhenotypeLabel represents a metabolizer phenotype classification.
type PhenotypeLabel string

const (
	PhenotypePoor         PhenotypeLabel = "Poor Metabolizer (PM)"
	PhenotypeIntermediate PhenotypeLabel = "Intermediate Metabolizer (IM)"
	PhenotypeNormal       PhenotypeLabel = "Normal Metabolizer (NM)"
	PhenotypeRapid        PhenotypeLabel = "Rapid Metabolizer (RM)"
	PhenotypeUltrarapid   PhenotypeLabel = "Ultrarapid Metabolizer (UM)"
	PhenotypeUnknown      PhenotypeLabel = "Unknown"
)

// Confidence tiers. Exactly three values exist: an exact diplotype+drug rule
// match, a phenotype-derived heuristic, and insufficient data.
const (
	ConfidenceExactMatch   = 0.95
	ConfidencePartialMatch = 0.75
	ConfidenceNoData       = 0.40
)

// GeneNotDetected is the sentinel primary gene for drugs with no gene mapping.
const GeneNotDetected = "Not detected"

// Core Data Models

// VariantRecord is one detected genomic variant relevant to pharmacogenomics.
// Gene is always non-empty; records without a gene annotation are discarded
// during parsing, never constructed.
type VariantRecord struct {
	RSID       string `json:"rsid"`
	Gene       string `json:"gene"`
	StarAllele string `json:"star_allele"`
	Chromosome string `json:"chromosome,omitempty"`
	Position   int64  `json:"position,omitempty"`
	Ref        string `json:"ref,omitempty"`
	Alt        string `json:"alt,omitempty"`
}

// RiskVerdict is the classification result for one (drug, variant-set) pair.
// DetectedVariants contains only records whose gene equals PrimaryGene.
type RiskVerdict struct {
	Drug                 string          `json:"drug"`
	RiskLabel            RiskLabel       `json:"risk_label"`
	Severity             Severity        `json:"severity"`
	ConfidenceScore      float64         `json:"confidence_score"`
	PrimaryGene          string          `json:"primary_gene"`
	Diplotype            string          `json:"diplotype"`
	Phenotype            PhenotypeLabel  `json:"phenotype"`
	Action               string          `json:"action"`
	DosingRecommendation string          `json:"dosing_recommendation"`
	DetectedVariants     []VariantRecord `json:"detected_variants"`
}

// ExplanationBundle is a complete clinical narrative for one verdict.
// All three fields are always populated, whether generated or templated.
type ExplanationBundle struct {
	Summary        string `json:"summary"`
	Mechanism      string `json:"mechanism"`
	ClinicalImpact string `json:"clinical_impact"`
}

// Report Models

// RiskAssessment is the risk section of a report.
type RiskAssessment struct {
	RiskLabel       RiskLabel `json:"risk_label"`
	ConfidenceScore float64   `json:"confidence_score"`
	Severity        Severity  `json:"severity"`
}

// PharmacogenomicProfile is the genotype section of a report.
type PharmacogenomicProfile struct {
	PrimaryGene      string          `json:"primary_gene"`
	Diplotype        string          `json:"diplotype"`
	Phenotype        PhenotypeLabel  `json:"phenotype"`
	DetectedVariants []VariantRecord `json:"detected_variants"`
}

// ClinicalRecommendation is the actionable section of a report.
type ClinicalRecommendation struct {
	Action               string `json:"action"`
	DosingRecommendation string `json:"dosing_recommendation"`
}

// QualityMetrics carries per-report analysis quality metadata.
// VariantsDetected counts the primary gene's relevant variants, not the
// file-wide total.
type QualityMetrics struct {
	VCFParsingSuccess     bool   `json:"vcf_parsing_success"`
	VariantsDetected      int    `json:"variants_detected"`
	SupportedGeneDetected bool   `json:"supported_gene_detected"`
	CPICGuidelineVersion  string `json:"cpic_guideline_version"`
}

// Report is the externally visible unit of work: exactly these eight
// top-level keys, serialized as JSON. A Report is either fully schema-valid
// or never returned to the caller.
type Report struct {
	PatientID               string                 `json:"patient_id"`
	Drug                    string                 `json:"drug"`
	Timestamp               string                 `json:"timestamp"`
	RiskAssessment          RiskAssessment         `json:"risk_assessment"`
	PharmacogenomicProfile  PharmacogenomicProfile `json:"pharmacogenomic_profile"`
	ClinicalRecommendation  ClinicalRecommendation `json:"clinical_recommendation"`
	LLMGeneratedExplanation ExplanationBundle      `json:"llm_generated_explanation"`
	QualityMetrics          QualityMetrics         `json:"quality_metrics"`
}

// AnalysisResult is the outcome of one orchestrator run over a variant file
// and a drug list. Partial success is the normal case: Reports holds the
// drugs whose assembly validated, SchemaErrors the ones that did not.
type AnalysisResult struct {
	PatientID     string          `json:"patient_id"`
	VCFSuccess    bool            `json:"vcf_success"`
	VariantsFound int             `json:"variants_found"`
	Variants      []VariantRecord `json:"variants"`
	Reports       []Report        `json:"reports"`
	RiskResults   []RiskVerdict   `json:"risk_results"`
	SchemaErrors  []string        `json:"schema_errors"`
}
