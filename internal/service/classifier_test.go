package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgx-risk-engine/internal/domain"
	"github.com/pgx-risk-engine/internal/rules"
)

func newTestClassifier() *Classifier {
	logger := testLogger()
	return NewClassifier(logger, NewResolver(logger))
}

func TestClassify_EveryCuratedRuleMatchesExactly(t *testing.T) {
	classifier := newTestClassifier()

	for _, entry := range rules.Entries() {
		alleles := strings.Split(entry.Diplotype, "/")
		require.Len(t, alleles, 2)
		variants := []domain.VariantRecord{
			variant(entry.Gene, alleles[0]),
			variant(entry.Gene, alleles[1]),
		}

		for drug, rule := range entry.Drugs {
			verdict := classifier.Classify(drug, variants)
			assert.Equal(t, rule.Risk, verdict.RiskLabel, "%s %s/%s", drug, entry.Gene, entry.Diplotype)
			assert.Equal(t, rule.Severity, verdict.Severity, "%s %s/%s", drug, entry.Gene, entry.Diplotype)
			assert.Equal(t, rule.Action, verdict.Action, "%s %s/%s", drug, entry.Gene, entry.Diplotype)
			assert.Equal(t, rule.Dosing, verdict.DosingRecommendation, "%s %s/%s", drug, entry.Gene, entry.Diplotype)
			assert.Equal(t, domain.ConfidenceExactMatch, verdict.ConfidenceScore, "%s %s/%s", drug, entry.Gene, entry.Diplotype)
			assert.Equal(t, entry.Phenotype, verdict.Phenotype, "%s %s/%s", drug, entry.Gene, entry.Diplotype)
			assert.Equal(t, entry.Diplotype, verdict.Diplotype, "%s %s/%s", drug, entry.Gene, entry.Diplotype)
		}
	}
}

func TestClassify_PoorMetabolizerCodeine(t *testing.T) {
	classifier := newTestClassifier()

	verdict := classifier.Classify("codeine", []domain.VariantRecord{
		variant("CYP2D6", "*4"),
		variant("CYP2D6", "*4"),
	})

	assert.Equal(t, "CODEINE", verdict.Drug)
	assert.Equal(t, domain.RiskToxic, verdict.RiskLabel)
	assert.Equal(t, domain.PhenotypePoor, verdict.Phenotype)
	assert.Equal(t, "*4/*4", verdict.Diplotype)
	assert.Equal(t, domain.ConfidenceExactMatch, verdict.ConfidenceScore)
}

func TestClassify_UltrarapidSingleVariantMatchesCuratedRule(t *testing.T) {
	classifier := newTestClassifier()

	// A lone duplication allele pairs with the reference allele; the curated
	// table keys that diplotype reference-first, so the verdict comes from the
	// exact rule rather than the heuristic.
	verdict := classifier.Classify("CODEINE", []domain.VariantRecord{
		variant("CYP2D6", "*2x2"),
	})

	assert.Equal(t, "*1/*2x2", verdict.Diplotype)
	assert.Equal(t, domain.PhenotypeUltrarapid, verdict.Phenotype)
	assert.Equal(t, domain.RiskToxic, verdict.RiskLabel)
	assert.Equal(t, domain.SeverityCritical, verdict.Severity)
	assert.Equal(t, domain.ConfidenceExactMatch, verdict.ConfidenceScore)
}

func TestClassify_UnmappedDrug(t *testing.T) {
	classifier := newTestClassifier()

	verdict := classifier.Classify("ASPIRIN", []domain.VariantRecord{
		variant("CYP2D6", "*4"),
	})

	assert.Equal(t, domain.RiskUnknown, verdict.RiskLabel)
	assert.Equal(t, domain.ConfidenceNoData, verdict.ConfidenceScore)
	assert.Equal(t, domain.GeneNotDetected, verdict.PrimaryGene)
	assert.Equal(t, "N/A", verdict.Diplotype)
	assert.Equal(t, domain.PhenotypeUnknown, verdict.Phenotype)
	assert.NotNil(t, verdict.DetectedVariants)
	assert.Empty(t, verdict.DetectedVariants)
}

func TestClassify_NoRelevantVariantsNeverSafe(t *testing.T) {
	classifier := newTestClassifier()

	tests := []struct {
		name     string
		drug     string
		variants []domain.VariantRecord
	}{
		{"empty variant list", "WARFARIN", nil},
		{"only other-gene variants", "WARFARIN", []domain.VariantRecord{variant("CYP2D6", "*4")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := classifier.Classify(tt.drug, tt.variants)
			assert.Equal(t, domain.RiskUnknown, verdict.RiskLabel, "absence of evidence must not read as Safe")
			assert.Equal(t, domain.ConfidenceNoData, verdict.ConfidenceScore)
			assert.Equal(t, "CYP2C9", verdict.PrimaryGene, "the required gene is still reported")
			assert.Equal(t, "N/A", verdict.Diplotype)
			assert.Empty(t, verdict.DetectedVariants)
		})
	}
}

func TestClassify_HeuristicBranches(t *testing.T) {
	classifier := newTestClassifier()

	tests := []struct {
		name         string
		drug         string
		variants     []domain.VariantRecord
		wantRisk     domain.RiskLabel
		wantSeverity domain.Severity
	}{
		{
			// *2/*3 CYP2C19 has no curated entry; score 0 -> Poor; prodrug.
			name:         "poor metabolizer prodrug is ineffective",
			drug:         "CLOPIDOGREL",
			variants:     []domain.VariantRecord{variant("CYP2C19", "*2"), variant("CYP2C19", "*3")},
			wantRisk:     domain.RiskIneffective,
			wantSeverity: domain.SeverityHigh,
		},
		{
			// Same genotype, non-prodrug substrate accumulates instead.
			name:         "poor metabolizer non-prodrug is toxic",
			drug:         "OMEPRAZOLE",
			variants:     []domain.VariantRecord{variant("CYP2C19", "*2"), variant("CYP2C19", "*3")},
			wantRisk:     domain.RiskToxic,
			wantSeverity: domain.SeverityHigh,
		},
		{
			// *2/*17 CYP2C19 is uncurated; score 1.5 -> Normal.
			name:         "normal metabolizer is safe",
			drug:         "OMEPRAZOLE",
			variants:     []domain.VariantRecord{variant("CYP2C19", "*2"), variant("CYP2C19", "*17")},
			wantRisk:     domain.RiskSafe,
			wantSeverity: domain.SeverityNone,
		},
		{
			// *17/*17 is curated for omeprazole/escitalopram but not
			// clopidogrel; phenotype Ultrarapid + prodrug -> Toxic.
			name:         "ultrarapid prodrug is toxic",
			drug:         "CLOPIDOGREL",
			variants:     []domain.VariantRecord{variant("CYP2C19", "*17"), variant("CYP2C19", "*17")},
			wantRisk:     domain.RiskToxic,
			wantSeverity: domain.SeverityCritical,
		},
		{
			// *10/*41 CYP2D6 uncurated; score 0.75 -> Intermediate.
			name:         "intermediate metabolizer adjusts dosage",
			drug:         "CODEINE",
			variants:     []domain.VariantRecord{variant("CYP2D6", "*10"), variant("CYP2D6", "*41")},
			wantRisk:     domain.RiskAdjustDosage,
			wantSeverity: domain.SeverityModerate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict := classifier.Classify(tt.drug, tt.variants)
			assert.Equal(t, tt.wantRisk, verdict.RiskLabel)
			assert.Equal(t, tt.wantSeverity, verdict.Severity)
			assert.Equal(t, domain.ConfidencePartialMatch, verdict.ConfidenceScore)
			assert.NotEmpty(t, verdict.Action)
			assert.NotEmpty(t, verdict.DosingRecommendation)
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	classifier := newTestClassifier()
	variants := []domain.VariantRecord{
		variant("CYP2D6", "*4"),
		variant("CYP2C19", "*2"),
		variant("CYP2D6", "*10"),
	}

	first := classifier.Classify("CODEINE", variants)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, classifier.Classify("CODEINE", variants))
	}
}

func TestClassify_FiltersToRequiredGeneInParseOrder(t *testing.T) {
	classifier := newTestClassifier()

	verdict := classifier.Classify("CODEINE", []domain.VariantRecord{
		variant("CYP2C19", "*2"),
		variant("CYP2D6", "*4"),
		variant("TPMT", "*3A"),
		variant("CYP2D6", "*10"),
	})

	require.Len(t, verdict.DetectedVariants, 2)
	assert.Equal(t, "*4", verdict.DetectedVariants[0].StarAllele)
	assert.Equal(t, "*10", verdict.DetectedVariants[1].StarAllele)
	assert.Equal(t, "*4/*10", verdict.Diplotype)
}

func TestCanonicalDrugName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"warfarin", "WARFARIN"},
		{"  Codeine  ", "CODEINE"},
		{"WARFARIN", "WARFARIN"},
		{"", ""},
		{"  ", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, CanonicalDrugName(tt.in))
	}
}
