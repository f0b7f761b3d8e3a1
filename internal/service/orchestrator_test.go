package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgx-risk-engine/internal/domain"
)

const orchestratorVCF = "##fileformat=VCFv4.2\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
	"chr22\t42128945\trs3892097\tC\tT\t99\tPASS\tGENE=CYP2D6;STAR=*4\n" +
	"chr22\t42128945\trs3892097\tC\tT\t99\tPASS\tGENE=CYP2D6;STAR=*4\n" +
	"chr10\t96541616\trs4244285\tG\tA\t99\tPASS\tGENE=CYP2C19;STAR=*2\n"

func newTestOrchestrator() *Orchestrator {
	logger := testLogger()
	resolver := NewResolver(logger)
	classifier := NewClassifier(logger, resolver)
	explainer := NewExplainer(logger, nil, nil, 600, 0.2)
	assembler := NewAssembler(logger)
	return NewOrchestrator(logger, classifier, explainer, assembler)
}

func TestRun_FullPipeline(t *testing.T) {
	orchestrator := newTestOrchestrator()

	result := orchestrator.Run(context.Background(), orchestratorVCF, []string{"codeine", "warfarin"})

	assert.True(t, result.VCFSuccess)
	assert.Equal(t, 3, result.VariantsFound)
	require.Len(t, result.Reports, 2)
	require.Len(t, result.RiskResults, 2)
	assert.Empty(t, result.SchemaErrors)

	codeine := result.Reports[0]
	assert.Equal(t, "CODEINE", codeine.Drug)
	assert.Equal(t, domain.RiskToxic, codeine.RiskAssessment.RiskLabel)
	assert.Equal(t, "*4/*4", codeine.PharmacogenomicProfile.Diplotype)
	assert.Equal(t, domain.PhenotypePoor, codeine.PharmacogenomicProfile.Phenotype)
	assert.Equal(t, domain.ConfidenceExactMatch, codeine.RiskAssessment.ConfidenceScore)

	// No CYP2C9 variants in the file: warfarin is Unknown, never Safe.
	warfarin := result.Reports[1]
	assert.Equal(t, "WARFARIN", warfarin.Drug)
	assert.Equal(t, domain.RiskUnknown, warfarin.RiskAssessment.RiskLabel)
	assert.Equal(t, domain.ConfidenceNoData, warfarin.RiskAssessment.ConfidenceScore)

	for _, report := range result.Reports {
		assert.Equal(t, result.PatientID, report.PatientID, "all reports in one run share the patient ID")
		assert.NotEmpty(t, report.LLMGeneratedExplanation.Summary)
		assert.NotEmpty(t, report.LLMGeneratedExplanation.Mechanism)
		assert.NotEmpty(t, report.LLMGeneratedExplanation.ClinicalImpact)
	}
}

func TestRun_DeduplicatesDrugsByCanonicalName(t *testing.T) {
	orchestrator := newTestOrchestrator()

	result := orchestrator.Run(context.Background(), orchestratorVCF,
		[]string{"Warfarin", "WARFARIN", "  warfarin  "})

	require.Len(t, result.Reports, 1)
	assert.Equal(t, "WARFARIN", result.Reports[0].Drug)
}

func TestRun_MalformedInputStillReports(t *testing.T) {
	orchestrator := newTestOrchestrator()

	result := orchestrator.Run(context.Background(), "this is not a variant file", []string{"codeine"})

	assert.False(t, result.VCFSuccess)
	assert.Zero(t, result.VariantsFound)
	require.Len(t, result.Reports, 1)

	report := result.Reports[0]
	assert.Equal(t, domain.RiskUnknown, report.RiskAssessment.RiskLabel)
	assert.Equal(t, domain.ConfidenceNoData, report.RiskAssessment.ConfidenceScore)
	assert.False(t, report.QualityMetrics.VCFParsingSuccess)
	assert.NotEmpty(t, report.LLMGeneratedExplanation.Summary)
}

func TestRun_EmptyDrugList(t *testing.T) {
	orchestrator := newTestOrchestrator()

	result := orchestrator.Run(context.Background(), orchestratorVCF, []string{"", "  "})

	assert.Empty(t, result.Reports)
	assert.Empty(t, result.RiskResults)
	assert.Empty(t, result.SchemaErrors)
	assert.True(t, result.VCFSuccess)
}

func TestRun_PatientIDFormat(t *testing.T) {
	orchestrator := newTestOrchestrator()
	pattern := regexp.MustCompile(`^PG-[A-Z0-9]{6}$`)

	for i := 0; i < 10; i++ {
		result := orchestrator.Run(context.Background(), orchestratorVCF, []string{"codeine"})
		assert.Regexp(t, pattern, result.PatientID)
	}
}

func TestDedupeDrugs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"case and whitespace collapse", []string{"Warfarin", "WARFARIN", " warfarin "}, []string{"WARFARIN"}},
		{"order preserved", []string{"codeine", "warfarin", "CODEINE"}, []string{"CODEINE", "WARFARIN"}},
		{"empties dropped", []string{"", "  ", "codeine"}, []string{"CODEINE"}},
		{"nil input", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, dedupeDrugs(tt.in))
		})
	}
}
