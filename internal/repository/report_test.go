package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgx-risk-engine/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteReportStore {
	t.Helper()
	store, err := NewSQLiteReportStore(filepath.Join(t.TempDir(), "reports.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleReport(patientID, drug string) domain.Report {
	return domain.Report{
		PatientID: patientID,
		Drug:      drug,
		Timestamp: "2026-09-01T10:00:00.000Z",
		RiskAssessment: domain.RiskAssessment{
			RiskLabel:       domain.RiskToxic,
			ConfidenceScore: domain.ConfidenceExactMatch,
			Severity:        domain.SeverityHigh,
		},
		PharmacogenomicProfile: domain.PharmacogenomicProfile{
			PrimaryGene: "CYP2D6",
			Diplotype:   "*4/*4",
			Phenotype:   domain.PhenotypePoor,
			DetectedVariants: []domain.VariantRecord{
				{RSID: "rs3892097", Gene: "CYP2D6", StarAllele: "*4"},
			},
		},
		ClinicalRecommendation: domain.ClinicalRecommendation{
			Action:               "Avoid codeine.",
			DosingRecommendation: "Select morphine or a non-opioid analgesic.",
		},
		LLMGeneratedExplanation: domain.ExplanationBundle{
			Summary:        "s",
			Mechanism:      "m",
			ClinicalImpact: "c",
		},
		QualityMetrics: domain.QualityMetrics{
			VCFParsingSuccess:     true,
			VariantsDetected:      1,
			SupportedGeneDetected: true,
			CPICGuidelineVersion:  "CPIC-2024.1",
		},
	}
}

func TestSQLiteReportStore_SaveAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := sampleReport("PG-A1B2C3", "CODEINE")
	second := sampleReport("PG-A1B2C3", "WARFARIN")
	other := sampleReport("PG-ZZZZZZ", "CODEINE")

	require.NoError(t, store.Save(ctx, &first))
	require.NoError(t, store.Save(ctx, &second))
	require.NoError(t, store.Save(ctx, &other))

	reports, err := store.ListByPatient(ctx, "PG-A1B2C3")
	require.NoError(t, err)
	require.Len(t, reports, 2)

	assert.Equal(t, "CODEINE", reports[0].Drug)
	assert.Equal(t, "WARFARIN", reports[1].Drug)
	assert.Equal(t, first, reports[0], "payload round-trips through storage")
}

func TestSQLiteReportStore_ListUnknownPatient(t *testing.T) {
	store := newTestStore(t)

	reports, err := store.ListByPatient(context.Background(), "PG-NOBODY")
	require.NoError(t, err)
	assert.Empty(t, reports)
}

func TestSQLiteReportStore_SameReportSavedTwice(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	report := sampleReport("PG-A1B2C3", "CODEINE")
	require.NoError(t, store.Save(ctx, &report))
	require.NoError(t, store.Save(ctx, &report), "reports are immutable rows; duplicates insert cleanly")

	reports, err := store.ListByPatient(ctx, "PG-A1B2C3")
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestNewSQLiteReportStore_CreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "reports.db")
	store, err := NewSQLiteReportStore(path)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Save(context.Background(), &domain.Report{
		PatientID: "PG-A1B2C3",
		Drug:      "CODEINE",
	}))
}
