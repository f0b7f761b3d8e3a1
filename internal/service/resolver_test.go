package service

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/pgx-risk-engine/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func variant(gene, allele string) domain.VariantRecord {
	return domain.VariantRecord{RSID: "rs0", Gene: gene, StarAllele: allele}
}

func TestResolve_DiplotypeConstruction(t *testing.T) {
	resolver := NewResolver(testLogger())

	tests := []struct {
		name          string
		variants      []domain.VariantRecord
		wantDiplotype string
	}{
		{
			name:          "no variants pairs reference with reference",
			variants:      nil,
			wantDiplotype: "*1/*1",
		},
		{
			name:          "single variant pairs with reference",
			variants:      []domain.VariantRecord{variant("CYP2D6", "*4")},
			wantDiplotype: "*1/*4",
		},
		{
			name: "two variants in parse order",
			variants: []domain.VariantRecord{
				variant("CYP2D6", "*4"),
				variant("CYP2D6", "*10"),
			},
			wantDiplotype: "*4/*10",
		},
		{
			name: "third and later variants ignored",
			variants: []domain.VariantRecord{
				variant("CYP2D6", "*4"),
				variant("CYP2D6", "*4"),
				variant("CYP2D6", "*10"),
			},
			wantDiplotype: "*4/*4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			diplotype, _ := resolver.Resolve(tt.variants, "CYP2D6")
			assert.Equal(t, tt.wantDiplotype, diplotype)
		})
	}
}

func TestResolve_CuratedEntryWinsOverScore(t *testing.T) {
	resolver := NewResolver(testLogger())

	// *4/*4 is in the curated table as Poor; the score path would agree, but
	// the curated phenotype must be taken first.
	_, phenotype := resolver.Resolve([]domain.VariantRecord{
		variant("CYP2D6", "*4"),
		variant("CYP2D6", "*4"),
	}, "CYP2D6")
	assert.Equal(t, domain.PhenotypePoor, phenotype)

	// *1/*17 on CYP2C19 is curated as Rapid; the summed score 2.5 would say
	// Ultrarapid.
	_, phenotype = resolver.Resolve([]domain.VariantRecord{
		variant("CYP2C19", "*1"),
		variant("CYP2C19", "*17"),
	}, "CYP2C19")
	assert.Equal(t, domain.PhenotypeRapid, phenotype)
}

func TestResolve_ScoreFallback(t *testing.T) {
	resolver := NewResolver(testLogger())

	// *10/*41 has no curated entry; 0.25 + 0.5 = 0.75 -> Intermediate.
	_, phenotype := resolver.Resolve([]domain.VariantRecord{
		variant("CYP2D6", "*10"),
		variant("CYP2D6", "*41"),
	}, "CYP2D6")
	assert.Equal(t, domain.PhenotypeIntermediate, phenotype)
}

func TestResolve_UnknownGene(t *testing.T) {
	resolver := NewResolver(testLogger())

	_, phenotype := resolver.Resolve([]domain.VariantRecord{
		variant("BRCA1", "*2"),
	}, "BRCA1")
	assert.Equal(t, domain.PhenotypeUnknown, phenotype)
}

func TestPhenotypeFromScore_Boundaries(t *testing.T) {
	tests := []struct {
		score float64
		want  domain.PhenotypeLabel
	}{
		{0.0, domain.PhenotypePoor},
		{0.25, domain.PhenotypeIntermediate},
		{1.0, domain.PhenotypeIntermediate},
		{1.25, domain.PhenotypeNormal},
		{2.0, domain.PhenotypeNormal},
		{2.5, domain.PhenotypeUltrarapid},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PhenotypeFromScore(tt.score), "score %v", tt.score)
	}
}
