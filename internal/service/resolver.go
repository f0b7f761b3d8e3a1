package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-engine/internal/domain"
	"github.com/pgx-risk-engine/internal/rules"
)

// ReferenceAllele is the wildtype star allele assumed when fewer than two
// variant alleles are detected for a gene.
const ReferenceAllele = "*1"

// Resolver derives a diplotype string and a metabolizer phenotype from the
// variants detected for one gene. It is gene-agnostic over its input: callers
// filter the variant list to a single gene before resolving.
type Resolver struct {
	logger *logrus.Logger
}

// NewResolver creates a new diplotype/phenotype resolver
func NewResolver(logger *logrus.Logger) *Resolver {
	return &Resolver{logger: logger}
}

// Resolve builds the diplotype from the supplied variants in parse order and
// classifies the phenotype.
//
// Zero variants yield the wildtype diplotype *1/*1; callers that treat zero
// variants as insufficient data must skip resolution instead. One variant is
// paired with the reference allele. With two or more variants the first two
// alleles in parse order define the pair; further variants are ignored for
// diplotype purposes.
func (r *Resolver) Resolve(variants []domain.VariantRecord, gene string) (string, domain.PhenotypeLabel) {
	diplotype := r.buildDiplotype(variants)
	phenotype := r.resolvePhenotype(gene, diplotype)

	r.logger.WithFields(logrus.Fields{
		"gene":      gene,
		"diplotype": diplotype,
		"phenotype": phenotype,
		"variants":  len(variants),
	}).Debug("Resolved diplotype")

	return diplotype, phenotype
}

// buildDiplotype constructs the order-significant alleleA/alleleB key.
func (r *Resolver) buildDiplotype(variants []domain.VariantRecord) string {
	switch len(variants) {
	case 0:
		return fmt.Sprintf("%s/%s", ReferenceAllele, ReferenceAllele)
	case 1:
		return fmt.Sprintf("%s/%s", ReferenceAllele, variants[0].StarAllele)
	default:
		return fmt.Sprintf("%s/%s", variants[0].StarAllele, variants[1].StarAllele)
	}
}

// resolvePhenotype prefers the curated diplotype entry; otherwise it sums
// per-allele activity scores. A gene with no activity table is Unknown.
func (r *Resolver) resolvePhenotype(gene, diplotype string) domain.PhenotypeLabel {
	if entry, ok := rules.Lookup(gene, diplotype); ok {
		return entry.Phenotype
	}

	if !rules.HasActivityTable(gene) {
		return domain.PhenotypeUnknown
	}

	score := 0.0
	for _, allele := range strings.Split(diplotype, "/") {
		score += rules.ActivityScore(gene, allele)
	}
	return PhenotypeFromScore(score)
}

// PhenotypeFromScore thresholds a summed activity score:
// 0 is Poor, (0,1] Intermediate, (1,2] Normal, above 2 Ultrarapid.
func PhenotypeFromScore(score float64) domain.PhenotypeLabel {
	switch {
	case score <= 0:
		return domain.PhenotypePoor
	case score <= 1:
		return domain.PhenotypeIntermediate
	case score <= 2:
		return domain.PhenotypeNormal
	default:
		return domain.PhenotypeUltrarapid
	}
}
