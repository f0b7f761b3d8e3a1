package service

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-engine/internal/domain"
	"github.com/pgx-risk-engine/internal/rules"
)

// Classifier produces a risk verdict for one drug against a patient's
// detected variants. It never fails: every input, however degenerate, yields
// a verdict, since classification failure is itself clinically meaningful.
type Classifier struct {
	logger   *logrus.Logger
	resolver *Resolver
}

// NewClassifier creates a new risk classifier
func NewClassifier(logger *logrus.Logger, resolver *Resolver) *Classifier {
	return &Classifier{logger: logger, resolver: resolver}
}

// CanonicalDrugName trims and upper-cases a drug name for table lookup.
func CanonicalDrugName(drug string) string {
	return strings.ToUpper(strings.TrimSpace(drug))
}

// Classify runs the matching strategies in order: exact diplotype+drug rule,
// phenotype-derived heuristic, then the no-data verdicts for an unmapped drug
// or an evidence-free gene. Deterministic for identical inputs.
func (c *Classifier) Classify(drug string, variants []domain.VariantRecord) domain.RiskVerdict {
	canonical := CanonicalDrugName(drug)

	gene, ok := rules.RequiredGene(canonical)
	if !ok {
		c.logger.WithField("drug", canonical).Info("Drug not mapped to any pharmacogene")
		return domain.RiskVerdict{
			Drug:                 canonical,
			RiskLabel:            domain.RiskUnknown,
			Severity:             domain.SeverityNone,
			ConfidenceScore:      domain.ConfidenceNoData,
			PrimaryGene:          domain.GeneNotDetected,
			Diplotype:            "N/A",
			Phenotype:            domain.PhenotypeUnknown,
			Action:               fmt.Sprintf("%s is not covered by the current pharmacogenomic guideline set; no genotype-based recommendation is available.", canonical),
			DosingRecommendation: "Follow standard prescribing guidance.",
			DetectedVariants:     []domain.VariantRecord{},
		}
	}

	relevant := filterByGene(variants, gene)
	if len(relevant) == 0 {
		// Absence of evidence is not evidence of safety: no wildtype
		// assumption is made on this path.
		c.logger.WithFields(logrus.Fields{
			"drug": canonical,
			"gene": gene,
		}).Info("No variants detected for required gene")
		return domain.RiskVerdict{
			Drug:                 canonical,
			RiskLabel:            domain.RiskUnknown,
			Severity:             domain.SeverityNone,
			ConfidenceScore:      domain.ConfidenceNoData,
			PrimaryGene:          gene,
			Diplotype:            "N/A",
			Phenotype:            domain.PhenotypeUnknown,
			Action:               fmt.Sprintf("No %s variants were detected in the supplied file; genotype-guided assessment for %s is not possible.", gene, canonical),
			DosingRecommendation: "Follow standard prescribing guidance and monitor clinically.",
			DetectedVariants:     []domain.VariantRecord{},
		}
	}

	diplotype, phenotype := c.resolver.Resolve(relevant, gene)

	if rule, ok := rules.DrugRuleFor(gene, diplotype, canonical); ok {
		c.logger.WithFields(logrus.Fields{
			"drug":      canonical,
			"gene":      gene,
			"diplotype": diplotype,
		}).Info("Exact rule match")
		return domain.RiskVerdict{
			Drug:                 canonical,
			RiskLabel:            rule.Risk,
			Severity:             rule.Severity,
			ConfidenceScore:      domain.ConfidenceExactMatch,
			PrimaryGene:          gene,
			Diplotype:            diplotype,
			Phenotype:            phenotype,
			Action:               rule.Action,
			DosingRecommendation: rule.Dosing,
			DetectedVariants:     relevant,
		}
	}

	risk, severity := heuristicVerdict(phenotype, rules.IsProdrug(canonical))
	c.logger.WithFields(logrus.Fields{
		"drug":      canonical,
		"gene":      gene,
		"diplotype": diplotype,
		"phenotype": phenotype,
	}).Info("No exact rule; phenotype heuristic applied")

	return domain.RiskVerdict{
		Drug:                 canonical,
		RiskLabel:            risk,
		Severity:             severity,
		ConfidenceScore:      domain.ConfidencePartialMatch,
		PrimaryGene:          gene,
		Diplotype:            diplotype,
		Phenotype:            phenotype,
		Action:               heuristicAction(canonical, gene, phenotype, risk),
		DosingRecommendation: heuristicDosing(risk),
		DetectedVariants:     relevant,
	}
}

// filterByGene keeps only records whose gene equals the required gene,
// preserving parse order.
func filterByGene(variants []domain.VariantRecord, gene string) []domain.VariantRecord {
	filtered := []domain.VariantRecord{}
	for _, v := range variants {
		if v.Gene == gene {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// heuristicVerdict derives a verdict from the phenotype when no exact drug
// rule exists. Prodrugs invert the poor-metabolizer outcome: failure to
// bioactivate means no effect rather than accumulation.
func heuristicVerdict(phenotype domain.PhenotypeLabel, prodrug bool) (domain.RiskLabel, domain.Severity) {
	switch phenotype {
	case domain.PhenotypePoor:
		if prodrug {
			return domain.RiskIneffective, domain.SeverityHigh
		}
		return domain.RiskToxic, domain.SeverityHigh
	case domain.PhenotypeIntermediate:
		return domain.RiskAdjustDosage, domain.SeverityModerate
	case domain.PhenotypeUltrarapid:
		if prodrug {
			return domain.RiskToxic, domain.SeverityCritical
		}
		return domain.RiskAdjustDosage, domain.SeverityModerate
	case domain.PhenotypeNormal, domain.PhenotypeRapid:
		return domain.RiskSafe, domain.SeverityNone
	default:
		return domain.RiskUnknown, domain.SeverityNone
	}
}

func heuristicAction(drug, gene string, phenotype domain.PhenotypeLabel, risk domain.RiskLabel) string {
	switch risk {
	case domain.RiskSafe:
		return fmt.Sprintf("%s genotype predicts normal metabolism; %s may be used per standard of care.", gene, drug)
	case domain.RiskAdjustDosage:
		return fmt.Sprintf("%s genotype predicts altered metabolism (%s); dose adjustment and closer monitoring are advised for %s.", gene, phenotype, drug)
	case domain.RiskToxic:
		return fmt.Sprintf("%s genotype predicts %s; elevated exposure or accumulation risk with %s. Consider an alternative agent.", gene, phenotype, drug)
	case domain.RiskIneffective:
		return fmt.Sprintf("%s genotype predicts %s; %s is unlikely to be bioactivated. Consider an alternative agent.", gene, phenotype, drug)
	default:
		return fmt.Sprintf("Insufficient curated evidence to assess %s for this %s genotype.", drug, gene)
	}
}

func heuristicDosing(risk domain.RiskLabel) string {
	switch risk {
	case domain.RiskSafe:
		return "Standard dosing."
	case domain.RiskAdjustDosage:
		return "Adjust dose per therapeutic response and monitoring."
	case domain.RiskToxic, domain.RiskIneffective:
		return "Consider an alternative agent; consult a clinical pharmacist."
	default:
		return "Follow standard prescribing guidance."
	}
}
