package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pgx-risk-engine/internal/domain"
)

// Explainer produces a clinical narrative for a classified verdict. It tries
// the configured text-generation capability first and degrades to
// deterministic templates on any failure; callers cannot distinguish the two
// paths by structure and never observe an error.
type Explainer struct {
	logger      *logrus.Logger
	generator   domain.TextGenerator
	cache       domain.ExplanationCache
	maxTokens   int
	temperature float64
}

// NewExplainer creates a new explanation provider. A nil generator leaves the
// external capability unconfigured; every explanation then uses the
// deterministic templates. A nil cache disables caching.
func NewExplainer(logger *logrus.Logger, generator domain.TextGenerator, cache domain.ExplanationCache, maxTokens int, temperature float64) *Explainer {
	if maxTokens <= 0 {
		maxTokens = 600
	}
	return &Explainer{
		logger:      logger,
		generator:   generator,
		cache:       cache,
		maxTokens:   maxTokens,
		temperature: temperature,
	}
}

// Explain returns a fully populated explanation bundle for the verdict.
func (e *Explainer) Explain(ctx context.Context, verdict domain.RiskVerdict) domain.ExplanationBundle {
	key := cacheKey(verdict)
	if e.cache != nil {
		if bundle, ok := e.cache.Get(ctx, key); ok {
			e.logger.WithField("key", key).Debug("Explanation cache hit")
			return bundle
		}
	}

	bundle, generated := e.generate(ctx, verdict)
	if !generated {
		bundle = e.fallback(verdict)
	}

	if e.cache != nil {
		if err := e.cache.Set(ctx, key, bundle); err != nil {
			e.logger.WithError(err).Warn("Failed to cache explanation")
		}
	}
	return bundle
}

// generate attempts the external path. The boolean is false whenever the
// deterministic fallback must be used instead.
func (e *Explainer) generate(ctx context.Context, verdict domain.RiskVerdict) (domain.ExplanationBundle, bool) {
	if e.generator == nil {
		return domain.ExplanationBundle{}, false
	}

	raw, err := e.generator.Generate(ctx, buildPrompt(verdict), domain.GenerationOptions{
		MaxTokens:   e.maxTokens,
		Temperature: e.temperature,
	})
	if err != nil {
		e.logger.WithError(err).WithField("drug", verdict.Drug).Warn("Text generation failed; using deterministic templates")
		return domain.ExplanationBundle{}, false
	}

	sections := parseSections(raw)
	if len(sections) == 0 {
		e.logger.WithField("drug", verdict.Drug).Warn("Unparseable generation response; using deterministic templates")
		return domain.ExplanationBundle{}, false
	}

	fb := e.fallback(verdict)
	bundle := domain.ExplanationBundle{
		Summary:        sectionOrDefault(sections, 1, fb.Summary),
		Mechanism:      sectionOrDefault(sections, 2, fb.Mechanism),
		ClinicalImpact: sectionOrDefault(sections, 3, verdict.Action),
	}
	return bundle, true
}

// buildPrompt embeds the verdict into a structured four-section request.
func buildPrompt(verdict domain.RiskVerdict) string {
	var sb strings.Builder
	sb.WriteString("You are a clinical pharmacogenomics assistant. ")
	sb.WriteString("Explain the following drug risk assessment for a clinician.\n\n")
	fmt.Fprintf(&sb, "Drug: %s\n", verdict.Drug)
	fmt.Fprintf(&sb, "Gene: %s\n", verdict.PrimaryGene)
	fmt.Fprintf(&sb, "Diplotype: %s\n", verdict.Diplotype)
	fmt.Fprintf(&sb, "Phenotype: %s\n", verdict.Phenotype)
	fmt.Fprintf(&sb, "Risk classification: %s\n", verdict.RiskLabel)
	fmt.Fprintf(&sb, "Detected variants: %s\n\n", describeVariants(verdict.DetectedVariants))
	sb.WriteString("Respond with exactly four numbered sections:\n")
	sb.WriteString("1. SUMMARY: one-paragraph plain-language summary of the finding.\n")
	sb.WriteString("2. MECHANISM: how this genotype alters drug metabolism or transport.\n")
	sb.WriteString("3. CLINICAL IMPLICATION: what this means for treatment.\n")
	sb.WriteString("4. DOSING: concise dosing guidance.\n")
	return sb.String()
}

func describeVariants(variants []domain.VariantRecord) string {
	if len(variants) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(variants))
	for _, v := range variants {
		parts = append(parts, fmt.Sprintf("%s %s (%s)", v.Gene, v.StarAllele, v.RSID))
	}
	return strings.Join(parts, ", ")
}

// sectionHeadingRe locates numbered section headings like "1. SUMMARY:",
// "2) Mechanism -", or a bare "3." at the start of a line.
var sectionHeadingRe = regexp.MustCompile(`(?m)^\s*(?:\*\*)?([1-4])[.)]`)

// sectionLabelRe strips a leading label word and separator from an extracted
// section body.
var sectionLabelRe = regexp.MustCompile(`(?is)^(?:\*\*)?\s*(summary|mechanism|clinical implication|clinical impact|dosing)\s*(?:\*\*)?\s*[:\-]?\s*`)

// parseSections extracts the numbered sections from loosely structured
// generated text. Missing or empty sections are simply absent from the map;
// the caller substitutes a safe default per section.
func parseSections(raw string) map[int]string {
	sections := make(map[int]string)
	matches := sectionHeadingRe.FindAllStringSubmatchIndex(raw, -1)
	for i, m := range matches {
		number := int(raw[m[2]] - '0')
		start := m[1]
		end := len(raw)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		body := strings.TrimSpace(raw[start:end])
		body = sectionLabelRe.ReplaceAllString(body, "")
		body = strings.TrimSpace(body)
		if body == "" {
			continue
		}
		if _, seen := sections[number]; !seen {
			sections[number] = body
		}
	}
	return sections
}

func sectionOrDefault(sections map[int]string, number int, fallback string) string {
	if body, ok := sections[number]; ok {
		return body
	}
	return fallback
}

// cacheKey identifies a verdict shape; two verdicts with the same key always
// produce the same deterministic explanation.
func cacheKey(verdict domain.RiskVerdict) string {
	return fmt.Sprintf("%s|%s|%s|%s", verdict.Drug, verdict.PrimaryGene, verdict.Diplotype, verdict.RiskLabel)
}

// Deterministic fallback templates.

var summaryTemplates = map[domain.RiskLabel]string{
	domain.RiskSafe:         "The %[1]s %[2]s genotype predicts %[4]s status. %[3]s can be used at standard doses with routine monitoring.",
	domain.RiskAdjustDosage: "The %[1]s %[2]s genotype predicts %[4]s status, altering the expected response to %[3]s. Dose adjustment is recommended.",
	domain.RiskToxic:        "The %[1]s %[2]s genotype predicts %[4]s status, placing this patient at elevated risk of adverse effects from %[3]s.",
	domain.RiskIneffective:  "The %[1]s %[2]s genotype predicts %[4]s status; %[3]s is unlikely to achieve its therapeutic effect in this patient.",
	domain.RiskUnknown:      "Available genetic data are insufficient to assess the %[1]s-mediated response to %[3]s for this patient.",
}

var mechanismTemplates = map[string]string{
	"CYP2D6":  "CYP2D6 is a hepatic enzyme responsible for the oxidative metabolism of roughly a quarter of commonly prescribed drugs, including the bioactivation of opioid prodrugs. The %s diplotype determines how efficiently %s is processed.",
	"CYP2C19": "CYP2C19 metabolizes proton-pump inhibitors, several antidepressants, and activates the antiplatelet prodrug clopidogrel. The %s diplotype determines how efficiently %s is processed.",
	"CYP2C9":  "CYP2C9 clears narrow-therapeutic-index drugs such as warfarin and phenytoin. The %s diplotype determines how quickly %s is eliminated.",
	"SLCO1B1": "SLCO1B1 encodes the hepatic uptake transporter OATP1B1, which moves statins into the liver. The %s diplotype determines systemic exposure to %s.",
	"TPMT":    "TPMT inactivates thiopurine immunosuppressants; deficient activity shunts drug toward cytotoxic metabolites. The %s diplotype determines tolerance of %s.",
	"DPYD":    "DPYD encodes dihydropyrimidine dehydrogenase, the rate-limiting enzyme clearing fluoropyrimidine chemotherapy. The %s diplotype determines tolerance of %s.",
}

const genericMechanismTemplate = "The %s gene product participates in the disposition of %s; the %s diplotype modulates its activity."

// fallback builds the deterministic explanation: summary keyed by risk label,
// mechanism keyed by gene, clinical impact verbatim from the verdict action.
func (e *Explainer) fallback(verdict domain.RiskVerdict) domain.ExplanationBundle {
	summaryTpl, ok := summaryTemplates[verdict.RiskLabel]
	if !ok {
		summaryTpl = summaryTemplates[domain.RiskUnknown]
	}
	summary := fmt.Sprintf(summaryTpl, verdict.PrimaryGene, verdict.Diplotype, verdict.Drug, verdict.Phenotype)

	var mechanism string
	switch {
	case verdict.PrimaryGene == domain.GeneNotDetected:
		mechanism = fmt.Sprintf("No pharmacogene is mapped to %s in the current guideline set; no genotype-based mechanism applies.", verdict.Drug)
	default:
		if tpl, ok := mechanismTemplates[verdict.PrimaryGene]; ok {
			mechanism = fmt.Sprintf(tpl, verdict.Diplotype, verdict.Drug)
		} else {
			mechanism = fmt.Sprintf(genericMechanismTemplate, verdict.PrimaryGene, verdict.Drug, verdict.Diplotype)
		}
	}

	return domain.ExplanationBundle{
		Summary:        summary,
		Mechanism:      mechanism,
		ClinicalImpact: verdict.Action,
	}
}
