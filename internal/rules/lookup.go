package rules

// RequiredGene returns the gene whose diplotype governs the given
// canonicalized drug name.
func RequiredGene(drug string) (string, bool) {
	gene, ok := drugGene[drug]
	return gene, ok
}

// Lookup returns the curated entry for an exact (gene, diplotype) pair.
func Lookup(gene, diplotype string) (DiplotypeEntry, bool) {
	entries, ok := cpicTable[gene]
	if !ok {
		return DiplotypeEntry{}, false
	}
	entry, ok := entries[diplotype]
	return entry, ok
}

// DrugRuleFor returns the curated rule for an exact (gene, diplotype, drug)
// triple.
func DrugRuleFor(gene, diplotype, drug string) (DrugRule, bool) {
	entry, ok := Lookup(gene, diplotype)
	if !ok {
		return DrugRule{}, false
	}
	rule, ok := entry.Drugs[drug]
	return rule, ok
}

// ActivityScore returns the function-level value for an allele of the given
// gene. Unrecognized alleles score 0.
func ActivityScore(gene, allele string) float64 {
	return activityScores[gene][allele]
}

// HasActivityTable reports whether an activity-score table exists for gene.
func HasActivityTable(gene string) bool {
	_, ok := activityScores[gene]
	return ok
}

// IsSupportedGene reports whether the curated tables cover gene.
func IsSupportedGene(gene string) bool {
	_, ok := cpicTable[gene]
	return ok
}

// IsProdrug reports whether the canonicalized drug requires bioactivation.
func IsProdrug(drug string) bool {
	return prodrugs[drug]
}

// Entry is one (gene, diplotype) row of the curated table, exposed for
// exhaustive traversal in validation and tests.
type Entry struct {
	Gene      string
	Diplotype string
	DiplotypeEntry
}

// Entries returns every curated (gene, diplotype) row.
func Entries() []Entry {
	var out []Entry
	for gene, diplotypes := range cpicTable {
		for diplotype, entry := range diplotypes {
			out = append(out, Entry{Gene: gene, Diplotype: diplotype, DiplotypeEntry: entry})
		}
	}
	return out
}
