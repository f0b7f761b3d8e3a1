// Package rules holds the curated pharmacogenomic rule tables: gene/diplotype
// phenotype assignments, per-drug risk rules, drug-to-gene requirements,
// per-allele activity scores, and the prodrug set. The tables are immutable,
// declarative data loaded once at process start; classification logic is a
// thin traversal over them.
package rules

import "github.com/pgx-risk-engine/internal/domain"

// GuidelineVersion is the curated guideline revision the tables reflect.
const GuidelineVersion = "CPIC-2024.1"

// DrugRule is the verdict recorded for one (gene, diplotype, drug) triple.
type DrugRule struct {
	Risk     domain.RiskLabel
	Severity domain.Severity
	Action   string
	Dosing   string
}

// DiplotypeEntry binds a diplotype to its phenotype and per-drug rules.
// Diplotype keys are order-significant: the table carries the canonical
// order the resolver produces (reference allele first).
type DiplotypeEntry struct {
	Phenotype domain.PhenotypeLabel
	Drugs     map[string]DrugRule
}

// drugGene maps a canonicalized drug name to the single gene whose diplotype
// drives its risk classification.
var drugGene = map[string]string{
	"CODEINE":        "CYP2D6",
	"TRAMADOL":       "CYP2D6",
	"WARFARIN":       "CYP2C9",
	"CLOPIDOGREL":    "CYP2C19",
	"OMEPRAZOLE":     "CYP2C19",
	"ESCITALOPRAM":   "CYP2C19",
	"SIMVASTATIN":    "SLCO1B1",
	"AZATHIOPRINE":   "TPMT",
	"FLUOROURACIL":   "DPYD",
	"CAPECITABINE":   "DPYD",
}

// prodrugs require metabolic bioactivation: poor metabolism makes them
// ineffective rather than toxic, ultrarapid metabolism makes them dangerous.
var prodrugs = map[string]bool{
	"CODEINE":     true,
	"TRAMADOL":    true,
	"CLOPIDOGREL": true,
}

// activityScores lists per-allele function-level values used to infer a
// phenotype when no direct diplotype entry exists. Unlisted alleles score 0.
var activityScores = map[string]map[string]float64{
	"CYP2D6": {
		"*1":   1.0,
		"*2":   1.0,
		"*2x2": 2.0,
		"*4":   0.0,
		"*5":   0.0,
		"*6":   0.0,
		"*9":   0.5,
		"*10":  0.25,
		"*17":  0.5,
		"*41":  0.5,
	},
	"CYP2C19": {
		"*1":  1.0,
		"*2":  0.0,
		"*3":  0.0,
		"*17": 1.5,
	},
	"CYP2C9": {
		"*1": 1.0,
		"*2": 0.5,
		"*3": 0.0,
	},
	"SLCO1B1": {
		"*1":  1.0,
		"*5":  0.0,
		"*15": 0.0,
	},
	"TPMT": {
		"*1":  1.0,
		"*2":  0.0,
		"*3A": 0.0,
		"*3C": 0.0,
	},
	"DPYD": {
		"*1":  1.0,
		"*2A": 0.0,
		"*13": 0.5,
	},
}

// cpicTable is the curated gene -> diplotype -> {phenotype, drug rules} map.
var cpicTable = map[string]map[string]DiplotypeEntry{
	"CYP2D6": {
		"*1/*1": {
			Phenotype: domain.PhenotypeNormal,
			Drugs: map[string]DrugRule{
				"CODEINE": {
					Risk:     domain.RiskSafe,
					Severity: domain.SeverityNone,
					Action:   "Use codeine per standard of care.",
					Dosing:   "Standard starting dose; titrate to effect.",
				},
				"TRAMADOL": {
					Risk:     domain.RiskSafe,
					Severity: domain.SeverityNone,
					Action:   "Use tramadol per standard of care.",
					Dosing:   "Standard starting dose; titrate to effect.",
				},
			},
		},
		"*1/*4": {
			Phenotype: domain.PhenotypeIntermediate,
			Drugs: map[string]DrugRule{
				"CODEINE": {
					Risk:     domain.RiskAdjustDosage,
					Severity: domain.SeverityModerate,
					Action:   "Reduced morphine formation expected; monitor analgesic response closely.",
					Dosing:   "Start at the standard dose and escalate cautiously; consider a non-tramadol alternative if response is inadequate.",
				},
				"TRAMADOL": {
					Risk:     domain.RiskAdjustDosage,
					Severity: domain.SeverityModerate,
					Action:   "Reduced O-desmethyltramadol formation expected; monitor analgesic response closely.",
					Dosing:   "Start at the standard dose; if no response, select a non-CYP2D6 opioid.",
				},
			},
		},
		"*4/*4": {
			Phenotype: domain.PhenotypePoor,
			Drugs: map[string]DrugRule{
				"CODEINE": {
					Risk:     domain.RiskToxic,
					Severity: domain.SeverityHigh,
					Action:   "Avoid codeine: absent CYP2D6 activity abolishes analgesia while accumulating parent drug raises adverse-event risk.",
					Dosing:   "Do not dose codeine; select morphine or a non-opioid analgesic.",
				},
				"TRAMADOL": {
					Risk:     domain.RiskIneffective,
					Severity: domain.SeverityHigh,
					Action:   "Avoid tramadol: no conversion to the active metabolite is expected.",
					Dosing:   "Do not dose tramadol; select a non-CYP2D6 opioid.",
				},
			},
		},
		"*1/*2x2": {
			Phenotype: domain.PhenotypeUltrarapid,
			Drugs: map[string]DrugRule{
				"CODEINE": {
					Risk:     domain.RiskToxic,
					Severity: domain.SeverityCritical,
					Action:   "Avoid codeine: gene duplication drives rapid morphine formation with risk of life-threatening respiratory depression.",
					Dosing:   "Do not dose codeine; select a non-tramadol, non-codeine analgesic.",
				},
				"TRAMADOL": {
					Risk:     domain.RiskToxic,
					Severity: domain.SeverityCritical,
					Action:   "Avoid tramadol: rapid bioactivation raises toxicity risk.",
					Dosing:   "Do not dose tramadol; select a non-CYP2D6 opioid.",
				},
			},
		},
	},
	"CYP2C9": {
		"*1/*1": {
			Phenotype: domain.PhenotypeNormal,
			Drugs: map[string]DrugRule{
				"WARFARIN": {
					Risk:     domain.RiskSafe,
					Severity: domain.SeverityNone,
					Action:   "Initiate warfarin per standard nomogram.",
					Dosing:   "Standard initiation dose with routine INR monitoring.",
				},
			},
		},
		"*1/*2": {
			Phenotype: domain.PhenotypeIntermediate,
			Drugs: map[string]DrugRule{
				"WARFARIN": {
					Risk:     domain.RiskAdjustDosage,
					Severity: domain.SeverityModerate,
					Action:   "Reduced warfarin clearance expected; lower the initiation dose.",
					Dosing:   "Reduce initiation dose by 25-50% and intensify INR monitoring during titration.",
				},
			},
		},
		"*1/*3": {
			Phenotype: domain.PhenotypeIntermediate,
			Drugs: map[string]DrugRule{
				"WARFARIN": {
					Risk:     domain.RiskAdjustDosage,
					Severity: domain.SeverityModerate,
					Action:   "Reduced warfarin clearance expected; lower the initiation dose.",
					Dosing:   "Reduce initiation dose by 25-50% and intensify INR monitoring during titration.",
				},
			},
		},
		"*3/*3": {
			Phenotype: domain.PhenotypePoor,
			Drugs: map[string]DrugRule{
				"WARFARIN": {
					Risk:     domain.RiskToxic,
					Severity: domain.SeverityHigh,
					Action:   "Markedly reduced warfarin clearance; substantial bleeding risk at standard doses.",
					Dosing:   "Reduce initiation dose by 50-80%, extend titration intervals, or select a direct oral anticoagulant.",
				},
			},
		},
	},
	"CYP2C19": {
		"*1/*1": {
			Phenotype: domain.PhenotypeNormal,
			Drugs: map[string]DrugRule{
				"CLOPIDOGREL": {
					Risk:     domain.RiskSafe,
					Severity: domain.SeverityNone,
					Action:   "Use clopidogrel per standard of care.",
					Dosing:   "Standard loading and maintenance dose.",
				},
				"OMEPRAZOLE": {
					Risk:     domain.RiskSafe,
					Severity: domain.SeverityNone,
					Action:   "Use omeprazole per standard of care.",
					Dosing:   "Standard dose.",
				},
				"ESCITALOPRAM": {
					Risk:     domain.RiskSafe,
					Severity: domain.SeverityNone,
					Action:   "Use escitalopram per standard of care.",
					Dosing:   "Standard starting dose.",
				},
			},
		},
		"*1/*2": {
			Phenotype: domain.PhenotypeIntermediate,
			Drugs: map[string]DrugRule{
				"CLOPIDOGREL": {
					Risk:     domain.RiskAdjustDosage,
					Severity: domain.SeverityModerate,
					Action:   "Reduced active-metabolite formation; diminished antiplatelet effect possible.",
					Dosing:   "Consider prasugrel or ticagrelor if not contraindicated.",
				},
			},
		},
		"*2/*2": {
			Phenotype: domain.PhenotypePoor,
			Drugs: map[string]DrugRule{
				"CLOPIDOGREL": {
					Risk:     domain.RiskIneffective,
					Severity: domain.SeverityHigh,
					Action:   "Clopidogrel cannot be bioactivated; antiplatelet protection is not expected.",
					Dosing:   "Select prasugrel or ticagrelor if not contraindicated.",
				},
				"ESCITALOPRAM": {
					Risk:     domain.RiskAdjustDosage,
					Severity: domain.SeverityModerate,
					Action:   "Elevated escitalopram exposure expected; QT prolongation risk increases with dose.",
					Dosing:   "Reduce starting dose by 50% or select an alternative SSRI.",
				},
			},
		},
		"*1/*17": {
			Phenotype: domain.PhenotypeRapid,
			Drugs: map[string]DrugRule{
				"CLOPIDOGREL": {
					Risk:     domain.RiskSafe,
					Severity: domain.SeverityNone,
					Action:   "Use clopidogrel per standard of care.",
					Dosing:   "Standard loading and maintenance dose.",
				},
				"OMEPRAZOLE": {
					Risk:     domain.RiskAdjustDosage,
					Severity: domain.SeverityLow,
					Action:   "Increased omeprazole clearance; acid suppression may be inadequate at standard doses.",
					Dosing:   "Consider a dose increase if symptoms persist.",
				},
			},
		},
		"*17/*17": {
			Phenotype: domain.PhenotypeUltrarapid,
			Drugs: map[string]DrugRule{
				"OMEPRAZOLE": {
					Risk:     domain.RiskIneffective,
					Severity: domain.SeverityModerate,
					Action:   "Rapid omeprazole clearance; therapeutic acid suppression is unlikely at standard doses.",
					Dosing:   "Increase dose or select a proton-pump inhibitor less dependent on CYP2C19.",
				},
				"ESCITALOPRAM": {
					Risk:     domain.RiskAdjustDosage,
					Severity: domain.SeverityModerate,
					Action:   "Rapid escitalopram clearance; subtherapeutic exposure likely.",
					Dosing:   "Consider an alternative antidepressant not primarily metabolized by CYP2C19.",
				},
			},
		},
	},
	"SLCO1B1": {
		"*1/*1": {
			Phenotype: domain.PhenotypeNormal,
			Drugs: map[string]DrugRule{
				"SIMVASTATIN": {
					Risk:     domain.RiskSafe,
					Severity: domain.SeverityNone,
					Action:   "Use simvastatin per standard of care.",
					Dosing:   "Standard dose up to 40 mg daily.",
				},
			},
		},
		"*1/*5": {
			Phenotype: domain.PhenotypeIntermediate,
			Drugs: map[string]DrugRule{
				"SIMVASTATIN": {
					Risk:     domain.RiskAdjustDosage,
					Severity: domain.SeverityModerate,
					Action:   "Decreased hepatic uptake raises simvastatin exposure and myopathy risk.",
					Dosing:   "Limit to 20 mg daily or select rosuvastatin/pravastatin.",
				},
			},
		},
		"*5/*5": {
			Phenotype: domain.PhenotypePoor,
			Drugs: map[string]DrugRule{
				"SIMVASTATIN": {
					Risk:     domain.RiskToxic,
					Severity: domain.SeverityHigh,
					Action:   "Markedly elevated simvastatin exposure; high myopathy and rhabdomyolysis risk.",
					Dosing:   "Avoid simvastatin; select rosuvastatin or pravastatin at a reduced dose.",
				},
			},
		},
	},
	"TPMT": {
		"*1/*1": {
			Phenotype: domain.PhenotypeNormal,
			Drugs: map[string]DrugRule{
				"AZATHIOPRINE": {
					Risk:     domain.RiskSafe,
					Severity: domain.SeverityNone,
					Action:   "Use azathioprine per standard of care.",
					Dosing:   "Standard weight-based dose.",
				},
			},
		},
		"*1/*3A": {
			Phenotype: domain.PhenotypeIntermediate,
			Drugs: map[string]DrugRule{
				"AZATHIOPRINE": {
					Risk:     domain.RiskAdjustDosage,
					Severity: domain.SeverityModerate,
					Action:   "Reduced thiopurine methylation; myelosuppression risk at full dose.",
					Dosing:   "Start at 30-70% of the target dose and titrate by blood counts.",
				},
			},
		},
		"*3A/*3A": {
			Phenotype: domain.PhenotypePoor,
			Drugs: map[string]DrugRule{
				"AZATHIOPRINE": {
					Risk:     domain.RiskToxic,
					Severity: domain.SeverityCritical,
					Action:   "Absent TPMT activity; standard azathioprine doses cause life-threatening myelosuppression.",
					Dosing:   "Reduce dose 10-fold and extend dosing interval, or select an alternative immunosuppressant.",
				},
			},
		},
	},
	"DPYD": {
		"*1/*1": {
			Phenotype: domain.PhenotypeNormal,
			Drugs: map[string]DrugRule{
				"FLUOROURACIL": {
					Risk:     domain.RiskSafe,
					Severity: domain.SeverityNone,
					Action:   "Use fluorouracil per standard of care.",
					Dosing:   "Standard protocol dose.",
				},
				"CAPECITABINE": {
					Risk:     domain.RiskSafe,
					Severity: domain.SeverityNone,
					Action:   "Use capecitabine per standard of care.",
					Dosing:   "Standard protocol dose.",
				},
			},
		},
		"*1/*2A": {
			Phenotype: domain.PhenotypeIntermediate,
			Drugs: map[string]DrugRule{
				"FLUOROURACIL": {
					Risk:     domain.RiskAdjustDosage,
					Severity: domain.SeverityHigh,
					Action:   "Reduced DPD activity; severe fluoropyrimidine toxicity likely at full dose.",
					Dosing:   "Reduce starting dose by 50% and titrate by toxicity.",
				},
				"CAPECITABINE": {
					Risk:     domain.RiskAdjustDosage,
					Severity: domain.SeverityHigh,
					Action:   "Reduced DPD activity; severe fluoropyrimidine toxicity likely at full dose.",
					Dosing:   "Reduce starting dose by 50% and titrate by toxicity.",
				},
			},
		},
		"*2A/*2A": {
			Phenotype: domain.PhenotypePoor,
			Drugs: map[string]DrugRule{
				"FLUOROURACIL": {
					Risk:     domain.RiskToxic,
					Severity: domain.SeverityCritical,
					Action:   "Absent DPD activity; fluorouracil exposure is potentially fatal.",
					Dosing:   "Avoid fluorouracil entirely; select a non-fluoropyrimidine regimen.",
				},
				"CAPECITABINE": {
					Risk:     domain.RiskToxic,
					Severity: domain.SeverityCritical,
					Action:   "Absent DPD activity; capecitabine exposure is potentially fatal.",
					Dosing:   "Avoid capecitabine entirely; select a non-fluoropyrimidine regimen.",
				},
			},
		},
	},
}
