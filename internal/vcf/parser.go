// Package vcf parses VCF-style variant text annotated with pharmacogenomic
// INFO keys into normalized variant records.
package vcf

import (
	"strconv"
	"strings"

	"github.com/pgx-risk-engine/internal/domain"
)

const (
	fileFormatMarker = "##fileformat"
	columnHeader     = "#CHROM"
	commentMarker    = "#"
)

// Result is the outcome of parsing one raw variant file.
// The only hard failure mode is a missing header line; all other malformed
// lines are skipped silently.
type Result struct {
	Variants []domain.VariantRecord `json:"variants"`
	Success  bool                   `json:"success"`
	Error    string                 `json:"error,omitempty"`
}

// Parse turns raw variant-call text into a list of normalized variant
// records. It is a pure function over its input.
//
// A record is registered only when the INFO column carries a non-empty GENE
// key. Duplicate gene+allele combinations are not deduplicated: every
// qualifying line becomes a separate record, and downstream diplotype
// construction depends on this parse order.
func Parse(raw string) Result {
	lines := strings.Split(raw, "\n")

	if !hasHeader(lines) {
		return Result{
			Variants: []domain.VariantRecord{},
			Success:  false,
			Error:    "invalid variant file: no ##fileformat or #CHROM header line found",
		}
	}

	variants := []domain.VariantRecord{}
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 8 {
			continue
		}

		info := parseInfo(fields[7])

		gene := strings.ToUpper(strings.TrimSpace(infoValue(info, "gene")))
		if gene == "" {
			continue
		}

		record := domain.VariantRecord{
			Gene:       gene,
			StarAllele: starAllele(info),
			RSID:       rsID(info, fields[2]),
			Chromosome: fields[0],
			Ref:        fields[3],
			Alt:        fields[4],
		}
		if pos, err := strconv.ParseInt(fields[1], 10, 64); err == nil {
			record.Position = pos
		}

		variants = append(variants, record)
	}

	return Result{Variants: variants, Success: true}
}

// hasHeader reports whether any line begins with a file-format declaration
// or the chromosome-column header.
func hasHeader(lines []string) bool {
	for _, line := range lines {
		if strings.HasPrefix(line, fileFormatMarker) || strings.HasPrefix(line, columnHeader) {
			return true
		}
	}
	return false
}

// parseInfo splits a semicolon-separated INFO column into key=value pairs.
// The first '=' wins; keys are lower-cased for case-insensitive lookup.
func parseInfo(info string) map[string]string {
	result := make(map[string]string)
	for _, kv := range strings.Split(info, ";") {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(parts[0]))
		if key == "" {
			continue
		}
		if _, seen := result[key]; seen {
			continue
		}
		result[key] = strings.TrimSpace(parts[1])
	}
	return result
}

func infoValue(info map[string]string, key string) string {
	return info[key]
}

// starAllele reads the STAR or ALLELE key, first match wins, defaulting to
// the reference allele.
func starAllele(info map[string]string) string {
	if star := info["star"]; star != "" {
		return star
	}
	if allele := info["allele"]; allele != "" {
		return allele
	}
	return "*1"
}

// rsID prefers the RS info key (auto-prefixed with "rs"), then the record's
// ID column when it is not a placeholder, then the literal "unknown".
func rsID(info map[string]string, idColumn string) string {
	if rs := info["rs"]; rs != "" {
		if strings.HasPrefix(strings.ToLower(rs), "rs") {
			return rs
		}
		return "rs" + rs
	}
	idColumn = strings.TrimSpace(idColumn)
	if idColumn != "" && idColumn != "." {
		return idColumn
	}
	return "unknown"
}
