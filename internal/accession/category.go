// Package accession classifies INSDC accession identifiers into categories
// and holds validated, deduplicated sets of them.
package accession

import (
	"regexp"
	"strings"

	"github.com/nishad/ffqf/internal/errors"
)

// Category is the kind of entity an accession identifies.
type Category int

const (
	BioProject Category = iota
	BioSample
	Study
	Sample
	Experiment
	Run
	Submission
)

// Prefixes checked before any regex.
const (
	BioProjectPrefix = "PRJ"
	BioSamplePrefix  = "SAM"
)

// Recognized matches every accession ffqf knows about, including GEO series
// and samples which it cannot resolve.
var Recognized = regexp.MustCompile(
	`^(((SR|ER|DR)[APRSX])|(SAM(N|EA|EG|D))|(PRJ(NA|EB|DB))|(GS[EM]))(\d+)$`)

type categoryInfo struct {
	name string
	// prefix selects the category during classification
	prefix *regexp.Regexp
	// pattern validates members of a Set of this category
	pattern *regexp.Regexp
}

var categories = map[Category]categoryInfo{
	BioProject: {"bioproject", nil, regexp.MustCompile(`^PRJ(NA|EB|DB)\d+$`)},
	BioSample:  {"biosample", nil, regexp.MustCompile(`^SAM(N|EA|EG|D)\d+$`)},
	Study:      {"study", regexp.MustCompile(`^(SR|ER|DR)P`), regexp.MustCompile(`^(SR|ER|DR)P\d+$`)},
	Sample:     {"sample", regexp.MustCompile(`^(SR|ER|DR)S`), regexp.MustCompile(`^(SR|ER|DR)S\d+$`)},
	Experiment: {"experiment", regexp.MustCompile(`^(SR|ER|DR)X`), regexp.MustCompile(`^(SR|ER|DR)X\d+$`)},
	Run:        {"run", regexp.MustCompile(`^(SR|ER|DR)R`), regexp.MustCompile(`^(SR|ER|DR)R\d+$`)},
	Submission: {"submission", regexp.MustCompile(`^(SR|ER|DR)A`), regexp.MustCompile(`^(SR|ER|DR)A\d+$`)},
}

// Categories returns all categories in classification precedence order.
func Categories() []Category {
	return []Category{BioProject, BioSample, Study, Sample, Experiment, Run, Submission}
}

// String returns the lower-case category name.
func (c Category) String() string {
	if info, ok := categories[c]; ok {
		return info.name
	}
	return "unknown"
}

// Pattern returns the validation pattern members of this category must match.
func (c Category) Pattern() *regexp.Regexp {
	return categories[c].pattern
}

// Valid reports whether acc satisfies this category's validation pattern.
func (c Category) Valid(acc string) bool {
	info, ok := categories[c]
	return ok && info.pattern.MatchString(acc)
}

// CategoryOf determines the category of acc by prefix, then regex, in
// precedence order. The first match wins, so "PRJ..." is always a BioProject.
// It does not validate the remainder of the accession.
func CategoryOf(acc string) (Category, error) {
	const op errors.Op = "accession.CategoryOf"

	switch {
	case strings.HasPrefix(acc, BioProjectPrefix):
		return BioProject, nil
	case strings.HasPrefix(acc, BioSamplePrefix):
		return BioSample, nil
	}

	for _, c := range []Category{Study, Sample, Experiment, Run, Submission} {
		if categories[c].prefix.MatchString(acc) {
			return c, nil
		}
	}

	return 0, errors.Errorf(op, errors.KindUnrecognizedAccession,
		"could not match accession %q to any category", acc)
}
