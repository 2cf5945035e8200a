package accession

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/inconshreveable/log15"

	"github.com/nishad/ffqf/internal/errors"
)

// Classification holds the accessions of one resolution, split by category.
// Inputs that could not be classified are reported in Rejected and otherwise
// ignored; one bad accession never aborts the batch.
type Classification struct {
	sets     map[Category]*Set
	Rejected []error
}

// Classify trims and classifies each accession. Blank entries are skipped.
// Accessions failing the Recognized pattern, or recognised accessions that
// belong to no supported category (GEO), are logged and rejected.
func Classify(accessions []string, logger log15.Logger) *Classification {
	const op errors.Op = "accession.Classify"

	c := &Classification{sets: make(map[Category]*Set)}
	for _, cat := range Categories() {
		c.sets[cat] = NewSet(cat)
	}

	for _, raw := range accessions {
		acc := strings.TrimSpace(raw)
		if acc == "" {
			continue
		}

		if !Recognized.MatchString(acc) {
			logger.Error("Invalid or unrecognized accession. Ignored.", "accession", acc)
			c.Rejected = append(c.Rejected, errors.Errorf(op, errors.KindUnrecognizedAccession,
				"invalid or unrecognized accession %q", acc))

			continue
		}

		cat, err := CategoryOf(acc)
		if err != nil {
			logger.Error("Recognized accession has no supported category. Ignored.", "accession", acc)
			c.Rejected = append(c.Rejected, err)

			continue
		}

		if err := c.sets[cat].Add(acc); err != nil {
			logger.Error("Accession failed category validation. Ignored.",
				"accession", acc, "category", cat)
			c.Rejected = append(c.Rejected, err)

			continue
		}

		logger.Debug("classified accession", "accession", acc, "category", cat)
	}

	return c
}

// Set returns the set of the given category; never nil.
func (c *Classification) Set(category Category) *Set {
	if s, ok := c.sets[category]; ok {
		return s
	}
	return NewSet(category)
}

// Len returns the number of classified accessions across all categories.
func (c *Classification) Len() int {
	n := 0
	for _, s := range c.sets {
		n += s.Len()
	}
	return n
}

// Err aggregates the rejections, or returns nil if there were none.
func (c *Classification) Err() error {
	var merr *multierror.Error
	for _, err := range c.Rejected {
		merr = multierror.Append(merr, err)
	}
	return merr.ErrorOrNil()
}
