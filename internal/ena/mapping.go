package ena

import (
	"fmt"
	"strings"

	"github.com/inconshreveable/log15"

	"github.com/nishad/ffqf/internal/accession"
	"github.com/nishad/ffqf/internal/errors"
	"github.com/nishad/ffqf/internal/request"
)

// RunField is the ENA field holding the run accession.
const RunField = "run_accession"

// MappingSpec describes how accessions of one category are mapped to runs.
type MappingSpec struct {
	Category accession.Category
	// Field is the read_run field holding the input accession.
	Field string
	// AccessionType selects with includeAccessionType/includeAccessions.
	// When empty the request uses a query on Field instead.
	AccessionType string
}

// MappingSpecs lists the mapping of every category that is not a run.
var MappingSpecs = []MappingSpec{
	{Category: accession.BioProject, Field: "study_accession", AccessionType: "study"},
	{Category: accession.BioSample, Field: "sample_accession", AccessionType: "sample"},
	{Category: accession.Study, Field: "secondary_study_accession"},
	{Category: accession.Sample, Field: "secondary_sample_accession"},
	{Category: accession.Experiment, Field: "experiment_accession", AccessionType: "experiment"},
	{Category: accession.Submission, Field: "submission_accession", AccessionType: "submission"},
}

// Mapper builds the search request for a set of accessions and turns the
// response into the set of associated runs.
type Mapper struct {
	Spec MappingSpec
	// Strict turns unmapped accessions into an error instead of a warning.
	Strict bool

	logger log15.Logger
}

// NewMapper creates a Mapper for spec.
func NewMapper(spec MappingSpec, strict bool, logger log15.Logger) *Mapper {
	return &Mapper{
		Spec:   spec,
		Strict: strict,
		logger: logger.New("mapping", spec.Category.String()),
	}
}

// Mappers creates one Mapper per entry of MappingSpecs.
func Mappers(strict bool, logger log15.Logger) map[accession.Category]*Mapper {
	mappers := make(map[accession.Category]*Mapper, len(MappingSpecs))
	for _, spec := range MappingSpecs {
		mappers[spec.Category] = NewMapper(spec, strict, logger)
	}
	return mappers
}

// PrepareRequest builds the search request for set. It performs no I/O.
func (m *Mapper) PrepareRequest(set *accession.Set) (*request.Request, error) {
	const op errors.Op = "ena.Mapper.PrepareRequest"

	if set.Category() != m.Spec.Category {
		return nil, errors.Errorf(op, errors.KindInvalidAccession,
			"%s mapper given a %s set", m.Spec.Category, set.Category())
	}
	if set.Len() == 0 {
		return nil, errors.Errorf(op, errors.KindInvalidAccession, "no %s accessions to map",
			m.Spec.Category)
	}

	accs := set.Sorted()
	form := searchForm(m.Spec.Field, RunField)

	if m.Spec.AccessionType != "" {
		form.Set("includeAccessionType", m.Spec.AccessionType)
		form.Set("includeAccessions", strings.Join(accs, ","))
	} else {
		terms := make([]string, len(accs))
		for i, acc := range accs {
			terms[i] = fmt.Sprintf("%s=%q", m.Spec.Field, acc)
		}
		form.Set("query", strings.Join(terms, " OR "))
	}

	return request.NewPost(SearchPath, form), nil
}

// ParseRunSet decodes the associations in resp and returns the runs of the
// requested accessions. Rows that fail validation make the whole response
// invalid. Associations of accessions that were not requested are ignored.
func (m *Mapper) ParseRunSet(resp *request.Response, set *accession.Set) (*accession.Set, error) {
	const op errors.Op = "ena.Mapper.ParseRunSet"

	var rows []map[string]string
	if err := decode(op, resp, &rows); err != nil {
		return nil, err
	}

	runs := accession.NewRunSet()
	found := make(map[string]struct{}, set.Len())

	for i, row := range rows {
		acc, run := row[m.Spec.Field], row[RunField]

		if !m.Spec.Category.Valid(acc) {
			return nil, errors.Errorf(op, errors.KindParse, "row %d: invalid %s %q",
				i, m.Spec.Field, acc)
		}
		if !set.Contains(acc) {
			m.logger.Warn("Ignoring association of an accession that was not requested.",
				"accession", acc, "run", run)
			continue
		}
		if err := runs.Add(run); err != nil {
			return nil, errors.E(op, errors.KindParse, err, fmt.Sprintf("row %d", i))
		}

		found[acc] = struct{}{}
	}

	if missing := set.Difference(found); len(missing) > 0 {
		err := errors.Errorf(op, errors.KindPartialMapping,
			"the following %s accessions could not be mapped: %s",
			m.Spec.Category, strings.Join(missing, ", "))
		if m.Strict {
			return nil, err
		}
		m.logger.Warn("Some accessions could not be mapped to runs.",
			"missing", strings.Join(missing, ","))
	}

	m.logger.Debug("mapped accessions", "accessions", set.Len(), "runs", runs.Len())

	return runs, nil
}
