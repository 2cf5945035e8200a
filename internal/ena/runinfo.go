package ena

import (
	"strings"

	"github.com/inconshreveable/log15"

	"github.com/nishad/ffqf/internal/accession"
	"github.com/nishad/ffqf/internal/errors"
	"github.com/nishad/ffqf/internal/models"
	"github.com/nishad/ffqf/internal/request"
)

// RunInformationAdapter fetches the read_run record of every run.
type RunInformationAdapter struct {
	Fields []string
	Strict bool

	logger log15.Logger
}

// NewRunInformationAdapter creates an adapter requesting fields, which always
// include run_accession. Nil fields request every RunInformation column.
func NewRunInformationAdapter(fields []string, strict bool, logger log15.Logger) *RunInformationAdapter {
	if len(fields) == 0 {
		fields = models.Fields()
	}

	hasRun := false
	for _, f := range fields {
		if f == RunField {
			hasRun = true
			break
		}
	}
	if !hasRun {
		fields = append([]string{RunField}, fields...)
	}

	return &RunInformationAdapter{
		Fields: fields,
		Strict: strict,
		logger: logger.New("adapter", "run_information"),
	}
}

// PrepareRequest builds the search request for runs. It performs no I/O.
func (a *RunInformationAdapter) PrepareRequest(runs *accession.Set) (*request.Request, error) {
	const op errors.Op = "ena.RunInformationAdapter.PrepareRequest"

	if runs.Category() != accession.Run {
		return nil, errors.Errorf(op, errors.KindInvalidAccession,
			"run information requested for a %s set", runs.Category())
	}

	form := searchForm(a.Fields...)
	form.Set("includeAccessionType", "run")
	form.Set("includeAccessions", strings.Join(runs.Sorted(), ","))

	return request.NewPost(SearchPath, form), nil
}

// ParseRunInformation decodes the records in resp, keeping ENA's order.
// Records of runs that were not requested are dropped.
func (a *RunInformationAdapter) ParseRunInformation(resp *request.Response,
	runs *accession.Set) ([]*models.RunInformation, error) {
	const op errors.Op = "ena.RunInformationAdapter.ParseRunInformation"

	var records []*models.RunInformation
	if err := decode(op, resp, &records); err != nil {
		return nil, err
	}

	skipped := errors.NewSkipCounter("run information")
	out := make([]*models.RunInformation, 0, len(records))
	found := make(map[string]struct{}, len(records))

	for _, r := range records {
		if r == nil {
			continue
		}
		if !runs.Contains(r.RunAccession) {
			skipped.Skip(errors.Errorf(op, errors.KindParse, "unrequested run"), r.RunAccession)
			continue
		}
		if _, dup := found[r.RunAccession]; dup {
			continue
		}

		found[r.RunAccession] = struct{}{}
		out = append(out, r)
	}

	skipped.Report(a.logger)

	if missing := runs.Difference(found); len(missing) > 0 {
		err := errors.Errorf(op, errors.KindPartialMapping,
			"no run information for: %s", strings.Join(missing, ", "))
		if a.Strict {
			return nil, err
		}
		a.logger.Warn("Some runs have no run information.", "missing", strings.Join(missing, ","))
	}

	return out, nil
}
