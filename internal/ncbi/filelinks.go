package ncbi

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/inconshreveable/log15"

	"github.com/nishad/ffqf/internal/accession"
	"github.com/nishad/ffqf/internal/errors"
	"github.com/nishad/ffqf/internal/models"
	"github.com/nishad/ffqf/internal/request"
)

const (
	// EfetchPath is the E-utilities fetch endpoint.
	EfetchPath = "efetch.fcgi"
	rootName   = "EXPERIMENT_PACKAGE_SET"
)

var fastqPattern = regexp.MustCompile(`\.(fastq|fq)(\.gz)?$`)

// providerOrgs pairs cloud providers with the org of their alternatives.
var providerOrgs = map[string]models.URLType{
	"s3": models.URLTypeAWS,
	"gs": models.URLTypeGCP,
}

// DefaultForm returns the parameters identifying ffqf to NCBI, sent with
// every request. apiKey may be empty.
func DefaultForm(tool, email, apiKey string) url.Values {
	form := url.Values{
		"tool":  {tool},
		"email": {email},
	}
	if apiKey != "" {
		form.Set("api_key", apiKey)
	}
	return form
}

// FileLinkAdapter fetches the file descriptors of runs.
type FileLinkAdapter struct {
	logger log15.Logger
}

// NewFileLinkAdapter creates a FileLinkAdapter.
func NewFileLinkAdapter(logger log15.Logger) *FileLinkAdapter {
	return &FileLinkAdapter{logger: logger.New("adapter", "file_links")}
}

// PrepareRequest builds the efetch request for runs. It performs no I/O.
func (a *FileLinkAdapter) PrepareRequest(runs *accession.Set) (*request.Request, error) {
	if runs.Category() != accession.Run {
		return nil, errors.Errorf("ncbi.FileLinkAdapter.PrepareRequest", errors.KindInvalidAccession,
			"file links requested for a %s set", runs.Category())
	}

	return request.NewPost(EfetchPath, url.Values{
		"db": {"sra"},
		"id": {strings.Join(runs.Sorted(), ",")},
	}), nil
}

// ParseFileLinks maps every requested run found in resp to its file
// descriptors. Runs the experiment packages carry but that were not requested
// are skipped.
func (a *FileLinkAdapter) ParseFileLinks(resp *request.Response,
	runs *accession.Set) (map[string][]models.FileDescription, error) {
	const op errors.Op = "ncbi.FileLinkAdapter.ParseFileLinks"

	var set ExperimentPackageSet
	if err := xml.NewDecoder(bytes.NewReader(resp.Body)).Decode(&set); err != nil {
		return nil, errors.E(op, errors.KindParse, err, "invalid efetch response")
	}

	if msg := strings.TrimSpace(set.Error); msg != "" {
		return nil, errors.Errorf(op, errors.KindParse, "efetch error: %s", msg)
	}
	if set.XMLName.Local != rootName {
		return nil, errors.Errorf(op, errors.KindParse, "expected root element %s, got %s",
			rootName, set.XMLName.Local)
	}

	skipped := errors.NewSkipCounter("file links")
	links := make(map[string][]models.FileDescription, runs.Len())

	for _, pkg := range set.Packages {
		for _, run := range pkg.Runs {
			if !runs.Contains(run.Accession) {
				skipped.Skip(fmt.Errorf("run %s not in the requested set", run.Accession), run.Accession)
				continue
			}
			links[run.Accession] = describe(run)
		}
	}

	skipped.Report(a.logger)

	return links, nil
}

// describe turns every alternative location of every file of run into a
// FileDescription.
func describe(run Run) []models.FileDescription {
	files := make([]models.FileDescription, 0, len(run.Files))

	for _, f := range run.Files {
		for _, alt := range f.Alternatives {
			urlType := models.ParseURLType(alt.Org)
			files = append(files, models.FileDescription{
				Name:    f.Filename,
				Type:    fileType(alt.URL),
				Size:    f.Size,
				MD5:     f.MD5,
				URL:     alt.URL,
				URLType: urlType,
				Zone:    zone(alt.URL, urlType, run.CloudFiles),
			})
		}
	}

	return files
}

func fileType(u string) models.FileType {
	switch {
	case strings.HasSuffix(u, "bam"):
		return models.FileTypeBAM
	case fastqPattern.MatchString(u):
		return models.FileTypeFASTQ
	default:
		return models.FileTypeSRA
	}
}

// zone returns the location of the cloud copy serving u: the provider must
// prefix the URL, or be the provider of the alternative's org. When several
// copies match, the last one listed wins.
func zone(u string, urlType models.URLType, clouds []CloudFile) string {
	var byPrefix, byOrg string
	for _, c := range clouds {
		if c.Provider != "" && strings.HasPrefix(u, c.Provider) {
			byPrefix = c.Location
		}
		if org, ok := providerOrgs[c.Provider]; ok && org == urlType {
			byOrg = c.Location
		}
	}
	if byPrefix != "" {
		return byPrefix
	}
	return byOrg
}
