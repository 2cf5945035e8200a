package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FileType is the kind of sequence data file.
type FileType string

const (
	FileTypeFASTQ FileType = "fastq"
	FileTypeBAM   FileType = "bam"
	FileTypeSRA   FileType = "sra"
)

// URLType is the organisation hosting a file URL.
type URLType string

const (
	URLTypeAWS  URLType = "aws"
	URLTypeGCP  URLType = "gcp"
	URLTypeNCBI URLType = "ncbi"
	URLTypeENA  URLType = "ena"
)

// ParseURLType normalises an organisation name such as "AWS" or "GCP".
// Unknown organisations are kept lower-cased rather than rejected.
func ParseURLType(org string) URLType {
	return URLType(strings.ToLower(strings.TrimSpace(org)))
}

// FileDescription describes one downloadable copy of a run's data.
type FileDescription struct {
	Name    string   `json:"name"`
	Type    FileType `json:"type"`
	Size    int64    `json:"size"`
	MD5     string   `json:"md5"`
	URL     string   `json:"url"`
	URLType URLType  `json:"urltype"`
	Zone    string   `json:"zone,omitempty"`
}

// Count is an integer the ENA portal serialises as a string, possibly empty.
type Count int64

// UnmarshalJSON accepts 12, "12" and "".
func (c *Count) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*c = 0
		return nil
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid count %s: %w", data, err)
	}

	*c = Count(n)

	return nil
}

// RunInformation is the metadata of one sequencing run as reported by the
// ENA portal, enriched with the file links found for it.
type RunInformation struct {
	RunAccession             string `json:"run_accession"`
	ExperimentAccession      string `json:"experiment_accession"`
	SampleAccession          string `json:"sample_accession"`
	SecondarySampleAccession string `json:"secondary_sample_accession"`
	StudyAccession           string `json:"study_accession"`
	SecondaryStudyAccession  string `json:"secondary_study_accession"`
	ParentStudy              string `json:"parent_study"`
	SubmissionAccession      string `json:"submission_accession"`
	RunAlias                 string `json:"run_alias"`
	ExperimentAlias          string `json:"experiment_alias"`
	SampleAlias              string `json:"sample_alias"`
	StudyAlias               string `json:"study_alias"`
	LibraryLayout            string `json:"library_layout"`
	LibrarySelection         string `json:"library_selection"`
	LibrarySource            string `json:"library_source"`
	LibraryStrategy          string `json:"library_strategy"`
	LibraryName              string `json:"library_name"`
	InstrumentModel          string `json:"instrument_model"`
	InstrumentPlatform       string `json:"instrument_platform"`
	BaseCount                Count  `json:"base_count"`
	ReadCount                Count  `json:"read_count"`
	TaxID                    string `json:"tax_id"`
	ScientificName           string `json:"scientific_name"`
	SampleTitle              string `json:"sample_title"`
	ExperimentTitle          string `json:"experiment_title"`
	StudyTitle               string `json:"study_title"`
	Description              string `json:"description"`
	SampleDescription        string `json:"sample_description"`
	FastqMD5                 string `json:"fastq_md5"`
	FastqBytes               string `json:"fastq_bytes"`
	FastqFTP                 string `json:"fastq_ftp"`
	FastqGalaxy              string `json:"fastq_galaxy"`
	FastqAspera              string `json:"fastq_aspera"`

	Files []FileDescription `json:"files"`
}

// MarshalJSON guarantees files is always an array, never null.
func (r RunInformation) MarshalJSON() ([]byte, error) {
	type plain RunInformation

	p := plain(r)
	if p.Files == nil {
		p.Files = []FileDescription{}
	}

	return json.Marshal(p)
}

// column pairs an ENA field name with its accessor.
type column struct {
	name  string
	value func(*RunInformation) string
}

var columns = []column{
	{"run_accession", func(r *RunInformation) string { return r.RunAccession }},
	{"experiment_accession", func(r *RunInformation) string { return r.ExperimentAccession }},
	{"sample_accession", func(r *RunInformation) string { return r.SampleAccession }},
	{"secondary_sample_accession", func(r *RunInformation) string { return r.SecondarySampleAccession }},
	{"study_accession", func(r *RunInformation) string { return r.StudyAccession }},
	{"secondary_study_accession", func(r *RunInformation) string { return r.SecondaryStudyAccession }},
	{"parent_study", func(r *RunInformation) string { return r.ParentStudy }},
	{"submission_accession", func(r *RunInformation) string { return r.SubmissionAccession }},
	{"run_alias", func(r *RunInformation) string { return r.RunAlias }},
	{"experiment_alias", func(r *RunInformation) string { return r.ExperimentAlias }},
	{"sample_alias", func(r *RunInformation) string { return r.SampleAlias }},
	{"study_alias", func(r *RunInformation) string { return r.StudyAlias }},
	{"library_layout", func(r *RunInformation) string { return r.LibraryLayout }},
	{"library_selection", func(r *RunInformation) string { return r.LibrarySelection }},
	{"library_source", func(r *RunInformation) string { return r.LibrarySource }},
	{"library_strategy", func(r *RunInformation) string { return r.LibraryStrategy }},
	{"library_name", func(r *RunInformation) string { return r.LibraryName }},
	{"instrument_model", func(r *RunInformation) string { return r.InstrumentModel }},
	{"instrument_platform", func(r *RunInformation) string { return r.InstrumentPlatform }},
	{"base_count", func(r *RunInformation) string { return strconv.FormatInt(int64(r.BaseCount), 10) }},
	{"read_count", func(r *RunInformation) string { return strconv.FormatInt(int64(r.ReadCount), 10) }},
	{"tax_id", func(r *RunInformation) string { return r.TaxID }},
	{"scientific_name", func(r *RunInformation) string { return r.ScientificName }},
	{"sample_title", func(r *RunInformation) string { return r.SampleTitle }},
	{"experiment_title", func(r *RunInformation) string { return r.ExperimentTitle }},
	{"study_title", func(r *RunInformation) string { return r.StudyTitle }},
	{"description", func(r *RunInformation) string { return r.Description }},
	{"sample_description", func(r *RunInformation) string { return r.SampleDescription }},
	{"fastq_md5", func(r *RunInformation) string { return r.FastqMD5 }},
	{"fastq_bytes", func(r *RunInformation) string { return r.FastqBytes }},
	{"fastq_ftp", func(r *RunInformation) string { return r.FastqFTP }},
	{"fastq_galaxy", func(r *RunInformation) string { return r.FastqGalaxy }},
	{"fastq_aspera", func(r *RunInformation) string { return r.FastqAspera }},
}

// Fields returns the ENA field names of RunInformation in column order.
// These are also the fields requested from the ENA portal by default.
func Fields() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	return names
}

// Values returns the record's field values in Fields order.
func (r *RunInformation) Values() []string {
	values := make([]string, len(columns))
	for i, c := range columns {
		values[i] = c.value(r)
	}
	return values
}

// FASTQFiles returns the fastq descriptors hosted by the given organisation.
func (r *RunInformation) FASTQFiles(urlType URLType) []FileDescription {
	var out []FileDescription
	for _, f := range r.Files {
		if f.Type == FileTypeFASTQ && f.URLType == urlType {
			out = append(out, f)
		}
	}
	return out
}
