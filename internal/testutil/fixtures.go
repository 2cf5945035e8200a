package testutil

import (
	"bytes"
	"encoding/xml"
	"fmt"
)

// Fixture data for tests

// SampleRunRow returns the ENA read_run row of a paired-end run of the
// biosample SAMN11619543.
func SampleRunRow() map[string]string {
	return map[string]string{
		"run_accession":              "SRR0001",
		"experiment_accession":       "SRX0001",
		"sample_accession":           "SAMN11619543",
		"secondary_sample_accession": "SRS0001",
		"study_accession":            "PRJNA0001",
		"secondary_study_accession":  "SRP0001",
		"submission_accession":       "SRA0001",
		"library_layout":             "PAIRED",
		"library_strategy":           "WGS",
		"instrument_platform":        "ILLUMINA",
		"read_count":                 "1000",
		"base_count":                 "300000",
		"tax_id":                     "562",
		"scientific_name":            "Escherichia coli",
	}
}

// RunRow returns an ENA read_run row for run belonging to the given
// experiment and sample.
func RunRow(run, experiment, sample string) map[string]string {
	return map[string]string{
		"run_accession":        run,
		"experiment_accession": experiment,
		"sample_accession":     sample,
		"library_layout":       "SINGLE",
		"read_count":           "10",
	}
}

// File is one stored file of a run with a single download location.
type File struct {
	Name string
	URL  string
	Org  string
	Size int64
	MD5  string
}

// Cloud is a cloud copy of a run.
type Cloud struct {
	Provider string
	Location string
}

// RunFiles lists the files of one run as reported by efetch.
type RunFiles struct {
	Accession string
	Files     []File
	Clouds    []Cloud
}

// FastqFile returns a fastq file of run hosted on AWS.
func FastqFile(run string) File {
	return File{
		Name: run + "_1.fastq.gz",
		URL:  "s3://sra-pub-src-1/" + run + "/" + run + "_1.fastq.gz",
		Org:  "AWS",
		Size: 1048576,
		MD5:  "0123456789abcdef0123456789abcdef",
	}
}

// EfetchXML renders an EXPERIMENT_PACKAGE_SET with one package per run.
func EfetchXML(runs ...RunFiles) string {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" ?>` + "\n<EXPERIMENT_PACKAGE_SET>\n")

	for _, r := range runs {
		fmt.Fprintf(&b, "<EXPERIMENT_PACKAGE><RUN_SET><RUN accession=%s total_spots=\"10\">\n<SRAFiles>\n",
			attr(r.Accession))
		for _, f := range r.Files {
			fmt.Fprintf(&b, "<SRAFile filename=%s size=\"%d\" md5=%s><Alternatives url=%s org=%s free_egress=\"worldwide\"/></SRAFile>\n",
				attr(f.Name), f.Size, attr(f.MD5), attr(f.URL), attr(f.Org))
		}
		b.WriteString("</SRAFiles>\n<CloudFiles>\n")
		for _, c := range r.Clouds {
			fmt.Fprintf(&b, "<CloudFile filetype=\"run\" provider=%s location=%s/>\n",
				attr(c.Provider), attr(c.Location))
		}
		b.WriteString("</CloudFiles>\n</RUN></RUN_SET></EXPERIMENT_PACKAGE>\n")
	}

	b.WriteString("</EXPERIMENT_PACKAGE_SET>\n")
	return b.String()
}

// EfetchErrorXML renders the document efetch returns on failure.
func EfetchErrorXML(msg string) string {
	var b bytes.Buffer
	b.WriteString("<eFetchResult><ERROR>")
	xml.EscapeText(&b, []byte(msg))
	b.WriteString("</ERROR></eFetchResult>")
	return b.String()
}

func attr(v string) string {
	var b bytes.Buffer
	b.WriteByte('"')
	xml.EscapeText(&b, []byte(v))
	b.WriteByte('"')
	return b.String()
}
