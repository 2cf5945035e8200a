// Package ncbi fetches the file links of runs from the NCBI E-utilities.
package ncbi

import "encoding/xml"

// ExperimentPackageSet is the efetch db=sra document. Only the parts needed
// to locate run files are decoded.
type ExperimentPackageSet struct {
	XMLName  xml.Name            // EXPERIMENT_PACKAGE_SET, or eFetchResult on error
	Packages []ExperimentPackage `xml:"EXPERIMENT_PACKAGE"`
	Error    string              `xml:"ERROR"`
}

// ExperimentPackage groups an experiment with its runs.
type ExperimentPackage struct {
	Runs []Run `xml:"RUN_SET>RUN"`
}

// Run represents a sequencing run with its stored files.
type Run struct {
	Accession  string      `xml:"accession,attr"`
	Alias      string      `xml:"alias,attr,omitempty"`
	TotalSpots int64       `xml:"total_spots,attr,omitempty"`
	TotalBases int64       `xml:"total_bases,attr,omitempty"`
	Files      []SRAFile   `xml:"SRAFiles>SRAFile"`
	CloudFiles []CloudFile `xml:"CloudFiles>CloudFile"`
}

// SRAFile is one stored file of a run, available from several locations.
type SRAFile struct {
	Filename     string        `xml:"filename,attr"`
	URL          string        `xml:"url,attr,omitempty"`
	Size         int64         `xml:"size,attr"`
	MD5          string        `xml:"md5,attr"`
	SemanticName string        `xml:"semantic_name,attr,omitempty"`
	Supertype    string        `xml:"supertype,attr,omitempty"`
	Alternatives []Alternative `xml:"Alternatives"`
}

// Alternative is one download location of an SRAFile.
type Alternative struct {
	URL        string `xml:"url,attr"`
	Org        string `xml:"org,attr"`
	FreeEgress string `xml:"free_egress,attr,omitempty"`
	AccessType string `xml:"access_type,attr,omitempty"`
}

// CloudFile names the cloud region holding a copy of the run.
type CloudFile struct {
	FileType string `xml:"filetype,attr"`
	Provider string `xml:"provider,attr"` // s3 or gs
	Location string `xml:"location,attr"` // e.g. s3.us-east-1
}
