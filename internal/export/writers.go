package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"

	"github.com/nishad/ffqf/internal/models"
)

// fileColumns are appended to the run columns in delimited output.
var fileColumns = []string{"aws_files", "aws_md5", "gcp_files", "gcp_md5"}

func writeJSON(w io.Writer, infos []*models.RunInformation) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if infos == nil {
		infos = []*models.RunInformation{}
	}
	return enc.Encode(infos)
}

// writeDelimited writes one row per run. Only fastq files are listed, their
// names and checksums joined with ";".
func writeDelimited(w io.Writer, comma rune, infos []*models.RunInformation) error {
	cw := csv.NewWriter(w)
	cw.Comma = comma

	if err := cw.Write(append(models.Fields(), fileColumns...)); err != nil {
		return err
	}

	for _, info := range infos {
		row := info.Values()
		for _, urlType := range []models.URLType{models.URLTypeAWS, models.URLTypeGCP} {
			urls, md5s := fastqColumns(info.FASTQFiles(urlType))
			row = append(row, urls, md5s)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func fastqColumns(files []models.FileDescription) (string, string) {
	urls := make([]string, len(files))
	md5s := make([]string, len(files))
	for i, f := range files {
		urls[i] = f.URL
		md5s[i] = f.MD5
	}
	return strings.Join(urls, ";"), strings.Join(md5s, ";")
}

// writeTable renders a human readable summary, one row per run.
func writeTable(w io.Writer, infos []*models.RunInformation) error {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Run", "Experiment", "Sample", "Study", "Layout", "Strategy",
		"Reads", "AWS", "GCP", "FASTQ Size"})
	table.SetAutoWrapText(false)

	for _, info := range infos {
		table.Append(summary(info))
	}

	table.Render()

	return nil
}

// summary returns the table columns of a run.
func summary(info *models.RunInformation) []string {
	aws := info.FASTQFiles(models.URLTypeAWS)
	gcp := info.FASTQFiles(models.URLTypeGCP)

	// every provider hosts the same files, so sizes are counted once per name
	sizes := make(map[string]int64)
	for _, f := range append(aws, gcp...) {
		sizes[f.Name] = f.Size
	}
	var total int64
	for _, size := range sizes {
		total += size
	}

	return []string{
		info.RunAccession,
		info.ExperimentAccession,
		info.SampleAccession,
		info.StudyAccession,
		info.LibraryLayout,
		info.LibraryStrategy,
		humanize.Comma(int64(info.ReadCount)),
		fmt.Sprintf("%d", len(aws)),
		fmt.Sprintf("%d", len(gcp)),
		humanize.IBytes(uint64(total)),
	}
}
