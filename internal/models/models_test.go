package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want Count
	}{
		{`"1234"`, 1234},
		{`1234`, 1234},
		{`""`, 0},
		{`null`, 0},
	}

	for _, tt := range tests {
		var c Count
		require.NoError(t, json.Unmarshal([]byte(tt.in), &c), tt.in)
		assert.Equal(t, tt.want, c, tt.in)
	}

	var c Count
	assert.Error(t, json.Unmarshal([]byte(`"12x"`), &c))
}

func TestRunInformationDecodesENARow(t *testing.T) {
	row := `{"run_accession":"SRR0001","read_count":"42","base_count":"","tax_id":"9606","library_layout":"PAIRED"}`

	var r RunInformation
	require.NoError(t, json.Unmarshal([]byte(row), &r))

	assert.Equal(t, "SRR0001", r.RunAccession)
	assert.Equal(t, Count(42), r.ReadCount)
	assert.Equal(t, Count(0), r.BaseCount)
	assert.Equal(t, "9606", r.TaxID)
	assert.Nil(t, r.Files)
}

func TestRunInformationFilesNeverNull(t *testing.T) {
	data, err := json.Marshal(&RunInformation{RunAccession: "SRR0001"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"files":[]`)

	data, err = json.Marshal([]RunInformation{{RunAccession: "SRR0002"}})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"files":[]`)
}

func TestFieldsAndValuesAlign(t *testing.T) {
	r := &RunInformation{RunAccession: "SRR1", ReadCount: 7, FastqAspera: "fasp"}

	fields := Fields()
	values := r.Values()
	require.Len(t, values, len(fields))

	byName := make(map[string]string, len(fields))
	for i, f := range fields {
		byName[f] = values[i]
	}

	assert.Equal(t, "run_accession", fields[0])
	assert.Equal(t, "SRR1", byName["run_accession"])
	assert.Equal(t, "7", byName["read_count"])
	assert.Equal(t, "fasp", byName["fastq_aspera"])
	assert.NotContains(t, fields, "files")
}

func TestFASTQFiles(t *testing.T) {
	r := &RunInformation{Files: []FileDescription{
		{Name: "a", Type: FileTypeFASTQ, URLType: URLTypeAWS},
		{Name: "b", Type: FileTypeSRA, URLType: URLTypeAWS},
		{Name: "c", Type: FileTypeFASTQ, URLType: URLTypeGCP},
	}}

	aws := r.FASTQFiles(URLTypeAWS)
	require.Len(t, aws, 1)
	assert.Equal(t, "a", aws[0].Name)
	assert.Len(t, r.FASTQFiles(URLTypeGCP), 1)
	assert.Empty(t, r.FASTQFiles(URLTypeNCBI))
}

func TestParseURLType(t *testing.T) {
	assert.Equal(t, URLTypeAWS, ParseURLType("AWS"))
	assert.Equal(t, URLTypeGCP, ParseURLType(" gcp "))
	assert.Equal(t, URLType("azure"), ParseURLType("Azure"))
}
