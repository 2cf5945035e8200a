package accession

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nishad/ffqf/internal/errors"
	"github.com/nishad/ffqf/internal/logging"
)

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		acc  string
		want Category
	}{
		{"PRJNA63463", BioProject},
		{"PRJEB7743", BioProject},
		{"PRJDB4176", BioProject},
		{"SAMN00765663", BioSample},
		{"SAMEA3121481", BioSample},
		{"SAMD00114846", BioSample},
		{"SRP003255", Study},
		{"ERP120836", Study},
		{"DRP004793", Study},
		{"SRS282569", Sample},
		{"ERS4399631", Sample},
		{"DRS090921", Sample},
		{"SRX111814", Experiment},
		{"ERX629702", Experiment},
		{"DRX162434", Experiment},
		{"SRR390278", Run},
		{"ERR674736", Run},
		{"DRR171822", Run},
		{"SRA023522", Submission},
		{"ERA2421642", Submission},
		{"DRA008156", Submission},
	}

	for _, tt := range tests {
		t.Run(tt.acc, func(t *testing.T) {
			got, err := CategoryOf(tt.acc)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid(tt.acc), "%s should validate as %s", tt.acc, got)

			for _, other := range Categories() {
				if other != tt.want {
					assert.False(t, other.Valid(tt.acc), "%s should not validate as %s", tt.acc, other)
				}
			}
		})
	}
}

func TestCategoryOfUnrecognized(t *testing.T) {
	for _, acc := range []string{"GSE18729", "GSM465244", "XYZ1", "CRR000001"} {
		_, err := CategoryOf(acc)
		require.Error(t, err, acc)
		assert.True(t, errors.IsKind(err, errors.KindUnrecognizedAccession), acc)
	}
}

func TestCategoryPrefixPrecedence(t *testing.T) {
	// prefix checks run before any regex
	for _, acc := range []string{"PRJSRR1", "PRJNA1", "PRJ"} {
		got, err := CategoryOf(acc)
		require.NoError(t, err)
		assert.Equal(t, BioProject, got)
	}

	got, err := CategoryOf("SAMSRP1")
	require.NoError(t, err)
	assert.Equal(t, BioSample, got)
}

func TestCategoryString(t *testing.T) {
	assert.Equal(t, "bioproject", BioProject.String())
	assert.Equal(t, "run", Run.String())
	assert.Equal(t, "unknown", Category(99).String())
}

func TestSetAddIdempotent(t *testing.T) {
	s := NewRunSet()

	require.NoError(t, s.Add("SRR000001"))
	require.NoError(t, s.Add("SRR000001"))

	assert.Equal(t, 1, s.Len())
	assert.True(t, s.Contains("SRR000001"))
}

func TestSetAddRejects(t *testing.T) {
	s := NewRunSet()
	require.NoError(t, s.Add("SRR000001"))

	for _, acc := range []string{"SRX000001", "SRR", "SRR12a", " SRR1", "srr1", ""} {
		err := s.Add(acc)
		require.Error(t, err, acc)
		assert.True(t, errors.IsKind(err, errors.KindInvalidAccession), acc)
	}

	assert.Equal(t, []string{"SRR000001"}, s.Sorted())
}

func TestSetOperations(t *testing.T) {
	a, err := SetOf(Run, "SRR2", "SRR1", "ERR3")
	require.NoError(t, err)
	b, err := SetOf(Run, "SRR1", "DRR4")
	require.NoError(t, err)

	assert.Equal(t, []string{"ERR3", "SRR1", "SRR2"}, a.Sorted())

	require.NoError(t, a.Union(b))
	assert.Equal(t, []string{"DRR4", "ERR3", "SRR1", "SRR2"}, a.Sorted())

	assert.Equal(t, []string{"DRR4", "ERR3"},
		a.Difference(map[string]struct{}{"SRR1": {}, "SRR2": {}}))

	c, err := SetOf(Run, "SRR1", "DRR4")
	require.NoError(t, err)
	assert.True(t, b.Equal(c))
	assert.False(t, a.Equal(c))
	assert.False(t, a.Equal(nil))

	_, err = SetOf(Run, "SRR1", "SRS1")
	assert.Error(t, err)
}

func TestSetUnionAcrossCategoriesFails(t *testing.T) {
	runs := NewRunSet()
	samples, err := SetOf(Sample, "SRS1")
	require.NoError(t, err)

	assert.Error(t, runs.Union(samples))
	assert.Equal(t, 0, runs.Len())
}

func TestClassify(t *testing.T) {
	c := Classify([]string{
		"PRJNA63463", "SAMN11619543", " SRP003255 ", "SRS282569",
		"SRX111814", "SRR390278", "SRA023522", "SRR390278", "", "   ",
	}, logging.Discard())

	assert.Equal(t, []string{"PRJNA63463"}, c.Set(BioProject).Sorted())
	assert.Equal(t, []string{"SAMN11619543"}, c.Set(BioSample).Sorted())
	assert.Equal(t, []string{"SRP003255"}, c.Set(Study).Sorted())
	assert.Equal(t, []string{"SRS282569"}, c.Set(Sample).Sorted())
	assert.Equal(t, []string{"SRX111814"}, c.Set(Experiment).Sorted())
	assert.Equal(t, []string{"SRR390278"}, c.Set(Run).Sorted())
	assert.Equal(t, []string{"SRA023522"}, c.Set(Submission).Sorted())
	assert.Equal(t, 7, c.Len())
	assert.Empty(t, c.Rejected)
	assert.NoError(t, c.Err())
}

func TestClassifyReportsAndSkips(t *testing.T) {
	c := Classify([]string{"SAMN11619543", "GSE18729", "not-an-accession", "SRR1x"}, logging.Discard())

	assert.Equal(t, 1, c.Len())
	require.Len(t, c.Rejected, 3)

	for _, err := range c.Rejected {
		assert.True(t, errors.IsKind(err, errors.KindUnrecognizedAccession), err.Error())
	}

	require.Error(t, c.Err())
	assert.Contains(t, c.Err().Error(), "GSE18729")
}
