package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCSVBasic(t *testing.T) {
	input := strings.Join([]string{
		"user,employee_name,department,login_count,night_logins,file_activity_count,usb_count,risk_score,anomaly_label",
		"EMP001,Alice Morgan,Engineering,120,3,250,12,45.5,1",
		"EMP002,Bob Reyes,Finance,90,8,600,25,72,-1",
	}, "\n")

	result, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Zero(t, result.SkippedRows)

	first := result.Records[0]
	assert.Equal(t, "EMP001", first.User)
	assert.Equal(t, "Alice Morgan", first.EmployeeName)
	assert.Equal(t, "Engineering", first.Department)
	assert.Equal(t, 120.0, first.LoginCount)
	assert.Equal(t, 45.5, first.RiskScore)
	assert.Equal(t, 1, first.AnomalyLabel)

	second := result.Records[1]
	assert.Equal(t, -1, second.AnomalyLabel)
	assert.Equal(t, 600.0, second.FileActivityCount)
}

func TestParseCSVCoercesMalformedNumerics(t *testing.T) {
	input := strings.Join([]string{
		"user,login_count,usb_count,risk_score",
		"EMP001,not-a-number,NaN,Inf",
	}, "\n")

	result, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	rec := result.Records[0]
	assert.Zero(t, rec.LoginCount)
	assert.Zero(t, rec.USBCount)
	assert.Zero(t, rec.RiskScore)
}

func TestParseCSVTraitDefaults(t *testing.T) {
	// No trait columns at all: neutral defaults, not marked as provided
	noTraits := "user,login_count\nEMP001,10\n"
	result, err := ParseCSV(strings.NewReader(noTraits))
	require.NoError(t, err)

	rec := result.Records[0]
	assert.False(t, rec.TraitsProvided)
	for _, trait := range rec.Traits() {
		assert.Equal(t, 50.0, trait)
	}

	// Trait columns present: values kept and flagged as provided
	withTraits := "user,O,C,E,A,N\nEMP002,80,20,55,60,90\n"
	result, err = ParseCSV(strings.NewReader(withTraits))
	require.NoError(t, err)

	rec = result.Records[0]
	assert.True(t, rec.TraitsProvided)
	assert.Equal(t, [5]float64{80, 20, 55, 60, 90}, rec.Traits())
}

func TestParseCSVTraitClamping(t *testing.T) {
	input := "user,O,C,E,A,N\nEMP001,150,-10,bad,,70\n"
	result, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	rec := result.Records[0]
	assert.True(t, rec.TraitsProvided)
	assert.Equal(t, [5]float64{100, 0, 50, 50, 70}, rec.Traits())
}

func TestParseCSVSkipsRowsWithoutIdentity(t *testing.T) {
	input := strings.Join([]string{
		"user,employee_name,login_count",
		",,50",
		"EMP001,,10",
		",Carol Diaz,20",
	}, "\n")

	result, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, 1, result.SkippedRows)

	// Name-only rows use the name as the id
	assert.Equal(t, "Carol Diaz", result.Records[1].User)
}

func TestParseCSVFileOperationsDetail(t *testing.T) {
	detail := `"[{""timestamp"":""2024-01-02T03:00:00Z"",""operation"":""copy"",""file_name"":""plans.pdf"",""is_sensitive"":true}]"`
	input := "user,file_operations_detail\nEMP001," + detail + "\n"

	result, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)

	rec := result.Records[0]
	require.Len(t, rec.FileOperations, 1)
	assert.Equal(t, "copy", rec.FileOperations[0].Operation)
	assert.True(t, rec.FileOperations[0].IsSensitive)
}

func TestParseCSVEmptyInput(t *testing.T) {
	_, err := ParseCSV(strings.NewReader(""))
	require.Error(t, err)

	_, err = ParseCSV(strings.NewReader("user,login_count\n"))
	require.Error(t, err)
}

func TestParseCSVHeaderNormalization(t *testing.T) {
	// BOM and mixed case headers still match
	input := "\ufeffUser,Login_Count\nEMP001,42\n"
	result, err := ParseCSV(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 42.0, result.Records[0].LoginCount)
}
