package fixtures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmployeesDeterministicPerSeed(t *testing.T) {
	a := NewGenerator(42).Employees(50)
	b := NewGenerator(42).Employees(50)
	require.Len(t, a, 50)

	for i := range a {
		assert.Equal(t, a[i].User, b[i].User)
		assert.Equal(t, a[i].EmployeeName, b[i].EmployeeName)
		assert.Equal(t, a[i].FileActivityCount, b[i].FileActivityCount)
		assert.Equal(t, a[i].AnomalyLabel, b[i].AnomalyLabel)
	}

	c := NewGenerator(7).Employees(50)
	different := false
	for i := range a {
		if a[i].EmployeeName != c[i].EmployeeName || a[i].LoginCount != c[i].LoginCount {
			different = true
			break
		}
	}
	assert.True(t, different, "different seeds should produce different populations")
}

func TestEmployeesContainInsiders(t *testing.T) {
	records := NewGenerator(1).Employees(200)

	insiders := 0
	for _, rec := range records {
		assert.True(t, rec.TraitsProvided)
		if rec.AnomalyLabel == -1 {
			insiders++
			assert.GreaterOrEqual(t, rec.FileActivityCount, 600.0)
		}
	}
	assert.Greater(t, insiders, 0, "a 200-employee population should include insiders")
	assert.Less(t, insiders, 100)
}

func TestActivitiesBelongToPopulation(t *testing.T) {
	records := NewGenerator(3).Employees(20)
	entries := NewGenerator(3).Activities(records, 10)
	require.NotEmpty(t, entries)

	known := make(map[string]bool, len(records))
	for _, rec := range records {
		known[rec.User] = true
	}
	for _, entry := range entries {
		assert.True(t, known[entry.UserID], "entry for unknown user %s", entry.UserID)
		assert.NotEmpty(t, entry.ID)
	}
}

func TestAccessLogShape(t *testing.T) {
	records := NewGenerator(9).Employees(30)
	log := NewGenerator(9).AccessLog(records)

	require.NotNil(t, log)
	assert.NotEmpty(t, log.VideoID)
	assert.Len(t, log.AuthorizedEmployees, 30)
	assert.NotEmpty(t, log.Events)

	for _, ev := range log.Events {
		assert.NotEmpty(t, ev.DetectedPersonID)
		assert.GreaterOrEqual(t, ev.Confidence, 0.0)
		assert.LessOrEqual(t, ev.Confidence, 1.0)
	}
}
