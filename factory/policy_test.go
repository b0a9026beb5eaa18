package factory_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/factory"
	"github.com/warp/attendance-engine/generic"
	"github.com/warp/attendance-engine/payroll"
)

func TestParsePolicy_EmptyDocumentIsDefault(t *testing.T) {
	pf := factory.NewPolicyFactory()
	p, err := pf.ParsePolicy(`{}`)
	require.NoError(t, err)
	assert.Equal(t, payroll.DefaultPolicy(), *p)
}

func TestParsePolicy_OverridesFields(t *testing.T) {
	// GIVEN: an office that starts evening shifts at 12:45 and treats
	// unlabelled employees as workers
	pf := factory.NewPolicyFactory()
	p, err := pf.ParsePolicy(`{
		"default_classification": "Worker",
		"evening_start": "12:45",
		"grace_minutes": 0,
		"include_short_day_deduction": true,
		"maintenance_factor": 0.9,
		"staff_overtime_statuses": ["adj-p", "wo-i"],
		"break_windows": [{"name": "Lunch", "start": "12:00", "end": "13:00", "allowance_minutes": 45}]
	}`)
	require.NoError(t, err)

	// THEN: only the named fields change
	assert.Equal(t, payroll.Worker, p.DefaultClassification)
	assert.Equal(t, 765, p.EveningStartMinutes)
	assert.Equal(t, 0, p.GraceMinutes)
	assert.True(t, p.IncludeShortDayDeduction)
	assert.True(t, decimal.NewFromFloat(0.9).Equal(p.MaintenanceFactor))
	assert.Equal(t, []attendance.Status{"ADJ-P", "WO-I"}, p.StaffOvertimeStatuses)
	require.Len(t, p.BreakWindows, 1)
	assert.Equal(t, payroll.BreakWindow{Name: "Lunch", StartMinutes: 720, EndMinutes: 780, AllowanceMinutes: 45}, p.BreakWindows[0])
	assert.Equal(t, 510, p.StandardStartMinutes, "unchanged")
}

func TestParsePolicy_Rejects(t *testing.T) {
	pf := factory.NewPolicyFactory()
	for name, doc := range map[string]string{
		"malformed":      `{`,
		"classification": `{"default_classification": "intern"}`,
		"clock":          `{"evening_start": "late"}`,
		"factor":         `{"maintenance_factor": 1.5}`,
		"window":         `{"break_windows": [{"name": "x", "start": "13:00", "end": "12:00"}]}`,
	} {
		_, err := pf.ParsePolicy(doc)
		assert.ErrorIs(t, err, generic.ErrInvalidPolicy, name)
	}
}

func TestToJSON_RoundTrip(t *testing.T) {
	pf := factory.NewPolicyFactory()
	orig, err := pf.ParsePolicy(pf.Preset("evening-1245"))
	require.NoError(t, err)

	data, err := json.Marshal(pf.ToJSON(*orig))
	require.NoError(t, err)
	back, err := pf.ParsePolicy(string(data))
	require.NoError(t, err)
	assert.Equal(t, orig.EveningStartMinutes, back.EveningStartMinutes)
	assert.Equal(t, orig.BreakWindows, back.BreakWindows)
	assert.Equal(t, 320, back.HalfDayThresholdMinutes)
}

func TestPresets(t *testing.T) {
	pf := factory.NewPolicyFactory()
	assert.Equal(t, []string{"canonical", "evening-1245", "short-day", "worker-default"}, pf.PresetNames())
	for _, name := range pf.PresetNames() {
		_, err := pf.ParsePolicy(pf.Preset(name))
		assert.NoError(t, err, name)
	}
	assert.Empty(t, pf.Preset("nope"))

	evening, _ := pf.ParsePolicy(pf.Preset("evening-1245"))
	assert.Equal(t, 15, evening.BreakWindows[3].AllowanceMinutes)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"half_day_threshold_minutes": 320}`), 0o600))

	p, err := factory.NewPolicyFactory().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 320, p.HalfDayThresholdMinutes)

	_, err = factory.NewPolicyFactory().LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
