package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"causalimpact/internal/errors"
	"causalimpact/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeries(t *testing.T, withDates bool) string {
	t.Helper()
	frame := testkit.ImpactFrame(90, 60, 4, 1)
	days := testkit.DailyIndex(frame.Rows())

	var b strings.Builder
	if withDates {
		b.WriteString("date,")
	}
	b.WriteString("y,x1\n")
	for r := 0; r < frame.Rows(); r++ {
		if withDates {
			b.WriteString(days[r].Format("2006-01-02") + ",")
		}
		fmt.Fprintf(&b, "%v,%v\n", frame.Values[0][r], frame.Values[1][r])
	}
	path := filepath.Join(t.TempDir(), "series.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParsePeriod(t *testing.T) {
	assert.Equal(t, []int{0, 100}, parsePeriod([]string{"0", " 100"}))
	assert.Equal(t, []int{0, 20180110}, parsePeriod([]string{"0", "20180110"}))
	assert.Equal(t, []string{"2018-01-01", "2018-01-10"}, parsePeriod([]string{"2018-01-01", "2018-01-10"}))
	assert.Nil(t, parsePeriod(nil))
}

func TestAnalyzeJSON(t *testing.T) {
	path := writeSeries(t, true)
	out, err := execute(t, "analyze", path, "--index-col", "date",
		"--pre", "2018-01-01,2018-03-01", "--post", "2018-03-02,2018-03-31", "--n-sims", "200", "--json")
	require.NoError(t, err)

	var decoded struct {
		PValue    float64 `json:"p_value"`
		NSims     int     `json:"n_sims"`
		PrePeriod struct {
			Start int `json:"start"`
			End   int `json:"end"`
		} `json:"pre_period"`
		Summary struct {
			AbsEffect   float64 `json:"abs_effect"`
			Significant bool    `json:"significant"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, 200, decoded.NSims)
	assert.Equal(t, 0, decoded.PrePeriod.Start)
	assert.Equal(t, 60, decoded.PrePeriod.End)
	assert.True(t, decoded.Summary.Significant)
	assert.Greater(t, decoded.Summary.AbsEffect, 0.0)
	assert.Greater(t, decoded.PValue, 0.0)
}

func TestAnalyzeText(t *testing.T) {
	path := writeSeries(t, true)
	out, err := execute(t, "analyze", path, "--index-col", "date", "--pre", "0,60", "--post", "60,90", "--n-sims", "100", "--no-standardize")
	require.NoError(t, err)
	assert.Contains(t, out, "Causal impact analysis")
	assert.Contains(t, out, "Absolute effect")
	assert.Contains(t, out, "Posterior tail-area probability p:")
}

func TestExitCode(t *testing.T) {
	path := writeSeries(t, false)

	_, err := execute(t, "analyze", path, "--pre", "0,2", "--post", "60,90")
	assert.Equal(t, exitValidation, exitCode(err))

	_, err = execute(t, "analyze", filepath.Join(t.TempDir(), "none.csv"), "--pre", "0,60", "--post", "60,90")
	assert.Equal(t, exitFailure, exitCode(err))

	assert.Equal(t, exitFitting, exitCode(errors.FittingFailure(fmt.Errorf("optimizer stalled"))))
	assert.Equal(t, exitInternal, exitCode(errors.InternalError("broken state")))
}

func TestAnalyzeReportsValidationErrors(t *testing.T) {
	path := writeSeries(t, false)

	_, err := execute(t, "analyze", path, "--pre", "0,2", "--post", "60,90")
	assert.EqualError(t, err, "pre_period must span at least 3 time points.")

	_, err = execute(t, "analyze", path, "--pre", "2018-01-01,2018-01-10", "--post", "2018-01-11,2018-01-20")
	assert.EqualError(t, err, "If input period is string then input data must have index of type DatetimeIndex.")

	_, err = execute(t, "analyze", path, "--pre", "0,60", "--post", "60,900")
	assert.EqualError(t, err, "900 is not preset in data index.")

	_, err = execute(t, "analyze", path, "--pre", "0,60", "--post", "60,90", "--alpha", "0", "--json")
	assert.EqualError(t, err, "--alpha must be greater than 0, got 0")

	_, err = execute(t, "analyze", writeSeries(t, true), "--pre", "0,60", "--post", "60,90")
	assert.ErrorContains(t, err, "is not numeric")

	_, err = execute(t, "analyze", filepath.Join(t.TempDir(), "none.csv"), "--pre", "0,60", "--post", "60,90")
	assert.ErrorContains(t, err, "file not found")
}
