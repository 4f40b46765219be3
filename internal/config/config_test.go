package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATASET_PATH", "survey.csv")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "survey.csv", cfg.Input.Path)
	assert.Equal(t, "Sheet1", cfg.Input.Sheet)
	assert.Equal(t, ',', cfg.Input.Delimiter)
	assert.Equal(t, '.', cfg.Input.DecimalMark)
	assert.Empty(t, cfg.Input.MissingSentinels)
	assert.Equal(t, "-", cfg.Output.ReportPath)
	assert.Empty(t, cfg.Output.ChartsPath)
}

func TestLoad_EuropeanLocale(t *testing.T) {
	t.Setenv("DATASET_PATH", "survey.csv")
	t.Setenv("DELIMITER", ";")
	t.Setenv("DECIMAL_MARK", ",")
	t.Setenv("MISSING_SENTINELS", ";NA;n.v.t.")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ';', cfg.Input.Delimiter)
	assert.Equal(t, ',', cfg.Input.DecimalMark)
	assert.Equal(t, []string{"", "NA", "n.v.t."}, cfg.Input.MissingSentinels)
}

func TestLoad_MissingPathFails(t *testing.T) {
	t.Setenv("DATASET_PATH", "")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate_RejectsBadDecimalMark(t *testing.T) {
	cfg := &Config{Input: InputConfig{Path: "x.csv", Delimiter: ',', DecimalMark: ';'}}
	require.Error(t, cfg.Validate())
}

func TestValidate_RejectsDelimiterEqualDecimalMark(t *testing.T) {
	cfg := &Config{Input: InputConfig{Path: "x.csv", Delimiter: ',', DecimalMark: ','}}
	require.Error(t, cfg.Validate())
}
