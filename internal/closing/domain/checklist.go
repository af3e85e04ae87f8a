package domain

import (
	"github.com/spf13/viper"
)

// Step codes with a registered executor.
const (
	StepVerifyJournals  = "verify_journals"
	StepClosePeriods    = "close_periods"
	StepPostResultEntry = "post_result_entry"
	StepRolloverSeries  = "rollover_series"
	StepCloseYear       = "close_year"
)

type StepDef struct {
	Code     string `mapstructure:"code" json:"code"`
	Name     string `mapstructure:"name" json:"name"`
	Required bool   `mapstructure:"required" json:"required"`
}

// DefaultChecklist is the built-in closing sequence. Only the series
// rollover is optional.
func DefaultChecklist() []StepDef {
	return []StepDef{
		{Code: StepVerifyJournals, Name: "Verify journal entries", Required: true},
		{Code: StepClosePeriods, Name: "Close open periods", Required: true},
		{Code: StepPostResultEntry, Name: "Post year-end result entry", Required: true},
		{Code: StepRolloverSeries, Name: "Roll over numbering series", Required: false},
		{Code: StepCloseYear, Name: "Close fiscal year", Required: true},
	}
}

// LoadChecklist reads a YAML checklist override. Every code must map to
// a registered executor.
func LoadChecklist(path string) ([]StepDef, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg struct {
		Steps []StepDef `mapstructure:"steps"`
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if len(cfg.Steps) == 0 {
		return nil, ErrEmptyChecklist
	}

	known := map[string]bool{
		StepVerifyJournals:  true,
		StepClosePeriods:    true,
		StepPostResultEntry: true,
		StepRolloverSeries:  true,
		StepCloseYear:       true,
	}
	for _, step := range cfg.Steps {
		if !known[step.Code] {
			return nil, ErrUnknownStepCode
		}
	}
	return cfg.Steps, nil
}
