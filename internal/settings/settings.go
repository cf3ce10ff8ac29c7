// Package settings persists dashboard preferences between runs.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cristianoliveira/flightdeck/internal/config"
	"github.com/cristianoliveira/flightdeck/internal/domain"
	"github.com/cristianoliveira/flightdeck/internal/livequery"
)

// FileName is the settings file inside config_dir.
const FileName = "settings.json"

// Filter is the remembered filter selection. Empty means All.
type Filter struct {
	Status     string `json:"status"`
	Airline    string `json:"airline"`
	FlightType string `json:"flightType"`
}

// Settings holds dashboard preferences persisted to disk.
//
// JSON Schema:
//
//	{
//	  "filters": {"status": "", "airline": "", "flightType": ""},
//	  "limit": 10
//	}
//
// Search text and page are not remembered; every run starts on page 1.
type Settings struct {
	Filters Filter `json:"filters"`
	Limit   int    `json:"limit"`
}

// DefaultSettings returns settings with all default values.
func DefaultSettings() *Settings {
	return &Settings{Limit: config.GetInt("default_page_size", domain.PageSizes[0])}
}

// FromFilter captures the persistent part of f.
func FromFilter(f livequery.Filter) *Settings {
	return &Settings{
		Filters: Filter{Status: f.Status, Airline: f.Airline, FlightType: f.FlightType},
		Limit:   f.Limit,
	}
}

// Filter returns the first-page filter these settings describe.
func (s *Settings) Filter() livequery.Filter {
	f := livequery.DefaultFilter(s.Limit)
	f.Status = s.Filters.Status
	f.Airline = s.Filters.Airline
	f.FlightType = s.Filters.FlightType
	return f
}

// Path returns the settings file location, or "" when config_dir is unset.
func Path() string {
	dir := config.Get("config_dir", "")
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, FileName)
}

// Load reads settings from path. A missing file yields the defaults.
func Load(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file: %w", err)
	}

	settings := DefaultSettings()
	if err := json.Unmarshal(data, settings); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	if err := validate(settings); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return settings, nil
}

// Save writes settings to path, creating its directory.
func Save(path string, settings *Settings) error {
	if err := validate(settings); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), config.FileModeDir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.WriteFile(path, data, config.FileModeFile); err != nil {
		return fmt.Errorf("failed to write settings file: %w", err)
	}
	return nil
}

// validate checks the values against the option sets the dashboard offers.
func validate(s *Settings) error {
	if !domain.IsPageSize(s.Limit) {
		return fmt.Errorf("invalid limit: %d", s.Limit)
	}
	check := func(name, v string, options []string) error {
		if v == "" {
			return nil
		}
		for _, o := range options {
			if o == v && o != domain.OptionAll {
				return nil
			}
		}
		return fmt.Errorf("invalid %s filter: %s", name, v)
	}
	if err := check("status", s.Filters.Status, domain.StatusFilterOptions); err != nil {
		return err
	}
	if err := check("airline", s.Filters.Airline, domain.AirlineOptions); err != nil {
		return err
	}
	return check("flightType", s.Filters.FlightType, domain.FlightTypeOptions)
}
