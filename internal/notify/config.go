package notify

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tarefo/tarefo/internal/storage"
)

// ConfigKey is the key-value entry holding the reminder settings.
const ConfigKey = "notificacao_config"

// MaxLeadDays caps how far ahead a reminder may fire.
const MaxLeadDays = 30

var timeOfDayRe = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// Config holds the user's reminder settings.
type Config struct {
	Enabled  bool   `json:"enabled"`
	LeadDays int    `json:"lead_days"`
	Time     string `json:"time"`
}

// DefaultConfig returns the settings used before the user changes
// anything: reminders on, one day ahead, at 09:00.
func DefaultConfig() Config {
	return Config{Enabled: true, LeadDays: 1, Time: "09:00"}
}

// Validate checks the settings ranges.
func (c Config) Validate() error {
	if c.LeadDays < 0 || c.LeadDays > MaxLeadDays {
		return fmt.Errorf("lead days must be between 0 and %d, got %d", MaxLeadDays, c.LeadDays)
	}
	if !timeOfDayRe.MatchString(c.Time) {
		return fmt.Errorf("time must be HH:MM, got %q", c.Time)
	}
	return nil
}

// TimeOfDay parses the HH:MM field.
func (c Config) TimeOfDay() (hour, minute int) {
	fmt.Sscanf(c.Time, "%d:%d", &hour, &minute)
	return hour, minute
}

// At places the configured time of day on the given date, in the
// date's location.
func (c Config) At(date time.Time) time.Time {
	hour, minute := c.TimeOfDay()
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location())
}

// ConfigStore persists the reminder settings in the key-value store.
type ConfigStore struct {
	mu     sync.RWMutex
	store  storage.Store
	logger *log.Logger
	config Config
}

// NewConfigStore loads the settings, falling back to defaults when the
// entry is missing or invalid. Defaults are not written back until the
// user changes something.
func NewConfigStore(st storage.Store, logger *log.Logger) *ConfigStore {
	if logger == nil {
		logger = log.Default()
	}
	s := &ConfigStore{store: st, logger: logger, config: DefaultConfig()}
	s.load()
	return s
}

func (s *ConfigStore) load() {
	data, ok, err := s.store.Get(ConfigKey)
	if err != nil {
		s.logger.Error("load notification config", "err", err)
		return
	}
	if !ok {
		return
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		s.logger.Warn("notification config is corrupt, using defaults", "err", err)
		return
	}
	if err := cfg.Validate(); err != nil {
		s.logger.Warn("notification config is invalid, using defaults", "err", err)
		return
	}
	s.config = cfg
}

// Get returns the current settings.
func (s *ConfigStore) Get() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.config
}

// Set validates and persists new settings.
func (s *ConfigStore) Set(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal notification config: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Put(ConfigKey, data); err != nil {
		return fmt.Errorf("save notification config: %w", err)
	}
	s.config = cfg
	return nil
}

// SetEnabled flips the reminder switch, keeping the other settings.
func (s *ConfigStore) SetEnabled(enabled bool) error {
	cfg := s.Get()
	cfg.Enabled = enabled
	return s.Set(cfg)
}
