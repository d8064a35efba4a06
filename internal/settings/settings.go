// Package settings holds the persisted product settings: appearance,
// language, WebDAV sync and AI provider configuration.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	ErrUnknownKey   = errors.New("unknown settings key")
	ErrInvalidValue = errors.New("invalid settings value")
)

// Theme values.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Language values.
const (
	LangZhCN = "zh-CN"
	LangZhTW = "zh-TW"
	LangEN   = "en"
	LangJA   = "ja"
)

// Sync intervals.
const (
	IntervalHourly   = "hourly"
	IntervalDaily    = "daily"
	IntervalOnChange = "on_change"
	IntervalOnOpen   = "on_open"
)

// Sync strategies. Only recorded; sync always overwrites the remote.
const (
	StrategyLocalToRemote = "local_to_remote"
	StrategyRemoteToLocal = "remote_to_local"
	StrategyMerge         = "merge"
)

// AI providers. ProviderCustom is any OpenAI-compatible endpoint.
const (
	ProviderGemini = "gemini"
	ProviderCustom = "custom"
)

// WebDAV is the remote endpoint used for backup sync.
type WebDAV struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"`
	URL      string `json:"url" yaml:"url"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"password" yaml:"password"`
}

// Sync configures when a sync target is written.
type Sync struct {
	AutoSync     bool   `json:"autoSync" yaml:"autoSync"`
	Interval     string `json:"interval" yaml:"interval"`
	LastSyncTime int64  `json:"lastSyncTime,omitempty" yaml:"lastSyncTime,omitempty"`
	Strategy     string `json:"strategy" yaml:"strategy"`
}

// Settings is the settings document stored under the ai_bm_settings key.
type Settings struct {
	Theme            string `json:"theme" yaml:"theme"`
	CustomBackground string `json:"customBackground,omitempty" yaml:"customBackground,omitempty"`
	Language         string `json:"language" yaml:"language"`
	WebDAV           WebDAV `json:"webDav" yaml:"webDav"`
	LocalSync        Sync   `json:"localSync" yaml:"localSync"`
	WebDAVSync       Sync   `json:"webDavSync" yaml:"webDavSync"`
	AIProvider       string `json:"aiProvider" yaml:"aiProvider"`
	CustomAPIKey     string `json:"customApiKey,omitempty" yaml:"customApiKey,omitempty"`
	AIBaseURL        string `json:"aiBaseUrl,omitempty" yaml:"aiBaseUrl,omitempty"`
	AIModel          string `json:"aiModel,omitempty" yaml:"aiModel,omitempty"`
}

// Defaults returns the settings used on first start.
func Defaults() Settings {
	return Settings{
		Theme:      ThemeSystem,
		Language:   LangZhCN,
		LocalSync:  Sync{Interval: IntervalDaily, Strategy: StrategyMerge},
		WebDAVSync: Sync{Interval: IntervalDaily, Strategy: StrategyMerge},
		AIProvider: ProviderGemini,
		AIModel:    "gemini-2.5-flash",
	}
}

// Decode overlays a stored settings document on the defaults. Fields the
// document does not mention keep their default values.
func Decode(data []byte) (Settings, error) {
	s := Defaults()
	if len(data) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return Defaults(), fmt.Errorf("decode settings: %w", err)
	}
	return s, nil
}

// Validate checks every enumerated field.
func (s Settings) Validate() error {
	checks := []struct {
		key   string
		value string
		allow []string
	}{
		{"theme", s.Theme, []string{ThemeLight, ThemeDark, ThemeSystem}},
		{"language", s.Language, []string{LangZhCN, LangZhTW, LangEN, LangJA}},
		{"aiProvider", s.AIProvider, []string{ProviderGemini, ProviderCustom}},
		{"localSync.interval", s.LocalSync.Interval, intervals},
		{"localSync.strategy", s.LocalSync.Strategy, strategies},
		{"webDavSync.interval", s.WebDAVSync.Interval, intervals},
		{"webDavSync.strategy", s.WebDAVSync.Strategy, strategies},
	}
	for _, c := range checks {
		if !contains(c.allow, c.value) {
			return fmt.Errorf("%w: %s=%q (want one of %s)", ErrInvalidValue, c.key, c.value, strings.Join(c.allow, ", "))
		}
	}
	return nil
}

var (
	intervals  = []string{IntervalHourly, IntervalDaily, IntervalOnChange, IntervalOnOpen}
	strategies = []string{StrategyLocalToRemote, StrategyRemoteToLocal, StrategyMerge}
)

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Keys lists the dotted keys accepted by Set.
func Keys() []string {
	return []string{
		"theme", "language", "customBackground",
		"webDav.enabled", "webDav.url", "webDav.username", "webDav.password",
		"localSync.autoSync", "localSync.interval", "localSync.strategy",
		"webDavSync.autoSync", "webDavSync.interval", "webDavSync.strategy",
		"aiProvider", "customApiKey", "aiBaseUrl", "aiModel",
	}
}

// Set assigns a value addressed by its dotted JSON key, e.g.
// "webDavSync.interval". The result is validated.
func (s *Settings) Set(key, value string) error {
	next := *s
	var err error

	switch key {
	case "theme":
		next.Theme = value
	case "language":
		next.Language = value
	case "customBackground":
		next.CustomBackground = value
	case "webDav.enabled":
		next.WebDAV.Enabled, err = parseBool(key, value)
	case "webDav.url":
		next.WebDAV.URL = value
	case "webDav.username":
		next.WebDAV.Username = value
	case "webDav.password":
		next.WebDAV.Password = value
	case "localSync.autoSync":
		next.LocalSync.AutoSync, err = parseBool(key, value)
	case "localSync.interval":
		next.LocalSync.Interval = value
	case "localSync.strategy":
		next.LocalSync.Strategy = value
	case "webDavSync.autoSync":
		next.WebDAVSync.AutoSync, err = parseBool(key, value)
	case "webDavSync.interval":
		next.WebDAVSync.Interval = value
	case "webDavSync.strategy":
		next.WebDAVSync.Strategy = value
	case "aiProvider":
		next.AIProvider = value
	case "customApiKey":
		next.CustomAPIKey = value
	case "aiBaseUrl":
		next.AIBaseURL = value
	case "aiModel":
		next.AIModel = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err != nil {
		return err
	}
	if err := next.Validate(); err != nil {
		return err
	}
	*s = next
	return nil
}

func parseBool(key, value string) (bool, error) {
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalidValue, key, value)
	}
	return b, nil
}

// Redacted returns a copy with secrets masked, for display.
func (s Settings) Redacted() Settings {
	if s.WebDAV.Password != "" {
		s.WebDAV.Password = "********"
	}
	if s.CustomAPIKey != "" {
		s.CustomAPIKey = mask(s.CustomAPIKey)
	}
	return s
}

func mask(secret string) string {
	if len(secret) <= 8 {
		return "********"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

// YAML renders the settings for display.
func (s Settings) YAML() (string, error) {
	out, err := yaml.Marshal(s)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
