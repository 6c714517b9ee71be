package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	KeyCompanyID      = "company_id"
	KeyToken          = "token"
	KeyProjectAliases = "project_aliases"
	KeyTimesOff       = "times_off"
	KeyStarredTasks   = "starred_tasks"

	EnvPrefix       = "TWCLI"
	DefaultFileName = ".teamwork.json"
)

// ErrNotConfigured means no credential file exists yet.
var ErrNotConfigured = errors.New("no config file found")

type Config struct {
	CompanyID      string         `mapstructure:"company_id" json:"company_id" yaml:"company_id" validate:"required"`
	Token          string         `mapstructure:"token" json:"token" yaml:"token" validate:"required"`
	ProjectAliases []ProjectAlias `mapstructure:"project_aliases" json:"project_aliases" yaml:"project_aliases" validate:"dive"`
	TimesOff       []TimeOff      `mapstructure:"times_off" json:"times_off" yaml:"times_off" validate:"dive"`
	StarredTasks   []string       `mapstructure:"starred_tasks" json:"starred_tasks" yaml:"starred_tasks" validate:"dive,required"`
}

type ProjectAlias struct {
	ProjectID string `mapstructure:"project_id" json:"project_id" yaml:"project_id" validate:"required"`
	Alias     string `mapstructure:"alias" json:"alias" yaml:"alias" validate:"required"`
}

// TimeOff is a locally declared reduction of a day's quota. Date is kept as
// the YYYY-MM-DD string it was stored with.
type TimeOff struct {
	Date  string `mapstructure:"date" json:"date" yaml:"date" validate:"required,datetime=2006-01-02"`
	Hours int    `mapstructure:"hours" json:"hours" yaml:"hours" validate:"gte=0,lte=24"`
}

// DefaultPath returns $HOME/.teamwork.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultFileName), nil
}

// ResolvePath returns explicit when set, otherwise DefaultPath.
func ResolvePath(explicit string) (string, error) {
	if strings.TrimSpace(explicit) != "" {
		return explicit, nil
	}
	return DefaultPath()
}

// Load reads and validates the config file at path. A missing file yields
// ErrNotConfigured. TWCLI_COMPANY_ID and TWCLI_TOKEN override file values.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrNotConfigured, path)
		}
		return nil, fmt.Errorf("stat config file: %w", err)
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return loadAndValidateFromViper(v)
}

// ValidateJSONContent validates configuration from raw JSON content.
func ValidateJSONContent(content []byte) (*Config, error) {
	v := newViper()
	if err := v.ReadConfig(bytes.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config content: %w", err)
	}
	return loadAndValidateFromViper(v)
}

// Save writes cfg wholesale to path.
func Save(path string, cfg Config) error {
	if err := Validate(cfg); err != nil {
		return err
	}
	payload, err := json.MarshalIndent(cfg.normalized(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, append(payload, '\n'), 0o600); err != nil {
		return fmt.Errorf("write config file %s: %w", path, err)
	}
	return nil
}

func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// New returns a config holding only credentials.
func New(companyID, token string) Config {
	return Config{
		CompanyID: strings.TrimSpace(companyID),
		Token:     strings.TrimSpace(token),
	}.normalized()
}

// WithCredentials replaces company and token, keeping everything else.
func (c Config) WithCredentials(companyID, token string) Config {
	out := c.clone()
	out.CompanyID = strings.TrimSpace(companyID)
	out.Token = strings.TrimSpace(token)
	return out
}

// WithTimeOff replaces any declaration for date. Zero hours removes it.
func (c Config) WithTimeOff(date string, hours int) Config {
	out := c.clone()
	kept := make([]TimeOff, 0, len(out.TimesOff)+1)
	for _, item := range out.TimesOff {
		if item.Date == date {
			continue
		}
		kept = append(kept, item)
	}
	if hours > 0 {
		kept = append(kept, TimeOff{Date: date, Hours: hours})
	}
	out.TimesOff = kept
	return out
}

// WithAlias sets the alias of a project, replacing a previous one.
func (c Config) WithAlias(projectID, alias string) Config {
	out := c.clone()
	kept := make([]ProjectAlias, 0, len(out.ProjectAliases)+1)
	for _, item := range out.ProjectAliases {
		if item.ProjectID == projectID {
			continue
		}
		kept = append(kept, item)
	}
	out.ProjectAliases = append(kept, ProjectAlias{ProjectID: projectID, Alias: alias})
	return out
}

func (c Config) WithStarredTask(taskID string) Config {
	out := c.clone()
	if out.IsStarred(taskID) {
		return out
	}
	out.StarredTasks = append(out.StarredTasks, taskID)
	return out
}

func (c Config) WithoutStarredTask(taskID string) Config {
	out := c.clone()
	kept := make([]string, 0, len(out.StarredTasks))
	for _, id := range out.StarredTasks {
		if id != taskID {
			kept = append(kept, id)
		}
	}
	out.StarredTasks = kept
	return out
}

func (c Config) IsStarred(taskID string) bool {
	for _, id := range c.StarredTasks {
		if id == taskID {
			return true
		}
	}
	return false
}

// AliasFor returns the alias declared for projectID.
func (c Config) AliasFor(projectID string) (string, bool) {
	for _, item := range c.ProjectAliases {
		if item.ProjectID == projectID {
			return item.Alias, true
		}
	}
	return "", false
}

// TimesOffMatching returns declarations whose date starts with prefix,
// newest first.
func (c Config) TimesOffMatching(prefix string) []TimeOff {
	out := make([]TimeOff, 0, len(c.TimesOff))
	for _, item := range c.TimesOff {
		if strings.HasPrefix(item.Date, prefix) {
			out = append(out, item)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// MaskedToken keeps the last four characters of the token.
func (c Config) MaskedToken() string {
	if len(c.Token) <= 4 {
		return strings.Repeat("*", len(c.Token))
	}
	return strings.Repeat("*", len(c.Token)-4) + c.Token[len(c.Token)-4:]
}

func (c Config) clone() Config {
	out := c
	out.ProjectAliases = append([]ProjectAlias(nil), c.ProjectAliases...)
	out.TimesOff = append([]TimeOff(nil), c.TimesOff...)
	out.StarredTasks = append([]string(nil), c.StarredTasks...)
	return out.normalized()
}

func (c Config) normalized() Config {
	if c.ProjectAliases == nil {
		c.ProjectAliases = []ProjectAlias{}
	}
	if c.TimesOff == nil {
		c.TimesOff = []TimeOff{}
	}
	if c.StarredTasks == nil {
		c.StarredTasks = []string{}
	}
	return c
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	_ = v.BindEnv(KeyCompanyID)
	_ = v.BindEnv(KeyToken)
	v.SetDefault(KeyProjectAliases, []map[string]any{})
	v.SetDefault(KeyTimesOff, []map[string]any{})
	v.SetDefault(KeyStarredTasks, []string{})
	return v
}

func loadAndValidateFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	cfg = cfg.normalized()

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ExampleJSON returns a template config with placeholder credentials.
func ExampleJSON() string {
	return `{
  "company_id": "mycompany",
  "token": "twp_replace_me",
  "project_aliases": [],
  "times_off": [],
  "starred_tasks": []
}
`
}
