package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"twcli/config"
	"twcli/storage"
	"twcli/teamwork"
)

const userAgent = "twcli"

// Test seams for the Teamwork transport.
var (
	teamworkBaseURL  string
	teamworkHTTPDoer interface {
		Do(*http.Request) (*http.Response, error)
	}
)

func resolveConfigPath() (string, error) {
	return config.ResolvePath(cfgFile)
}

// loadConfig loads the active configuration. A missing file is reported as
// config.ErrNotConfigured so Execute can print the setup hint.
func loadConfig() (*config.Config, string, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// loadConfigOrEmpty returns the existing configuration, or an empty one if
// none has been written yet.
func loadConfigOrEmpty() (config.Config, string, error) {
	cfg, path, err := loadConfig()
	if err == nil {
		return *cfg, path, nil
	}
	if errors.Is(err, config.ErrNotConfigured) {
		return config.New("", ""), path, nil
	}
	return config.Config{}, path, err
}

func newTeamworkClient(cfg *config.Config) (*teamwork.HTTPClient, error) {
	clientCfg := teamwork.ClientConfig{
		CompanyID: cfg.CompanyID,
		Token:     cfg.Token,
		BaseURL:   teamworkBaseURL,
		UserAgent: userAgent,
	}
	if teamworkHTTPDoer != nil {
		clientCfg.HTTPClient = teamworkHTTPDoer
	}
	client, err := teamwork.NewClient(clientCfg)
	if err != nil {
		return nil, fmt.Errorf("create teamwork client: %w", err)
	}
	return client, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := context.Background()
	if cmd != nil && cmd.Context() != nil {
		parent = cmd.Context()
	}
	if apiTimeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, apiTimeout)
}

func resolveDBPath() (string, error) {
	if strings.TrimSpace(dbFile) != "" {
		return dbFile, nil
	}
	return storage.DefaultPath()
}

func openJournal() (*storage.SQLiteStore, error) {
	path, err := resolveDBPath()
	if err != nil {
		return nil, err
	}
	return storage.OpenSQLite(path)
}

func ensureParentDir(path string, mode os.FileMode) error {
	parent := filepath.Dir(path)
	if err := os.MkdirAll(parent, mode); err != nil {
		return fmt.Errorf("create directory %q: %w", parent, err)
	}
	return nil
}
