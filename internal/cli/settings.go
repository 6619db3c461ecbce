package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/alphabot-ai/qna/internal/client"
)

// Settings is the client state persisted between invocations.
type Settings struct {
	BaseURL string `json:"base_url"`
	Email   string `json:"email,omitempty"`
	Token   string `json:"token,omitempty"`
}

func (o *RootOptions) settingsPath() string {
	if o.ConfigPath != "" {
		return o.ConfigPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".qna", "config.json")
	}
	return filepath.Join(home, ".qna", "config.json")
}

// loadSettings returns the saved settings, or zero settings when none exist.
func (o *RootOptions) loadSettings() (Settings, error) {
	data, err := os.ReadFile(o.settingsPath())
	if errors.Is(err, fs.ErrNotExist) {
		return Settings{}, nil
	}
	if err != nil {
		return Settings{}, err
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", o.settingsPath(), err)
	}
	return s, nil
}

func (o *RootOptions) saveSettings(s Settings) error {
	path := o.settingsPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// newClient builds a client from flags, falling back to saved settings.
func (o *RootOptions) newClient() (*client.Client, error) {
	s, err := o.loadSettings()
	if err != nil {
		return nil, err
	}
	baseURL := firstNonEmpty(o.URL, s.BaseURL, defaultBaseURL)
	c := client.New(strings.TrimSuffix(baseURL, "/"))
	c.Token = firstNonEmpty(o.Token, s.Token)
	return c, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
