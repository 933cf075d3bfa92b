package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Port string `env:"PORT" envDefault:"8088"`

	MapPackageDir string `env:"MAP_PACKAGE_DIR" envDefault:"map-package"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	// HosterTimeoutSeconds bounds the auth-status check and the submission
	// call. There is no retry policy — a failed call waits for the user.
	HosterTimeoutSeconds int `env:"HOSTER_TIMEOUT_SECONDS" envDefault:"10"`

	// ProposalPageUrl is where the OAuth callback sends the browser back to:
	// the editor page for a proposal, not the bearer-authenticated API route.
	// The proposal id is appended.
	ProposalPageUrl string `env:"PROPOSAL_PAGE_URL" envDefault:"/editor/proposals/"`

	Hoster HosterConfig
}

// HosterConfig configures the code-hosting provider. An empty Name means no
// hoster is configured and the edit workflow degrades to manual
// instructions.
type HosterConfig struct {
	Name         string   `env:"HOSTER_NAME"`
	Title        string   `env:"HOSTER_TITLE"`
	BaseUrl      string   `env:"HOSTER_BASE_URL"`
	ApiUrl       string   `env:"HOSTER_API_URL"`
	ClientId     string   `env:"HOSTER_CLIENT_ID"`
	ClientSecret string   `env:"HOSTER_CLIENT_SECRET"`
	RedirectUrl  string   `env:"HOSTER_REDIRECT_URL"`
	Scopes       []string `env:"HOSTER_SCOPES" envSeparator:","`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	if cfg.Hoster.Name != "" && (cfg.Hoster.ClientId == "" || cfg.Hoster.ClientSecret == "") {
		return nil, fmt.Errorf("hoster %q configured without oauth client credentials", cfg.Hoster.Name)
	}

	return cfg, nil
}
