// Package strategy defines the ordered escalation profiles the orchestrator
// walks through when a target resists automation.
package strategy

import (
	"fmt"
	"time"

	"github.com/silversurf/auditor/internal/core/domain"
)

// Profile is one escalation level of anti-detection effort. Immutable after
// catalog construction.
type Profile struct {
	Name              string
	OverallTimeout    time.Duration
	NavigationTimeout time.Duration
	// LaunchArguments are Chromium switches without the leading dashes.
	LaunchArguments    []string
	UserAgent          string
	IdentityHeaders    map[string]string
	Viewport           domain.Viewport
	ContentSettleWait  time.Duration
	UsesEvasionScripts bool
}

// Override adjusts the timing budget of a named profile from configuration.
type Override struct {
	Name              string        `yaml:"name"`
	OverallTimeout    time.Duration `yaml:"overall_timeout"`
	ContentSettleWait time.Duration `yaml:"content_settle_wait"`
}

// Catalog is the ordered, read-only table of escalation profiles.
// Safe for concurrent use.
type Catalog struct {
	profiles []Profile
}

// Profiles returns the escalation order, least to most aggressive.
func (c *Catalog) Profiles() []Profile { return c.profiles }

// Len reports the number of profiles.
func (c *Catalog) Len() int { return len(c.profiles) }

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

var baseLaunchArguments = []string{
	"no-sandbox",
	"disable-dev-shm-usage",
	"disable-gpu",
}

// defaultProfiles orders cheap, fast attempts first so well-behaved sites
// resolve quickly; aggressive profiles are reserved for sites that resist.
func defaultProfiles() []Profile {
	return []Profile{
		{
			Name:              "basic",
			OverallTimeout:    60 * time.Second,
			NavigationTimeout: 30 * time.Second,
			LaunchArguments:   baseLaunchArguments,
			Viewport:          domain.Viewport{Width: 1920, Height: 1080},
			ContentSettleWait: 2 * time.Second,
		},
		{
			Name:              "spoofed",
			OverallTimeout:    90 * time.Second,
			NavigationTimeout: 45 * time.Second,
			LaunchArguments: append(append([]string{}, baseLaunchArguments...),
				"disable-blink-features=AutomationControlled",
			),
			UserAgent: chromeUA,
			IdentityHeaders: map[string]string{
				"Accept-Language": "en-US,en;q=0.9",
				"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
			},
			Viewport:          domain.Viewport{Width: 1920, Height: 1080},
			ContentSettleWait: 3 * time.Second,
		},
		{
			Name:              "stealth",
			OverallTimeout:    120 * time.Second,
			NavigationTimeout: 60 * time.Second,
			LaunchArguments: append(append([]string{}, baseLaunchArguments...),
				"disable-blink-features=AutomationControlled",
				"disable-infobars",
				"window-size=1920,1080",
				"start-maximized",
			),
			UserAgent: chromeUA,
			IdentityHeaders: map[string]string{
				"Accept-Language":           "en-US,en;q=0.9",
				"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
				"Sec-Ch-Ua":                 `"Google Chrome";v="131", "Chromium";v="131", "Not_A Brand";v="24"`,
				"Sec-Ch-Ua-Mobile":          "?0",
				"Sec-Ch-Ua-Platform":        `"Windows"`,
				"Upgrade-Insecure-Requests": "1",
			},
			Viewport:           domain.Viewport{Width: 1920, Height: 1080},
			ContentSettleWait:  5 * time.Second,
			UsesEvasionScripts: true,
		},
	}
}

// NewCatalog builds the default catalog, applies overrides, and validates.
func NewCatalog(overrides ...Override) (*Catalog, error) {
	profiles := defaultProfiles()

	for _, o := range overrides {
		found := false
		for i := range profiles {
			if profiles[i].Name != o.Name {
				continue
			}
			found = true
			if o.OverallTimeout > 0 {
				profiles[i].OverallTimeout = o.OverallTimeout
			}
			if o.ContentSettleWait > 0 {
				profiles[i].ContentSettleWait = o.ContentSettleWait
			}
		}
		if !found {
			return nil, fmt.Errorf("strategy override for unknown profile %q", o.Name)
		}
	}

	c := &Catalog{profiles: profiles}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewCustomCatalog builds a catalog from caller-supplied profiles. Intended
// for injecting synthetic profiles with tiny timing budgets.
func NewCustomCatalog(profiles []Profile) (*Catalog, error) {
	c := &Catalog{profiles: append([]Profile{}, profiles...)}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) validate() error {
	if len(c.profiles) == 0 {
		return fmt.Errorf("catalog has no profiles")
	}
	seen := make(map[string]bool, len(c.profiles))
	for i, p := range c.profiles {
		if p.Name == "" {
			return fmt.Errorf("profile %d has no name", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate profile name %q", p.Name)
		}
		seen[p.Name] = true
		if p.OverallTimeout <= 0 {
			return fmt.Errorf("profile %q has non-positive overall timeout", p.Name)
		}
		if p.NavigationTimeout <= 0 || p.NavigationTimeout >= p.OverallTimeout {
			return fmt.Errorf("profile %q navigation timeout must be positive and below the overall timeout", p.Name)
		}
		if p.ContentSettleWait < 0 {
			return fmt.Errorf("profile %q has negative settle wait", p.Name)
		}
	}
	return nil
}
