package strategy

import (
	"testing"
	"time"

	"github.com/silversurf/auditor/internal/core/domain"
)

func TestNewCatalog_DefaultOrder(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	want := []string{"basic", "spoofed", "stealth"}
	profiles := c.Profiles()
	if len(profiles) != len(want) {
		t.Fatalf("got %d profiles, want %d", len(profiles), len(want))
	}
	for i, name := range want {
		if profiles[i].Name != name {
			t.Errorf("profile[%d] = %q, want %q", i, profiles[i].Name, name)
		}
	}

	// Escalation order: each level carries a larger timing budget.
	for i := 1; i < len(profiles); i++ {
		if profiles[i].OverallTimeout <= profiles[i-1].OverallTimeout {
			t.Errorf("profile %q overall timeout %v not above %q's %v",
				profiles[i].Name, profiles[i].OverallTimeout,
				profiles[i-1].Name, profiles[i-1].OverallTimeout)
		}
	}
}

func TestNewCatalog_ProfileShape(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	for _, p := range c.Profiles() {
		if p.NavigationTimeout >= p.OverallTimeout {
			t.Errorf("profile %q: navigation timeout %v >= overall %v", p.Name, p.NavigationTimeout, p.OverallTimeout)
		}
		if len(p.LaunchArguments) == 0 {
			t.Errorf("profile %q has no launch arguments", p.Name)
		}
	}

	profiles := c.Profiles()
	basic, stealth := profiles[0], profiles[2]
	if basic.UsesEvasionScripts {
		t.Error("basic profile should not inject evasion scripts")
	}
	if !stealth.UsesEvasionScripts {
		t.Error("stealth profile should inject evasion scripts")
	}
	if basic.UserAgent != "" {
		t.Errorf("basic profile should use the engine default UA, got %q", basic.UserAgent)
	}
	if stealth.UserAgent == "" {
		t.Error("stealth profile should pin a user agent")
	}
	if len(stealth.IdentityHeaders) == 0 {
		t.Error("stealth profile should carry identity headers")
	}
}

func TestNewCatalog_Overrides(t *testing.T) {
	c, err := NewCatalog(Override{
		Name:              "spoofed",
		OverallTimeout:    120 * time.Second,
		ContentSettleWait: time.Second,
	})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	var spoofed Profile
	for _, p := range c.Profiles() {
		if p.Name == "spoofed" {
			spoofed = p
		}
	}
	if spoofed.OverallTimeout != 120*time.Second {
		t.Errorf("OverallTimeout = %v, want 120s", spoofed.OverallTimeout)
	}
	if spoofed.ContentSettleWait != time.Second {
		t.Errorf("ContentSettleWait = %v, want 1s", spoofed.ContentSettleWait)
	}
	// Untouched fields survive the override.
	if spoofed.NavigationTimeout != 45*time.Second {
		t.Errorf("NavigationTimeout = %v, want the default 45s", spoofed.NavigationTimeout)
	}
	if spoofed.UserAgent == "" {
		t.Error("UserAgent cleared by override")
	}
}

func TestNewCatalog_OverrideErrors(t *testing.T) {
	if _, err := NewCatalog(Override{Name: "nope"}); err == nil {
		t.Error("override for unknown profile should fail")
	}
	// An override that drops the overall timeout below the navigation
	// timeout breaks the budget invariant.
	if _, err := NewCatalog(Override{Name: "basic", OverallTimeout: 10 * time.Second}); err == nil {
		t.Error("override leaving navigation timeout above overall should fail")
	}
}

func TestNewCustomCatalog_Validation(t *testing.T) {
	valid := Profile{
		Name:              "tiny",
		OverallTimeout:    50 * time.Millisecond,
		NavigationTimeout: 20 * time.Millisecond,
		Viewport:          domain.Viewport{Width: 800, Height: 600},
	}

	tests := []struct {
		name     string
		profiles []Profile
		wantErr  bool
	}{
		{"valid", []Profile{valid}, false},
		{"empty", nil, true},
		{"unnamed", []Profile{{OverallTimeout: time.Second, NavigationTimeout: time.Millisecond}}, true},
		{"duplicate", []Profile{valid, valid}, true},
		{
			"nav above overall",
			[]Profile{{Name: "x", OverallTimeout: time.Second, NavigationTimeout: 2 * time.Second}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCustomCatalog(tt.profiles)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewCustomCatalog err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
