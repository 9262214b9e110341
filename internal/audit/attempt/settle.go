package attempt

import (
	"context"
	"log/slog"
	"time"

	"github.com/silversurf/auditor/internal/audit/strategy"
	"github.com/silversurf/auditor/internal/infra/browser"
)

// consentSelectors probe the common cookie/consent banner accept buttons,
// most specific first. Absence of a banner is not an error.
var consentSelectors = []string{
	"#onetrust-accept-btn-handler",
	`button[id*="accept"]`,
	`button[class*="accept"]`,
	`button[id*="cookie"]`,
	"#cookie-banner button",
	".cookie-banner button",
}

// settle waits for the page to reach a state suitable for auditing: minimum
// DOM readiness, consent banner dismissal, a base settle pause, then a
// structural landmark. Every step is bounded and non-fatal; the attempt
// proceeds with whatever rendered.
func (e *Executor) settle(ctx context.Context, page browser.Page, profile strategy.Profile, log *slog.Logger) {
	if err := page.WaitReady(ctx, "body", domReadyTimeout); err != nil {
		log.Debug("DOM readiness wait failed", "error", err)
	}

	e.dismissConsent(ctx, page, log)

	if err := sleepCtx(ctx, profile.ContentSettleWait); err != nil {
		return
	}

	if err := page.WaitReady(ctx, "main, [role=main], h1", landmarkTimeout); err != nil {
		log.Debug("landmark wait timed out, auditing rendered content as-is", "error", err)
	}
}

func (e *Executor) dismissConsent(ctx context.Context, page browser.Page, log *slog.Logger) {
	for _, sel := range consentSelectors {
		if ctx.Err() != nil {
			return
		}
		if err := page.Click(ctx, sel, consentClickTimeout); err == nil {
			log.Debug("consent banner dismissed", "selector", sel)
			_ = sleepCtx(ctx, time.Second)
			return
		}
	}
}
