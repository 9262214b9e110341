package browser

import "fmt"

// StealthScript masks the most common automation fingerprints. Injected
// before navigation so the site's initial page-load detection never observes
// automation signals.
const StealthScript = `
Object.defineProperty(navigator, 'webdriver', {
	get: () => undefined,
	configurable: true
});
Object.defineProperty(navigator, 'plugins', {
	get: () => [1, 2, 3, 4, 5],
	configurable: true
});
Object.defineProperty(navigator, 'languages', {
	get: () => ['en-US', 'en'],
	configurable: true
});
window.chrome = window.chrome || { runtime: {} };
const origQuery = window.navigator.permissions.query;
window.navigator.permissions.query = (parameters) =>
	parameters.name === 'notifications'
		? Promise.resolve({ state: Notification.permission })
		: origQuery(parameters);
`

// DeviceScript builds the per-device fingerprint overrides applied on top of
// CDP emulation: user agent, touch points, pixel ratio, platform and
// hardware concurrency for mobile classes.
func DeviceScript(userAgent, platform string, scaleFactor float64, touchPoints int, mobile bool) string {
	concurrency := ""
	if mobile {
		concurrency = `
Object.defineProperty(navigator, 'hardwareConcurrency', {
	get: () => 8,
	configurable: true
});`
	}
	return fmt.Sprintf(`
Object.defineProperty(navigator, 'userAgent', {
	get: () => %q,
	configurable: true
});
Object.defineProperty(navigator, 'maxTouchPoints', {
	get: () => %d,
	configurable: true
});
Object.defineProperty(window, 'devicePixelRatio', {
	get: () => %g,
	configurable: true
});
Object.defineProperty(navigator, 'platform', {
	get: () => %q,
	configurable: true
});%s`, userAgent, touchPoints, scaleFactor, platform, concurrency)
}
