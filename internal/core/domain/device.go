package domain

// Viewport is a page viewport size in CSS pixels.
type Viewport struct {
	Width  int64
	Height int64
}

// DeviceProfile holds the emulation parameters for one device class.
type DeviceProfile struct {
	Class       DeviceClass
	Viewport    Viewport
	UserAgent   string
	ScaleFactor float64
	Mobile      bool
	Touch       bool
	Platform    string
}

var deviceProfiles = map[DeviceClass]DeviceProfile{
	DeviceDesktop: {
		Class:       DeviceDesktop,
		Viewport:    Viewport{Width: 1920, Height: 1080},
		UserAgent:   "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		ScaleFactor: 1,
		Platform:    "Win32",
	},
	DeviceTablet: {
		// Samsung Galaxy Tab S8
		Class:       DeviceTablet,
		Viewport:    Viewport{Width: 800, Height: 1280},
		UserAgent:   "Mozilla/5.0 (Linux; Android 12; SM-X906B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
		ScaleFactor: 2,
		Mobile:      true,
		Touch:       true,
		Platform:    "Linux armv8l",
	},
	DeviceMobile: {
		// Samsung Galaxy S23
		Class:       DeviceMobile,
		Viewport:    Viewport{Width: 360, Height: 780},
		UserAgent:   "Mozilla/5.0 (Linux; Android 13; SM-S911B) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Mobile Safari/537.36",
		ScaleFactor: 3,
		Mobile:      true,
		Touch:       true,
		Platform:    "Linux armv8l",
	},
}

// ProfileForDevice returns the emulation profile for a device class,
// falling back to desktop for unknown classes.
func ProfileForDevice(class DeviceClass) DeviceProfile {
	if p, ok := deviceProfiles[class]; ok {
		return p
	}
	return deviceProfiles[DeviceDesktop]
}
