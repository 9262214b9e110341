package domain

import (
	"fmt"
	"strings"
)

type DeviceClass string

const (
	DeviceDesktop DeviceClass = "desktop"
	DeviceMobile  DeviceClass = "mobile"
	DeviceTablet  DeviceClass = "tablet"
)

type OutputFormat string

const (
	FormatJSON OutputFormat = "json"
	FormatHTML OutputFormat = "html"
)

type AuditVariant string

const (
	VariantFull    AuditVariant = "full"
	VariantReduced AuditVariant = "reduced"
)

// AuditRequest describes one audit run. Immutable for the life of the run.
type AuditRequest struct {
	URL     string       `json:"url"     yaml:"url"`
	Device  DeviceClass  `json:"device"  yaml:"device"`
	Format  OutputFormat `json:"format"  yaml:"format"`
	Variant AuditVariant `json:"variant" yaml:"variant"`
}

// Normalize fills defaults and ensures the URL carries a scheme.
func (r AuditRequest) Normalize() AuditRequest {
	if r.URL != "" && !strings.HasPrefix(r.URL, "http://") && !strings.HasPrefix(r.URL, "https://") {
		r.URL = "https://" + r.URL
	}
	if r.Device == "" {
		r.Device = DeviceDesktop
	}
	if r.Format == "" {
		r.Format = FormatJSON
	}
	if r.Variant == "" {
		r.Variant = VariantFull
	}
	return r
}

// Validate rejects requests the orchestrator cannot act on.
func (r AuditRequest) Validate() error {
	if r.URL == "" {
		return fmt.Errorf("url is required")
	}
	switch r.Device {
	case DeviceDesktop, DeviceMobile, DeviceTablet:
	default:
		return fmt.Errorf("unknown device class %q", r.Device)
	}
	switch r.Format {
	case FormatJSON, FormatHTML:
	default:
		return fmt.Errorf("unknown output format %q", r.Format)
	}
	switch r.Variant {
	case VariantFull, VariantReduced:
	default:
		return fmt.Errorf("unknown audit variant %q", r.Variant)
	}
	return nil
}
