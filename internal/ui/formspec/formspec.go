// Package formspec describes which forms a page binds and how. The catalog is
// YAML embedded in the binary; tools may load an alternative file.
package formspec

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed forms.yaml
var embeddedCatalog []byte

const (
	defaultRedirectDelay   = 1500 * time.Millisecond
	defaultNotificationTTL = 5 * time.Second
	minNotificationTTL     = 3 * time.Second
	maxNotificationTTL     = 5 * time.Second
	defaultFallback        = "An error occurred. Please try again."
	defaultRegion          = "flashMessages"
	defaultCSRFMeta        = "csrf-token"
)

// Duration reads YAML durations written as "1500ms" or as whole milliseconds.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: duration must be a scalar", node.Line)
	}
	raw := strings.TrimSpace(node.Value)
	if raw == "" {
		*d = 0
		return nil
	}
	if node.Tag == "!!int" {
		var ms int64
		if err := node.Decode(&ms); err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		*d = Duration(time.Duration(ms) * time.Millisecond)
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q: %w", node.Line, raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// CSRF names where the page exposes its anti-forgery token and how requests
// carry it.
type CSRF struct {
	Header string `yaml:"header"`
	Field  string `yaml:"field"`
	Meta   string `yaml:"meta"`
}

// Connections names the connection list and the selectors derived from it.
type Connections struct {
	List      string   `yaml:"list"`
	Selectors []string `yaml:"selectors"`
}

// Form is one bindable form.
type Form struct {
	ID        string            `yaml:"id"`
	Flow      string            `yaml:"flow"`
	Endpoint  string            `yaml:"endpoint,omitempty"`
	BusyText  string            `yaml:"busy_text,omitempty"`
	IdleText  string            `yaml:"idle_text,omitempty"`
	Region    string            `yaml:"region,omitempty"`
	Exclusive bool              `yaml:"exclusive,omitempty"`
	Targets   map[string]string `yaml:"targets,omitempty"`
}

// Target returns the element id registered under key.
func (f Form) Target(key string) string {
	return strings.TrimSpace(f.Targets[key])
}

// Catalog is the full form configuration for the client.
type Catalog struct {
	RedirectDelay   Duration    `yaml:"redirect_delay"`
	NotificationTTL Duration    `yaml:"notification_ttl"`
	FallbackMessage string      `yaml:"fallback_message"`
	Region          string      `yaml:"region"`
	CSRF            CSRF        `yaml:"csrf"`
	Connections     Connections `yaml:"connections"`
	Forms           []Form      `yaml:"forms"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(embeddedCatalog)
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read form catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a catalog, rejecting unknown keys, then applies defaults and
// validates it.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cat); err != nil {
		return nil, fmt.Errorf("parse form catalog: %w", err)
	}
	cat.applyDefaults()
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Catalog) applyDefaults() {
	if c.RedirectDelay == 0 {
		c.RedirectDelay = Duration(defaultRedirectDelay)
	}
	if c.NotificationTTL == 0 {
		c.NotificationTTL = Duration(defaultNotificationTTL)
	}
	if strings.TrimSpace(c.FallbackMessage) == "" {
		c.FallbackMessage = defaultFallback
	}
	if strings.TrimSpace(c.Region) == "" {
		c.Region = defaultRegion
	}
	if strings.TrimSpace(c.CSRF.Meta) == "" {
		c.CSRF.Meta = defaultCSRFMeta
	}
}

// Validate reports configuration problems.
func (c *Catalog) Validate() error {
	var errs []error
	if c.RedirectDelay < 0 {
		errs = append(errs, errors.New("redirect_delay must not be negative"))
	}
	if ttl := c.NotificationTTL.Std(); ttl < minNotificationTTL || ttl > maxNotificationTTL {
		errs = append(errs, fmt.Errorf("notification_ttl must be between %s and %s, got %s", minNotificationTTL, maxNotificationTTL, ttl))
	}
	seen := make(map[string]bool, len(c.Forms))
	for i, f := range c.Forms {
		id := strings.TrimSpace(f.ID)
		switch {
		case id == "":
			errs = append(errs, fmt.Errorf("forms[%d]: id is required", i))
		case seen[id]:
			errs = append(errs, fmt.Errorf("forms[%d]: duplicate id %q", i, id))
		}
		seen[id] = true
		if strings.TrimSpace(f.Flow) == "" {
			errs = append(errs, fmt.Errorf("forms[%d] (%s): flow is required", i, id))
		}
	}
	return errors.Join(errs...)
}

// Lookup returns the form with id.
func (c *Catalog) Lookup(id string) (Form, bool) {
	for _, f := range c.Forms {
		if f.ID == id {
			return f, true
		}
	}
	return Form{}, false
}

// RegionFor returns the notification region a form renders into.
func (c *Catalog) RegionFor(f Form) string {
	if r := strings.TrimSpace(f.Region); r != "" {
		return r
	}
	return c.Region
}
