// Package config loads stack settings from a JSON or YAML file. Fields
// left out of the file keep their defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/rigado/bthost"
	"github.com/rigado/bthost/cache"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const maxFileSize = 1 << 20

// Config is the root of a configuration file.
type Config struct {
	Transport *Transport `json:"transport,omitempty" yaml:"transport,omitempty"`
	LogLevel  *string    `json:"log_level,omitempty" yaml:"log_level,omitempty"`

	// ModuleLogLevels overrides the log level of single modules, for
	// example {"l2cap": "debug"}.
	ModuleLogLevels map[string]string `json:"module_log_levels,omitempty" yaml:"module_log_levels,omitempty"`

	Links    *int `json:"links,omitempty" yaml:"links,omitempty"`
	Channels *int `json:"channels,omitempty" yaml:"channels,omitempty"`
	Records  *int `json:"acl_records,omitempty" yaml:"acl_records,omitempty"`

	IdleTimeoutBREDR *uint16 `json:"idle_timeout_bredr,omitempty" yaml:"idle_timeout_bredr,omitempty"` // seconds
	IdleTimeoutLE    *uint16 `json:"idle_timeout_le,omitempty" yaml:"idle_timeout_le,omitempty"`       // seconds

	HeldLimit    *int    `json:"held_limit,omitempty" yaml:"held_limit,omitempty"`
	HeldRetries  *int    `json:"held_retries,omitempty" yaml:"held_retries,omitempty"`
	HeldInterval *string `json:"held_interval,omitempty" yaml:"held_interval,omitempty"` // duration string like "100ms"

	LocalMTU  *uint16 `json:"local_mtu,omitempty" yaml:"local_mtu,omitempty"`
	LEMTU     *uint16 `json:"le_mtu,omitempty" yaml:"le_mtu,omitempty"`
	LEMPS     *uint16 `json:"le_mps,omitempty" yaml:"le_mps,omitempty"`
	LECredits *uint16 `json:"le_credits,omitempty" yaml:"le_credits,omitempty"`

	HighPriorityQuota *int `json:"high_priority_quota,omitempty" yaml:"high_priority_quota,omitempty"`

	// FeatureCache is the file remote feature pages are kept in. Empty
	// keeps them in memory.
	FeatureCache *string `json:"feature_cache,omitempty" yaml:"feature_cache,omitempty"`
}

// Transport selects the controller connection. At most one of the
// variants may be set; none means hci0.
type Transport struct {
	HCI       *int    `json:"hci,omitempty" yaml:"hci,omitempty"`
	H4Socket  *string `json:"h4_socket,omitempty" yaml:"h4_socket,omitempty"`
	H4Timeout *string `json:"h4_timeout,omitempty" yaml:"h4_timeout,omitempty"`
	H4Uart    *string `json:"h4_uart,omitempty" yaml:"h4_uart,omitempty"`
}

func ptrInt(v int) *int          { return &v }
func ptrUint16(v uint16) *uint16 { return &v }
func ptrString(v string) *string { return &v }

// Default returns the stack defaults.
func Default() *Config {
	return &Config{
		Transport:         &Transport{HCI: ptrInt(0)},
		LogLevel:          ptrString("info"),
		Links:             ptrInt(8),
		Channels:          ptrInt(32),
		Records:           ptrInt(8),
		IdleTimeoutBREDR:  ptrUint16(4),
		IdleTimeoutLE:     ptrUint16(1),
		HeldLimit:         ptrInt(16),
		HeldRetries:       ptrInt(5),
		HeldInterval:      ptrString("100ms"),
		LocalMTU:          ptrUint16(672),
		LEMTU:             ptrUint16(512),
		LEMPS:             ptrUint16(246),
		LECredits:         ptrUint16(10),
		HighPriorityQuota: ptrInt(5),
		FeatureCache:      ptrString(""),
	}
}

// Load reads a .json, .yaml or .yml file, fills in the defaults and
// validates the result.
func Load(path string) (*Config, error) {
	clean := filepath.Clean(path)
	fi, err := os.Stat(clean)
	if err != nil {
		return nil, errors.Wrap(err, "stat config file")
	}
	if fi.Size() > maxFileSize {
		return nil, errors.Errorf("config file too large: %d bytes (max %d)", fi.Size(), maxFileSize)
	}
	b, err := os.ReadFile(clean)
	if err != nil {
		return nil, errors.Wrap(err, "read config file")
	}
	return Parse(b, strings.TrimPrefix(filepath.Ext(clean), "."))
}

// Parse decodes b in format ("json", "yaml" or "yml").
func Parse(b []byte, format string) (*Config, error) {
	c := &Config{}
	switch format {
	case "json":
		if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(b, c); err != nil {
			return nil, errors.Wrap(err, "parse config json")
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, errors.Wrap(err, "parse config yaml")
		}
	default:
		return nil, errors.Errorf("unknown config format %q", format)
	}
	c.Merge(Default())
	if err := c.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return c, nil
}

// Merge fills the fields of c that are unset from d.
func (c *Config) Merge(d *Config) {
	if c.Transport == nil || *c.Transport == (Transport{}) {
		c.Transport = d.Transport
	}
	mergeString(&c.LogLevel, d.LogLevel)
	if c.ModuleLogLevels == nil {
		c.ModuleLogLevels = d.ModuleLogLevels
	}
	mergeInt(&c.Links, d.Links)
	mergeInt(&c.Channels, d.Channels)
	mergeInt(&c.Records, d.Records)
	mergeUint16(&c.IdleTimeoutBREDR, d.IdleTimeoutBREDR)
	mergeUint16(&c.IdleTimeoutLE, d.IdleTimeoutLE)
	mergeInt(&c.HeldLimit, d.HeldLimit)
	mergeInt(&c.HeldRetries, d.HeldRetries)
	mergeString(&c.HeldInterval, d.HeldInterval)
	mergeUint16(&c.LocalMTU, d.LocalMTU)
	mergeUint16(&c.LEMTU, d.LEMTU)
	mergeUint16(&c.LEMPS, d.LEMPS)
	mergeUint16(&c.LECredits, d.LECredits)
	mergeInt(&c.HighPriorityQuota, d.HighPriorityQuota)
	mergeString(&c.FeatureCache, d.FeatureCache)
}

func mergeInt(dst **int, v *int) {
	if *dst == nil {
		*dst = v
	}
}

func mergeUint16(dst **uint16, v *uint16) {
	if *dst == nil {
		*dst = v
	}
}

func mergeString(dst **string, v *string) {
	if *dst == nil {
		*dst = v
	}
}

// Validate checks the values that are set.
func (c *Config) Validate() error {
	if t := c.Transport; t != nil {
		n := 0
		if t.HCI != nil {
			n++
			if *t.HCI < 0 {
				return errors.Errorf("hci device %d", *t.HCI)
			}
		}
		if t.H4Socket != nil {
			n++
		}
		if t.H4Uart != nil {
			n++
		}
		if n > 1 {
			return errors.New("more than one transport set")
		}
		if t.H4Timeout != nil {
			if _, err := time.ParseDuration(*t.H4Timeout); err != nil {
				return errors.Wrapf(err, "h4_timeout %q", *t.H4Timeout)
			}
		}
	}
	for name, v := range map[string]*int{"links": c.Links, "channels": c.Channels, "acl_records": c.Records,
		"held_limit": c.HeldLimit, "held_retries": c.HeldRetries, "high_priority_quota": c.HighPriorityQuota} {
		if v != nil && *v <= 0 {
			return errors.Errorf("%s must be positive, got %d", name, *v)
		}
	}
	if c.HeldInterval != nil {
		d, err := time.ParseDuration(*c.HeldInterval)
		if err != nil {
			return errors.Wrapf(err, "held_interval %q", *c.HeldInterval)
		}
		if d <= 0 {
			return errors.Errorf("held_interval must be positive, got %v", d)
		}
	}
	if c.LocalMTU != nil && *c.LocalMTU < 48 {
		return errors.Errorf("local_mtu must be at least 48, got %d", *c.LocalMTU)
	}
	if c.LEMTU != nil && *c.LEMTU < 23 {
		return errors.Errorf("le_mtu must be at least 23, got %d", *c.LEMTU)
	}
	if c.LEMPS != nil && (*c.LEMPS < 23 || *c.LEMPS > 65533) {
		return errors.Errorf("le_mps must be within 23..65533, got %d", *c.LEMPS)
	}
	if c.LECredits != nil && *c.LECredits == 0 {
		return errors.New("le_credits must be positive")
	}
	if c.LogLevel != nil && *c.LogLevel != "" {
		if _, err := logrus.ParseLevel(*c.LogLevel); err != nil {
			return errors.Wrap(err, "log_level")
		}
	}
	for module, level := range c.ModuleLogLevels {
		if _, err := logrus.ParseLevel(level); err != nil {
			return errors.Wrapf(err, "module_log_levels.%s", module)
		}
	}
	return nil
}

// ApplyLogLevels sets the base log level and the module overrides.
func (c *Config) ApplyLogLevels() error {
	if c.LogLevel != nil && *c.LogLevel != "" {
		if err := bthost.SetLogLevel(*c.LogLevel); err != nil {
			return err
		}
	}
	for module, level := range c.ModuleLogLevels {
		if err := bthost.SetModuleLevel(module, level); err != nil {
			return err
		}
	}
	return nil
}

// Options converts a merged configuration into stack options.
func (c *Config) Options() ([]bthost.Option, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	d := Default()
	m := *c
	m.Merge(d)

	interval, _ := time.ParseDuration(*m.HeldInterval)
	opts := []bthost.Option{
		bthost.OptPoolSizes(*m.Links, *m.Channels, *m.Records),
		bthost.OptIdleTimeout(bthost.TransportBREDR, *m.IdleTimeoutBREDR),
		bthost.OptIdleTimeout(bthost.TransportLE, *m.IdleTimeoutLE),
		bthost.OptHeldPackets(*m.HeldLimit, *m.HeldRetries, interval),
		bthost.OptLocalMTU(*m.LocalMTU),
		bthost.OptLECredits(*m.LEMTU, *m.LEMPS, *m.LECredits),
		bthost.OptHighPriorityQuota(*m.HighPriorityQuota),
	}

	t := m.Transport
	switch {
	case t.H4Socket != nil:
		var timeout time.Duration
		if t.H4Timeout != nil {
			timeout, _ = time.ParseDuration(*t.H4Timeout)
		}
		opts = append(opts, bthost.OptTransportH4Socket(*t.H4Socket, timeout))
	case t.H4Uart != nil:
		opts = append(opts, bthost.OptTransportH4Uart(*t.H4Uart))
	case t.HCI != nil:
		opts = append(opts, bthost.OptTransportHCISocket(*t.HCI))
	}

	if *m.FeatureCache != "" {
		opts = append(opts, bthost.OptFeatureCache(cache.New(*m.FeatureCache)))
	} else {
		opts = append(opts, bthost.OptFeatureCache(cache.NewMemory()))
	}
	return opts, nil
}

// JSON returns c as indented JSON.
func (c *Config) JSON() ([]byte, error) {
	return jsoniter.ConfigCompatibleWithStandardLibrary.MarshalIndent(c, "", "  ")
}
