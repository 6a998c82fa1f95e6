package main

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rigado/bthost/config"
	"github.com/urfave/cli"
)

var (
	flgConfig   = cli.StringFlag{Name: "config, c", Usage: "JSON or YAML configuration file"}
	flgHCI      = cli.IntFlag{Name: "hci", Usage: "HCI device index"}
	flgH4Socket = cli.StringFlag{Name: "h4-socket", Usage: "H4 over TCP, host:port"}
	flgH4Uart   = cli.StringFlag{Name: "h4-uart", Usage: "H4 serial device"}
	flgLogLevel = cli.StringFlag{Name: "log-level, l", Usage: "debug, info, warn or error"}
	flgModLevel = cli.StringSliceFlag{Name: "module-log-level", Usage: "Level of one module as module=level, e.g. l2cap=debug"}

	flgPSM     = cli.IntSliceFlag{Name: "psm, p", Usage: "BR/EDR PSM to accept channels on"}
	flgTimeout = cli.DurationFlag{Name: "tmo, t", Value: 10 * time.Second, Usage: "Timeout for the command"}
	flgData    = cli.StringFlag{Name: "data, d", Value: "00010203", Usage: "Echo payload in hex"}
)

// loadConfig reads the --config file, or the defaults, and applies the
// global flags on top.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := c.GlobalString("config"); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}

	var t *config.Transport
	switch {
	case c.GlobalIsSet("hci"):
		id := c.GlobalInt("hci")
		t = &config.Transport{HCI: &id}
	case c.GlobalIsSet("h4-socket"):
		addr := c.GlobalString("h4-socket")
		t = &config.Transport{H4Socket: &addr}
	case c.GlobalIsSet("h4-uart"):
		path := c.GlobalString("h4-uart")
		t = &config.Transport{H4Uart: &path}
	}
	if t != nil {
		cfg.Transport = t
	}
	if c.GlobalIsSet("log-level") {
		lvl := c.GlobalString("log-level")
		cfg.LogLevel = &lvl
	}
	for _, kv := range c.GlobalStringSlice("module-log-level") {
		i := strings.IndexByte(kv, '=')
		if i <= 0 {
			return nil, errors.Errorf("module-log-level %q: want module=level", kv)
		}
		if cfg.ModuleLogLevels == nil {
			cfg.ModuleLogLevels = map[string]string{}
		}
		cfg.ModuleLogLevels[kv[:i]] = kv[i+1:]
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}
