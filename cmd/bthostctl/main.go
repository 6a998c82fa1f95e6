// Command bthostctl brings up an L2CAP host stack on a local controller.
package main

import (
	"os"

	"github.com/rigado/bthost"
	"github.com/urfave/cli"
)

func newApp() *cli.App {
	app := cli.NewApp()

	app.Name = "bthostctl"
	app.Usage = "Bluetooth L2CAP host stack"
	app.Version = "0.1.0"
	app.Action = cli.ShowAppHelp
	app.Flags = []cli.Flag{
		flgConfig,
		flgHCI,
		flgH4Socket,
		flgH4Uart,
		flgLogLevel,
		flgModLevel,
	}

	app.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "Bring the stack up and log link and channel events until interrupted",
			Action: run,
			Flags:  []cli.Flag{flgPSM},
		},
		{
			Name:      "echo",
			Aliases:   []string{"ping"},
			Usage:     "Send an L2CAP echo request to a BR/EDR device",
			ArgsUsage: "<addr>",
			Action:    echo,
			Flags:     []cli.Flag{flgTimeout, flgData},
		},
		{
			Name:   "config",
			Usage:  "Print the effective configuration as JSON",
			Action: printConfig,
		},
	}
	return app
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		bthost.GetLogger().Error(err)
		os.Exit(1)
	}
}
