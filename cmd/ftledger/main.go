package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "ftledger"
	app.Usage = "storage-metered fungible token ledger"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "config, c",
			Usage: "path to the YAML configuration file",
		},
		cli.StringFlag{
			Name:  "db",
			Usage: "path to the BoltDB file overriding configured database",
		},
		cli.StringFlag{
			Name:  "log-level",
			Value: "info",
			Usage: "logging level (debug, info, warn, error)",
		},
	}
	app.Commands = []cli.Command{
		initCommand,
		fundCommand,
		registerCommand,
		unregisterCommand,
		transferCommand,
		transferCallCommand,
		balanceCommand,
		supplyCommand,
		storageBalanceCommand,
		accountsCommand,
		dumpCommand,
		restoreCommand,
	}

	return app
}
