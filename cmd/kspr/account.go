package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	wsinterface "github.com/kspr-network/kspr-daemon/internal/interfaces/ws"
)

var discover = cli.Command{
	Name:  "discover",
	Usage: "scan the chain for used accounts and store them",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "seed",
			Usage: "the mnemonic to scan, defaults to the one of the unlocked wallet",
		},
		&cli.IntFlag{
			Name:  "num_accounts",
			Usage: "the number of accounts to scan",
		},
	},
	Action: discoverAction,
}

var accounts = cli.Command{
	Name:   "accounts",
	Usage:  "list the stored accounts",
	Action: accountsAction,
}

var balance = cli.Command{
	Name:      "balance",
	Usage:     "get the balance of an address in KAS",
	ArgsUsage: "<address>",
	Action:    balanceAction,
}

var watch = cli.Command{
	Name:   "watch",
	Usage:  "print the list of accounts every time it changes",
	Action: watchAction,
}

func discoverAction(ctx *cli.Context) error {
	client, cleanup, err := getDaemonClient()
	if err != nil {
		return err
	}
	defer cleanup()

	req := wsinterface.GetAndStoreAccountsRequest{
		Seed:        ctx.String("seed"),
		NumAccounts: ctx.Int("num_accounts"),
	}
	var reply wsinterface.AccountsReply
	if err := client.request(
		wsinterface.GetAndStoreAccounts, req, &reply,
	); err != nil {
		return err
	}

	printRespJSON(reply)

	return nil
}

func accountsAction(ctx *cli.Context) error {
	client, cleanup, err := getDaemonClient()
	if err != nil {
		return err
	}
	defer cleanup()

	var reply wsinterface.AccountsReply
	if err := client.request(wsinterface.GetAccounts, nil, &reply); err != nil {
		return err
	}

	printRespJSON(reply)

	return nil
}

func balanceAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	client, cleanup, err := getDaemonClient()
	if err != nil {
		return err
	}
	defer cleanup()

	req := wsinterface.FetchBalanceRequest{Address: ctx.Args().First()}
	var reply wsinterface.BalanceReply
	if err := client.request(wsinterface.FetchBalance, req, &reply); err != nil {
		return err
	}

	printRespJSON(reply)

	return nil
}

func watchAction(ctx *cli.Context) error {
	client, cleanup, err := getDaemonClient()
	if err != nil {
		return err
	}
	defer cleanup()

	for {
		var reply wsinterface.AccountsReply
		if err := client.next(wsinterface.AccountsUpdated, &reply); err != nil {
			return fmt.Errorf("connection closed: %w", err)
		}
		printRespJSON(reply)
	}
}
