package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	wsinterface "github.com/kspr-network/kspr-daemon/internal/interfaces/ws"
	"github.com/kspr-network/kspr-daemon/pkg/wallet"
)

var passcodeFlag = cli.StringFlag{
	Name:     "passcode",
	Usage:    "the passcode to encrypt or unlock the wallet",
	Required: true,
}

var genseed = cli.Command{
	Name:   "genseed",
	Usage:  "generate a mnemonic seed",
	Action: genSeedAction,
}

var initwallet = cli.Command{
	Name:  "init",
	Usage: "initialize the wallet with a mnemonic seed and a passcode",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "seed",
			Usage:    "the space separated mnemonic of the wallet",
			Required: true,
		},
		&passcodeFlag,
	},
	Action: initWalletAction,
}

var unlockwallet = cli.Command{
	Name:   "unlock",
	Usage:  "unlock the wallet",
	Flags:  []cli.Flag{&passcodeFlag},
	Action: unlockWalletAction,
}

var exportseed = cli.Command{
	Name:   "exportseed",
	Usage:  "print the mnemonic seed of the wallet",
	Flags:  []cli.Flag{&passcodeFlag},
	Action: exportSeedAction,
}

var lockwallet = cli.Command{
	Name:   "lock",
	Usage:  "lock the wallet and stop balance subscriptions",
	Action: lockWalletAction,
}

var resetwallet = cli.Command{
	Name:   "reset",
	Usage:  "delete the wallet and all its stored accounts",
	Action: resetWalletAction,
}

var status = cli.Command{
	Name:   "status",
	Usage:  "returns info about the status of the daemon",
	Action: statusAction,
}

var network = cli.Command{
	Name:      "network",
	Usage:     "switch the network of the wallet",
	ArgsUsage: "<mainnet|testnet-10|testnet-11>",
	Action:    networkAction,
}

func genSeedAction(ctx *cli.Context) error {
	client, cleanup, err := getDaemonClient()
	if err != nil {
		return err
	}
	defer cleanup()

	var reply wsinterface.GenSeedReply
	if err := client.request(wsinterface.GenSeed, nil, &reply); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(strings.Join(reply.Mnemonic, " "))

	return nil
}

func initWalletAction(ctx *cli.Context) error {
	mnemonic := strings.Fields(ctx.String("seed"))
	if !wallet.IsMnemonicValid(mnemonic) {
		return errors.New("invalid mnemonic seed")
	}

	client, cleanup, err := getDaemonClient()
	if err != nil {
		return err
	}
	defer cleanup()

	req := wsinterface.InitWalletRequest{
		Mnemonic: mnemonic,
		Passcode: ctx.String("passcode"),
	}
	if err := client.request(wsinterface.InitWallet, req, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("wallet initialized")

	return nil
}

func unlockWalletAction(ctx *cli.Context) error {
	client, cleanup, err := getDaemonClient()
	if err != nil {
		return err
	}
	defer cleanup()

	req := wsinterface.UnlockRequest{Passcode: ctx.String("passcode")}
	if err := client.request(wsinterface.Unlock, req, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("wallet unlocked")

	return nil
}

func exportSeedAction(ctx *cli.Context) error {
	client, cleanup, err := getDaemonClient()
	if err != nil {
		return err
	}
	defer cleanup()

	var reply wsinterface.GenSeedReply
	req := wsinterface.ExportSeedRequest{Passcode: ctx.String("passcode")}
	if err := client.request(wsinterface.ExportSeed, req, &reply); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(strings.Join(reply.Mnemonic, " "))

	return nil
}

func lockWalletAction(ctx *cli.Context) error {
	client, cleanup, err := getDaemonClient()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := client.request(wsinterface.Lock, nil, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("wallet locked")

	return nil
}

func resetWalletAction(ctx *cli.Context) error {
	client, cleanup, err := getDaemonClient()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := client.request(wsinterface.Reset, nil, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("wallet deleted")

	return nil
}

func statusAction(ctx *cli.Context) error {
	client, cleanup, err := getDaemonClient()
	if err != nil {
		return err
	}
	defer cleanup()

	var reply wsinterface.StatusReply
	if err := client.request(wsinterface.Status, nil, &reply); err != nil {
		return err
	}

	printRespJSON(reply)

	return nil
}

func networkAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	client, cleanup, err := getDaemonClient()
	if err != nil {
		return err
	}
	defer cleanup()

	req := wsinterface.NetworkUpdatedRequest{Network: ctx.Args().First()}
	if err := client.request(wsinterface.NetworkUpdated, req, nil); err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("network switched to %s\n", req.Network)

	return nil
}
