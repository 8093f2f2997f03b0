package main

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	wsinterface "github.com/kspr-network/kspr-daemon/internal/interfaces/ws"
)

var send = cli.Command{
	Name:  "send",
	Usage: "send an amount of KAS to an address",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "from",
			Usage: "the sender address, defaults to the primary address of account 0",
		},
		&cli.StringFlag{
			Name:     "to",
			Usage:    "the receiver address",
			Required: true,
		},
		&cli.Float64Flag{
			Name:     "amount",
			Usage:    "the amount to send in KAS",
			Required: true,
		},
		&cli.Float64Flag{
			Name:  "fee_rate",
			Usage: "the fee rate in sompi per gram of mass",
		},
	},
	Action: sendAction,
}

func sendAction(ctx *cli.Context) error {
	client, cleanup, err := getDaemonClient()
	if err != nil {
		return err
	}
	defer cleanup()

	req := wsinterface.SendRequest{
		From:    ctx.String("from"),
		To:      ctx.String("to"),
		Amount:  ctx.Float64("amount"),
		FeeRate: ctx.Float64("fee_rate"),
	}
	var reply wsinterface.SendReply
	if err := client.request(wsinterface.Send, req, &reply); err != nil {
		return err
	}
	if !reply.Success {
		return errors.New(reply.Error)
	}

	fmt.Println()
	fmt.Printf("transaction %s broadcasted\n", reply.TxID)

	return nil
}
