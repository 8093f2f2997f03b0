package application

import (
	"context"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/kspr-network/kspr-daemon/internal/core/ports"
	"github.com/kspr-network/kspr-daemon/pkg/explorer"
	"github.com/kspr-network/kspr-daemon/pkg/mathutil"
	"github.com/kspr-network/kspr-daemon/pkg/stats"
	"github.com/kspr-network/kspr-daemon/pkg/wallet"
	log "github.com/sirupsen/logrus"
)

const (
	submitStandard    = "standard"
	submitReplacement = "replacement"
)

// TransferArgs are the arguments of a transfer. Amount is in whole KAS,
// FeeRate in sompi per gram of mass.
type TransferArgs struct {
	From       string
	To         string
	Amount     float64
	FeeRate    float64
	PrivateKey *btcec.PrivateKey
}

func (a TransferArgs) validate(network *wallet.Network) error {
	if _, err := wallet.DecodeAddress(a.From, network); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if _, err := wallet.DecodeAddress(a.To, network); err != nil {
		return fmt.Errorf("invalid receiver address: %w", err)
	}
	if !mathutil.ValidAmount(a.Amount) || mathutil.ToSompi(a.Amount) == 0 {
		return ErrInvalidAmount
	}
	if !mathutil.ValidAmount(a.FeeRate) {
		return ErrInvalidFeeRate
	}
	if a.PrivateKey == nil {
		return wallet.ErrMissingSigningKey
	}
	return nil
}

// Transferer builds, signs and submits transactions spending the coins of
// a single address.
type Transferer struct {
	cfg            TransferConfig
	network        *wallet.Network
	explorerSvc    explorer.Service
	massCalculator ports.MassCalculator
	signer         ports.Signer
}

func NewTransferer(
	cfg TransferConfig,
	network *wallet.Network,
	explorerSvc explorer.Service,
	massCalculator ports.MassCalculator,
	signer ports.Signer,
) (*Transferer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if network == nil {
		return nil, wallet.ErrNullNetwork
	}
	if explorerSvc == nil {
		return nil, fmt.Errorf("missing explorer service")
	}
	if massCalculator == nil {
		return nil, fmt.Errorf("missing mass calculator")
	}
	if signer == nil {
		return nil, fmt.Errorf("missing signer")
	}
	return &Transferer{cfg, network, explorerSvc, massCalculator, signer}, nil
}

// Transfer sends amount to args.To, paying the fee and getting the change
// back to args.From. If any selected coin is already spent by a mempool
// transaction of the sender, the new one is submitted as its replacement.
// It returns the id of the submitted transaction or an *Error.
func (t *Transferer) Transfer(
	ctx context.Context, args TransferArgs,
) (string, error) {
	txid, err := t.transfer(ctx, args)
	if err != nil {
		return "", WrapError(err)
	}
	return txid, nil
}

func (t *Transferer) transfer(
	ctx context.Context, args TransferArgs,
) (string, error) {
	if err := args.validate(t.network); err != nil {
		return "", err
	}

	amount := mathutil.ToSompi(args.Amount)

	utxos, err := t.explorerSvc.GetUtxosByAddresses(ctx, []string{args.From})
	if err != nil {
		return "", fmt.Errorf("failed to fetch utxos: %w", err)
	}
	if len(utxos) <= 0 {
		return "", ErrNoUtxos
	}

	coins, _, err := explorer.SelectUtxos(utxos, amount, t.cfg.MaxUtxos)
	if err != nil {
		return "", err
	}
	total := explorer.TotalAmount(coins)

	// The provisional change is sized with a rough fee estimate so that the
	// tx has its final shape when computing mass.
	provisionalFee := mathutil.Fee(
		uint64(len(coins))*t.cfg.ProvisionalMassPerInput, args.FeeRate,
	)
	provisionalChange := uint64(0)
	if total > amount+provisionalFee {
		provisionalChange = total - amount - provisionalFee
	}
	tx, err := t.buildTransaction(coins, args, amount, provisionalChange)
	if err != nil {
		return "", err
	}

	mass, err := t.massCalculator.CalculateMass(tx)
	if err != nil {
		return "", fmt.Errorf("failed to compute tx mass: %w", err)
	}
	if mass > t.cfg.MaxTxMass {
		return "", fmt.Errorf("%w: %d > %d", ErrMassExceeded, mass, t.cfg.MaxTxMass)
	}

	fee := mathutil.Fee(mass, args.FeeRate)
	required := amount + fee
	if total < required {
		return "", fmt.Errorf(
			"%w: %d < %d", explorer.ErrInsufficientFunds, total, required,
		)
	}

	tx, err = t.buildTransaction(coins, args, amount, total-required)
	if err != nil {
		return "", err
	}

	isReplacement, err := t.isReplacement(ctx, args.From, tx)
	if err != nil {
		return "", err
	}

	if err := t.signer.Sign(tx, []*btcec.PrivateKey{args.PrivateKey}); err != nil {
		return "", fmt.Errorf("failed to sign tx: %w", err)
	}

	submit, mode := t.explorerSvc.SubmitTransaction, submitStandard
	if isReplacement {
		submit, mode = t.explorerSvc.SubmitTransactionReplacement, submitReplacement
	}
	txid, err := submit(ctx, tx)
	if err != nil {
		return "", err
	}
	stats.TransactionSubmitted(mode)

	log.Debugf(
		"transfer: submitted %s tx %s with %d inputs, mass %d and fee %d",
		mode, txid, len(tx.Inputs), mass, fee,
	)
	return txid, nil
}

// buildTransaction returns a tx spending coins to the receiver and paying
// change, if not zero, back to the sender.
func (t *Transferer) buildTransaction(
	coins []explorer.Utxo, args TransferArgs, amount, change uint64,
) (*explorer.Transaction, error) {
	receiverScript, err := wallet.PayToAddrScript(args.To, t.network)
	if err != nil {
		return nil, err
	}

	tx := explorer.NewTransaction()
	for _, coin := range coins {
		tx.AddInput(coin)
	}
	tx.AddOutput(amount, receiverScript)

	if change > 0 {
		changeScript, err := wallet.PayToAddrScript(args.From, t.network)
		if err != nil {
			return nil, err
		}
		tx.AddOutput(change, changeScript)
	}
	return tx, nil
}

// isReplacement returns whether any input of tx is already spent by a
// mempool transaction of the given address.
func (t *Transferer) isReplacement(
	ctx context.Context, address string, tx *explorer.Transaction,
) (bool, error) {
	entries, err := t.explorerSvc.GetMempoolEntriesByAddresses(
		ctx, []string{address},
	)
	if err != nil {
		return false, fmt.Errorf("failed to fetch mempool entries: %w", err)
	}

	outpoints := tx.Outpoints()
	for _, entry := range entries {
		if entry.Transaction != nil && entry.Transaction.SpendsAnyOf(outpoints) {
			return true, nil
		}
	}
	return false, nil
}
