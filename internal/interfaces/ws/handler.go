package wsinterface

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kspr-network/kspr-daemon/internal/core/application"
	log "github.com/sirupsen/logrus"
)

var (
	// ErrInvalidPayload ...
	ErrInvalidPayload = errors.New("invalid payload")
	// ErrUnknownMessageType ...
	ErrUnknownMessageType = errors.New("unknown message type")
)

// Handler serves the messages of the wallet service independently of the
// transport they are received from.
type Handler struct {
	walletSvc application.WalletService
}

func NewHandler(walletSvc application.WalletService) *Handler {
	return &Handler{walletSvc}
}

// Handle returns the response for the given request. Failures are returned
// as an ErrorReply, or as an unsuccessful SendReply for SEND.
func (h *Handler) Handle(ctx context.Context, msg Message) Message {
	log.Debugf("ws: %s %s", msg.Type, msg.ID)

	reply, err := h.handle(ctx, msg)
	if err != nil {
		errMsg := errorMessage(err)
		if msg.Type == Send {
			reply = SendReply{Success: false, Error: errMsg}
		} else {
			reply = ErrorReply{errMsg}
		}
	}
	return newMessage(msg.ID, msg.Type, reply)
}

func (h *Handler) handle(ctx context.Context, msg Message) (interface{}, error) {
	switch msg.Type {
	case GenSeed:
		mnemonic, err := h.walletSvc.GenSeed(ctx)
		if err != nil {
			return nil, err
		}
		return GenSeedReply{mnemonic}, nil

	case InitWallet:
		var req InitWalletRequest
		if err := decodePayload(msg.Payload, &req); err != nil {
			return nil, err
		}
		if err := h.walletSvc.InitWallet(ctx, req.Mnemonic, req.Passcode); err != nil {
			return nil, err
		}
		return SuccessReply{true}, nil

	case Unlock:
		var req UnlockRequest
		if err := decodePayload(msg.Payload, &req); err != nil {
			return nil, err
		}
		if err := h.walletSvc.Unlock(ctx, req.Passcode); err != nil {
			return nil, err
		}
		return SuccessReply{true}, nil

	case Lock:
		if err := h.walletSvc.Lock(ctx); err != nil {
			return nil, err
		}
		return SuccessReply{true}, nil

	case ExportSeed:
		var req ExportSeedRequest
		if err := decodePayload(msg.Payload, &req); err != nil {
			return nil, err
		}
		mnemonic, err := h.walletSvc.ExportMnemonic(ctx, req.Passcode)
		if err != nil {
			return nil, err
		}
		return GenSeedReply{mnemonic}, nil

	case Reset:
		if err := h.walletSvc.Reset(ctx); err != nil {
			return nil, err
		}
		return SuccessReply{true}, nil

	case GetAndStoreAccounts:
		var req GetAndStoreAccountsRequest
		if err := decodePayload(msg.Payload, &req); err != nil {
			return nil, err
		}
		accounts, err := h.walletSvc.GetAndStoreAccounts(
			ctx, req.Seed, req.NumAccounts,
		)
		if err != nil {
			return nil, err
		}
		return toAccountsReply(accounts), nil

	case GetAccounts:
		accounts, err := h.walletSvc.GetAccounts(ctx)
		if err != nil {
			return nil, err
		}
		return toAccountsReply(accounts), nil

	case FetchBalance:
		var req FetchBalanceRequest
		if err := decodePayload(msg.Payload, &req); err != nil {
			return nil, err
		}
		balance, err := h.walletSvc.FetchBalance(ctx, req.Address)
		if err != nil {
			return nil, err
		}
		return BalanceReply{balance}, nil

	case Send:
		var req SendRequest
		if err := decodePayload(msg.Payload, &req); err != nil {
			return nil, err
		}
		txid, err := h.walletSvc.Send(ctx, application.SendArgs{
			From:    req.From,
			To:      req.To,
			Amount:  req.Amount,
			FeeRate: req.FeeRate,
		})
		if err != nil {
			return nil, err
		}
		return SendReply{Success: true, TxID: txid}, nil

	case NetworkUpdated:
		var req NetworkUpdatedRequest
		if err := decodePayload(msg.Payload, &req); err != nil {
			return nil, err
		}
		if err := h.walletSvc.UpdateNetwork(ctx, req.Network); err != nil {
			return nil, err
		}
		return SuccessReply{true}, nil

	case Status:
		status, err := h.walletSvc.Status(ctx)
		if err != nil {
			return nil, err
		}
		return toStatusReply(status), nil

	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownMessageType, msg.Type)
	}
}

func decodePayload(payload json.RawMessage, v interface{}) error {
	if len(payload) <= 0 {
		return fmt.Errorf("%w: missing payload", ErrInvalidPayload)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidPayload, err)
	}
	return nil
}

// errorMessage returns the display string of the given error.
func errorMessage(err error) string {
	if errors.Is(err, ErrInvalidPayload) || errors.Is(err, ErrUnknownMessageType) {
		return err.Error()
	}
	return application.WrapError(err).Message()
}

func newMessage(id, msgType string, payload interface{}) Message {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.WithError(err).Warnf("ws: failed to encode %s payload", msgType)
		raw, _ = json.Marshal(ErrorReply{application.ErrCodeInternal.Message()})
	}
	return Message{ID: id, Type: msgType, Payload: raw}
}
