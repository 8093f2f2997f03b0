package wrpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kspr-network/kspr-daemon/pkg/explorer"
	"github.com/stretchr/testify/require"
)

type handlerFunc func(params json.RawMessage) (interface{}, *rpcError)

type fakeNode struct {
	lock     *sync.Mutex
	handlers map[string]handlerFunc
	requests map[string][]json.RawMessage
}

func newFakeNode(handlers map[string]handlerFunc) *fakeNode {
	return &fakeNode{
		lock:     &sync.Mutex{},
		handlers: handlers,
		requests: make(map[string][]json.RawMessage),
	}
}

func (n *fakeNode) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		req := struct {
			ID     uint64          `json:"id"`
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}{}
		if err := json.Unmarshal(msg, &req); err != nil {
			return
		}

		n.lock.Lock()
		n.requests[req.Method] = append(n.requests[req.Method], req.Params)
		handler, ok := n.handlers[req.Method]
		n.lock.Unlock()
		if !ok {
			continue
		}

		result, rpcErr := handler(req.Params)
		resp := map[string]interface{}{"id": req.ID}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["params"] = result
		}
		// Notifications must be ignored by the client.
		notification, _ := json.Marshal(map[string]interface{}{
			"method": "virtualDaaScoreChangedNotification",
			"params": map[string]interface{}{"virtualDaaScore": 1},
		})
		if err := conn.WriteMessage(websocket.TextMessage, notification); err != nil {
			return
		}
		if err := conn.WriteJSON(resp); err != nil {
			return
		}
	}
}

func (n *fakeNode) requestsFor(method string) []json.RawMessage {
	n.lock.Lock()
	defer n.lock.Unlock()
	return n.requests[method]
}

func newTestService(t *testing.T, node *fakeNode, timeout time.Duration) explorer.Service {
	server := httptest.NewServer(node)
	t.Cleanup(server.Close)

	svc, err := NewService(Opts{Timeout: timeout})
	require.NoError(t, err)

	endpoint := "ws" + strings.TrimPrefix(server.URL, "http")
	err = svc.Connect(context.Background(), endpoint)
	require.NoError(t, err)
	t.Cleanup(func() {
		// nolint
		svc.Disconnect()
	})
	return svc
}

func TestGetUtxosByAddresses(t *testing.T) {
	node := newFakeNode(map[string]handlerFunc{
		"getUtxosByAddresses": func(json.RawMessage) (interface{}, *rpcError) {
			return getUtxosByAddressesResponse{
				Entries: []rpcUtxosByAddressesEntry{
					{
						Address: "kaspa:addr",
						Outpoint: rpcOutpoint{
							TransactionID: strings.Repeat("ab", 32),
							Index:         1,
						},
						UtxoEntry: rpcUtxoEntry{
							Amount: 150000000,
							ScriptPublicKey: rpcScriptPublicKey{
								Script: "20" + strings.Repeat("00", 32) + "ac",
							},
							BlockDaaScore: 1000,
						},
					},
				},
			}, nil
		},
	})
	svc := newTestService(t, node, time.Second)

	utxos, err := svc.GetUtxosByAddresses(context.Background(), []string{"kaspa:addr"})
	require.NoError(t, err)
	require.Len(t, utxos, 1)
	require.Equal(t, "kaspa:addr", utxos[0].Address)
	require.Equal(t, uint64(150000000), utxos[0].Amount)
	require.Equal(t, uint32(1), utxos[0].Index)
	require.Len(t, utxos[0].ScriptPublicKey.Script, 34)

	reqs := node.requestsFor("getUtxosByAddresses")
	require.Len(t, reqs, 1)
	require.JSONEq(t, `{"addresses":["kaspa:addr"]}`, string(reqs[0]))
}

func TestGetMempoolEntriesByAddresses(t *testing.T) {
	node := newFakeNode(map[string]handlerFunc{
		"getMempoolEntriesByAddresses": func(json.RawMessage) (interface{}, *rpcError) {
			return getMempoolEntriesByAddressesResponse{
				Entries: []rpcMempoolEntryByAddress{
					{
						Address: "kaspa:addr",
						Sending: []rpcMempoolEntry{
							{
								Fee: 2000,
								Transaction: rpcTransaction{
									Inputs: []rpcTransactionInput{
										{
											PreviousOutpoint: rpcOutpoint{
												TransactionID: strings.Repeat("cd", 32),
											},
											SigOpCount: 1,
										},
									},
									SubnetworkID: strings.Repeat("00", 20),
								},
							},
						},
						Receiving: []rpcMempoolEntry{{Fee: 1}},
					},
				},
			}, nil
		},
	})
	svc := newTestService(t, node, time.Second)

	entries, err := svc.GetMempoolEntriesByAddresses(
		context.Background(), []string{"kaspa:addr"},
	)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, uint64(2000), entries[0].Fee)
	require.True(t, entries[0].Transaction.SpendsAnyOf([]explorer.Outpoint{
		{TransactionID: strings.Repeat("cd", 32), Index: 0},
	}))
}

func TestSubmitTransaction(t *testing.T) {
	txid := strings.Repeat("ef", 32)
	node := newFakeNode(map[string]handlerFunc{
		"submitTransaction": func(json.RawMessage) (interface{}, *rpcError) {
			return submitTransactionResponse{txid}, nil
		},
		"submitTransactionReplacement": func(json.RawMessage) (interface{}, *rpcError) {
			return nil, &rpcError{"replacement rejected"}
		},
	})
	svc := newTestService(t, node, time.Second)

	tx := explorer.NewTransaction()
	tx.AddInput(explorer.Utxo{
		Outpoint: explorer.Outpoint{TransactionID: strings.Repeat("01", 32)},
		Amount:   10,
	})
	tx.AddOutput(5, explorer.ScriptPublicKey{Script: []byte{0x51}})

	gotTxid, err := svc.SubmitTransaction(context.Background(), tx)
	require.NoError(t, err)
	require.Equal(t, txid, gotTxid)

	reqs := node.requestsFor("submitTransaction")
	require.Len(t, reqs, 1)
	req := submitTransactionRequest{}
	require.NoError(t, json.Unmarshal(reqs[0], &req))
	require.Len(t, req.Transaction.Inputs, 1)
	require.Equal(t, "51", req.Transaction.Outputs[0].ScriptPublicKey.Script)
	require.Equal(t, strings.Repeat("00", 20), req.Transaction.SubnetworkID)

	_, err = svc.SubmitTransactionReplacement(context.Background(), tx)
	rpcErr := &explorer.RPCError{}
	require.ErrorAs(t, err, &rpcErr)
	require.Equal(t, "replacement rejected", rpcErr.Message)
}

func TestCallTimeout(t *testing.T) {
	node := newFakeNode(map[string]handlerFunc{})
	svc := newTestService(t, node, 100*time.Millisecond)

	_, err := svc.GetVirtualDaaScore(context.Background())
	require.ErrorIs(t, err, explorer.ErrNodeUnavailable)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNotConnected(t *testing.T) {
	svc, err := NewService(Opts{})
	require.NoError(t, err)
	require.False(t, svc.IsConnected())

	_, err = svc.GetBalanceByAddress(context.Background(), "kaspa:addr")
	require.ErrorIs(t, err, explorer.ErrNodeUnavailable)

	require.NoError(t, svc.Disconnect())
}

func TestDisconnect(t *testing.T) {
	node := newFakeNode(map[string]handlerFunc{
		"getBalanceByAddress": func(json.RawMessage) (interface{}, *rpcError) {
			return getBalanceByAddressResponse{42}, nil
		},
	})
	svc := newTestService(t, node, time.Second)
	require.True(t, svc.IsConnected())

	balance, err := svc.GetBalanceByAddress(context.Background(), "kaspa:addr")
	require.NoError(t, err)
	require.Equal(t, uint64(42), balance)

	require.NoError(t, svc.Disconnect())
	require.False(t, svc.IsConnected())

	_, err = svc.GetBalanceByAddress(context.Background(), "kaspa:addr")
	require.ErrorIs(t, err, explorer.ErrNotConnected)
}
