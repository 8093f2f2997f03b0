package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	wsinterface "github.com/kspr-network/kspr-daemon/internal/interfaces/ws"
)

// newTestDaemon starts a websocket server that pushes an accounts update
// before answering every request with the reply returned by handle.
func newTestDaemon(
	t *testing.T, handle func(msg wsinterface.Message) interface{},
) string {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			defer conn.Close()

			for {
				var msg wsinterface.Message
				if err := conn.ReadJSON(&msg); err != nil {
					return
				}

				push, _ := json.Marshal(wsinterface.AccountsReply{
					Accounts: []wsinterface.Account{{Index: 0, Name: "Account 0"}},
				})
				if err := conn.WriteJSON(wsinterface.Message{
					Type:    wsinterface.AccountsUpdated,
					Payload: push,
				}); err != nil {
					return
				}

				payload, _ := json.Marshal(handle(msg))
				if err := conn.WriteJSON(wsinterface.Message{
					ID:      msg.ID,
					Type:    msg.Type,
					Payload: payload,
				}); err != nil {
					return
				}
			}
		},
	))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDaemonClient(t *testing.T) {
	address := newTestDaemon(t, func(msg wsinterface.Message) interface{} {
		switch msg.Type {
		case wsinterface.FetchBalance:
			var req wsinterface.FetchBalanceRequest
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				return wsinterface.ErrorReply{Error: err.Error()}
			}
			if req.Address == "" {
				return wsinterface.ErrorReply{Error: "Invalid address"}
			}
			return wsinterface.BalanceReply{Balance: 1.5}
		case wsinterface.Send:
			return wsinterface.SendReply{Error: "Insufficient funds"}
		default:
			return wsinterface.SuccessReply{Success: true}
		}
	})

	client, cleanup, err := dialDaemon(address, 5*time.Second)
	require.NoError(t, err)
	defer cleanup()

	t.Run("request", func(t *testing.T) {
		var reply wsinterface.BalanceReply
		err := client.request(
			wsinterface.FetchBalance,
			wsinterface.FetchBalanceRequest{Address: "kaspatest:qq"},
			&reply,
		)
		require.NoError(t, err)
		require.Equal(t, 1.5, reply.Balance)

		err = client.request(wsinterface.Lock, nil, nil)
		require.NoError(t, err)
	})

	t.Run("error reply", func(t *testing.T) {
		err := client.request(
			wsinterface.FetchBalance, wsinterface.FetchBalanceRequest{}, nil,
		)
		require.EqualError(t, err, "Invalid address")
	})

	t.Run("send failure", func(t *testing.T) {
		var reply wsinterface.SendReply
		err := client.request(
			wsinterface.Send, wsinterface.SendRequest{To: "kaspatest:qq"}, &reply,
		)
		require.NoError(t, err)
		require.False(t, reply.Success)
		require.Equal(t, "Insufficient funds", reply.Error)
	})

	t.Run("next push", func(t *testing.T) {
		require.NoError(t, client.conn.WriteJSON(wsinterface.Message{
			ID: "1", Type: wsinterface.Status,
		}))

		var reply wsinterface.AccountsReply
		err := client.next(wsinterface.AccountsUpdated, &reply)
		require.NoError(t, err)
		require.Len(t, reply.Accounts, 1)
		require.Equal(t, "Account 0", reply.Accounts[0].Name)
	})
}

func TestFailingDialDaemon(t *testing.T) {
	_, _, err := dialDaemon("ws://127.0.0.1:1/ws", time.Second)
	require.Error(t, err)
}

func TestMerge(t *testing.T) {
	merged := merge(
		map[string]string{daemonKey: "ws://localhost:9140/ws", timeoutKey: "2m"},
		map[string]string{daemonKey: "ws://10.0.0.1:9140/ws"},
	)
	require.Equal(t, map[string]string{
		daemonKey:  "ws://10.0.0.1:9140/ws",
		timeoutKey: "2m",
	}, merged)
}
