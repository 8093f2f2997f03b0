package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v2"

	wsinterface "github.com/kspr-network/kspr-daemon/internal/interfaces/ws"
)

const (
	daemonKey  = "daemon"
	timeoutKey = "timeout"

	defaultDaemonAddress = "ws://localhost:9140/ws"
	defaultTimeout       = 120
)

var (
	ksprDataDir = btcutil.AppDataDir("kspr", false)
	statePath   = filepath.Join(ksprDataDir, "state.json")
)

func main() {
	app := cli.NewApp()

	app.Version = "0.0.1"
	app.Name = "kspr CLI"
	app.Usage = "Command line interface for the ksprd wallet daemon"
	app.Commands = append(
		app.Commands,
		&config,
		&genseed,
		&initwallet,
		&exportseed,
		&unlockwallet,
		&lockwallet,
		&resetwallet,
		&status,
		&network,
		&discover,
		&accounts,
		&balance,
		&send,
		&watch,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func getState() (map[string]string, error) {
	data := map[string]string{}

	file, err := os.ReadFile(statePath)
	if err != nil {
		return nil, errors.New("get config state error: try 'config init'")
	}
	if err := json.Unmarshal(file, &data); err != nil {
		return nil, fmt.Errorf("invalid config state: %w", err)
	}

	return data, nil
}

func setState(data map[string]string) error {
	if _, err := os.Stat(ksprDataDir); os.IsNotExist(err) {
		if err := os.MkdirAll(ksprDataDir, os.ModeDir|0755); err != nil {
			return err
		}
	}

	currentData, err := getState()
	if err != nil {
		currentData = map[string]string{}
	}

	mergedData := merge(currentData, data)

	jsonString, err := json.Marshal(mergedData)
	if err != nil {
		return err
	}
	if err := os.WriteFile(statePath, jsonString, 0644); err != nil {
		return fmt.Errorf("writing to file: %w", err)
	}

	return nil
}

func merge(maps ...map[string]string) map[string]string {
	merge := make(map[string]string, 0)
	for _, m := range maps {
		for k, v := range m {
			merge[k] = v
		}
	}
	return merge
}

func printRespJSON(resp interface{}) {
	jsonStr, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}

	fmt.Println(string(jsonStr))
}

// daemonClient exchanges messages with the websocket interface of the
// daemon over a single connection.
type daemonClient struct {
	conn    *websocket.Conn
	timeout time.Duration
}

func getDaemonClient() (*daemonClient, func(), error) {
	state, err := getState()
	if err != nil {
		return nil, nil, err
	}
	address, ok := state[daemonKey]
	if !ok {
		return nil, nil, errors.New("set daemon with `config set daemon`")
	}
	timeout := defaultTimeout * time.Second
	if v, ok := state[timeoutKey]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid timeout %s: %w", v, err)
		}
		timeout = d
	}

	return dialDaemon(address, timeout)
}

func dialDaemon(
	address string, timeout time.Duration,
) (*daemonClient, func(), error) {
	conn, _, err := websocket.DefaultDialer.Dial(address, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to connect to daemon: %v", err)
	}
	cleanup := func() { _ = conn.Close() }

	return &daemonClient{conn, timeout}, cleanup, nil
}

// request sends a message of the given type and decodes the payload of the
// matching response into reply. Pushes received in the meantime are skipped.
func (c *daemonClient) request(
	msgType string, payload, reply interface{},
) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	msg := wsinterface.Message{
		ID:   uuid.New().String(),
		Type: msgType,
	}
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		msg.Payload = buf
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetWriteDeadline(deadline)
		_ = c.conn.SetReadDeadline(deadline)
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	for {
		var resp wsinterface.Message
		if err := c.conn.ReadJSON(&resp); err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		if resp.ID != msg.ID {
			continue
		}
		return decodeReply(resp, reply)
	}
}

// next blocks until the next push of the given type.
func (c *daemonClient) next(msgType string, reply interface{}) error {
	_ = c.conn.SetReadDeadline(time.Time{})
	for {
		var msg wsinterface.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			return err
		}
		if msg.Type != msgType || msg.ID != "" {
			continue
		}
		return decodeReply(msg, reply)
	}
}

func decodeReply(msg wsinterface.Message, reply interface{}) error {
	var errReply wsinterface.ErrorReply
	if err := json.Unmarshal(msg.Payload, &errReply); err == nil &&
		errReply.Error != "" && msg.Type != wsinterface.Send {
		return errors.New(errReply.Error)
	}
	if reply == nil {
		return nil
	}
	return json.Unmarshal(msg.Payload, reply)
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[kspr] %v\n", err)
	}
	os.Exit(1)
}
