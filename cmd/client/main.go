package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cbodonnell/cardbridge/pkg/commands"
	"github.com/cbodonnell/cardbridge/pkg/log"
)

// cardbridge-client posts one command to a running server and prints the
// response, e.g.
//
//	client play_card uuid=3f1c... targetId=jaw-worm-1
//	client -wait 2s end_turn
//	client get_hand
func main() {
	addr := flag.String("addr", "http://127.0.0.1:9191", "Server address")
	raw := flag.String("json", "", "Raw JSON command; overrides positional arguments")
	wait := flag.Duration("wait", 0, "Wait this long for the outcome of a write command")
	logLevel := flag.String("log-level", "warn", "Log level")
	flag.Parse()

	parsedLogLevel, err := log.ParseLogLevel(*logLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}
	log.SetDefaultLogger(log.New(os.Stderr, parsedLogLevel))

	body, err := commandBody(*raw, flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	client := &http.Client{Timeout: 10*time.Second + *wait}
	resp, err := post(client, *addr, body)
	if err != nil {
		log.Error("Failed to send command: %v", err)
		os.Exit(1)
	}
	fmt.Println(string(resp))

	if *wait <= 0 {
		return
	}
	ack := commands.QueuedAck{}
	if err := json.Unmarshal(resp, &ack); err != nil || ack.Status != commands.StatusQueued {
		return
	}
	outcome, err := get(client, fmt.Sprintf("%s/api/outcomes/%d?wait=%s", *addr, ack.SubmissionID, *wait))
	if err != nil {
		log.Error("Failed to fetch outcome: %v", err)
		os.Exit(1)
	}
	fmt.Println(string(outcome))
}

// commandBody builds the JSON body from either a raw command or a name
// followed by key=value parameters. Integer values are sent as numbers.
func commandBody(raw string, args []string) ([]byte, error) {
	if raw != "" {
		return []byte(raw), nil
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("a command name is required")
	}

	cmd := map[string]interface{}{commands.FieldCmd: args[0]}
	for _, arg := range args[1:] {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", arg)
		}
		if n, err := strconv.Atoi(value); err == nil {
			cmd[key] = n
		} else {
			cmd[key] = value
		}
	}
	return json.Marshal(cmd)
}

func post(client *http.Client, addr string, body []byte) ([]byte, error) {
	resp, err := client.Post(addr+"/api/command", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

func get(client *http.Client, url string) ([]byte, error) {
	resp, err := client.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
