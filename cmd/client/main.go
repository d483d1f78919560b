// Interactive terminal client for the realtime session backend
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

type event struct {
	Type        string      `json:"type"`
	Content     string      `json:"content"`
	Tool        string      `json:"tool"`
	Output      interface{} `json:"output"`
	Message     string      `json:"message"`
	TotalTokens int         `json:"totalTokens"`
}

func main() {
	addr := flag.String("addr", "localhost:8000", "server address")
	sessionID := flag.String("session", "", "session id (random if empty)")
	user := flag.String("user", "", "user id")
	flag.Parse()

	id := *sessionID
	if id == "" {
		id = uuid.NewString()[:8]
	}

	url := fmt.Sprintf("ws://%s/ws/session/%s", *addr, id)
	if *user != "" {
		url += "?user_id=" + *user
	}

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("dial %s: %v", url, err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go readPump(conn, done)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "/quit" {
			break
		}
		if text == "" {
			fmt.Print("> ")
			continue
		}
		msg := map[string]string{"role": "user", "content": text}
		if err := conn.WriteJSON(msg); err != nil {
			log.Fatalf("write: %v", err)
		}
	}

	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	<-done
}

func readPump(conn *websocket.Conn, done chan struct{}) {
	defer close(done)
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var ev event
		if err := json.Unmarshal(data, &ev); err != nil {
			continue
		}
		switch ev.Type {
		case "system":
			fmt.Printf("\n[%s]\n> ", ev.Message)
		case "token":
			fmt.Print(ev.Content)
		case "tool_call":
			fmt.Printf("\n[tool: %s]\n", ev.Tool)
		case "tool_result":
			out, _ := json.Marshal(ev.Output)
			fmt.Printf("[result: %s]\n", out)
		case "done":
			fmt.Printf("\n(%d tokens)\n> ", ev.TotalTokens)
		case "error":
			fmt.Printf("\n[error: %s]\n> ", ev.Message)
		}
	}
}
