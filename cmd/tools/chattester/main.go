// chattester exercises the streaming chat endpoints from the command line:
// one-shot messages, an interactive loop, and the daily tip stream.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/haven-labs/mindhaven/backend/internal/model/chat"
	"github.com/haven-labs/mindhaven/backend/pkg/chatclient"
	"github.com/haven-labs/mindhaven/backend/pkg/sse"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] could not load .env, using system environment: %v", err)
	}

	server := flag.String("server", "http://localhost:5051", "backend base URL")
	token := flag.String("token", os.Getenv("CHAT_TOKEN"), "bearer token (may be empty)")
	language := flag.String("lang", "", "reply language code, e.g. es or hi")
	message := flag.String("message", "", "send a single message and exit")
	tip := flag.Bool("tip", false, "stream the daily tip and exit")
	timeout := flag.Duration("timeout", 2*time.Minute, "request timeout")

	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if *tip {
		if err := streamTip(ctx, *server, *token); err != nil {
			log.Fatalf("daily tip failed: %v", err)
		}
		return
	}

	consumer := chatclient.NewConsumer(chatclient.Config{
		BaseURL:  *server,
		Token:    *token,
		Language: *language,
	})

	if *message != "" {
		if err := send(ctx, consumer, *message); err != nil {
			log.Fatalf("chat failed: %v", err)
		}
		return
	}

	fmt.Println("Type a message and press enter; ctrl-d exits.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := send(ctx, consumer, line); err != nil {
			log.Printf("chat failed: %v", err)
		}
	}
}

func send(ctx context.Context, consumer *chatclient.Consumer, text string) error {
	start := time.Now()
	if err := consumer.Send(ctx, text); err != nil {
		return err
	}

	turns := consumer.Transcript().Render()
	reply := turns[len(turns)-1]
	fmt.Println(reply.Content)
	log.Printf("reply of %d characters in %s", len(reply.Content), time.Since(start).Round(time.Millisecond))
	return nil
}

func streamTip(ctx context.Context, server, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server+"/api/daily-tip", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	reader := sse.NewReader(resp.Body)
	for {
		frame, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return errors.New("stream ended before completion")
		}
		if err != nil {
			return err
		}

		switch frame.Kind {
		case chat.FrameToken:
			fmt.Print(frame.Text)
		case chat.FrameDone:
			fmt.Println()
			return nil
		case chat.FrameError:
			fmt.Println()
			return fmt.Errorf("stream error: %s", frame.Text)
		}
	}
}
