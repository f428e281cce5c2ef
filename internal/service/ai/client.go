// Package ai wraps the remote completion provider behind a streaming client.
package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/haven-labs/mindhaven/backend/internal/config"
)

// ErrEmptyPrompt rejects a completion call before any network traffic.
var ErrEmptyPrompt = errors.New("user prompt is empty")

// Stream is a lazy, non-restartable sequence of text fragments. Recv returns
// io.EOF when the provider signals completion; any other error aborts the
// sequence.
type Stream interface {
	Recv() (string, error)
	Close()
}

// Completer requests a token-streamed completion for a system/user prompt
// pair. Implementations hold no state between calls.
type Completer interface {
	Stream(ctx context.Context, systemPrompt, userPrompt string) (Stream, error)
}

// Client is the provider-backed Completer built on a compiled eino chain.
type Client struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewClient constructs a Client from provider configuration.
func NewClient(ctx context.Context, cfg config.AIConfig) (*Client, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile completion chain: %w", err)
	}

	return &Client{chatModel: chatModel, chain: runnable}, nil
}

// Stream requests a streamed completion.
func (c *Client) Stream(ctx context.Context, systemPrompt, userPrompt string) (Stream, error) {
	if userPrompt == "" {
		return nil, ErrEmptyPrompt
	}

	reader, err := c.chain.Stream(ctx, map[string]any{
		"system": systemPrompt,
		"query":  userPrompt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open completion stream: %w", err)
	}

	return &chainStream{reader: reader}, nil
}

type chainStream struct {
	reader *schema.StreamReader[*schema.Message]
}

func (s *chainStream) Recv() (string, error) {
	for {
		chunk, err := s.reader.Recv()
		if err != nil {
			return "", err
		}
		if chunk == nil {
			continue
		}
		return chunk.Content, nil
	}
}

func (s *chainStream) Close() {
	s.reader.Close()
}
