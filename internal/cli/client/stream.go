package client

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// StreamFrame is one NDJSON envelope from the streaming endpoint.
type StreamFrame struct {
	Chunk string `json:"chunk,omitempty"`
	Done  bool   `json:"done,omitempty"`
	Error string `json:"error,omitempty"`
}

// StreamCmd creates the stream command.
func StreamCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "stream <question>",
		Short: "Ask the assistant a question and stream the answer",
		Long:  "Sends one question to the chat assistant and prints the answer incrementally as it is generated.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStream(cmd, args[0], category)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Product category to prioritize")

	return cmd
}

func runStream(cmd *cobra.Command, question, category string) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	body, err := api.PostStream("/chat/stream", ChatRequest{
		Question: question,
		History:  []HistoryTurn{},
		Category: category,
	})
	if err != nil {
		return fmt.Errorf("stream request failed: %w", err)
	}
	defer body.Close()

	scanner := bufio.NewScanner(body)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var frame StreamFrame
		if err := json.Unmarshal(line, &frame); err != nil {
			return fmt.Errorf("malformed stream frame: %w", err)
		}

		switch {
		case frame.Error != "":
			return fmt.Errorf("stream rejected: %s", frame.Error)
		case frame.Done:
			fmt.Fprintln(os.Stdout)
			return nil
		case frame.Chunk != "":
			fmt.Fprint(os.Stdout, frame.Chunk)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read failed: %w", err)
	}

	return fmt.Errorf("stream ended without a terminal frame")
}
