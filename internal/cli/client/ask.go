package client

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// ChatRequest represents the chat API request.
type ChatRequest struct {
	Question string        `json:"question"`
	History  []HistoryTurn `json:"history"`
	Category string        `json:"category,omitempty"`
}

// HistoryTurn is one prior exchange supplied with the question.
type HistoryTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse represents the chat API response.
type ChatResponse struct {
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

// AskCmd creates the ask command.
func AskCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the assistant a question",
		Long:  "Sends one question to the chat assistant and prints the full answer.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			outputJSON, _ := cmd.Flags().GetBool("output")
			return runAsk(cmd, args[0], category, outputJSON)
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "", "Product category to prioritize")

	return cmd
}

func runAsk(cmd *cobra.Command, question, category string, outputJSON bool) error {
	api, err := NewAPIClientWithCmd(cmd)
	if err != nil {
		return err
	}

	resp, err := api.Post("/chat", ChatRequest{
		Question: question,
		History:  []HistoryTurn{},
		Category: category,
	})
	if err != nil {
		return fmt.Errorf("chat request failed: %w", err)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(resp.Data, &chatResp); err != nil {
		return fmt.Errorf("failed to parse chat response: %w", err)
	}

	if outputJSON {
		output, _ := json.MarshalIndent(chatResp, "", "  ")
		fmt.Println(string(output))
	} else {
		fmt.Println(chatResp.Answer)
	}

	return nil
}
