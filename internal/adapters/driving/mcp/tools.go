package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/chatlore/chatlore/internal/core/ports/driving"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the query to find relevant chat excerpts"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of excerpts to return (default 5)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []SearchResultOutput `json:"results"`
	Count   int                  `json:"count"`
}

// SearchResultOutput represents a single search result.
type SearchResultOutput struct {
	ChunkID      string  `json:"chunk_id"`
	DocumentID   string  `json:"document_id"`
	Conversation string  `json:"conversation"`
	Score        float64 `json:"score"`
	Content      string  `json:"content"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the chat archive"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of excerpts to ground the answer on (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer    string               `json:"answer"`
	Generated bool                 `json:"generated"`
	Sources   []SearchResultOutput `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_archive",
		Description: "Search the user's chat archive for relevant excerpts",
	}, s.handleSearch)

	if s.ports.Ask != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "ask_archive",
			Description: "Answer a question grounded in the user's chat archive",
		}, s.handleAsk)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	results, err := s.ports.Search.Search(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]SearchResultOutput, len(results)),
		Count:   len(results),
	}
	for i := range results {
		output.Results[i] = SearchResultOutput{
			ChunkID:      results[i].Chunk.ID,
			DocumentID:   results[i].Document.ID,
			Conversation: results[i].Document.Name,
			Score:        results[i].Score,
			Content:      results[i].Chunk.Content,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Ask.Ask(ctx, input.Question, driving.AskOptions{TopK: input.TopK})
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:    answer.Text,
		Generated: answer.Generated,
		Sources:   make([]SearchResultOutput, len(answer.Sources)),
	}
	for i := range answer.Sources {
		output.Sources[i] = SearchResultOutput{
			ChunkID:      answer.Sources[i].Chunk.ID,
			DocumentID:   answer.Sources[i].Document.ID,
			Conversation: answer.Sources[i].Document.Name,
			Score:        answer.Sources[i].Score,
			Content:      answer.Sources[i].Chunk.Content,
		}
	}

	return nil, output, nil
}
