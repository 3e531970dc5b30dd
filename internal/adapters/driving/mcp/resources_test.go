package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/chatlore/chatlore/internal/core/domain"
)

func readRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{URI: uri},
	}
}

func TestServer_handleConversationsResource(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2024, 3, 12, 9, 15, 0, 0, time.UTC)

	t.Run("lists conversations", func(t *testing.T) {
		mockDocs := &mockDocumentService{
			documents: []domain.Document{{
				ID:           "doc-1",
				Name:         "Alice",
				MessageCount: 3,
				SpanStart:    ts,
				SpanEnd:      ts.Add(time.Hour),
			}},
		}

		server, err := NewServer(&Ports{
			Search:   &mockSearchService{},
			Document: mockDocs,
		})
		require.NoError(t, err)

		result, err := server.handleConversationsResource(ctx, readRequest(uriScheme+"conversations"))
		require.NoError(t, err)
		require.Len(t, result.Contents, 1)

		var infos []map[string]any
		require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &infos))
		require.Len(t, infos, 1)
		assert.Equal(t, "Alice", infos[0]["name"])
		assert.Equal(t, float64(3), infos[0]["messages"])
	})

	t.Run("empty list without document service", func(t *testing.T) {
		server, err := NewServer(&Ports{Search: &mockSearchService{}})
		require.NoError(t, err)

		result, err := server.handleConversationsResource(ctx, readRequest(uriScheme+"conversations"))
		require.NoError(t, err)
		assert.Equal(t, "[]", result.Contents[0].Text)
	})
}

func TestServer_handleConversationContentResource(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2024, 3, 12, 9, 15, 0, 0, time.UTC)

	mockDocs := &mockDocumentService{
		document: &domain.Document{
			ID:   "doc-1",
			Name: "Alice",
			Messages: []domain.Message{
				{Timestamp: ts, Sender: "Alice", Text: "hi"},
			},
			MessageCount: 1,
		},
	}

	server, err := NewServer(&Ports{
		Search:   &mockSearchService{},
		Document: mockDocs,
	})
	require.NoError(t, err)

	result, err := server.handleConversationContentResource(ctx, readRequest(uriScheme+"conversations/doc-1"))
	require.NoError(t, err)
	require.Len(t, result.Contents, 1)
	assert.Equal(t, "[2024-03-12 09:15] Alice: hi", result.Contents[0].Text)
}
