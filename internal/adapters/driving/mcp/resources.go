package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/chatlore/chatlore/internal/core/domain"
)

// uriScheme is the custom URI scheme for Chatlore resources.
const uriScheme = "chatlore://"

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource listing all conversations.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "conversations",
		Name:        "conversations",
		Description: "List of all indexed conversations",
		MIMEType:    "application/json",
	}, s.handleConversationsResource)

	// Template for a single conversation's rendering.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "conversations/{conversationId}",
		Name:        "conversation-content",
		Description: "Full rendered content of one conversation",
		MIMEType:    "text/plain",
	}, s.handleConversationContentResource)
}

// handleConversationsResource returns the list of indexed conversations.
func (s *Server) handleConversationsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Document == nil {
		return jsonResource(req.Params.URI, "[]"), nil
	}

	docs, err := s.ports.Document.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing conversations: %w", err)
	}

	type conversationInfo struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Messages  int    `json:"messages"`
		SpanStart string `json:"span_start"`
		SpanEnd   string `json:"span_end"`
	}

	infos := make([]conversationInfo, len(docs))
	for i, doc := range docs {
		infos[i] = conversationInfo{
			ID:        doc.ID,
			Name:      doc.Name,
			Messages:  doc.MessageCount,
			SpanStart: doc.SpanStart.Format(domain.RenderTimeLayout),
			SpanEnd:   doc.SpanEnd.Format(domain.RenderTimeLayout),
		}
	}

	data, err := json.Marshal(infos)
	if err != nil {
		return nil, fmt.Errorf("marshalling conversations: %w", err)
	}
	return jsonResource(req.Params.URI, string(data)), nil
}

// handleConversationContentResource returns one conversation's rendering.
func (s *Server) handleConversationContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Document == nil {
		return nil, fmt.Errorf("document service not configured")
	}

	id := strings.TrimPrefix(req.Params.URI, uriScheme+"conversations/")
	doc, err := s.ports.Document.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading conversation %s: %w", id, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     doc.Rendering(),
		}},
	}, nil
}

func jsonResource(uri, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     text,
		}},
	}
}
