package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flarexio/mongovec"
)

const (
	ToolSearchDocuments = "search_documents"
	ToolInsertDocuments = "insert_documents"
	ToolCountDocuments  = "count_documents"
)

type JSONRPCRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      mcp.RequestId   `json:"id"`
	Method  mcp.MCPMethod   `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

func ErrorResponse(id mcp.RequestId, code int, message string) mcp.JSONRPCError {
	return mcp.JSONRPCError{
		JSONRPC: mcp.JSONRPC_VERSION,
		ID:      id,
		Error: struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Data    any    `json:"data,omitempty"`
		}{
			Code:    code,
			Message: message,
		},
	}
}

type MCPEndpoint func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage

const MCPSERVER_INSTRUCTIONS string = `mongovec stores short texts as embeddings in a document database and answers semantic queries through the database's vector search index.

Available tools:
- search_documents: find the stored texts most similar to a query
- insert_documents: embed and store new texts (duplicates are not detected)
- count_documents: number of stored texts

Scores are computed by the vector index; higher is more similar.`

func Tools() []mcp.Tool {
	return []mcp.Tool{
		mcp.NewTool(ToolSearchDocuments,
			mcp.WithDescription("Semantic search over stored documents"),
			mcp.WithString("query",
				mcp.Required(),
				mcp.Description("Free-text query"),
			),
			mcp.WithNumber("k",
				mcp.Description("Maximum number of results"),
			),
		),
		mcp.NewTool(ToolInsertDocuments,
			mcp.WithDescription("Embed and store texts as new documents"),
			mcp.WithArray("texts",
				mcp.Required(),
				mcp.Description("Texts to store"),
				mcp.Items(map[string]any{"type": "string"}),
			),
		),
		mcp.NewTool(ToolCountDocuments,
			mcp.WithDescription("Count stored documents"),
		),
	}
}

func InitializeEndpoint(svc mongovec.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		var params mcp.InitializeParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return ErrorResponse(req.ID, mcp.INVALID_PARAMS, err.Error())
		}

		protocolVersion := mcp.LATEST_PROTOCOL_VERSION
		if clientVersion := params.ProtocolVersion; clientVersion != "" {
			if slices.Contains(mcp.ValidProtocolVersions, clientVersion) {
				protocolVersion = clientVersion
			}
		}

		result := &mcp.InitializeResult{
			ProtocolVersion: protocolVersion,
			Capabilities: mcp.ServerCapabilities{
				Tools: &struct {
					ListChanged bool `json:"listChanged,omitempty"`
				}{},
			},
			ServerInfo: mcp.Implementation{
				Name:    "mongovec",
				Version: "1.0.0",
			},
			Instructions: MCPSERVER_INSTRUCTIONS,
		}

		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  result,
		}
	}
}

func PingEndpoint(svc mongovec.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  struct{}{}, // empty response
		}
	}
}

func ListToolsEndpoint(svc mongovec.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		result := &mcp.ListToolsResult{
			Tools: Tools(),
		}

		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  result,
		}
	}
}

func CallToolEndpoint(svc mongovec.Service) MCPEndpoint {
	return func(ctx context.Context, req JSONRPCRequest) mcp.JSONRPCMessage {
		var params mcp.CallToolParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return ErrorResponse(req.ID, mcp.INVALID_PARAMS, err.Error())
		}

		callToolReq := mcp.CallToolRequest{
			Request: mcp.Request{
				Method: string(req.Method),
			},
			Params: params,
		}

		var (
			result *mcp.CallToolResult
			err    error
		)

		switch params.Name {
		case ToolSearchDocuments:
			result, err = searchDocuments(ctx, svc, callToolReq.GetArguments())

		case ToolInsertDocuments:
			result, err = insertDocuments(ctx, svc, callToolReq.GetArguments())

		case ToolCountDocuments:
			result, err = countDocuments(ctx, svc)

		default:
			return ErrorResponse(req.ID, mcp.METHOD_NOT_FOUND, "tool not found: "+params.Name)
		}

		if err != nil {
			return ErrorResponse(req.ID, mcp.INTERNAL_ERROR, err.Error())
		}

		return mcp.JSONRPCResponse{
			JSONRPC: mcp.JSONRPC_VERSION,
			ID:      req.ID,
			Result:  result,
		}
	}
}

func searchDocuments(ctx context.Context, svc mongovec.Service, args map[string]any) (*mcp.CallToolResult, error) {
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return mcp.NewToolResultError("query is required"), nil
	}

	var k int
	if n, ok := args["k"].(float64); ok {
		k = int(n)
	}

	results, err := svc.Search(ctx, query, k)
	if err != nil {
		return nil, err
	}

	bs, err := json.Marshal(results)
	if err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(string(bs)), nil
}

func insertDocuments(ctx context.Context, svc mongovec.Service, args map[string]any) (*mcp.CallToolResult, error) {
	raw, ok := args["texts"].([]any)
	if !ok || len(raw) == 0 {
		return mcp.NewToolResultError("texts is required"), nil
	}

	texts := make([]string, len(raw))
	for i, v := range raw {
		text, ok := v.(string)
		if !ok {
			return mcp.NewToolResultError(fmt.Sprintf("texts[%d] is not a string", i)), nil
		}

		texts[i] = text
	}

	n, err := svc.Insert(ctx, texts)
	if err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(fmt.Sprintf("Inserted %d documents", n)), nil
}

func countDocuments(ctx context.Context, svc mongovec.Service) (*mcp.CallToolResult, error) {
	count, err := svc.Count(ctx)
	if err != nil {
		return nil, err
	}

	return mcp.NewToolResultText(fmt.Sprintf("%d", count)), nil
}
