package http

import (
	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flarexio/mongovec"

	mcpE "github.com/flarexio/mongovec/mcp"
)

func AddRouters(r *gin.Engine, endpoints mongovec.EndpointSet) {
	// RESTful API routes
	api := r.Group("/api")
	{
		api.POST("/documents", InsertHandler(endpoints.Insert))
		api.GET("/documents/count", CountHandler(endpoints.Count))
		api.GET("/search", SearchHandler(endpoints.Search))
	}
}

func AddStreamableRouters(r *gin.Engine, endpoints map[mcp.MCPMethod]mcpE.MCPEndpoint) {
	mcp := r.Group("/mcp")
	{
		mcp.POST("/", MCPStreamableHandler(endpoints))
	}
}
