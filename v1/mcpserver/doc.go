/*
Package mcpserver exposes the vector store as Model Context Protocol tools
so that an LLM host can search and remember information.

Tools:

  - qdrant-find(query[, collection_name]) returns matching entries as
    <entry><content>...</content><metadata>{...}</metadata></entry>
  - qdrant-store(information[, metadata][, collection_name])
  - qdrant-list-collections and qdrant-create-collection, only when
    COLLECTION_NAME is unset

When COLLECTION_NAME is set every tool works on that collection and the
collection_name parameter is not offered. QDRANT_READ_ONLY=true hides
qdrant-store and qdrant-create-collection. Collection descriptions are kept
as entries of the __mcp_metadata__ collection.

Usage with Fx:

	app := fx.New(
		logger.FXModule,
		qdrant.FXModule,
		embedding.FXModule,
		search.FXModule,
		mcpserver.FXModule,
		fx.Invoke(func(lc fx.Lifecycle, s *mcpserver.Server) { ... }),
	)

The transport is selected with MCP_TRANSPORT (stdio or sse); the SSE
transport listens on MCP_ADDRESS.
*/
package mcpserver
