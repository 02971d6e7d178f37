package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"
	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/blocksearch/v1/embedding"
	"github.com/Aleph-Alpha/blocksearch/v1/logger"
	"github.com/Aleph-Alpha/blocksearch/v1/search"
	"github.com/Aleph-Alpha/blocksearch/v1/vectordb"
)

const shutdownTimeout = 5 * time.Second

// Server exposes find and store over the Model Context Protocol.
type Server struct {
	cfg      Config
	db       vectordb.Service
	embedder embedding.Embedder
	searcher *search.Searcher
	log      logger.Logger

	mcp   *server.MCPServer
	tools []string
}

// Params groups the dependencies of NewServerFromParams.
type Params struct {
	fx.In

	Config   Config
	DB       vectordb.Service
	Embedder embedding.Embedder
	Searcher *search.Searcher
	Logger   logger.Logger
}

// NewServerFromParams is the Fx constructor of Server.
func NewServerFromParams(p Params) (*Server, error) {
	return NewServer(p.Config, p.DB, p.Embedder, p.Searcher, p.Logger)
}

// NewServer builds the MCP server and registers its tools.
func NewServer(cfg Config, db vectordb.Service, embedder embedding.Embedder, searcher *search.Searcher, log logger.Logger) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		db:       db,
		embedder: embedder,
		searcher: searcher,
		log:      log,
		mcp: server.NewMCPServer(cfg.Name, cfg.Version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}
	s.registerTools()

	if cfg.MultiCollection() {
		log.Info("MCP server using multiple collections", nil, map[string]interface{}{"tools": s.tools})
	} else {
		log.Info("MCP server using default collection", nil, map[string]interface{}{
			"collection": cfg.CollectionName,
			"tools":      s.tools,
		})
	}
	return s, nil
}

// Tools returns the names of the registered tools.
func (s *Server) Tools() []string {
	return append([]string(nil), s.tools...)
}

// MCP returns the underlying protocol server.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

func (s *Server) addTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcp.AddTool(tool, handler)
	s.tools = append(s.tools, tool.Name)
}

func (s *Server) registerTools() {
	collectionParam := func(what string) mcp.ToolOption {
		return mcp.WithString("collection_name",
			mcp.Required(),
			mcp.Description(fmt.Sprintf("Name of the collection to %s. Please list the existing collections to know which one to use.", what)),
		)
	}

	findOpts := []mcp.ToolOption{
		mcp.WithDescription(s.cfg.FindDescription),
		mcp.WithString("query", mcp.Required(), mcp.Description("A natural language query to search for.")),
	}
	if s.cfg.MultiCollection() {
		findOpts = append(findOpts, collectionParam("search in"))
	}
	s.addTool(mcp.NewTool("qdrant-find", findOpts...), s.handleFind)

	if !s.cfg.ReadOnly {
		storeOpts := []mcp.ToolOption{
			mcp.WithDescription(s.cfg.StoreDescription),
			mcp.WithString("information", mcp.Required(), mcp.Description("Natural language information to store.")),
			mcp.WithObject("metadata", mcp.Description("JSON metadata to store with the information, optional.")),
		}
		if s.cfg.MultiCollection() {
			storeOpts = append(storeOpts, collectionParam("store the information in"))
		}
		s.addTool(mcp.NewTool("qdrant-store", storeOpts...), s.handleStore)
	}

	if !s.cfg.MultiCollection() {
		return
	}

	s.addTool(mcp.NewTool("qdrant-list-collections",
		mcp.WithDescription(s.cfg.ListCollectionsDescription),
	), s.handleListCollections)

	if !s.cfg.ReadOnly {
		s.addTool(mcp.NewTool("qdrant-create-collection",
			mcp.WithDescription(s.cfg.CreateCollectionDescription),
			mcp.WithString("collection_name", mcp.Required(), mcp.Description("Name of the collection to create.")),
			mcp.WithString("description", mcp.Required(), mcp.Description("Purpose description of the collection.")),
		), s.handleCreateCollection)
	}
}

func (s *Server) collectionFor(args map[string]any) (string, error) {
	if !s.cfg.MultiCollection() {
		return s.cfg.CollectionName, nil
	}
	name, err := requireString(args, "collection_name")
	if err != nil {
		return "", err
	}
	if name == MetadataCollection {
		return "", fmt.Errorf("collection %s is reserved", MetadataCollection)
	}
	return name, nil
}

func (s *Server) handleFind(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	query, err := requireString(args, "query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	collection, err := s.collectionFor(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	s.log.DebugWithContext(ctx, "Finding results", nil, map[string]interface{}{"query": query, "collection": collection})

	results, err := s.searcher.Search(ctx, search.Query{Text: query, Collection: collection})
	if err != nil {
		s.log.ErrorWithContext(ctx, "Find failed", err, map[string]interface{}{"collection": collection})
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No information found for the query '%s'", query)), nil
	}

	content := make([]mcp.Content, 0, len(results)+1)
	content = append(content, mcp.NewTextContent(fmt.Sprintf("Results for the query '%s'", query)))
	for _, r := range results {
		content = append(content, mcp.NewTextContent(FormatEntry(r.Content, r.Metadata)))
	}
	return &mcp.CallToolResult{Content: content}, nil
}

func (s *Server) handleStore(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	information, err := requireString(args, "information")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	collection, err := s.collectionFor(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	metadata, err := optionalObject(args, "metadata")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.storeEntry(ctx, collection, information, metadata); err != nil {
		s.log.ErrorWithContext(ctx, "Store failed", err, map[string]interface{}{"collection": collection})
		return mcp.NewToolResultError(fmt.Sprintf("store failed: %v", err)), nil
	}

	if s.cfg.MultiCollection() {
		return mcp.NewToolResultText(fmt.Sprintf("Remembered: %s in collection %s", information, collection)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Remembered: %s", information)), nil
}

func (s *Server) handleListCollections(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries, err := s.db.Scroll(ctx, MetadataCollection)
	if err != nil {
		s.log.ErrorWithContext(ctx, "Listing collections failed", err, nil)
		return mcp.NewToolResultError(fmt.Sprintf("list collections failed: %v", err)), nil
	}

	content := []mcp.Content{mcp.NewTextContent("Available collections:")}
	for _, e := range entries {
		line := fmt.Sprintf("- `%s`", e.Document())
		if desc, ok := e.Metadata()["description"]; ok {
			line += fmt.Sprintf(": %v", desc)
		}
		content = append(content, mcp.NewTextContent(line))
	}
	if len(entries) == 0 {
		content = append(content, mcp.NewTextContent("No collections found"))
	}
	return &mcp.CallToolResult{Content: content}, nil
}

func (s *Server) handleCreateCollection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	name, err := s.collectionFor(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	description, err := requireString(args, "description")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.ensureCollection(ctx, name); err != nil {
		s.log.ErrorWithContext(ctx, "Create collection failed", err, map[string]interface{}{"collection": name})
		return mcp.NewToolResultError(fmt.Sprintf("create collection failed: %v", err)), nil
	}
	if err := s.storeEntry(ctx, MetadataCollection, name, map[string]any{"description": description}); err != nil {
		s.log.ErrorWithContext(ctx, "Recording collection description failed", err, map[string]interface{}{"collection": name})
		return mcp.NewToolResultError(fmt.Sprintf("create collection failed: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Created collection %s", name)), nil
}

func (s *Server) ensureCollection(ctx context.Context, collection string) error {
	dim, err := s.embedder.Dimension(ctx)
	if err != nil {
		return fmt.Errorf("embedding dimension: %w", err)
	}
	return s.db.EnsureCollection(ctx, collection, uint64(dim))
}

// storeEntry embeds information and upserts it under a random id.
func (s *Server) storeEntry(ctx context.Context, collection, information string, metadata map[string]any) error {
	if err := s.ensureCollection(ctx, collection); err != nil {
		return err
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, []string{information})
	if err != nil {
		return fmt.Errorf("embed: %w", err)
	}

	payload := map[string]any{vectordb.PayloadDocument: information}
	if len(metadata) > 0 {
		payload[vectordb.PayloadMetadata] = metadata
	}
	return s.db.Insert(ctx, collection, []vectordb.EmbeddingInput{{
		ID:      uuid.NewString(),
		Vector:  vectors[0],
		Payload: payload,
	}})
}

// Serve runs the configured transport until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	if s.cfg.Transport == TransportSSE {
		return s.serveSSE(ctx)
	}

	s.log.Info("Serving MCP over stdio", nil, nil)
	err := server.NewStdioServer(s.mcp).Listen(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Server) serveSSE(ctx context.Context) error {
	// The SSE server shuts down srv, which exists before anything is served.
	srv := &http.Server{
		Addr:              s.cfg.Address,
		ReadHeaderTimeout: 10 * time.Second,
	}
	sse := server.NewSSEServer(s.mcp, server.WithHTTPServer(srv))
	srv.Handler = sse

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("Serving MCP over SSE", nil, map[string]interface{}{"address": s.cfg.Address})
		// ListenAndServe returns ErrServerClosed at once when Shutdown ran first.
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		// Closes the open SSE sessions, then srv.
		return sse.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// FormatEntry renders one stored entry for a tool response.
func FormatEntry(content string, metadata map[string]any) string {
	var meta string
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err == nil {
			meta = string(b)
		}
	}
	return fmt.Sprintf("<entry><content>%s</content><metadata>%s</metadata></entry>", content, meta)
}

func requireString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing required argument %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("argument %q must be a string", key)
	}
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("argument %q cannot be empty", key)
	}
	return s, nil
}

func optionalObject(args map[string]any, key string) (map[string]any, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch m := v.(type) {
	case map[string]any:
		return m, nil
	case string:
		// some clients send objects as encoded JSON
		if strings.TrimSpace(m) == "" {
			return nil, nil
		}
		var out map[string]any
		if err := json.Unmarshal([]byte(m), &out); err != nil {
			return nil, fmt.Errorf("argument %q must be a JSON object: %w", key, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("argument %q must be an object", key)
	}
}
