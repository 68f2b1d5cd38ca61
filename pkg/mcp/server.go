package mcp

import (
	"context"
	"log/slog"
	"os"

	"github.com/flowlint/flowlint/internal/providers"
	"github.com/flowlint/flowlint/internal/store"
	"github.com/flowlint/flowlint/internal/validation"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// FlowlintServerDeps holds the dependencies for creating a FlowlintServer.
type FlowlintServerDeps struct {
	Validator *validation.WorkflowValidator
	Registry  *providers.Registry
	Store     store.Store // may be nil; the reports tool then returns an error
	Logger    *slog.Logger
}

// FlowlintServer wraps an MCP server with flowlint-specific tool handlers.
type FlowlintServer struct {
	validator *validation.WorkflowValidator
	registry  *providers.Registry
	store     store.Store
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewFlowlintServer creates a new FlowlintServer with all 3 tools registered.
func NewFlowlintServer(deps FlowlintServerDeps) *FlowlintServer {
	logger := deps.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	s := &FlowlintServer{
		validator: deps.Validator,
		registry:  deps.Registry,
		store:     deps.Store,
		logger:    logger,
	}

	mcpSrv := server.NewMCPServer(
		"flowlint",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
		server.WithInstructions("Flowlint validates alerting-workflow definitions. Use flowlint.validate to lint a definition, flowlint.providers to list the provider catalog, and flowlint.reports to query recorded lint reports."),
	)

	mcpSrv.AddTools(s.tools()...)
	s.mcpServer = mcpSrv
	return s
}

// Serve starts the stdio transport and blocks until ctx is cancelled or stdin closes.
func (s *FlowlintServer) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// MCPServer returns the underlying MCPServer for testing or custom transports.
func (s *FlowlintServer) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// tools returns the registered MCP tools as ServerTool entries.
func (s *FlowlintServer) tools() []server.ServerTool {
	return []server.ServerTool{
		{Tool: validateTool(), Handler: s.handleValidate},
		{Tool: providersTool(), Handler: s.handleProviders},
		{Tool: reportsTool(), Handler: s.handleReports},
	}
}

// --- Tool definitions ---

func validateTool() mcp.Tool {
	return mcp.NewTool("flowlint.validate",
		mcp.WithDescription("Validate a workflow definition. Returns errors and warnings with tree paths"),
		mcp.WithObject("definition", mcp.Required(), mcp.Description("Workflow definition object")),
		mcp.WithBoolean("record", mcp.Description("Persist the definition and a lint report to the store")),
		mcp.WithString("tenant_id", mcp.Description("Tenant to record under (default: \"default\")")),
	)
}

func providersTool() mcp.Tool {
	return mcp.NewTool("flowlint.providers",
		mcp.WithDescription("List the provider catalog the validator checks steps against"),
	)
}

func reportsTool() mcp.Tool {
	return mcp.NewTool("flowlint.reports",
		mcp.WithDescription("Query recorded lint reports"),
		mcp.WithString("workflow_id", mcp.Description("Filter by workflow ID")),
		mcp.WithString("tenant_id", mcp.Description("Filter by tenant")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of reports to return")),
	)
}
