// Package mcp provides Model Context Protocol server functionality.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/firmint/firmint"
	"github.com/firmint/firmint/domain/enrichment"
)

// Server wraps the MCP server with firmint-specific tools.
type Server struct {
	mcpServer *server.MCPServer
	client    *firmint.Client
	logger    *slog.Logger
}

// NewServer creates a new MCP server backed by the given firmint Client.
func NewServer(client *firmint.Client, version string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		client: client,
		logger: logger,
	}

	// Create MCP server with server info
	mcpServer := server.NewMCPServer(
		"firmint",
		version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
	)

	// Register tools and resources
	s.registerTools(mcpServer)
	s.registerResources(mcpServer)

	s.mcpServer = mcpServer
	return s
}

// registerTools registers all firmint tools with the MCP server.
func (s *Server) registerTools(mcpServer *server.MCPServer) {
	// Synchronous single-company enrichment
	enrichTool := mcp.NewTool("enrich_company",
		mcp.WithDescription("Enrich a single company by name, returning website, industry, company size, and HQ location"),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("The company name to enrich"),
		),
	)

	mcpServer.AddTool(enrichTool, s.handleEnrichCompany)

	// Batch status lookup
	getBatchTool := mcp.NewTool("get_batch",
		mcp.WithDescription("Get an enrichment batch's state and records by its ID"),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("The numeric ID of the batch"),
		),
	)

	mcpServer.AddTool(getBatchTool, s.handleGetBatch)
}

// registerResources registers the batch records resource template.
func (s *Server) registerResources(mcpServer *server.MCPServer) {
	template := mcp.NewResourceTemplate(
		batchRecordsTemplate,
		"Batch records CSV",
		mcp.WithTemplateDescription("Enriched company records of a terminal batch, as CSV"),
		mcp.WithTemplateMIMEType("text/csv"),
	)

	mcpServer.AddResourceTemplate(template, s.handleBatchRecordsResource)
}

// recordResult is the JSON shape tools return for one enrichment record.
type recordResult struct {
	CompanyName  string `json:"company_name"`
	Website      string `json:"website"`
	Industry     string `json:"industry"`
	CompanySize  string `json:"company_size"`
	HQLocation   string `json:"hq_location"`
	Status       string `json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`
}

func toRecordResult(r enrichment.Record) recordResult {
	return recordResult{
		CompanyName:  r.CompanyName(),
		Website:      r.Website(),
		Industry:     r.Industry(),
		CompanySize:  r.CompanySize(),
		HQLocation:   r.HQLocation(),
		Status:       string(r.Status()),
		ErrorMessage: r.ErrorMessage(),
	}
}

// handleEnrichCompany handles the enrich_company tool invocation.
func (s *Server) handleEnrichCompany(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError("name is required"), nil
	}

	records, err := s.client.Enrich(ctx, []string{name})
	if err != nil {
		s.logger.Error("enrichment failed", slog.String("company", name), slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("enrichment failed: %v", err)), nil
	}
	if len(records) == 0 {
		return mcp.NewToolResultError("enrichment produced no record"), nil
	}

	jsonBytes, err := json.Marshal(toRecordResult(records[0]))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleGetBatch handles the get_batch tool invocation.
func (s *Server) handleGetBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id is required"), nil
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid id: %s", idStr)), nil
	}

	b, err := s.client.Batches.Get(ctx, id)
	if err != nil {
		s.logger.Error("failed to get batch", slog.String("id", idStr), slog.Any("error", err))
		return mcp.NewToolResultError(fmt.Sprintf("failed to get batch: %v", err)), nil
	}

	type batchResult struct {
		ID             string         `json:"id"`
		Source         string         `json:"source"`
		State          string         `json:"state"`
		CompanyCount   int            `json:"company_count"`
		SucceededCount int            `json:"succeeded_count"`
		FailedCount    int            `json:"failed_count"`
		RecordsURI     string         `json:"records_uri"`
		Records        []recordResult `json:"records,omitempty"`
	}

	succeeded, failed := b.RecordCounts()
	result := batchResult{
		ID:             strconv.FormatInt(b.ID(), 10),
		Source:         b.Source(),
		State:          string(b.State()),
		CompanyCount:   len(b.Names()),
		SucceededCount: succeeded,
		FailedCount:    failed,
		RecordsURI:     NewBatchURI(b.ID()).String(),
	}
	for _, r := range b.Records() {
		result.Records = append(result.Records, toRecordResult(r))
	}

	jsonBytes, err := json.Marshal(result)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}

	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// handleBatchRecordsResource serves a terminal batch's records as a CSV
// resource.
func (s *Server) handleBatchRecordsResource(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri, err := ParseBatchURI(request.Params.URI)
	if err != nil {
		return nil, err
	}

	data, err := s.client.Batches.ExportCSV(ctx, uri.BatchID())
	if err != nil {
		return nil, fmt.Errorf("export batch %d: %w", uri.BatchID(), err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "text/csv",
			Text:     string(data),
		},
	}, nil
}

// MCPServer returns the underlying MCP server for HTTP or stdio serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio runs the MCP server on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
