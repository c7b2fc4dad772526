// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/Codegass/repodigger/internal/contract"
	"github.com/Codegass/repodigger/schema"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// corpusCacheSize bounds how many parsed corpus tables stay in memory.
const corpusCacheSize = 32

// NewMCPServer initializes and configures the repodigger MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(git contract.GitClient, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"Repodigger Corpus Server",
		version,
		server.WithLogging(),
	)

	// The size is a positive constant, so New cannot fail
	cache, _ := lru.New[corpusKey, []schema.AuthorStat](corpusCacheSize)
	h := &toolHandler{
		git:    git,
		corpus: cache,
	}

	s.AddTool(mcp.NewTool("classify_build_system",
		mcp.WithDescription("Inspect a project directory and decide whether its build tooling is Maven/Gradle only."),
		mcp.WithString("path", mcp.Description("Path to the project directory."), mcp.Required()),
	), h.handleClassifyBuildSystem)

	s.AddTool(mcp.NewTool("parse_history",
		mcp.WithDescription("Parse the numstat history of a local git repository into per-file change records."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository."), mcp.Required()),
		mcp.WithNumber("limit", mcp.Description("Maximum number of records returned (defaults to 20).")),
		mcp.WithBoolean("tests_only", mcp.Description("Only return records that touch Java test sources.")),
	), h.handleParseHistory)

	s.AddTool(mcp.NewTool("corpus_author_stats",
		mcp.WithDescription("Count distinct test-commit authors per project in a merged corpus CSV."),
		mcp.WithString("corpus_csv", mcp.Description("Path to all_test_commit_log.csv."), mcp.Required()),
	), h.handleCorpusAuthorStats)

	return s
}

// StartMCPServer serves the repodigger tools over stdio.
func StartMCPServer(_ context.Context, git contract.GitClient, version string) error {
	s := NewMCPServer(git, version)
	return server.ServeStdio(s)
}
