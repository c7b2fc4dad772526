package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Codegass/repodigger/core/buildsys"
	"github.com/Codegass/repodigger/core/corpus"
	"github.com/Codegass/repodigger/core/history"
	"github.com/Codegass/repodigger/internal/contract"
	"github.com/Codegass/repodigger/schema"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultRecordLimit caps parse_history output when no limit is given.
const defaultRecordLimit = 20

// corpusKey identifies one version of a corpus file on disk.
type corpusKey struct {
	path    string
	modTime time.Time
	size    int64
}

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	git    contract.GitClient
	corpus *lru.Cache[corpusKey, []schema.AuthorStat]
}

func jsonResult(v any) *mcp.CallToolResult {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(jsonData))
}

func (h *toolHandler) handleClassifyBuildSystem(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}

	verdict, err := buildsys.Classify(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("classification failed: %v", err)), nil
	}

	return jsonResult(struct {
		Path        string `json:"path"`
		Description string `json:"description"`
		schema.BuildVerdict
	}{path, buildsys.Describe(verdict), verdict}), nil
}

func (h *toolHandler) handleParseHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	repoPath := request.GetString("repo_path", "")
	if repoPath == "" {
		return mcp.NewToolResultError("repo_path is required"), nil
	}
	limit := request.GetInt("limit", defaultRecordLimit)
	if limit <= 0 {
		return mcp.NewToolResultError("limit must be at least 1"), nil
	}

	raw, err := h.git.GetHistoryLog(ctx, repoPath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("git log failed: %v", err)), nil
	}
	records := history.Parse(raw)
	if request.GetBool("tests_only", false) {
		records = corpus.Extract(records)
	}

	summary := history.Summarize(records)
	if len(records) > limit {
		records = records[:limit]
	}
	return jsonResult(struct {
		Summary history.Summary           `json:"summary"`
		Records []schema.FileChangeRecord `json:"records"`
	}{summary, records}), nil
}

func (h *toolHandler) handleCorpusAuthorStats(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("corpus_csv", "")
	if path == "" {
		return mcp.NewToolResultError("corpus_csv is required"), nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid path: %v", err)), nil
	}
	info, err := os.Stat(abs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("corpus not readable: %v", err)), nil
	}

	key := corpusKey{path: abs, modTime: info.ModTime(), size: info.Size()}
	if stats, ok := h.corpus.Get(key); ok {
		return jsonResult(stats), nil
	}

	records, err := corpus.ReadCorpusCSV(abs)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read corpus: %v", err)), nil
	}
	stats := corpus.AuthorStats(records)
	h.corpus.Add(key, stats)
	return jsonResult(stats), nil
}
