// Package mcpserver exposes the content index to authoring tools over MCP
// (Model Context Protocol) on stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/quire/internal/apperr"
	"github.com/starford/quire/internal/build"
	"github.com/starford/quire/internal/content"
	"github.com/starford/quire/internal/listing"
	"github.com/starford/quire/internal/models"
	"github.com/starford/quire/internal/parser"
	"github.com/starford/quire/internal/posts"
	"github.com/starford/quire/internal/search"
	"github.com/starford/quire/internal/storage"
	"github.com/starford/quire/internal/tags"
)

// ContractURI is the resource URI of the front-matter contract.
const ContractURI = "quire://frontmatter"

const defaultSearchLimit = 20

// Server wraps the MCP server with the quire tools. Every call reads the
// content directory afresh, so edits made between calls are visible.
type Server struct {
	mcp    *server.MCPServer
	store  storage.Provider
	dir    string
	drafts bool
}

// New creates a new MCP server with all tools registered.
func New(store storage.Provider, dir string, drafts bool, version string) *Server {
	s := &Server{store: store, dir: dir, drafts: drafts}

	s.mcp = server.NewMCPServer(
		"Quire",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_posts",
		mcp.WithDescription("List published posts, newest first."),
		mcp.WithString("tag", mcp.Description("Optional tag slug to filter by")),
	), s.listPosts)

	s.mcp.AddTool(mcp.NewTool("get_post",
		mcp.WithDescription("Read a post's metadata and Markdown body by slug."),
		mcp.WithString("slug", mcp.Required(), mcp.Description("Post slug, e.g. 2024/hello-world")),
	), s.getPost)

	s.mcp.AddTool(mcp.NewTool("list_tags",
		mcp.WithDescription("List every tag with its label, slug and usage count, sorted by label."),
	), s.listTags)

	s.mcp.AddTool(mcp.NewTool("search_posts",
		mcp.WithDescription("Search titles, tags, descriptions and bodies of published posts."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchPosts)

	s.mcp.AddTool(mcp.NewTool("check_content",
		mcp.WithDescription("Validate every post in the content directory and report all problems "+
			"(missing title or date, bad front-matter, duplicate slugs)."),
	), s.checkContent)

	s.mcp.AddTool(mcp.NewTool("create_post",
		mcp.WithDescription("Create a new post at the given path. Content MUST follow the "+
			"front-matter contract; read it first via get_frontmatter_contract or the "+
			ContractURI+" resource."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path relative to the content directory, ending in .md or .mdx")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full document: front-matter plus Markdown body")),
	), s.createPost)

	s.mcp.AddTool(mcp.NewTool("get_frontmatter_contract",
		mcp.WithDescription("Returns the post front-matter contract. "+
			"Call this before creating posts to ensure correct structure."),
	), s.getContract)

	s.mcp.AddResource(
		mcp.NewResource(ContractURI, "Front-matter Contract",
			mcp.WithResourceDescription("Front-matter fields every post must or may carry."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) load() (*build.Snapshot, error) {
	return build.Load(s.store, s.dir, s.drafts)
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listPosts(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tag := ""
	if v, tErr := req.RequireString("tag"); tErr == nil {
		tag = strings.TrimSpace(v)
	}
	if tag == "" {
		return jsonResult(listing.Summaries(snap.Posts.ListAll())), nil
	}
	if _, ok := snap.Tags.Lookup(tag); !ok {
		return mcp.NewToolResultError(fmt.Sprintf("unknown tag: %s", tag)), nil
	}
	return jsonResult(listing.Summaries(snap.Tags.PostsForTagSlug(tag))), nil
}

type postDetail struct {
	Slug        string            `json:"slug"`
	URL         string            `json:"url"`
	SourcePath  string            `json:"source_path"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	Author      string            `json:"author,omitempty"`
	Date        string            `json:"date"`
	Tags        []models.TagRef   `json:"tags"`
	Image       string            `json:"image"`
	Draft       bool              `json:"draft,omitempty"`
	Series      string            `json:"series,omitempty"`
	Related     []listing.Summary `json:"related,omitempty"`
	Body        string            `json:"body"`
}

func (s *Server) getPost(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug, err := req.RequireString("slug")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := snap.Posts.GetBySlug(slug)
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", slug)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return jsonResult(postDetail{
		Slug:        p.Slug(),
		URL:         posts.URL(p),
		SourcePath:  p.SourcePath,
		Title:       p.Title,
		Description: p.Description,
		Author:      p.Author,
		Date:        p.Date.Format(time.RFC3339),
		Tags:        tags.TagsForPost(p),
		Image:       posts.ImageURL(p),
		Draft:       p.Draft,
		Series:      p.Series,
		Related:     listing.Summaries(snap.Posts.Related(p, 3)),
		Body:        p.Body,
	}), nil
}

func (s *Server) listTags(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(snap.Tags.AllTags()), nil
}

func (s *Server) searchPosts(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := s.load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ix, err := search.Build(snap.Posts)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits := ix.Query(query, defaultSearchLimit)
	if len(hits) == 0 {
		return mcp.NewToolResultText("no posts found"), nil
	}
	return jsonResult(hits), nil
}

type contentFile struct {
	Path      string    `json:"path"`
	Slug      string    `json:"slug"`
	UpdatedAt time.Time `json:"updated_at"`
}

type contentReport struct {
	Posts int           `json:"posts"`
	Tags  int           `json:"tags"`
	Files []contentFile `json:"files"`
}

// checkContent loads everything and, when the content is sound, reports the
// source files, most recently edited first.
func (s *Server) checkContent(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	files, err := s.store.List(s.dir)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report := contentReport{
		Posts: snap.Posts.Len(),
		Tags:  len(snap.Tags.AllTags()),
		Files: make([]contentFile, 0, len(files)),
	}
	prefix := strings.Trim(s.dir, "/")
	for _, f := range files {
		rel := strings.TrimPrefix(strings.TrimPrefix(f.Path, prefix), "/")
		segments, err := content.SlugsFromPath(rel)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		report.Files = append(report.Files, contentFile{
			Path:      f.Path,
			Slug:      strings.Join(segments, "/"),
			UpdatedAt: f.UpdatedAt,
		})
	}
	sort.SliceStable(report.Files, func(i, j int) bool {
		return report.Files[i].UpdatedAt.After(report.Files[j].UpdatedAt)
	})
	return jsonResult(report), nil
}

func (s *Server) createPost(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rel, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !storage.IsContent(rel) {
		return mcp.NewToolResultError("path must end with .md or .mdx"), nil
	}
	slugs, err := content.SlugsFromPath(rel)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data := []byte(body)
	if _, err := parser.Parse(data); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	full := path.Join(s.dir, rel)
	if _, readErr := s.store.Read(full); readErr == nil {
		return mcp.NewToolResultError(fmt.Sprintf("post already exists: %s", rel)), nil
	}
	snap, err := build.Load(s.store, s.dir, true)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slug := strings.Join(slugs, "/")
	if _, err := snap.Posts.GetBySlug(slug); err == nil {
		return mcp.NewToolResultError(fmt.Sprintf("%s: %q", apperr.ErrDuplicateSlug, slug)), nil
	}

	if _, err := s.store.Write(full, data); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("created: %s (%s)", rel, posts.BlogPrefix+slug)), nil
}

func (s *Server) getContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(FrontmatterContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContractURI,
			MIMEType: "text/markdown",
			Text:     FrontmatterContract,
		},
	}, nil
}
