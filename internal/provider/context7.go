package provider

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/client/transport"
	"github.com/mark3labs/mcp-go/mcp"
)

// DefaultContext7Endpoint is the hosted Context7 MCP server.
const DefaultContext7Endpoint = "https://mcp.context7.com/mcp"

// LibraryInfo is one match from a library-name resolution.
type LibraryInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// LibraryDocs is documentation content for one library/topic page.
type LibraryDocs struct {
	LibraryID string `json:"library_id"`
	Topic     string `json:"topic,omitempty"`
	Content   string `json:"content"`
	Page      int    `json:"page"`
}

// Context7Client fetches up-to-date library documentation from the Context7
// MCP server over streamable HTTP. The session is established lazily on
// first use.
type Context7Client struct {
	endpoint string
	apiKey   string

	initOnce sync.Once
	initErr  error
	cli      *client.Client
}

func NewContext7Client(endpoint, apiKey string) *Context7Client {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		endpoint = DefaultContext7Endpoint
	}
	return &Context7Client{endpoint: endpoint, apiKey: apiKey}
}

func (c *Context7Client) ensureSession(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("context7: client is nil")
	}
	c.initOnce.Do(func() {
		var opts []transport.StreamableHTTPCOption
		if c.apiKey != "" {
			opts = append(opts, transport.WithHTTPHeaders(map[string]string{
				"CONTEXT7_API_KEY": c.apiKey,
			}))
		}
		cli, err := client.NewStreamableHttpClient(c.endpoint, opts...)
		if err != nil {
			c.initErr = fmt.Errorf("context7: init client: %w", err)
			return
		}
		if err := cli.Start(ctx); err != nil {
			c.initErr = fmt.Errorf("context7: start transport: %w", err)
			return
		}
		initReq := mcp.InitializeRequest{}
		initReq.Params.ProtocolVersion = mcp.LATEST_PROTOCOL_VERSION
		initReq.Params.ClientInfo = mcp.Implementation{Name: "docforge", Version: "0.1.0"}
		if _, err := cli.Initialize(ctx, initReq); err != nil {
			c.initErr = fmt.Errorf("context7: initialize session: %w", err)
			return
		}
		c.cli = cli
	})
	return c.initErr
}

func (c *Context7Client) Close() error {
	if c == nil || c.cli == nil {
		return nil
	}
	return c.cli.Close()
}

// callToolText invokes one MCP tool and concatenates its text content.
func (c *Context7Client) callToolText(ctx context.Context, tool string, args map[string]any) (string, error) {
	if err := c.ensureSession(ctx); err != nil {
		return "", err
	}
	req := mcp.CallToolRequest{}
	req.Params.Name = tool
	req.Params.Arguments = args

	res, err := c.cli.CallTool(ctx, req)
	if err != nil {
		return "", fmt.Errorf("context7: call %s: %w", tool, err)
	}
	var parts []string
	for _, content := range res.Content {
		if tc, ok := content.(mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	text := strings.Join(parts, "\n")
	if res.IsError {
		return "", fmt.Errorf("context7: tool %s failed: %s", tool, text)
	}
	return text, nil
}

// ResolveLibrary resolves a human library name to Context7 library IDs.
// No match yields an empty slice, not an error.
func (c *Context7Client) ResolveLibrary(ctx context.Context, name string) ([]LibraryInfo, error) {
	log.Printf("context7: resolving library ID for %q", name)
	text, err := c.callToolText(ctx, "resolve-library-id", map[string]any{
		"libraryName": name,
	})
	if err != nil {
		return nil, err
	}
	return parseLibraryList(text), nil
}

// parseLibraryList reads "/org/repo - description" lines.
func parseLibraryList(text string) []LibraryInfo {
	var libraries []LibraryInfo
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "/") {
			continue
		}
		id, description, _ := strings.Cut(line, " - ")
		id = strings.TrimSpace(id)
		segs := strings.Split(id, "/")
		libraries = append(libraries, LibraryInfo{
			ID:          id,
			Name:        segs[len(segs)-1],
			Description: strings.TrimSpace(description),
		})
	}
	return libraries
}

// LibraryDocs fetches one page of documentation for a resolved library ID.
func (c *Context7Client) LibraryDocs(ctx context.Context, libraryID, topic string, page int) (LibraryDocs, error) {
	log.Printf("context7: fetching docs for %s topic=%q page=%d", libraryID, topic, page)
	args := map[string]any{"context7CompatibleLibraryID": libraryID}
	if topic != "" {
		args["topic"] = topic
	}
	if page > 1 {
		args["page"] = page
	}
	text, err := c.callToolText(ctx, "get-library-docs", args)
	if err != nil {
		return LibraryDocs{}, err
	}
	if page < 1 {
		page = 1
	}
	return LibraryDocs{LibraryID: libraryID, Topic: topic, Content: text, Page: page}, nil
}

// FullLibraryContext resolves a library and assembles an overview plus
// per-topic documentation into one markdown blob. A name with no matches
// yields a short note rather than an error; transport failures propagate.
func (c *Context7Client) FullLibraryContext(ctx context.Context, name string, topics []string) (string, error) {
	libraries, err := c.ResolveLibrary(ctx, name)
	if err != nil {
		return "", err
	}
	if len(libraries) == 0 {
		return fmt.Sprintf("No documentation found for library: %s", name), nil
	}

	library := libraries[0]
	log.Printf("context7: using library %s", library.ID)

	var all []string
	all = append(all, fmt.Sprintf("# %s Documentation", library.Name))
	if library.Description != "" {
		all = append(all, "\n"+library.Description+"\n")
	}

	general, err := c.LibraryDocs(ctx, library.ID, "", 1)
	if err != nil {
		return "", err
	}
	all = append(all, "\n## Overview\n\n"+general.Content)

	for _, topic := range topics {
		topicDocs, err := c.LibraryDocs(ctx, library.ID, topic, 1)
		if err != nil {
			log.Printf("context7: failed to fetch %s docs: %v", topic, err)
			continue
		}
		if topicDocs.Content != "" {
			all = append(all, fmt.Sprintf("\n## %s\n\n%s", topicHeading(topic), topicDocs.Content))
		}
	}

	return strings.Join(all, "\n"), nil
}

// topicHeading upper-cases the first letter of each word for section titles.
func topicHeading(topic string) string {
	words := strings.Fields(topic)
	for i, word := range words {
		r, size := utf8.DecodeRuneInString(word)
		words[i] = string(unicode.ToUpper(r)) + word[size:]
	}
	return strings.Join(words, " ")
}
