package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/notestxt/internal/collection"
	"github.com/starford/notestxt/internal/noteservice"
	"github.com/starford/notestxt/internal/testutil"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	dir := testutil.NoteFolder(t, map[string]string{
		"notes.laptop.txt": "---- id:n1, c:2024-01-01, m:\n! pay rent #home #money\n" +
			"---- id:n2, c:2024-01-02, m:\ngroceries #home\n",
	})
	coll, err := collection.FromFolder(collection.Config{}, dir, "laptop")
	if err != nil {
		t.Fatal(err)
	}
	return New(noteservice.NewService(coll), "test")
}

func callTool(t *testing.T, srv *Server, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no call-tool test helper, so the handlers are called directly.
	var (
		result *mcp.CallToolResult
		err    error
	)
	switch name {
	case "select_notes":
		result, err = srv.selectNotes(ctx, req)
	case "tag_cover":
		result, err = srv.tagCover(ctx, req)
	case "read_note":
		result, err = srv.readNote(ctx, req)
	case "create_note":
		result, err = srv.createNote(ctx, req)
	case "get_note_format":
		result, err = srv.getNoteFormat(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}
	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestSelectNotes(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "select_notes", map[string]any{"query": "#home", "limit": 1})
	var out struct {
		Total int `json:"total"`
		Notes []struct {
			ID string `json:"id"`
		} `json:"notes"`
	}
	if err := json.Unmarshal([]byte(resultText(r)), &out); err != nil {
		t.Fatalf("decode: %v (%s)", err, resultText(r))
	}
	if out.Total != 2 || len(out.Notes) != 1 || out.Notes[0].ID != "n2" {
		t.Errorf("select = %+v", out)
	}

	r = callTool(t, srv, "select_notes", map[string]any{"limit": -1})
	if !r.IsError {
		t.Error("expected error for negative limit")
	}
}

func TestTagCoverTool(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "tag_cover", map[string]any{"query": "#home"})
	text := resultText(r)
	if !strings.Contains(text, `"tag": "#money"`) {
		t.Errorf("tag cover = %s", text)
	}
	if strings.Contains(text, `"tag": "#home"`) {
		t.Error("selected tag must be left out of the cover")
	}
}

func TestCreateAndReadNote(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "create_note", map[string]any{"text": "?? try the new cafe #food"})
	text := resultText(r)
	id, ok := strings.CutPrefix(text, "created: ")
	if !ok || id == "" {
		t.Fatalf("create result = %q", text)
	}

	r = callTool(t, srv, "read_note", map[string]any{"id": id})
	var n noteservice.NoteDetail
	if err := json.Unmarshal([]byte(resultText(r)), &n); err != nil {
		t.Fatal(err)
	}
	if n.Text != "?? try the new cafe #food\n" || n.Prefix != "??" {
		t.Errorf("read = %+v", n)
	}

	if r := callTool(t, srv, "create_note", map[string]any{"text": "  "}); !r.IsError {
		t.Error("expected error for empty text")
	}
}

func TestReadNoteMissing(t *testing.T) {
	srv := testServer(t)
	if r := callTool(t, srv, "read_note", map[string]any{"id": "nope"}); !r.IsError {
		t.Error("expected error for missing note")
	}
	if r := callTool(t, srv, "read_note", map[string]any{}); !r.IsError {
		t.Error("expected error for missing id argument")
	}
}

func TestGetNoteFormat(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "get_note_format", nil)
	if resultText(r) != NoteFormatContract {
		t.Error("format tool should return the contract")
	}

	contents, err := srv.readNoteFormatResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil || len(contents) != 1 {
		t.Fatalf("resource = %v, %v", contents, err)
	}
	if tc, ok := contents[0].(mcp.TextResourceContents); !ok || tc.URI != formatURI {
		t.Errorf("resource contents = %+v", contents[0])
	}
}
