package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/carn181/mlsp/transport"
	"github.com/carn181/mlsp/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func didOpen(t *testing.T, s *Server, path, text string) {
	t.Helper()
	params, err := json.Marshal(transport.DidOpenTextDocumentParams{
		TextDocument: transport.TextDocumentItem{URI: transport.DocumentURI(util.Path2URI(path)), Text: text},
	})
	require.NoError(t, err)
	s.DidOpen(context.Background(), "textDocument/didOpen", params)
}

func posParams(path string, row, col uint32) json.RawMessage {
	b, _ := json.Marshal(transport.TextDocumentPositionParams{
		TextDocument: transport.TextDocumentIdentifier{URI: transport.DocumentURI(util.Path2URI(path))},
		Position:     transport.Position{Line: row, Character: col},
	})
	return b
}

func TestDidOpenPublishesParsedFile(t *testing.T) {
	s, cancel := newTestServer(t)
	defer cancel()

	didOpen(t, s, "/work/v.m", "x = 1;\ny = x + 1;\n")

	pf, ok := s.StoreClient.GetParsedFile("/work/v.m")
	require.True(t, ok)
	assert.True(t, pf.Open)
	assert.True(t, pf.IsScript)
}

func TestHoverHandlerReturnsHoverForVariable(t *testing.T) {
	s, cancel := newTestServer(t)
	defer cancel()

	didOpen(t, s, "/work/v.m", "x = 1;\ny = x + 1;\n")
	result, errResp := s.Hover(context.Background(), "textDocument/hover", posParams("/work/v.m", 1, 4))
	require.Nil(t, errResp)

	var hover transport.Hover
	require.NoError(t, json.Unmarshal(result, &hover))
	assert.Contains(t, hover.Contents.Value, "x = 1;")
}

func TestHoverHandlerRejectsUnknownDocument(t *testing.T) {
	s, cancel := newTestServer(t)
	defer cancel()

	_, errResp := s.Hover(context.Background(), "textDocument/hover", posParams("/work/missing.m", 0, 0))
	require.NotNil(t, errResp)
	assert.Equal(t, transport.InvalidParams, errResp.Code)
}

func TestDefinitionHandlerResolvesVariable(t *testing.T) {
	s, cancel := newTestServer(t)
	defer cancel()

	didOpen(t, s, "/work/v.m", "x = 1;\ny = x + 1;\n")
	result, errResp := s.Definition(context.Background(), "textDocument/definition", posParams("/work/v.m", 1, 4))
	require.Nil(t, errResp)

	var loc transport.Location
	require.NoError(t, json.Unmarshal(result, &loc))
	assert.EqualValues(t, 0, loc.Range.Start.Line)
}

func TestDidCloseDropsFileMissingFromDisk(t *testing.T) {
	s, cancel := newTestServer(t)
	defer cancel()

	didOpen(t, s, "/work/v.m", "x = 1;\n")
	params, _ := json.Marshal(transport.DidCloseTextDocumentParams{
		TextDocument: transport.TextDocumentIdentifier{URI: transport.DocumentURI(util.Path2URI("/work/v.m"))},
	})
	s.DidClose(context.Background(), "textDocument/didClose", params)

	_, ok := s.StoreClient.GetParsedFile("/work/v.m")
	assert.False(t, ok, "file does not exist on disk so didClose should drop it from the store")
}

func TestFormattingIsAnIntentionalNoop(t *testing.T) {
	s, cancel := newTestServer(t)
	defer cancel()

	result, errResp := s.Formatting(context.Background(), "textDocument/formatting", nil)
	require.Nil(t, errResp)
	assert.JSONEq(t, "[]", string(result))
}
