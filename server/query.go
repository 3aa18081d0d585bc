package server

import (
	"context"
	"encoding/json"

	"github.com/carn181/mlsp/features"
	"github.com/carn181/mlsp/model"
	"github.com/carn181/mlsp/transport"
	"github.com/carn181/mlsp/util"
)

// resolvePos decodes a TextDocumentPositionParams-shaped request and
// looks the file up in the Store, the one piece of boilerplate every
// Query Feature handler below needs first.
func (s *Server) resolvePos(params json.RawMessage) (*model.ParsedFile, model.Point, *transport.ResponseError) {
	var p transport.TextDocumentPositionParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, model.Point{}, transport.NewResponseError(transport.InvalidParams, err.Error())
	}
	path, err := util.URI2path(string(p.TextDocument.URI))
	if err != nil {
		return nil, model.Point{}, transport.NewResponseError(transport.InvalidParams, err.Error())
	}
	pf, ok := s.StoreClient.GetParsedFile(path)
	if !ok {
		return nil, model.Point{}, transport.NewResponseError(transport.InvalidParams, "unknown document: "+path)
	}
	return pf, toModelPoint(p.Position), nil
}

// Hover answers spec.md §4.5 "Hover".
func (s *Server) Hover(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, *transport.ResponseError) {
	pf, pos, errResp := s.resolvePos(params)
	if errResp != nil {
		return nil, errResp
	}
	h, ok := features.HoverAt(pf, pos)
	if !ok {
		return json.RawMessage("null"), nil
	}
	result := transport.Hover{Contents: transport.MarkupContent{Kind: transport.Markdown, Value: h.Markdown}}
	return marshalOrInternal(result)
}

// Definition answers spec.md §4.5 "Go to Definition".
func (s *Server) Definition(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, *transport.ResponseError) {
	pf, pos, errResp := s.resolvePos(params)
	if errResp != nil {
		return nil, errResp
	}
	loc, ok := features.DefinitionAt(pf, pos)
	if !ok {
		return json.RawMessage("null"), nil
	}
	result := transport.Location{
		URI:   transport.DocumentURI(util.Path2URI(loc.Path)),
		Range: toTransportRange(loc.Loc),
	}
	return marshalOrInternal(result)
}

// References answers spec.md §4.5 "Find References", resolving across
// every file the Store currently tracks.
func (s *Server) References(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, *transport.ResponseError) {
	var p transport.ReferenceParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, transport.NewResponseError(transport.InvalidParams, err.Error())
	}
	path, err := util.URI2path(string(p.TextDocument.URI))
	if err != nil {
		return nil, transport.NewResponseError(transport.InvalidParams, err.Error())
	}

	locs := features.FindReferences(s.allFiles(), path, toModelPoint(p.Position), p.Context.IncludeDeclaration)
	out := make([]transport.Location, len(locs))
	for i, l := range locs {
		out[i] = transport.Location{URI: transport.DocumentURI(util.Path2URI(l.Path)), Range: toTransportRange(l.Loc)}
	}
	return marshalOrInternal(out)
}

// DocumentHighlight answers spec.md §4.5 "Document Highlight".
func (s *Server) DocumentHighlight(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, *transport.ResponseError) {
	pf, pos, errResp := s.resolvePos(params)
	if errResp != nil {
		return nil, errResp
	}
	hls := features.DocumentHighlight(pf, pos)
	out := make([]transport.DocumentHighlight, len(hls))
	for i, h := range hls {
		kind := transport.HighlightRead
		if h.Kind == features.HighlightWrite {
			kind = transport.HighlightWrite
		}
		out[i] = transport.DocumentHighlight{Range: toTransportRange(h.Loc), Kind: kind}
	}
	return marshalOrInternal(out)
}

// Rename answers spec.md §4.5 "Rename", building one WorkspaceEdit out
// of every reference FindReferences (via RenameSymbol) locates.
func (s *Server) Rename(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, *transport.ResponseError) {
	var p transport.RenameParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, transport.NewResponseError(transport.InvalidParams, err.Error())
	}
	path, err := util.URI2path(string(p.TextDocument.URI))
	if err != nil {
		return nil, transport.NewResponseError(transport.InvalidParams, err.Error())
	}

	edits, err := features.RenameSymbol(s.allFiles(), path, toModelPoint(p.Position), p.NewName)
	if err != nil {
		return nil, transport.NewResponseError(transport.InvalidParams, err.Error())
	}

	changes := map[transport.DocumentURI][]transport.TextEdit{}
	for _, e := range edits {
		uri := transport.DocumentURI(util.Path2URI(e.Path))
		changes[uri] = append(changes[uri], transport.TextEdit{Range: toTransportRange(e.Loc), NewText: e.NewText})
	}
	return marshalOrInternal(transport.WorkspaceEdit{Changes: changes})
}

// Completion answers spec.md §4.5 "Completion".
func (s *Server) Completion(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, *transport.ResponseError) {
	pf, pos, errResp := s.resolvePos(params)
	if errResp != nil {
		return nil, errResp
	}
	items := features.CompletionAt(pf, pos, s.allFiles(), s.StoreClient)
	out := make([]transport.CompletionItem, len(items))
	for i, it := range items {
		out[i] = transport.CompletionItem{Label: it.Label, Kind: completionItemKind(it.Kind)}
		if it.Doc != "" {
			out[i].Documentation = &transport.MarkupContent{Kind: transport.PlainText, Value: it.Doc}
		}
		if it.Snippet != "" {
			out[i].InsertText = it.Snippet
			out[i].InsertTextFormat = transport.InsertTextFormatSnippet
		}
	}
	return marshalOrInternal(transport.CompletionList{Items: out})
}

func completionItemKind(k features.CompletionKind) transport.CompletionItemKind {
	switch k {
	case features.CompletionFunction, features.CompletionScript:
		return transport.CompletionItemKindFunction
	case features.CompletionNamespace:
		return transport.CompletionItemKindModule
	default:
		return transport.CompletionItemKindVariable
	}
}

// SemanticTokensFull answers spec.md §4.5 "Semantic Tokens".
func (s *Server) SemanticTokensFull(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, *transport.ResponseError) {
	var p transport.SemanticTokensParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, transport.NewResponseError(transport.InvalidParams, err.Error())
	}
	path, err := util.URI2path(string(p.TextDocument.URI))
	if err != nil {
		return nil, transport.NewResponseError(transport.InvalidParams, err.Error())
	}
	pf, ok := s.StoreClient.GetParsedFile(path)
	if !ok {
		return nil, transport.NewResponseError(transport.InvalidParams, "unknown document: "+path)
	}
	data, err := features.SemanticTokens(s.Parser, pf)
	if err != nil {
		return nil, transport.NewResponseError(transport.InternalError, err.Error())
	}
	return marshalOrInternal(transport.SemanticTokens{Data: data})
}

// FoldingRange answers spec.md §4.5 "Folding Range".
func (s *Server) FoldingRange(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, *transport.ResponseError) {
	var p transport.FoldingRangeParams
	if err := json.Unmarshal(params, &p); err != nil {
		return nil, transport.NewResponseError(transport.InvalidParams, err.Error())
	}
	path, err := util.URI2path(string(p.TextDocument.URI))
	if err != nil {
		return nil, transport.NewResponseError(transport.InvalidParams, err.Error())
	}
	pf, ok := s.StoreClient.GetParsedFile(path)
	if !ok {
		return nil, transport.NewResponseError(transport.InvalidParams, "unknown document: "+path)
	}
	ranges, err := features.FoldingRanges(s.Parser, pf)
	if err != nil {
		return nil, transport.NewResponseError(transport.InternalError, err.Error())
	}
	out := make([]transport.FoldingRange, len(ranges))
	for i, r := range ranges {
		out[i] = transport.FoldingRange{
			StartLine: r.Start.Row, EndLine: r.End.Row,
			Kind: transport.FoldingRegion,
		}
	}
	return marshalOrInternal(out)
}

// Formatting is out of scope (spec.md §1 names formatting a
// non-goal): MLSP advertises the capability so editors don't warn, but
// always returns an empty edit list.
func (s *Server) Formatting(ctx context.Context, method string, params json.RawMessage) (json.RawMessage, *transport.ResponseError) {
	return json.RawMessage("[]"), nil
}

func (s *Server) allFiles() map[string]*model.ParsedFile {
	out := map[string]*model.ParsedFile{}
	for _, pf := range s.StoreClient.FetchParsedFiles() {
		out[pf.Path] = pf
	}
	return out
}

func marshalOrInternal(v interface{}) (json.RawMessage, *transport.ResponseError) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, transport.NewResponseError(transport.InternalError, err.Error())
	}
	return b, nil
}
