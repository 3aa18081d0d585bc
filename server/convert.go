package server

import (
	"github.com/carn181/mlsp/model"
	"github.com/carn181/mlsp/transport"
)

// MLSP negotiates utf-8 position encoding unconditionally (see
// lifecycle.go's Initialize), so converting between transport.Position
// and model.Point is a direct field rename, never a UTF-16 surrogate
// adjustment.

func toModelPoint(p transport.Position) model.Point {
	return model.Point{Row: p.Line, Column: p.Character}
}

func toTransportPosition(p model.Point) transport.Position {
	return transport.Position{Line: p.Row, Character: p.Column}
}

func toModelRange(r transport.Range) model.Range {
	return model.Range{Start: toModelPoint(r.Start), End: toModelPoint(r.End)}
}

func toTransportRange(r model.Range) transport.Range {
	return transport.Range{Start: toTransportPosition(r.Start), End: toTransportPosition(r.End)}
}
