package lsp

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walteh/beanls/pkg/lsp/protocol"
	"github.com/walteh/beanls/pkg/semtok"
)

func (s *Server) SemanticTokensFull(ctx context.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	uri := string(params.TextDocument.URI)
	zerolog.Ctx(ctx).Debug().Str("uri", uri).Msg("semantic tokens request received")

	stream := s.Encoder().Full(ctx, uri)
	return toSemanticTokens(stream), nil
}

func (s *Server) SemanticTokensFullDelta(ctx context.Context, params *protocol.SemanticTokensDeltaParams) (interface{}, error) {
	uri := string(params.TextDocument.URI)
	zerolog.Ctx(ctx).Debug().
		Str("uri", uri).
		Str("previous_result_id", params.PreviousResultID).
		Msg("semantic tokens delta request received")

	res := s.Encoder().Delta(ctx, uri, params.PreviousResultID)
	if res.Full != nil {
		return toSemanticTokens(res.Full), nil
	}

	edits := make([]protocol.SemanticTokensEdit, 0, len(res.Edits))
	for _, e := range res.Edits {
		edits = append(edits, protocol.SemanticTokensEdit{
			Start:       e.Start,
			DeleteCount: e.DeleteCount,
			Data:        e.Data,
		})
	}
	return &protocol.SemanticTokensDelta{ResultID: res.ResultID, Edits: edits}, nil
}

func (s *Server) SemanticTokensRange(ctx context.Context, params *protocol.SemanticTokensRangeParams) (*protocol.SemanticTokens, error) {
	uri := string(params.TextDocument.URI)
	zerolog.Ctx(ctx).Debug().
		Str("uri", uri).
		Uint32("start_line", params.Range.Start.Line).
		Uint32("end_line", params.Range.End.Line).
		Msg("semantic tokens range request received")

	// the end position is exclusive, so a range ending at character 0 stops
	// before that line
	startLine, endLine := int(params.Range.Start.Line), int(params.Range.End.Line)
	if params.Range.End.Character == 0 {
		endLine--
	}

	stream := s.Encoder().Range(ctx, uri, startLine, endLine)
	return toSemanticTokens(stream), nil
}

func toSemanticTokens(stream *semtok.Stream) *protocol.SemanticTokens {
	return &protocol.SemanticTokens{
		ResultID: stream.ResultID,
		Data:     protocol.NonNilSlice(stream.Data),
	}
}
