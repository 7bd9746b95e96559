// Package service implements the Connect handlers served by cmd/server.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mmynk/kakeibo/internal/storage"
	"github.com/mmynk/kakeibo/pkg/docrpc"
)

var _ docrpc.DocumentServiceHandler = (*DocumentService)(nil)

// DocumentService exposes a storage.Store over Connect.
type DocumentService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewDocumentService creates a new DocumentService with the given storage backend.
func NewDocumentService(store storage.Store, logger *slog.Logger) *DocumentService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentService{store: store, logger: logger}
}

// Query returns the documents matching the request's query.
func (s *DocumentService) Query(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in docrpc.QueryRequest
	if err := docrpc.Decode(req.Msg, &in); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	s.logger.Debug("Query request received", "type", in.Query.Type, "filter", in.Query.Filter)

	docs, err := s.store.Query(ctx, in.Query)
	if err != nil {
		s.logFailure("Query", err, "type", in.Query.Type)
		return nil, docrpc.ToConnectError(err)
	}
	if docs == nil {
		docs = []storage.Document{}
	}

	s.logger.Debug("Query successful", "type", in.Query.Type, "count", len(docs))
	return respond(docrpc.QueryResponse{Documents: docs})
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in docrpc.IDRequest
	if err := decodeWithID(req.Msg, &in, func() string { return in.ID }); err != nil {
		return nil, err
	}

	doc, err := s.store.Get(ctx, in.ID)
	if err != nil {
		s.logFailure("Get", err, "id", in.ID)
		return nil, docrpc.ToConnectError(err)
	}
	return respond(docrpc.DocumentMessage{Document: doc})
}

// Create persists a new document.
func (s *DocumentService) Create(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in docrpc.DocumentMessage
	if err := docrpc.Decode(req.Msg, &in); err != nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, err)
	}
	if in.Document == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("document required"))
	}

	doc, err := s.store.Create(ctx, in.Document)
	if err != nil {
		s.logFailure("Create", err, "type", in.Document.Type())
		return nil, docrpc.ToConnectError(err)
	}

	s.logger.Info("Document created", "id", doc.ID(), "type", doc.Type())
	return respond(docrpc.DocumentMessage{Document: doc})
}

// Patch applies mutations to a single document.
func (s *DocumentService) Patch(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in docrpc.PatchRequest
	if err := decodeWithID(req.Msg, &in, func() string { return in.ID }); err != nil {
		return nil, err
	}

	doc, err := s.store.Patch(ctx, in.ID, in.Patch)
	if err != nil {
		s.logFailure("Patch", err, "id", in.ID)
		return nil, docrpc.ToConnectError(err)
	}

	s.logger.Info("Document patched", "id", doc.ID(), "type", doc.Type())
	return respond(docrpc.DocumentMessage{Document: doc})
}

// Delete removes a document by ID.
func (s *DocumentService) Delete(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error) {
	var in docrpc.IDRequest
	if err := decodeWithID(req.Msg, &in, func() string { return in.ID }); err != nil {
		return nil, err
	}

	if err := s.store.Delete(ctx, in.ID); err != nil {
		s.logFailure("Delete", err, "id", in.ID)
		return nil, docrpc.ToConnectError(err)
	}

	s.logger.Info("Document deleted", "id", in.ID)
	return connect.NewResponse(&structpb.Struct{}), nil
}

// logFailure logs expected outcomes (missing documents, bad queries) at
// warn and everything else at error.
func (s *DocumentService) logFailure(op string, err error, args ...any) {
	args = append(args, "error", err)
	if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidQuery) || errors.Is(err, storage.ErrConflict) {
		s.logger.Warn(op+" rejected", args...)
		return
	}
	s.logger.Error(op+" failed", args...)
}

func decodeWithID(msg *structpb.Struct, v any, id func() string) error {
	if err := docrpc.Decode(msg, v); err != nil {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	if id() == "" {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("id required"))
	}
	return nil
}

func respond(v any) (*connect.Response[structpb.Struct], error) {
	msg, err := docrpc.Encode(v)
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(msg), nil
}
