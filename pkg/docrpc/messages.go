package docrpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mmynk/kakeibo/internal/storage"
)

// QueryRequest is the body of a Query call.
type QueryRequest struct {
	Query storage.Query `json:"query"`
}

// QueryResponse is the result of a Query call.
type QueryResponse struct {
	Documents []storage.Document `json:"documents"`
}

// IDRequest is the body of Get and Delete calls.
type IDRequest struct {
	ID string `json:"id"`
}

// DocumentMessage carries a single document.
type DocumentMessage struct {
	Document storage.Document `json:"document"`
}

// PatchRequest is the body of a Patch call.
type PatchRequest struct {
	ID    string        `json:"id"`
	Patch storage.Patch `json:"patch"`
}

// Encode converts a JSON-tagged envelope into a Struct.
func Encode(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return s, nil
}

// Decode converts a Struct into a JSON-tagged envelope.
func Decode(s *structpb.Struct, v any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}
	return nil
}

// ToConnectError maps storage errors onto Connect codes.
func ToConnectError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, storage.ErrConflict):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, storage.ErrInvalidQuery):
		return connect.NewError(connect.CodeInvalidArgument, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// FromConnectError maps Connect codes back onto storage errors.
func FromConnectError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		msg = connectErr.Message()
	}
	switch connect.CodeOf(err) {
	case connect.CodeNotFound:
		return fmt.Errorf("%w: %s", storage.ErrNotFound, msg)
	case connect.CodeAlreadyExists:
		return fmt.Errorf("%w: %s", storage.ErrConflict, msg)
	case connect.CodeInvalidArgument:
		return fmt.Errorf("%w: %s", storage.ErrInvalidQuery, msg)
	default:
		return fmt.Errorf("document service: %w", err)
	}
}
