package docrpc

import (
	"context"
	"strings"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mmynk/kakeibo/internal/storage"
)

var _ storage.Store = (*Client)(nil)

type unaryClient = connect.Client[structpb.Struct, structpb.Struct]

// Client is a storage.Store backed by a remote document service.
type Client struct {
	query  *unaryClient
	get    *unaryClient
	create *unaryClient
	patch  *unaryClient
	delete *unaryClient
}

// NewClient constructs a client for the document service at baseURL
// (for example, http://localhost:8080).
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		query:  connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+DocumentServiceQueryProcedure, opts...),
		get:    connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+DocumentServiceGetProcedure, opts...),
		create: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+DocumentServiceCreateProcedure, opts...),
		patch:  connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+DocumentServicePatchProcedure, opts...),
		delete: connect.NewClient[structpb.Struct, structpb.Struct](httpClient, baseURL+DocumentServiceDeleteProcedure, opts...),
	}
}

// BearerToken returns an interceptor that authenticates every call with token.
func BearerToken(token string) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if req.Spec().IsClient && token != "" {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}

// Query implements storage.Store.
func (c *Client) Query(ctx context.Context, q storage.Query) ([]storage.Document, error) {
	var out QueryResponse
	if err := call(ctx, c.query, QueryRequest{Query: q}, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

// Get implements storage.Store.
func (c *Client) Get(ctx context.Context, id string) (storage.Document, error) {
	var out DocumentMessage
	if err := call(ctx, c.get, IDRequest{ID: id}, &out); err != nil {
		return nil, err
	}
	return out.Document, nil
}

// Create implements storage.Store.
func (c *Client) Create(ctx context.Context, doc storage.Document) (storage.Document, error) {
	var out DocumentMessage
	if err := call(ctx, c.create, DocumentMessage{Document: doc}, &out); err != nil {
		return nil, err
	}
	return out.Document, nil
}

// Patch implements storage.Store.
func (c *Client) Patch(ctx context.Context, id string, p storage.Patch) (storage.Document, error) {
	var out DocumentMessage
	if err := call(ctx, c.patch, PatchRequest{ID: id, Patch: p}, &out); err != nil {
		return nil, err
	}
	return out.Document, nil
}

// Delete implements storage.Store.
func (c *Client) Delete(ctx context.Context, id string) error {
	var out struct{}
	return call(ctx, c.delete, IDRequest{ID: id}, &out)
}

// Close is a no-op; the HTTP client is owned by the caller.
func (c *Client) Close() error {
	return nil
}

func call(ctx context.Context, client *unaryClient, in, out any) error {
	msg, err := Encode(in)
	if err != nil {
		return err
	}
	resp, err := client.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return FromConnectError(err)
	}
	return Decode(resp.Msg, out)
}
