// Package docrpc defines the Connect contract of the document service.
//
// Messages travel as google.protobuf.Struct values so the schema-less
// documents of the store need no generated types. Each procedure has a typed
// Go envelope that is converted to and from a Struct at the edges.
//
//	Query  {"query": Query}           -> {"documents": [Document]}
//	Get    {"id": string}             -> {"document": Document}
//	Create {"document": Document}     -> {"document": Document}
//	Patch  {"id": string, "patch": P} -> {"document": Document}
//	Delete {"id": string}             -> {}
package docrpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"
)

// DocumentServiceName is the fully-qualified name of the service.
const DocumentServiceName = "kakeibo.docstore.v1.DocumentService"

// Procedure paths of the document service.
const (
	DocumentServiceQueryProcedure  = "/" + DocumentServiceName + "/Query"
	DocumentServiceGetProcedure    = "/" + DocumentServiceName + "/Get"
	DocumentServiceCreateProcedure = "/" + DocumentServiceName + "/Create"
	DocumentServicePatchProcedure  = "/" + DocumentServiceName + "/Patch"
	DocumentServiceDeleteProcedure = "/" + DocumentServiceName + "/Delete"
)

// DocumentServiceHandler is implemented by the server side of the service.
type DocumentServiceHandler interface {
	Query(context.Context, *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error)
	Get(context.Context, *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error)
	Create(context.Context, *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error)
	Patch(context.Context, *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error)
	Delete(context.Context, *connect.Request[structpb.Struct]) (*connect.Response[structpb.Struct], error)
}

// NewDocumentServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewDocumentServiceHandler(svc DocumentServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	mux.Handle(DocumentServiceQueryProcedure, connect.NewUnaryHandler(DocumentServiceQueryProcedure, svc.Query, opts...))
	mux.Handle(DocumentServiceGetProcedure, connect.NewUnaryHandler(DocumentServiceGetProcedure, svc.Get, opts...))
	mux.Handle(DocumentServiceCreateProcedure, connect.NewUnaryHandler(DocumentServiceCreateProcedure, svc.Create, opts...))
	mux.Handle(DocumentServicePatchProcedure, connect.NewUnaryHandler(DocumentServicePatchProcedure, svc.Patch, opts...))
	mux.Handle(DocumentServiceDeleteProcedure, connect.NewUnaryHandler(DocumentServiceDeleteProcedure, svc.Delete, opts...))
	return "/" + DocumentServiceName + "/", mux
}
