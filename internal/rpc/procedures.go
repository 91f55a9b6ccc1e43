package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	DocumentServiceName = "planboard.v1.DocumentService"
	AuthServiceName     = "planboard.v1.AuthService"
	AdvisorServiceName  = "planboard.v1.AdvisorService"
)

const (
	DocumentServiceGetProcedure     = "/" + DocumentServiceName + "/Get"
	DocumentServiceSetProcedure     = "/" + DocumentServiceName + "/Set"
	DocumentServiceImportProcedure  = "/" + DocumentServiceName + "/Import"
	DocumentServiceExportProcedure  = "/" + DocumentServiceName + "/Export"
	DocumentServiceHistoryProcedure = "/" + DocumentServiceName + "/History"

	AuthServiceLoginProcedure = "/" + AuthServiceName + "/Login"

	AdvisorServiceAdviceProcedure      = "/" + AdvisorServiceName + "/Advice"
	AdvisorServiceAnalyzeIdeaProcedure = "/" + AdvisorServiceName + "/AnalyzeIdea"
)

// DocumentServiceHandler is implemented by the server.
type DocumentServiceHandler interface {
	Get(context.Context, *connect.Request[GetDocumentRequest]) (*connect.Response[GetDocumentResponse], error)
	Set(context.Context, *connect.Request[SetDocumentRequest]) (*connect.Response[SetDocumentResponse], error)
	Import(context.Context, *connect.Request[ImportDocumentRequest]) (*connect.Response[SetDocumentResponse], error)
	Export(context.Context, *connect.Request[ExportDocumentRequest]) (*connect.Response[ExportDocumentResponse], error)
	History(context.Context, *connect.Request[HistoryRequest]) (*connect.Response[HistoryResponse], error)
}

// NewDocumentServiceHandler builds an HTTP handler for svc, mounted at the
// returned path prefix.
func NewDocumentServiceHandler(svc DocumentServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(DocumentServiceGetProcedure, connect.NewUnaryHandler(DocumentServiceGetProcedure, svc.Get, opts...))
	mux.Handle(DocumentServiceSetProcedure, connect.NewUnaryHandler(DocumentServiceSetProcedure, svc.Set, opts...))
	mux.Handle(DocumentServiceImportProcedure, connect.NewUnaryHandler(DocumentServiceImportProcedure, svc.Import, opts...))
	mux.Handle(DocumentServiceExportProcedure, connect.NewUnaryHandler(DocumentServiceExportProcedure, svc.Export, opts...))
	mux.Handle(DocumentServiceHistoryProcedure, connect.NewUnaryHandler(DocumentServiceHistoryProcedure, svc.History, opts...))
	return "/" + DocumentServiceName + "/", mux
}

// AuthServiceHandler is implemented by the server.
type AuthServiceHandler interface {
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
}

func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(AuthServiceLoginProcedure, connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...))
	return "/" + AuthServiceName + "/", mux
}

// AdvisorServiceHandler is implemented by the server.
type AdvisorServiceHandler interface {
	Advice(context.Context, *connect.Request[AdviceRequest]) (*connect.Response[AdviceResponse], error)
	AnalyzeIdea(context.Context, *connect.Request[AnalyzeIdeaRequest]) (*connect.Response[AdviceResponse], error)
}

func NewAdvisorServiceHandler(svc AdvisorServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	mux := http.NewServeMux()
	mux.Handle(AdvisorServiceAdviceProcedure, connect.NewUnaryHandler(AdvisorServiceAdviceProcedure, svc.Advice, opts...))
	mux.Handle(AdvisorServiceAnalyzeIdeaProcedure, connect.NewUnaryHandler(AdvisorServiceAnalyzeIdeaProcedure, svc.AnalyzeIdea, opts...))
	return "/" + AdvisorServiceName + "/", mux
}
