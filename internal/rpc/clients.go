package rpc

import (
	"strings"

	"connectrpc.com/connect"
)

// DocumentClient calls DocumentService.
type DocumentClient struct {
	Get     *connect.Client[GetDocumentRequest, GetDocumentResponse]
	Set     *connect.Client[SetDocumentRequest, SetDocumentResponse]
	Import  *connect.Client[ImportDocumentRequest, SetDocumentResponse]
	Export  *connect.Client[ExportDocumentRequest, ExportDocumentResponse]
	History *connect.Client[HistoryRequest, HistoryResponse]
}

// NewDocumentClient creates a DocumentService client for the server at baseURL.
func NewDocumentClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *DocumentClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &DocumentClient{
		Get:     connect.NewClient[GetDocumentRequest, GetDocumentResponse](httpClient, baseURL+DocumentServiceGetProcedure, opts...),
		Set:     connect.NewClient[SetDocumentRequest, SetDocumentResponse](httpClient, baseURL+DocumentServiceSetProcedure, opts...),
		Import:  connect.NewClient[ImportDocumentRequest, SetDocumentResponse](httpClient, baseURL+DocumentServiceImportProcedure, opts...),
		Export:  connect.NewClient[ExportDocumentRequest, ExportDocumentResponse](httpClient, baseURL+DocumentServiceExportProcedure, opts...),
		History: connect.NewClient[HistoryRequest, HistoryResponse](httpClient, baseURL+DocumentServiceHistoryProcedure, opts...),
	}
}

// AuthClient calls AuthService.
type AuthClient struct {
	Login *connect.Client[LoginRequest, LoginResponse]
}

func NewAuthClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &AuthClient{
		Login: connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
	}
}

// AdvisorClient calls AdvisorService.
type AdvisorClient struct {
	Advice      *connect.Client[AdviceRequest, AdviceResponse]
	AnalyzeIdea *connect.Client[AnalyzeIdeaRequest, AdviceResponse]
}

func NewAdvisorClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AdvisorClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &AdvisorClient{
		Advice:      connect.NewClient[AdviceRequest, AdviceResponse](httpClient, baseURL+AdvisorServiceAdviceProcedure, opts...),
		AnalyzeIdea: connect.NewClient[AnalyzeIdeaRequest, AdviceResponse](httpClient, baseURL+AdvisorServiceAnalyzeIdeaProcedure, opts...),
	}
}
