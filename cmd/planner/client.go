package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/planboard/internal/models"
	"github.com/mmynk/planboard/internal/remote"
	"github.com/mmynk/planboard/internal/rpc"
	"github.com/mmynk/planboard/internal/state"
)

// httpClient serves one-shot RPCs; the sync command uses its own client
// because its websocket outlives any timeout.
var httpClient = &http.Client{Timeout: 60 * time.Second}

func clientOptions() []connect.ClientOption {
	if cfg.Client.Token == "" {
		return nil
	}
	return []connect.ClientOption{connect.WithInterceptors(remote.BearerToken(cfg.Client.Token))}
}

func documentClient() *rpc.DocumentClient {
	return rpc.NewDocumentClient(httpClient, cfg.Client.ServerURL, clientOptions()...)
}

func advisorClient() *rpc.AdvisorClient {
	return rpc.NewAdvisorClient(httpClient, cfg.Client.ServerURL, clientOptions()...)
}

// fetchDocument returns the remote document, or the default document when
// nothing was written yet.
func fetchDocument(ctx context.Context) (models.Document, error) {
	resp, err := documentClient().Get.CallUnary(ctx, connect.NewRequest(&rpc.GetDocumentRequest{Path: cfg.Client.Path}))
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to fetch document: %w", err)
	}
	if !resp.Msg.Found {
		return models.DefaultDocument(), nil
	}
	return withDefaults(resp.Msg.Document), nil
}

// withDefaults fills collections left null by a partial import.
func withDefaults(doc models.Document) models.Document {
	def := models.DefaultDocument()
	if doc.Vendors == nil {
		doc.Vendors = def.Vendors
	}
	if doc.Budget == nil {
		// Default lines may reference vendors the import replaced.
		doc.Budget = []models.BudgetLineItem{}
	}
	if doc.Notes == nil {
		doc.Notes = def.Notes
	}
	if doc.Guests == nil {
		doc.Guests = def.Guests
	}
	if doc.Categories == nil {
		doc.Categories = def.Categories
	}
	return doc
}

// mutate applies fn to the current document and writes the result back
// whole. Concurrent editors follow last-write-wins.
func mutate(ctx context.Context, fn func(s *state.Store) error) (models.Document, error) {
	doc, err := fetchDocument(ctx)
	if err != nil {
		return models.Document{}, err
	}

	store := state.New(doc)
	if err := fn(store); err != nil {
		return models.Document{}, err
	}

	updated := store.Document()
	_, err = documentClient().Set.CallUnary(ctx, connect.NewRequest(&rpc.SetDocumentRequest{
		Path:     cfg.Client.Path,
		Document: updated,
		Writer:   uuid.NewString(),
	}))
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to save document: %w", err)
	}
	return updated, nil
}
