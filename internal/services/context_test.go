package services_test

import (
	"context"
	"testing"

	"feebump/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "run-123")
	ctx = services.WithTxID(ctx, "abcd")
	ctx = services.WithComponent(ctx, "reconcile")

	if id, ok := services.RunIDFromContext(ctx); !ok || id != "run-123" {
		t.Fatalf("unexpected run id: %v %v", id, ok)
	}
	if txid, ok := services.TxIDFromContext(ctx); !ok || txid != "abcd" {
		t.Fatalf("unexpected txid: %v %v", txid, ok)
	}
	if component, ok := services.ComponentFromContext(ctx); !ok || component != "reconcile" {
		t.Fatalf("unexpected component: %v %v", component, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRunID(ctx, "")
	ctx = services.WithTxID(ctx, "")
	if _, ok := services.RunIDFromContext(ctx); ok {
		t.Fatal("expected no run id value")
	}
	if _, ok := services.TxIDFromContext(ctx); ok {
		t.Fatal("expected no txid value")
	}
}
