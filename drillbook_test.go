package drillbook

import (
	"context"
	"errors"
	"testing"

	"github.com/discochess/drillbook/internal/engine/scriptengine"
	"github.com/discochess/drillbook/internal/store/memstore"
)

func TestNewRequiresEvaluator(t *testing.T) {
	if _, err := New(); !errors.Is(err, ErrNoEvaluator) {
		t.Fatalf("New() = %v, want ErrNoEvaluator", err)
	}
}

func TestAnalyzeGameRejectsEmptyGame(t *testing.T) {
	client, err := New(WithEvaluator(scriptengine.New()))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer client.Close()

	if _, err := client.AnalyzeGame(context.Background(), "u1", "w", nil); !errors.Is(err, ErrEmptyGame) {
		t.Fatalf("AnalyzeGame(nil) = %v, want ErrEmptyGame", err)
	}
}

func TestPersistenceOperationsNeedStore(t *testing.T) {
	client, err := New(WithEvaluator(scriptengine.New()))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	if err := client.Persist(ctx, &GameReport{}); !errors.Is(err, ErrNoStore) {
		t.Fatalf("Persist() = %v, want ErrNoStore", err)
	}
	if _, err := client.Trend(ctx, "u1"); !errors.Is(err, ErrNoStore) {
		t.Fatalf("Trend() = %v, want ErrNoStore", err)
	}
	if _, err := client.NewSession(); !errors.Is(err, ErrNoStore) {
		t.Fatalf("NewSession() = %v, want ErrNoStore", err)
	}
}

func TestCloseIsTerminal(t *testing.T) {
	client, err := New(
		WithEvaluator(scriptengine.New()),
		WithStore(memstore.New()),
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if err := client.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if err := client.Close(); !errors.Is(err, ErrClosed) {
		t.Fatalf("second Close() = %v, want ErrClosed", err)
	}
	if _, err := client.AnalyzeGame(context.Background(), "u1", "w", nil); !errors.Is(err, ErrClosed) {
		t.Fatalf("AnalyzeGame() after close = %v, want ErrClosed", err)
	}
}

func TestRoundingPolicy(t *testing.T) {
	if got := RoundAccuracy(84.26); got != 84.3 {
		t.Fatalf("RoundAccuracy(84.26) = %v, want 84.3", got)
	}
	if got := RoundPawnLoss(31.456); got != 31.46 {
		t.Fatalf("RoundPawnLoss(31.456) = %v, want 31.46", got)
	}
}
