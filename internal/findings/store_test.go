package findings_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"blockscan/internal/compare"
	"blockscan/internal/findings"
	"blockscan/internal/ingest"
	"blockscan/internal/owner"
	"blockscan/internal/testsupport"
)

func sampleBatch(created time.Time) *ingest.Batch {
	return &ingest.Batch{
		ID:        uuid.NewString(),
		CreatedAt: created,
		Inputs:    []string{"submissions.zip"},
		Projects: []ingest.ProjectRecord{
			{Owner: "Amal", Path: "Amal/project.sb3", ContentHash: "aa"},
			{Owner: "Badr", Path: "Badr/project.sb3", ContentHash: "bb"},
		},
		Warnings: []owner.Warning{{Path: "junk.bin", Message: "unsupported file type"}},
	}
}

func TestSaveBatchRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	batch := sampleBatch(time.Now())
	results := []compare.Finding{
		{
			OwnerA:         "Amal",
			OwnerB:         "Badr",
			Modality:       ingest.ModalityProject,
			Classification: compare.ClassLogicMatch,
			Score:          92.5,
			Note:           "logic similarity 92.5% over 40 and 40 opcodes",
		},
		{
			OwnerA:         "Amal",
			OwnerB:         "Badr",
			Modality:       ingest.ModalityProject,
			Classification: compare.ClassSharedAssets,
			Score:          0,
			SharedAssets:   4,
		},
	}

	if err := store.SaveBatch(ctx, batch, results); err != nil {
		t.Fatalf("SaveBatch failed: %v", err)
	}

	stored, err := store.ListFindings(ctx, batch.ID)
	if err != nil {
		t.Fatalf("ListFindings failed: %v", err)
	}
	if len(stored) != len(results) {
		t.Fatalf("expected %d findings, got %d", len(results), len(stored))
	}
	for i, finding := range stored {
		if finding != results[i] {
			t.Errorf("finding %d = %#v, want %#v", i, finding, results[i])
		}
	}

	summary, err := store.GetBatch(ctx, batch.ID)
	if err != nil {
		t.Fatalf("GetBatch failed: %v", err)
	}
	if summary.Projects != 2 || summary.Findings != 2 {
		t.Fatalf("unexpected summary counts: %#v", summary)
	}
	if len(summary.Inputs) != 1 || summary.Inputs[0] != "submissions.zip" {
		t.Fatalf("unexpected inputs: %v", summary.Inputs)
	}
	if len(summary.Warnings) != 1 {
		t.Fatalf("unexpected warnings: %v", summary.Warnings)
	}
}

func TestLatestBatchIDOrdersByTime(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	older := sampleBatch(base)
	newer := sampleBatch(base.Add(time.Minute))

	if err := store.SaveBatch(ctx, older, nil); err != nil {
		t.Fatalf("SaveBatch older: %v", err)
	}
	if err := store.SaveBatch(ctx, newer, nil); err != nil {
		t.Fatalf("SaveBatch newer: %v", err)
	}

	latest, err := store.LatestBatchID(ctx)
	if err != nil {
		t.Fatalf("LatestBatchID failed: %v", err)
	}
	if latest != newer.ID {
		t.Fatalf("expected latest %s, got %s", newer.ID, latest)
	}

	summaries, err := store.ListBatches(ctx)
	if err != nil {
		t.Fatalf("ListBatches failed: %v", err)
	}
	if len(summaries) != 2 || summaries[0].ID != newer.ID {
		t.Fatalf("unexpected batch order: %#v", summaries)
	}
}

func TestLatestBatchIDEmptyStore(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.LatestBatchID(context.Background()); err != findings.ErrBatchNotFound {
		t.Fatalf("expected ErrBatchNotFound, got %v", err)
	}
}

func TestGetBatchUnknownID(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)

	if _, err := store.GetBatch(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for unknown batch id")
	}
}

func TestOpenRejectsSecondLocker(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first := testsupport.MustOpenStore(t, cfg)

	if _, err := findings.Open(cfg); err == nil {
		t.Fatal("expected second open to fail while lock held")
	}

	if err := first.Close(); err != nil {
		t.Fatalf("close first store: %v", err)
	}
	second, err := findings.Open(cfg)
	if err != nil {
		t.Fatalf("reopen after close: %v", err)
	}
	defer second.Close()
}
