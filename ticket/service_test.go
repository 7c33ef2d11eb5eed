package ticket

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/yea-80y/WoCo-Event-App/keys"
	"github.com/yea-80y/WoCo-Event-App/storage"
	"github.com/yea-80y/WoCo-Event-App/storage/memstore"
)

func testSigner(t *testing.T) *keys.Signer {
	t.Helper()
	s, err := keys.NewSigner(bytes.Repeat([]byte{0x42}, 32))
	if err != nil {
		t.Fatalf("NewSigner: %v", err)
	}
	return s
}

func fastRetry(attempts int) storage.RetryPolicy {
	return storage.RetryPolicy{
		Attempts:     attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func newTestService(t *testing.T) (*Service, *memstore.Store) {
	t.Helper()
	st := memstore.New(testSigner(t))
	svc := New(st, st, Options{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Retry:       fastRetry(3),
		VerifyRetry: fastRetry(3),
		Now:         func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
	})
	return svc, st
}

// createTestEvent publishes one event with a single series of the given
// supply and waits for the background index updates to settle.
func createTestEvent(t *testing.T, svc *Service, eventID, seriesID string, supply int) {
	t.Helper()
	_, err := svc.CreateEvent(CreateEventRequest{
		EventID:     eventID,
		Title:       "Launch Party",
		Description: "Opening night",
		ImageHash:   "0xabc",
		StartDate:   "2026-06-01",
		EndDate:     "2026-06-02",
		Location:    "Warehouse 9",
		Creator:     testSigner(t),
		Series: []SeriesInput{{
			SeriesID:    seriesID,
			Name:        "General Admission",
			Description: "Standing",
			TotalSupply: supply,
			Price:       25,
		}},
	})
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	svc.WaitBackground()
}

func wallet(i int) WalletIdentifier {
	return WalletIdentifier{Address: fmt.Sprintf("0x%040x", i+1)}
}
