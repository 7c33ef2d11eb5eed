package ticket

import (
	"encoding/hex"
	"encoding/json"
	"testing"

	"github.com/yea-80y/WoCo-Event-App/feed"
	"github.com/yea-80y/WoCo-Event-App/keys"
)

func TestCreateEvent_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	signer := testSigner(t)

	cases := []struct {
		name string
		req  CreateEventRequest
	}{
		{"missing event id", CreateEventRequest{
			Creator: signer,
			Series:  []SeriesInput{{SeriesID: "s", TotalSupply: 1}},
		}},
		{"missing signer", CreateEventRequest{
			EventID: "e",
			Series:  []SeriesInput{{SeriesID: "s", TotalSupply: 1}},
		}},
		{"no series", CreateEventRequest{EventID: "e", Creator: signer}},
		{"zero supply", CreateEventRequest{
			EventID: "e", Creator: signer,
			Series: []SeriesInput{{SeriesID: "s", TotalSupply: 0}},
		}},
		{"template count mismatch", CreateEventRequest{
			EventID: "e", Creator: signer,
			Series: []SeriesInput{{
				SeriesID: "s", TotalSupply: 2,
				Templates: []SignedTicket{{}},
			}},
		}},
	}
	for _, tc := range cases {
		if _, err := svc.CreateEvent(tc.req); !IsKind(err, KindValidation) {
			t.Errorf("%s: err = %v, want Validation", tc.name, err)
		}
	}
}

func TestCreateEvent_WritesInventory(t *testing.T) {
	svc, st := newTestService(t)
	createTestEvent(t, svc, "evt-1", "srs-1", 130)

	page0, err := st.ReadFeed(feed.TopicEditions("srs-1", 0))
	if err != nil {
		t.Fatalf("editions page 0: %v", err)
	}
	refs := feed.DecodeDense(page0)
	if len(refs) != 1+feed.Page0Capacity {
		t.Fatalf("page 0 slots = %d, want %d", len(refs), 1+feed.Page0Capacity)
	}

	page1, err := st.ReadFeed(feed.TopicEditions("srs-1", 1))
	if err != nil {
		t.Fatalf("editions page 1: %v", err)
	}
	if got := len(feed.DecodeDense(page1)); got != 3 {
		t.Fatalf("page 1 slots = %d, want 3", got)
	}

	// Slot 0 of page 0 is the metadata ref.
	meta, err := svc.seriesMetadata(refs[0])
	if err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta.TotalSupply != 130 || meta.PageCount != 2 || meta.EventID != "evt-1" {
		t.Fatalf("metadata = %+v", meta)
	}

	// Both claims pages exist and start all-zero.
	for p := 0; p < 2; p++ {
		page, err := st.ReadFeed(feed.TopicClaims("srs-1", p))
		if err != nil {
			t.Fatalf("claims page %d: %v", p, err)
		}
		for _, r := range feed.DecodeSparse(page) {
			if !r.IsZero() {
				t.Fatalf("claims page %d not empty", p)
			}
		}
	}
}

func TestCreateEvent_TemplatesAreSigned(t *testing.T) {
	svc, st := newTestService(t)
	createTestEvent(t, svc, "evt-1", "srs-1", 2)

	page0, err := st.ReadFeed(feed.TopicEditions("srs-1", 0))
	if err != nil {
		t.Fatalf("editions page 0: %v", err)
	}
	refs := feed.DecodeDense(page0)
	if len(refs) != 3 {
		t.Fatalf("page 0 slots = %d, want 3", len(refs))
	}

	b, err := st.Download(refs[1])
	if err != nil {
		t.Fatalf("download template: %v", err)
	}
	var tmpl SignedTicket
	if err := json.Unmarshal(b, &tmpl); err != nil {
		t.Fatalf("unmarshal template: %v", err)
	}
	if tmpl.Data.PodType != PodTypeTicket || tmpl.Data.Edition != 1 {
		t.Fatalf("template data = %+v", tmpl.Data)
	}

	pub, err := hex.DecodeString(tmpl.PublicKey)
	if err != nil {
		t.Fatalf("public key: %v", err)
	}
	sig, err := hex.DecodeString(tmpl.Signature)
	if err != nil {
		t.Fatalf("signature: %v", err)
	}
	msg, _ := json.Marshal(&tmpl.Data)
	if !keys.Verify(pub, msg, sig) {
		t.Fatal("template signature does not verify")
	}
}

func TestGetEvent(t *testing.T) {
	svc, _ := newTestService(t)
	createTestEvent(t, svc, "evt-1", "srs-1", 5)

	ev, err := svc.GetEvent("evt-1")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if ev.Title != "Launch Party" || len(ev.Series) != 1 || ev.Series[0].TotalSupply != 5 {
		t.Fatalf("event = %+v", ev)
	}

	if _, err := svc.GetEvent("no-such-event"); !IsKind(err, KindNotFound) {
		t.Fatalf("missing event: err = %v, want NotFound", err)
	}
}

func TestListEvents_DirectoryOrderAndDedup(t *testing.T) {
	svc, _ := newTestService(t)

	dir, err := svc.ListEvents()
	if err != nil {
		t.Fatalf("ListEvents (empty): %v", err)
	}
	if len(dir.Entries) != 0 {
		t.Fatalf("entries = %+v, want none", dir.Entries)
	}

	createTestEvent(t, svc, "evt-1", "srs-1", 2)
	createTestEvent(t, svc, "evt-2", "srs-2", 2)
	createTestEvent(t, svc, "evt-1", "srs-1", 2)

	dir, err = svc.ListEvents()
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(dir.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(dir.Entries))
	}
	if dir.Entries[0].EventID != "evt-1" || dir.Entries[1].EventID != "evt-2" {
		t.Fatalf("order = [%s %s], want [evt-1 evt-2]",
			dir.Entries[0].EventID, dir.Entries[1].EventID)
	}
	if dir.Entries[0].TotalTickets != 2 || dir.Entries[0].SeriesCount != 1 {
		t.Fatalf("entry = %+v", dir.Entries[0])
	}
}
