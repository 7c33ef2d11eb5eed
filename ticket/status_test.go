package ticket

import "testing"

func TestGetClaimStatus_CountsAndRequesterMatch(t *testing.T) {
	svc, _ := newTestService(t)
	createTestEvent(t, svc, "evt-1", "srs-1", 3)

	alice := WalletIdentifier{Address: "0xabcdef0123456789abcdef0123456789abcdef01"}
	bob := NewEmailIdentifier("bob@example.com")
	if _, err := svc.ClaimTicket("srs-1", alice, nil); err != nil {
		t.Fatalf("claim alice: %v", err)
	}
	if _, err := svc.ClaimTicket("srs-1", bob, nil); err != nil {
		t.Fatalf("claim bob: %v", err)
	}
	svc.WaitBackground()

	st, err := svc.GetClaimStatus("srs-1", nil)
	if err != nil {
		t.Fatalf("GetClaimStatus: %v", err)
	}
	if st.Claimed != 2 || st.Available != 1 || st.TotalSupply != 3 {
		t.Fatalf("status = %+v", st)
	}
	if st.Claimed+st.Available != st.TotalSupply {
		t.Fatalf("claimed+available = %d, want %d", st.Claimed+st.Available, st.TotalSupply)
	}
	if st.UserEdition != 0 {
		t.Fatalf("userEdition without requester = %d", st.UserEdition)
	}

	st, err = svc.GetClaimStatus("srs-1", WalletIdentifier{Address: aliceUpper(alice.Address)})
	if err != nil {
		t.Fatalf("GetClaimStatus(alice): %v", err)
	}
	if st.UserEdition != 1 {
		t.Fatalf("alice edition = %d, want 1", st.UserEdition)
	}

	st, err = svc.GetClaimStatus("srs-1", bob)
	if err != nil {
		t.Fatalf("GetClaimStatus(bob): %v", err)
	}
	if st.UserEdition != 2 {
		t.Fatalf("bob edition = %d, want 2", st.UserEdition)
	}

	st, err = svc.GetClaimStatus("srs-1", wallet(9))
	if err != nil {
		t.Fatalf("GetClaimStatus(stranger): %v", err)
	}
	if st.UserEdition != 0 {
		t.Fatalf("stranger edition = %d, want 0", st.UserEdition)
	}
}

// aliceUpper upper-cases the hex digits to exercise case-insensitive
// address matching.
func aliceUpper(addr string) string {
	b := []byte(addr)
	for i := 2; i < len(b); i++ {
		if b[i] >= 'a' && b[i] <= 'f' {
			b[i] -= 'a' - 'A'
		}
	}
	return string(b)
}

func TestGetClaimStatus_UnknownSeries(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetClaimStatus("no-such-series", nil)
	if !IsKind(err, KindNotFound) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestUserCollectionFor_Empty(t *testing.T) {
	svc, _ := newTestService(t)

	col, err := svc.UserCollectionFor("0xdeadbeef")
	if err != nil {
		t.Fatalf("UserCollectionFor: %v", err)
	}
	if len(col.Entries) != 0 {
		t.Fatalf("entries = %+v, want none", col.Entries)
	}
}

func TestClaimedTicketDetail(t *testing.T) {
	svc, _ := newTestService(t)
	createTestEvent(t, svc, "evt-1", "srs-1", 2)

	w := wallet(0)
	if _, err := svc.ClaimTicket("srs-1", w, nil); err != nil {
		t.Fatalf("ClaimTicket: %v", err)
	}
	svc.WaitBackground()

	cf, err := svc.ClaimersFor("srs-1")
	if err != nil || len(cf.Claimers) != 1 {
		t.Fatalf("ClaimersFor: %v (%d claimers)", err, len(cf.Claimers))
	}

	ct, err := svc.ClaimedTicketDetail(cf.Claimers[0].ClaimedRef)
	if err != nil {
		t.Fatalf("ClaimedTicketDetail: %v", err)
	}
	if ct.SeriesID != "srs-1" || ct.Edition != 1 || ct.OwnerAddress != w.Address {
		t.Fatalf("detail = %+v", ct)
	}

	if _, err := svc.ClaimedTicketDetail("not-a-ref"); !IsKind(err, KindValidation) {
		t.Fatalf("bad ref: err = %v, want Validation", err)
	}
}
