package feed

import (
	"bytes"
	"errors"
	"testing"

	"github.com/yea-80y/WoCo-Event-App/storage"
)

func refWithByte(b byte) storage.Ref {
	var r storage.Ref
	for i := range r {
		r[i] = b
	}
	return r
}

func TestPackDense_RoundTrip(t *testing.T) {
	refs := make([]storage.Ref, 0, 100)
	for i := 1; i <= 100; i++ {
		refs = append(refs, refWithByte(byte(i)))
	}

	page := PackDense(refs)
	if len(page) != PageSize {
		t.Fatalf("page size = %d, want %d", len(page), PageSize)
	}

	got := DecodeDense(page)
	if len(got) != len(refs) {
		t.Fatalf("decoded %d refs, want %d", len(got), len(refs))
	}
	for i := range refs {
		if got[i] != refs[i] {
			t.Fatalf("ref %d did not round-trip", i)
		}
	}
}

func TestPackDense_TruncatesAtCapacity(t *testing.T) {
	refs := make([]storage.Ref, SlotsPerPage+10)
	for i := range refs {
		refs[i] = refWithByte(byte(i%255 + 1))
	}
	got := DecodeDense(PackDense(refs))
	if len(got) != SlotsPerPage {
		t.Fatalf("decoded %d refs, want %d", len(got), SlotsPerPage)
	}
}

func TestDecodeDense_StopsAtZeroSlot(t *testing.T) {
	refs := []storage.Ref{refWithByte(1), refWithByte(2), {}, refWithByte(4)}
	page := make([]byte, PageSize)
	for i, r := range refs {
		copy(page[i*SlotSize:], r[:])
	}

	got := DecodeDense(page)
	if len(got) != 2 {
		t.Fatalf("decoded %d refs, want 2 (stop at zero slot)", len(got))
	}
}

func TestDecodeSparse_Always128Slots(t *testing.T) {
	page := make([]byte, PageSize)
	if err := SetSlot(page, 0, refWithByte(9)); err != nil {
		t.Fatalf("SetSlot(0): %v", err)
	}
	if err := SetSlot(page, 127, refWithByte(7)); err != nil {
		t.Fatalf("SetSlot(127): %v", err)
	}

	slots := DecodeSparse(page)
	if len(slots) != SlotsPerPage {
		t.Fatalf("got %d slots, want %d", len(slots), SlotsPerPage)
	}
	if slots[0] != refWithByte(9) || slots[127] != refWithByte(7) {
		t.Fatalf("occupied slots not decoded")
	}
	for i := 1; i < 127; i++ {
		if !slots[i].IsZero() {
			t.Fatalf("slot %d should be empty", i)
		}
	}
}

func TestSetSlot_RejectsOutOfRange(t *testing.T) {
	page := make([]byte, PageSize)
	for _, i := range []int{-1, SlotsPerPage, SlotsPerPage + 5} {
		if err := SetSlot(page, i, refWithByte(1)); !errors.Is(err, ErrSlotOutOfRange) {
			t.Fatalf("SetSlot(%d): err = %v, want ErrSlotOutOfRange", i, err)
		}
	}
	short := make([]byte, SlotSize)
	if err := SetSlot(short, 1, refWithByte(1)); !errors.Is(err, ErrSlotOutOfRange) {
		t.Fatalf("short page: err = %v, want ErrSlotOutOfRange", err)
	}
	if err := SetSlot(page, SlotsPerPage-1, refWithByte(1)); err != nil {
		t.Fatalf("last slot: %v", err)
	}
}

func TestEncodeJSONPage_PadsToPageSize(t *testing.T) {
	page, err := EncodeJSONPage(map[string]int{"v": 1})
	if err != nil {
		t.Fatalf("EncodeJSONPage: %v", err)
	}
	if len(page) != PageSize {
		t.Fatalf("page size = %d, want %d", len(page), PageSize)
	}

	var v struct {
		V int `json:"v"`
	}
	if !DecodeJSONPage(page, &v) || v.V != 1 {
		t.Fatalf("json page did not round-trip: %+v", v)
	}
}

func TestEncodeJSONPage_RejectsOversized(t *testing.T) {
	big := map[string]string{"blob": string(bytes.Repeat([]byte("x"), PageSize))}
	if _, err := EncodeJSONPage(big); err != ErrPayloadTooLarge {
		t.Fatalf("got %v, want ErrPayloadTooLarge", err)
	}
}

func TestDecodeJSONPage_GarbageIsNotFatal(t *testing.T) {
	page := bytes.Repeat([]byte{0xff}, PageSize)
	var v map[string]any
	if DecodeJSONPage(page, &v) {
		t.Fatalf("garbage page decoded as JSON")
	}
}
