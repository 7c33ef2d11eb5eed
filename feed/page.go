// Package feed implements the binary page format and the topic addressing
// scheme for the pod ticket feeds.
//
// A page is the full 4096-byte payload of one feed register, organized as
// 128 slots of 32 bytes. Two slot encodings exist:
//
//   - dense: slots are filled contiguously from slot 0 and decoding stops at
//     the first all-zero slot (editions pages);
//   - sparse: all 128 slots are meaningful, the zero slot being the
//     "unclaimed" sentinel (claims pages).
//
// JSON feeds (event, claimers, collection, directory) store a UTF-8 JSON
// document zero-padded to the page size.
package feed

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/yea-80y/WoCo-Event-App/storage"
)

const (
	// PageSize is the fixed feed payload size.
	PageSize = storage.PageSize
	// SlotSize is the width of one page slot, equal to a content ref.
	SlotSize = storage.RefSize
	// SlotsPerPage is PageSize / SlotSize.
	SlotsPerPage = PageSize / SlotSize
)

// ErrPayloadTooLarge is returned by EncodeJSONPage when the serialized form
// exceeds one page.
var ErrPayloadTooLarge = errors.New("feed: json payload exceeds page size")

// ErrSlotOutOfRange is returned by SetSlot for an index outside the page.
var ErrSlotOutOfRange = errors.New("feed: slot index out of range")

// PackDense writes up to SlotsPerPage refs into consecutive slots starting
// at slot 0. Remaining slots stay zero. Input beyond the page capacity is
// dropped; callers size their inputs through the pagination arithmetic, so
// an overflow here means the caller already miscounted.
func PackDense(refs []storage.Ref) []byte {
	page := make([]byte, PageSize)
	n := len(refs)
	if n > SlotsPerPage {
		n = SlotsPerPage
	}
	for i := 0; i < n; i++ {
		copy(page[i*SlotSize:], refs[i][:])
	}
	return page
}

// DecodeDense reads slots from 0 until the first all-zero slot or the end of
// the page, returning the non-zero refs in order.
//
// The zero slot doubles as the end-of-list sentinel: a real content ref is
// hash-derived and never all-zero in practice.
func DecodeDense(page []byte) []storage.Ref {
	var refs []storage.Ref
	for i := 0; i < SlotsPerPage; i++ {
		r, ok := slotAt(page, i)
		if !ok || r.IsZero() {
			break
		}
		refs = append(refs, r)
	}
	return refs
}

// DecodeSparse reads all SlotsPerPage slots unconditionally. A zero Ref
// means the slot is empty.
func DecodeSparse(page []byte) [SlotsPerPage]storage.Ref {
	var slots [SlotsPerPage]storage.Ref
	for i := 0; i < SlotsPerPage; i++ {
		if r, ok := slotAt(page, i); ok {
			slots[i] = r
		}
	}
	return slots
}

// SetSlot overwrites the 32-byte slot at index i in page. The index must
// address a full slot inside the page; anything else is a caller bug and is
// reported, never silently dropped.
func SetSlot(page []byte, i int, ref storage.Ref) error {
	if i < 0 || i >= SlotsPerPage || len(page) < (i+1)*SlotSize {
		return fmt.Errorf("%w: slot %d in %d-byte page", ErrSlotOutOfRange, i, len(page))
	}
	copy(page[i*SlotSize:], ref[:])
	return nil
}

// EncodeJSONPage serializes v and zero-pads it to exactly one page.
func EncodeJSONPage(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if len(b) > PageSize {
		return nil, ErrPayloadTooLarge
	}
	page := make([]byte, PageSize)
	copy(page, b)
	return page, nil
}

// DecodeJSONPage parses the bytes before the first zero byte as JSON into v.
// It reports false, with no error, when the page does not hold valid JSON:
// an unparseable page is "no feed yet", not a hard failure.
func DecodeJSONPage(page []byte, v any) bool {
	end := bytes.IndexByte(page, 0)
	if end < 0 {
		end = len(page)
	}
	return json.Unmarshal(page[:end], v) == nil
}

func slotAt(page []byte, i int) (storage.Ref, bool) {
	off := i * SlotSize
	if off+SlotSize > len(page) {
		return storage.Ref{}, false
	}
	var r storage.Ref
	copy(r[:], page[off:off+SlotSize])
	return r, true
}
