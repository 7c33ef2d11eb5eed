package ticket

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/yea-80y/WoCo-Event-App/feed"
	"github.com/yea-80y/WoCo-Event-App/storage"
)

// ClaimTicket allocates the next free edition of a series to the claimant
// and returns the finalized ClaimedTicket.
//
// The claims-page write is the primary claim state; the claimers feed and
// the wallet collection are secondary indexes updated in the background
// after this method returns. encryptedOrder, when non-empty, is an opaque
// already-encrypted order payload stored alongside the claimer entry.
func (s *Service) ClaimTicket(seriesID string, id Identifier, encryptedOrder []byte) (*ClaimedTicket, error) {
	unlock := s.lockSeries(seriesID)
	defer unlock()

	s.log.Info("claiming ticket", "series", seriesID, "claimer", id.logID())

	// Editions page 0 carries the series metadata ref in slot 0.
	page0, err := storage.ReadFeedWithRetry(s.feeds, feed.TopicEditions(seriesID, 0), s.verify)
	if err != nil {
		return nil, readErr(err, "series not found")
	}
	refs := feed.DecodeDense(page0)
	if len(refs) == 0 {
		return nil, newError(KindCorrupt, "series has no metadata")
	}

	meta, err := s.seriesMetadata(refs[0])
	if err != nil {
		return nil, err
	}
	pageCount := meta.PageCount
	if pageCount < 1 {
		pageCount = 1
	}

	// Fetch every (claims, editions) page pair in parallel, then scan in
	// page order. A page that fails to load is treated as missing, exactly
	// like a page never written.
	type pagePair struct {
		claims   []byte
		editions []byte
	}
	pairs := make([]pagePair, pageCount)
	var wg sync.WaitGroup
	for p := 0; p < pageCount; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			if b, err := s.feeds.ReadFeed(feed.TopicClaims(seriesID, p)); err == nil {
				pairs[p].claims = b
			}
			if p == 0 {
				pairs[p].editions = page0
				return
			}
			if b, err := s.feeds.ReadFeed(feed.TopicEditions(seriesID, p)); err == nil {
				pairs[p].editions = b
			}
		}(p)
	}
	wg.Wait()

	// First free slot in page-major, slot-minor order wins, which makes the
	// allocated edition the lowest available number.
	foundPage, foundSlot := -1, -1
	var ticketRef storage.Ref
	var claimsPage []byte
	for p := 0; p < pageCount && foundPage < 0; p++ {
		if pairs[p].editions == nil {
			continue
		}
		editionRefs := feed.DecodeDense(pairs[p].editions)
		var claims [feed.SlotsPerPage]storage.Ref
		if pairs[p].claims != nil {
			claims = feed.DecodeSparse(pairs[p].claims)
		}

		start := 0
		if p == 0 {
			start = 1 // metadata slot
		}
		for slot := start; slot < len(editionRefs); slot++ {
			if claims[slot].IsZero() {
				foundPage, foundSlot = p, slot
				ticketRef = editionRefs[slot]
				claimsPage = pairs[p].claims
				break
			}
		}
	}
	if foundPage < 0 || ticketRef.IsZero() {
		return nil, newError(KindExhausted, "no tickets available")
	}

	editionNumber := feed.EditionNumber(foundPage, foundSlot)
	s.log.Info("found unclaimed slot",
		"series", seriesID, "page", foundPage, "slot", foundSlot, "edition", editionNumber)

	template, err := s.signedTicket(ticketRef)
	if err != nil {
		return nil, err
	}

	claimed := &ClaimedTicket{
		PodType:           PodTypeClaimedTicket,
		EventID:           template.Data.EventID,
		SeriesID:          template.Data.SeriesID,
		SeriesName:        template.Data.SeriesName,
		Edition:           template.Data.Edition,
		TotalSupply:       template.Data.TotalSupply,
		ImageHash:         template.Data.ImageHash,
		Creator:           template.Data.Creator,
		MintedAt:          template.Data.MintedAt,
		ClaimedAt:         s.timestamp(),
		OriginalPodHash:   ticketRef.String(),
		OriginalSignature: template.Signature,
	}
	switch v := id.(type) {
	case WalletIdentifier:
		claimed.OwnerAddress = v.Address
	case EmailIdentifier:
		claimed.OwnerEmailHash = v.EmailHash
	}

	claimedBytes, err := json.Marshal(claimed)
	if err != nil {
		return nil, wrapError(KindCorrupt, "encoding claimed ticket", err)
	}
	claimedRef, err := s.blobs.Upload(claimedBytes)
	if err != nil {
		return nil, readErr(err, "uploading claimed ticket")
	}

	// Read-modify-write of the claims page, starting from the page bytes
	// fetched above (or a fresh zero page if none existed yet).
	if claimsPage == nil {
		claimsPage = make([]byte, feed.PageSize)
	} else {
		claimsPage = append([]byte(nil), claimsPage...)
	}
	if err := feed.SetSlot(claimsPage, foundSlot, claimedRef); err != nil {
		return nil, wrapError(KindCorrupt, "updating claims page", err)
	}
	if err := s.feeds.WriteFeed(feed.TopicClaims(seriesID, foundPage), claimsPage); err != nil {
		return nil, readErr(err, "writing claims page")
	}

	s.log.Info("ticket claimed", "series", seriesID, "edition", editionNumber, "claimedRef", claimedRef)

	// Secondary indexes are fire-and-forget: their failure never unwinds the
	// claim the caller already holds.
	entry := ClaimerEntry{
		Edition:        editionNumber,
		ClaimerAddress: id.ClaimerKey(),
		ClaimedRef:     claimedRef.String(),
		ClaimedAt:      claimed.ClaimedAt,
	}
	order := append([]byte(nil), encryptedOrder...)
	s.spawn(func() { s.updateClaimersFeed(seriesID, entry, order) })

	if w, ok := id.(WalletIdentifier); ok {
		col := CollectionEntry{
			SeriesID:   seriesID,
			EventID:    template.Data.EventID,
			Edition:    editionNumber,
			ClaimedRef: claimedRef.String(),
			ClaimedAt:  claimed.ClaimedAt,
		}
		s.spawn(func() { s.addToUserCollection(w.Address, col) })
	}

	return claimed, nil
}

// seriesMetadata downloads and parses the metadata blob for a series.
func (s *Service) seriesMetadata(ref storage.Ref) (*SeriesMetadata, error) {
	b, err := s.blobs.Download(ref)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, wrapError(KindCorrupt, "series metadata blob missing", err)
		}
		return nil, readErr(err, "downloading series metadata")
	}
	var meta SeriesMetadata
	if err := json.Unmarshal(b, &meta); err != nil {
		return nil, wrapError(KindCorrupt, "series metadata unparseable", err)
	}
	return &meta, nil
}

// signedTicket downloads and parses an edition template.
func (s *Service) signedTicket(ref storage.Ref) (*SignedTicket, error) {
	b, err := s.blobs.Download(ref)
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, wrapError(KindCorrupt, "ticket template blob missing", err)
		}
		return nil, readErr(err, "downloading ticket template")
	}
	var st SignedTicket
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, wrapError(KindCorrupt, "ticket template unparseable", err)
	}
	return &st, nil
}

// updateClaimersFeed stores the optional encrypted order and appends the
// claimer entry, keyed by claimer address. Idempotent: an address already
// present leaves the feed untouched.
func (s *Service) updateClaimersFeed(seriesID string, entry ClaimerEntry, encryptedOrder []byte) {
	if len(encryptedOrder) > 0 {
		ref, err := s.blobs.Upload(encryptedOrder)
		if err != nil {
			s.log.Error("storing encrypted order failed (non-critical)", "series", seriesID, "err", err)
		} else {
			entry.OrderRef = ref.String()
		}
	}

	topic := feed.TopicClaimers(seriesID)
	doc := ClaimersFeed{V: 1, SeriesID: seriesID}
	if page, err := s.feeds.ReadFeed(topic); err == nil {
		var existing ClaimersFeed
		if feed.DecodeJSONPage(page, &existing) {
			doc = existing
		}
	}

	for _, c := range doc.Claimers {
		if strings.EqualFold(c.ClaimerAddress, entry.ClaimerAddress) {
			return
		}
	}
	doc.Claimers = append(doc.Claimers, entry)
	doc.UpdatedAt = s.timestamp()

	page, err := feed.EncodeJSONPage(doc)
	if err != nil {
		s.log.Error("claimers feed update failed (non-critical)", "series", seriesID, "err", err)
		return
	}
	if err := s.feeds.WriteFeed(topic, page); err != nil {
		s.log.Error("claimers feed update failed (non-critical)", "series", seriesID, "err", err)
		return
	}
	s.log.Info("claimers feed updated", "series", seriesID, "claimers", len(doc.Claimers))
}

// addToUserCollection appends the collection entry for a wallet, keyed by
// series id. Idempotent: a series already present leaves the feed
// untouched.
func (s *Service) addToUserCollection(ethAddress string, entry CollectionEntry) {
	topic := feed.TopicUserCollection(ethAddress)
	doc := UserCollection{V: 1}
	if page, err := s.feeds.ReadFeed(topic); err == nil {
		var existing UserCollection
		if feed.DecodeJSONPage(page, &existing) {
			doc = existing
		}
	}

	for _, e := range doc.Entries {
		if e.SeriesID == entry.SeriesID {
			return
		}
	}
	doc.Entries = append(doc.Entries, entry)
	doc.UpdatedAt = s.timestamp()

	page, err := feed.EncodeJSONPage(doc)
	if err != nil {
		s.log.Error("user collection update failed (non-critical)", "address", ethAddress, "err", err)
		return
	}
	if err := s.feeds.WriteFeed(topic, page); err != nil {
		s.log.Error("user collection update failed (non-critical)", "address", ethAddress, "err", err)
		return
	}
	s.log.Info("user collection updated", "address", ethAddress, "entries", len(doc.Entries))
}

// readErr maps a store failure onto the package taxonomy: a missing object
// becomes NotFound with the given message, everything else is the store's
// problem.
func readErr(err error, msg string) error {
	if storage.IsNotFound(err) {
		return wrapError(KindNotFound, msg, err)
	}
	return wrapError(KindUnavailable, msg, err)
}
