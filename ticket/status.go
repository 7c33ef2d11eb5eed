package ticket

import (
	"encoding/json"
	"strings"
	"sync"

	"github.com/yea-80y/WoCo-Event-App/feed"
	"github.com/yea-80y/WoCo-Event-App/storage"
)

// GetClaimStatus re-derives availability for a series by re-scanning every
// claims page. There is no cached counter; the numbers reported always
// reflect the pages actually read.
//
// When requester is non-nil, the claimed tickets are downloaded until one
// matches the requester, and its edition is reported. The matching is
// best-effort: a ticket that fails to download is skipped, not retried.
func (s *Service) GetClaimStatus(seriesID string, requester Identifier) (*ClaimStatus, error) {
	page0, err := s.feeds.ReadFeed(feed.TopicEditions(seriesID, 0))
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

	pages := make([][]byte, pageCount)
	var wg sync.WaitGroup
	for p := 0; p < pageCount; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			if b, err := s.feeds.ReadFeed(feed.TopicClaims(seriesID, p)); err == nil {
				pages[p] = b
			}
		}(p)
	}
	wg.Wait()

	status := &ClaimStatus{
		SeriesID:    seriesID,
		TotalSupply: meta.TotalSupply,
	}
	for p := 0; p < pageCount; p++ {
		if pages[p] == nil {
			continue
		}
		slots := feed.DecodeSparse(pages[p])
		start := 0
		if p == 0 {
			start = 1
		}
		for slot := start; slot < len(slots); slot++ {
			if slots[slot].IsZero() {
				continue
			}
			status.Claimed++
			if requester == nil || status.UserEdition != 0 {
				continue
			}
			ct, err := s.claimedTicket(slots[slot])
			if err != nil {
				s.log.Warn("claimed ticket unreadable during status scan",
					"series", seriesID, "page", p, "slot", slot, "err", err)
				continue
			}
			if matchesRequester(ct, requester) {
				status.UserEdition = ct.Edition
			}
		}
	}
	status.Available = status.TotalSupply - status.Claimed
	if status.Available < 0 {
		status.Available = 0
	}
	return status, nil
}

// UserCollectionFor returns the collection feed for a wallet. A wallet with
// no feed yet gets an empty collection, not an error.
func (s *Service) UserCollectionFor(ethAddress string) (*UserCollection, error) {
	page, err := s.feeds.ReadFeed(feed.TopicUserCollection(ethAddress))
	if err != nil {
		if storage.IsNotFound(err) {
			return &UserCollection{V: 1}, nil
		}
		return nil, readErr(err, "reading user collection")
	}
	var col UserCollection
	if !feed.DecodeJSONPage(page, &col) {
		return &UserCollection{V: 1}, nil
	}
	return &col, nil
}

// ClaimersFor returns the claimer list for a series. A series nobody has
// claimed from yet gets an empty list, not an error.
func (s *Service) ClaimersFor(seriesID string) (*ClaimersFeed, error) {
	page, err := s.feeds.ReadFeed(feed.TopicClaimers(seriesID))
	if err != nil {
		if storage.IsNotFound(err) {
			return &ClaimersFeed{V: 1, SeriesID: seriesID}, nil
		}
		return nil, readErr(err, "reading claimers feed")
	}
	var cf ClaimersFeed
	if !feed.DecodeJSONPage(page, &cf) {
		return &ClaimersFeed{V: 1, SeriesID: seriesID}, nil
	}
	return &cf, nil
}

// ClaimedTicketDetail downloads and parses one claimed ticket by its hex
// ref.
func (s *Service) ClaimedTicketDetail(refHex string) (*ClaimedTicket, error) {
	ref, err := storage.ParseRef(refHex)
	if err != nil {
		return nil, wrapError(KindValidation, "bad ticket ref", err)
	}
	return s.claimedTicket(ref)
}

func (s *Service) claimedTicket(ref storage.Ref) (*ClaimedTicket, error) {
	b, err := s.blobs.Download(ref)
	if err != nil {
		return nil, readErr(err, "ticket not found")
	}
	var ct ClaimedTicket
	if err := json.Unmarshal(b, &ct); err != nil {
		return nil, wrapError(KindCorrupt, "claimed ticket unparseable", err)
	}
	return &ct, nil
}

func matchesRequester(ct *ClaimedTicket, id Identifier) bool {
	switch v := id.(type) {
	case WalletIdentifier:
		return ct.OwnerAddress != "" && strings.EqualFold(ct.OwnerAddress, v.Address)
	case EmailIdentifier:
		return ct.OwnerEmailHash != "" && ct.OwnerEmailHash == v.EmailHash
	}
	return false
}
