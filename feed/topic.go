package feed

import (
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"

	"github.com/yea-80y/WoCo-Event-App/storage"
)

// Feed topic construction.
//
// IMPORTANT: these strings are a stable external contract. Changing any of
// them changes the derived feed address and orphans every page already
// written under the old scheme.

const (
	eventNS = "woco/event"
	podNS   = "woco/pod"
)

// TopicFromString derives the 32-byte topic id as the keccak-256 digest of
// the topic string.
func TopicFromString(s string) storage.Topic {
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write([]byte(s))
	var t storage.Topic
	copy(t[:], h.Sum(nil))
	return t
}

// TopicEventDirectory addresses the singleton directory of recent events.
func TopicEventDirectory() storage.Topic {
	return TopicFromString(eventNS + "/directory")
}

// TopicEvent addresses the metadata feed of one event.
func TopicEvent(eventID string) storage.Topic {
	return TopicFromString(eventNS + "/" + eventID)
}

// TopicEditions addresses an editions page of a series. Page 0 uses the base
// topic; later pages are suffixed /p{n} so supplies beyond one page get
// their own feeds.
func TopicEditions(seriesID string, page int) storage.Topic {
	if page == 0 {
		return TopicFromString(podNS + "/editions/" + seriesID)
	}
	return TopicFromString(fmt.Sprintf("%s/editions/%s/p%d", podNS, seriesID, page))
}

// TopicClaims addresses a claims page of a series. Same pagination scheme as
// editions.
func TopicClaims(seriesID string, page int) storage.Topic {
	if page == 0 {
		return TopicFromString(podNS + "/claims/" + seriesID)
	}
	return TopicFromString(fmt.Sprintf("%s/claims/%s/p%d", podNS, seriesID, page))
}

// TopicClaimers addresses the per-series claimer list.
func TopicClaimers(seriesID string) storage.Topic {
	return TopicFromString(podNS + "/claimers/" + seriesID)
}

// TopicUserCollection addresses a wallet's collection feed. The address is
// lowercased so checksummed and plain forms land on the same feed.
func TopicUserCollection(ethAddress string) storage.Topic {
	return TopicFromString(podNS + "/collection/" + strings.ToLower(ethAddress))
}

// TopicCreator addresses an organizer's creator feed.
func TopicCreator(creatorPodKey string) storage.Topic {
	return TopicFromString(podNS + "/creator/" + creatorPodKey)
}

// Pagination arithmetic.
//
// Page 0 reserves slot 0 for the series metadata ref, so it holds one fewer
// ticket than later pages. Editions are 1-indexed.

const (
	// Page0Capacity is how many ticket slots fit on page 0.
	Page0Capacity = SlotsPerPage - 1
	// PageNCapacity is how many ticket slots fit on pages 1+.
	PageNCapacity = SlotsPerPage
)

// PageCount returns how many edition pages a supply needs.
func PageCount(totalSupply int) int {
	if totalSupply <= Page0Capacity {
		return 1
	}
	return 1 + (totalSupply-Page0Capacity+PageNCapacity-1)/PageNCapacity
}

// EditionNumber maps a (page, slot) pair to its 1-indexed edition number.
// On page 0 the slot index is the edition (slot 1 = edition 1); later pages
// continue the numbering after the 127 editions of page 0.
func EditionNumber(page, slot int) int {
	if page == 0 {
		return slot
	}
	return Page0Capacity + (page-1)*PageNCapacity + slot + 1
}
