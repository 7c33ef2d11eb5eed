// Package ticket implements the edition allocation and claim protocol for
// pod tickets: inventory assembly at event creation, slot scanning and claim
// finalization, claim-status derivation, and the best-effort secondary
// indexes (per-series claimer list, per-wallet collection).
//
// All durable state lives in the external blob+feed store; this package
// holds no database of its own.
package ticket

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Pod type tags embedded in stored documents.
const (
	PodTypeTicket        = "woco.ticket.v1"
	PodTypeClaimedTicket = "woco.ticket.claimed.v1"
)

// SeriesMetadata is the immutable blob referenced from slot 0 of editions
// page 0.
type SeriesMetadata struct {
	V              int    `json:"v"`
	SeriesID       string `json:"seriesId"`
	EventID        string `json:"eventId"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	ImageHash      string `json:"imageHash"`
	CreatorPodKey  string `json:"creatorPodKey"`
	CreatorAddress string `json:"creatorAddress"`
	TotalSupply    int    `json:"totalSupply"`
	PageCount      int    `json:"pageCount"`
	CreatedAt      string `json:"createdAt"`
}

// TicketData is the signed portion of a pre-issued edition template.
type TicketData struct {
	PodType     string `json:"podType"`
	EventID     string `json:"eventId"`
	SeriesID    string `json:"seriesId"`
	SeriesName  string `json:"seriesName"`
	Edition     int    `json:"edition"`
	TotalSupply int    `json:"totalSupply"`
	ImageHash   string `json:"imageHash"`
	Creator     string `json:"creator"`
	MintedAt    string `json:"mintedAt"`
}

// SignedTicket is one pre-issued, pre-signed edition template, stored as an
// immutable blob and referenced by an editions-page slot.
type SignedTicket struct {
	Data      TicketData `json:"data"`
	Signature string     `json:"signature"`
	PublicKey string     `json:"publicKey"`
}

// ClaimedTicket is the immutable record created when an edition is
// allocated. OriginalPodHash and OriginalSignature keep the provenance link
// back to the template the claim was made against.
type ClaimedTicket struct {
	PodType           string `json:"podType"`
	EventID           string `json:"eventId"`
	SeriesID          string `json:"seriesId"`
	SeriesName        string `json:"seriesName"`
	Edition           int    `json:"edition"`
	TotalSupply       int    `json:"totalSupply"`
	ImageHash         string `json:"imageHash"`
	Creator           string `json:"creator"`
	MintedAt          string `json:"mintedAt"`
	OwnerAddress      string `json:"ownerAddress,omitempty"`
	OwnerEmailHash    string `json:"ownerEmailHash,omitempty"`
	ClaimedAt         string `json:"claimedAt"`
	OriginalPodHash   string `json:"originalPodHash"`
	OriginalSignature string `json:"originalSignature"`
}

// EventFeed is the mutable JSON-in-page record describing one event.
// Written once at creation; read-only afterward in this package.
type EventFeed struct {
	V              int             `json:"v"`
	EventID        string          `json:"eventId"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	ImageHash      string          `json:"imageHash"`
	StartDate      string          `json:"startDate"`
	EndDate        string          `json:"endDate"`
	Location       string          `json:"location"`
	CreatorAddress string          `json:"creatorAddress"`
	CreatorPodKey  string          `json:"creatorPodKey"`
	Series         []SeriesSummary `json:"series"`
	CreatedAt      string          `json:"createdAt"`
}

// SeriesSummary is the per-series listing embedded in an EventFeed.
type SeriesSummary struct {
	SeriesID    string `json:"seriesId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TotalSupply int    `json:"totalSupply"`
	Price       int    `json:"price"`
}

// ClaimersFeed is the per-series claimer list, deduplicated by claimer
// address.
type ClaimersFeed struct {
	V         int            `json:"v"`
	SeriesID  string         `json:"seriesId"`
	Claimers  []ClaimerEntry `json:"claimers"`
	UpdatedAt string         `json:"updatedAt"`
}

type ClaimerEntry struct {
	Edition        int    `json:"edition"`
	ClaimerAddress string `json:"claimerAddress"`
	ClaimedRef     string `json:"claimedRef"`
	ClaimedAt      string `json:"claimedAt"`
	OrderRef       string `json:"orderRef,omitempty"`
}

// UserCollection is the per-wallet collection feed, deduplicated by series.
type UserCollection struct {
	V         int               `json:"v"`
	Entries   []CollectionEntry `json:"entries"`
	UpdatedAt string            `json:"updatedAt"`
}

type CollectionEntry struct {
	SeriesID   string `json:"seriesId"`
	EventID    string `json:"eventId"`
	Edition    int    `json:"edition"`
	ClaimedRef string `json:"claimedRef"`
	ClaimedAt  string `json:"claimedAt"`
}

// EventDirectory is the singleton list of recent events, most-recent-first,
// capped at directoryCap entries.
type EventDirectory struct {
	V         int              `json:"v"`
	Entries   []DirectoryEntry `json:"entries"`
	UpdatedAt string           `json:"updatedAt"`
}

type DirectoryEntry struct {
	EventID        string `json:"eventId"`
	Title          string `json:"title"`
	ImageHash      string `json:"imageHash"`
	StartDate      string `json:"startDate"`
	Location       string `json:"location"`
	CreatorAddress string `json:"creatorAddress"`
	SeriesCount    int    `json:"seriesCount"`
	TotalTickets   int    `json:"totalTickets"`
	CreatedAt      string `json:"createdAt"`
}

// CreatorFeed lists the events created under one creator pod key.
type CreatorFeed struct {
	V             int      `json:"v"`
	CreatorPodKey string   `json:"creatorPodKey"`
	EventIDs      []string `json:"eventIds"`
	UpdatedAt     string   `json:"updatedAt"`
}

// ClaimStatus is the derived availability report for a series.
type ClaimStatus struct {
	SeriesID    string `json:"seriesId"`
	TotalSupply int    `json:"totalSupply"`
	Claimed     int    `json:"claimed"`
	Available   int    `json:"available"`
	UserEdition int    `json:"userEdition,omitempty"`
}

// Identifier is the verified claimant identity: a wallet address or an
// email. It is a closed sum; the two variants below are the only
// implementations.
type Identifier interface {
	// ClaimerKey is the dedup key stored in the claimers feed.
	ClaimerKey() string
	// logID is a privacy-safe form for log lines.
	logID() string

	isIdentifier()
}

// WalletIdentifier claims with a verified wallet address.
type WalletIdentifier struct {
	Address string
}

func (w WalletIdentifier) ClaimerKey() string { return w.Address }
func (w WalletIdentifier) logID() string      { return w.Address }
func (WalletIdentifier) isIdentifier()        {}

// EmailIdentifier claims with an email address. Only the hash is ever
// stored.
type EmailIdentifier struct {
	Email     string
	EmailHash string
}

// NewEmailIdentifier hashes the email for privacy-safe storage.
func NewEmailIdentifier(email string) EmailIdentifier {
	return EmailIdentifier{Email: email, EmailHash: HashEmail(email)}
}

func (e EmailIdentifier) ClaimerKey() string { return "email:" + e.EmailHash }

func (e EmailIdentifier) logID() string {
	h := e.EmailHash
	if len(h) > 12 {
		h = h[:12]
	}
	return "email:" + h + "..."
}

func (EmailIdentifier) isIdentifier() {}

// HashEmail returns the hex sha-256 of the trimmed, lowercased email.
func HashEmail(email string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(email))))
	return hex.EncodeToString(sum[:])
}
