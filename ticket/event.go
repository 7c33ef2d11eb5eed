package ticket

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/yea-80y/WoCo-Event-App/feed"
	"github.com/yea-80y/WoCo-Event-App/keys"
	"github.com/yea-80y/WoCo-Event-App/storage"
)

const (
	// uploadBatchSize bounds template upload concurrency.
	uploadBatchSize = 10
	// directoryCap bounds the event directory; older entries fall off.
	directoryCap = 128
)

// SeriesInput describes one ticket series to mint at event creation.
//
// Templates may carry pre-signed edition templates; when present their count
// must equal TotalSupply. When absent, the templates are minted here and
// signed with the request's creator signer.
type SeriesInput struct {
	SeriesID    string
	Name        string
	Description string
	TotalSupply int
	Price       int
	Templates   []SignedTicket
}

// CreateEventRequest carries everything needed to assemble an event. Image
// is the raw image payload to upload; when empty, ImageHash is used as-is.
type CreateEventRequest struct {
	EventID     string
	Title       string
	Description string
	Image       []byte
	ImageHash   string
	StartDate   string
	EndDate     string
	Location    string
	Creator     *keys.Signer
	Series      []SeriesInput
}

// CreateEvent uploads all series inventory, writes the editions and claims
// pages, and publishes the event feed. Dedicated read-back verification
// covers editions page 0 of every series and the event feed itself; the
// directory and creator-feed updates run in the background and their
// failures only log.
func (s *Service) CreateEvent(req CreateEventRequest) (*EventFeed, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	creatorAddr := req.Creator.Address().String()
	creatorPodKey := req.Creator.PublicHex()
	createdAt := s.timestamp()

	s.log.Info("creating event", "event", req.EventID, "series", len(req.Series))

	imageHash := req.ImageHash
	if len(req.Image) > 0 {
		ref, err := s.blobs.Upload(req.Image)
		if err != nil {
			return nil, readErr(err, "uploading event image")
		}
		imageHash = ref.String()
	}

	summaries := make([]SeriesSummary, 0, len(req.Series))
	for _, in := range req.Series {
		if err := s.createSeries(req, in, imageHash, creatorAddr, creatorPodKey, createdAt); err != nil {
			return nil, err
		}
		summaries = append(summaries, SeriesSummary{
			SeriesID:    in.SeriesID,
			Name:        in.Name,
			Description: in.Description,
			TotalSupply: in.TotalSupply,
			Price:       in.Price,
		})
	}

	ev := &EventFeed{
		V:              1,
		EventID:        req.EventID,
		Title:          req.Title,
		Description:    req.Description,
		ImageHash:      imageHash,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Location:       req.Location,
		CreatorAddress: creatorAddr,
		CreatorPodKey:  creatorPodKey,
		Series:         summaries,
		CreatedAt:      createdAt,
	}
	page, err := feed.EncodeJSONPage(ev)
	if err != nil {
		return nil, wrapError(KindValidation, "event feed exceeds page size", err)
	}
	topic := feed.TopicEvent(req.EventID)
	if err := s.feeds.WriteFeed(topic, page); err != nil {
		return nil, readErr(err, "writing event feed")
	}
	if err := s.verifyFeedPage(topic, page); err != nil {
		return nil, err
	}

	total := 0
	for _, sm := range summaries {
		total += sm.TotalSupply
	}
	dir := DirectoryEntry{
		EventID:        req.EventID,
		Title:          req.Title,
		ImageHash:      imageHash,
		StartDate:      req.StartDate,
		Location:       req.Location,
		CreatorAddress: creatorAddr,
		SeriesCount:    len(summaries),
		TotalTickets:   total,
		CreatedAt:      createdAt,
	}
	s.spawn(func() { s.addToEventDirectory(dir) })
	s.spawn(func() { s.addToCreatorFeed(creatorPodKey, req.EventID) })

	s.log.Info("event created", "event", req.EventID, "tickets", total)
	return ev, nil
}

func (req CreateEventRequest) validate() error {
	if req.EventID == "" {
		return newError(KindValidation, "event id is required")
	}
	if req.Creator == nil {
		return newError(KindValidation, "creator signer is required")
	}
	if len(req.Series) == 0 {
		return newError(KindValidation, "at least one series is required")
	}
	for _, in := range req.Series {
		if in.SeriesID == "" {
			return newError(KindValidation, "series id is required")
		}
		if in.TotalSupply < 1 {
			return newError(KindValidation, fmt.Sprintf("series %s: total supply must be positive", in.SeriesID))
		}
		if len(in.Templates) != 0 && len(in.Templates) != in.TotalSupply {
			return newError(KindValidation, fmt.Sprintf(
				"series %s: %d templates for supply %d", in.SeriesID, len(in.Templates), in.TotalSupply))
		}
	}
	return nil
}

// createSeries uploads the templates and metadata of one series and writes
// its editions and claims pages.
func (s *Service) createSeries(req CreateEventRequest, in SeriesInput, imageHash, creatorAddr, creatorPodKey, createdAt string) error {
	templates := in.Templates
	if len(templates) == 0 {
		templates = mintTemplates(req, in, imageHash, creatorAddr, createdAt)
	}

	payloads := make([][]byte, len(templates))
	for i := range templates {
		b, err := json.Marshal(&templates[i])
		if err != nil {
			return wrapError(KindValidation, "encoding ticket template", err)
		}
		payloads[i] = b
	}
	ticketRefs, err := s.uploadBatched(payloads)
	if err != nil {
		return err
	}

	meta := SeriesMetadata{
		V:              1,
		SeriesID:       in.SeriesID,
		EventID:        req.EventID,
		Name:           in.Name,
		Description:    in.Description,
		ImageHash:      imageHash,
		CreatorPodKey:  creatorPodKey,
		CreatorAddress: creatorAddr,
		TotalSupply:    in.TotalSupply,
		PageCount:      feed.PageCount(in.TotalSupply),
		CreatedAt:      createdAt,
	}
	metaBytes, err := json.Marshal(&meta)
	if err != nil {
		return wrapError(KindValidation, "encoding series metadata", err)
	}
	metaRef, err := s.blobs.Upload(metaBytes)
	if err != nil {
		return readErr(err, "uploading series metadata")
	}

	// Page 0 leads with the metadata ref; the remaining slots and all later
	// pages hold ticket refs in edition order.
	for p := 0; p < meta.PageCount; p++ {
		var slots []storage.Ref
		if p == 0 {
			n := len(ticketRefs)
			if n > feed.Page0Capacity {
				n = feed.Page0Capacity
			}
			slots = append([]storage.Ref{metaRef}, ticketRefs[:n]...)
			ticketRefs = ticketRefs[n:]
		} else {
			n := len(ticketRefs)
			if n > feed.PageNCapacity {
				n = feed.PageNCapacity
			}
			slots = ticketRefs[:n]
			ticketRefs = ticketRefs[n:]
		}
		page := feed.PackDense(slots)
		topic := feed.TopicEditions(in.SeriesID, p)
		if err := s.feeds.WriteFeed(topic, page); err != nil {
			return readErr(err, "writing editions page")
		}
		if p == 0 {
			if err := s.verifyFeedPage(topic, page); err != nil {
				return err
			}
		}
		if err := s.feeds.WriteFeed(feed.TopicClaims(in.SeriesID, p), make([]byte, feed.PageSize)); err != nil {
			return readErr(err, "writing claims page")
		}
	}
	s.log.Info("series created", "series", in.SeriesID, "supply", in.TotalSupply, "pages", meta.PageCount)
	return nil
}

// mintTemplates builds and signs one edition template per unit of supply.
func mintTemplates(req CreateEventRequest, in SeriesInput, imageHash, creatorAddr, createdAt string) []SignedTicket {
	out := make([]SignedTicket, in.TotalSupply)
	pub := req.Creator.PublicHex()
	for i := range out {
		data := TicketData{
			PodType:     PodTypeTicket,
			EventID:     req.EventID,
			SeriesID:    in.SeriesID,
			SeriesName:  in.Name,
			Edition:     i + 1,
			TotalSupply: in.TotalSupply,
			ImageHash:   imageHash,
			Creator:     creatorAddr,
			MintedAt:    createdAt,
		}
		msg, _ := json.Marshal(&data)
		out[i] = SignedTicket{
			Data:      data,
			Signature: hex.EncodeToString(req.Creator.Sign(msg)),
			PublicKey: pub,
		}
	}
	return out
}

// uploadBatched uploads payloads in fixed-size parallel waves, preserving
// order.
func (s *Service) uploadBatched(payloads [][]byte) ([]storage.Ref, error) {
	refs := make([]storage.Ref, len(payloads))
	errs := make([]error, len(payloads))
	for start := 0; start < len(payloads); start += uploadBatchSize {
		end := start + uploadBatchSize
		if end > len(payloads) {
			end = len(payloads)
		}
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				refs[i], errs[i] = s.blobs.Upload(payloads[i])
			}(i)
		}
		wg.Wait()
		for i := start; i < end; i++ {
			if errs[i] != nil {
				return nil, readErr(errs[i], "uploading ticket templates")
			}
		}
	}
	return refs, nil
}

// verifyFeedPage reads a just-written page back until the store returns the
// written bytes, within the verification retry budget.
func (s *Service) verifyFeedPage(topic storage.Topic, want []byte) error {
	got, err := storage.ReadFeedWithRetry(s.feeds, topic, s.verify)
	if err != nil {
		return wrapError(KindVerifyFailed, "feed write not confirmed", err)
	}
	if !bytes.Equal(got, want) {
		return newError(KindVerifyFailed, "feed read-back returned different page")
	}
	return nil
}

// GetEvent returns the event feed for an id.
func (s *Service) GetEvent(eventID string) (*EventFeed, error) {
	page, err := s.feeds.ReadFeed(feed.TopicEvent(eventID))
	if err != nil {
		return nil, readErr(err, "event not found")
	}
	var ev EventFeed
	if !feed.DecodeJSONPage(page, &ev) {
		return nil, newError(KindNotFound, "event not found")
	}
	return &ev, nil
}

// ListEvents returns the directory of recent events, most-recent-first. An
// unwritten directory is an empty listing, not an error.
func (s *Service) ListEvents() (*EventDirectory, error) {
	page, err := s.feeds.ReadFeed(feed.TopicEventDirectory())
	if err != nil {
		if storage.IsNotFound(err) {
			return &EventDirectory{V: 1}, nil
		}
		return nil, readErr(err, "reading event directory")
	}
	var dir EventDirectory
	if !feed.DecodeJSONPage(page, &dir) {
		return &EventDirectory{V: 1}, nil
	}
	return &dir, nil
}

// addToEventDirectory prepends the entry, dropping any older entry for the
// same event and anything beyond the directory cap.
func (s *Service) addToEventDirectory(entry DirectoryEntry) {
	topic := feed.TopicEventDirectory()
	dir := EventDirectory{V: 1}
	if page, err := s.feeds.ReadFeed(topic); err == nil {
		var existing EventDirectory
		if feed.DecodeJSONPage(page, &existing) {
			dir = existing
		}
	}

	kept := make([]DirectoryEntry, 0, len(dir.Entries)+1)
	kept = append(kept, entry)
	for _, e := range dir.Entries {
		if e.EventID == entry.EventID {
			continue
		}
		kept = append(kept, e)
	}
	if len(kept) > directoryCap {
		kept = kept[:directoryCap]
	}
	dir.Entries = kept
	dir.UpdatedAt = s.timestamp()

	page, err := feed.EncodeJSONPage(dir)
	if err == nil {
		err = s.feeds.WriteFeed(topic, page)
	}
	if err != nil {
		s.log.Error("event directory update failed (non-critical)", "event", entry.EventID, "err", err)
		return
	}
	s.log.Info("event directory updated", "event", entry.EventID, "entries", len(dir.Entries))
}

// addToCreatorFeed appends the event id to the creator's feed, keyed by
// event id.
func (s *Service) addToCreatorFeed(creatorPodKey, eventID string) {
	topic := feed.TopicCreator(creatorPodKey)
	doc := CreatorFeed{V: 1, CreatorPodKey: creatorPodKey}
	if page, err := s.feeds.ReadFeed(topic); err == nil {
		var existing CreatorFeed
		if feed.DecodeJSONPage(page, &existing) {
			doc = existing
		}
	}
	for _, id := range doc.EventIDs {
		if id == eventID {
			return
		}
	}
	doc.EventIDs = append(doc.EventIDs, eventID)
	doc.UpdatedAt = s.timestamp()

	page, err := feed.EncodeJSONPage(doc)
	if err == nil {
		err = s.feeds.WriteFeed(topic, page)
	}
	if err != nil {
		s.log.Error("creator feed update failed (non-critical)", "event", eventID, "err", err)
	}
}
