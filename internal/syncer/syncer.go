// Package syncer reconciles the local store with the remote service.
//
// A pass pushes local entries the remote does not have (and the keyword sets
// that differ), then replaces local tags and keywords with the remote's, and
// finally saves the result to the server-mode slot. Remote is authoritative
// for tags and keywords; any local tag not pushed before the pass is dropped.
//
// Entries are handled one at a time in listing order. Nothing is retried.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/diary/internal/entities"
	"github.com/mrlokans/diary/internal/remote"
	"github.com/mrlokans/diary/internal/store"
)

// Remote is the part of remote.Client the synchronizer needs.
type Remote interface {
	ListEntries(ctx context.Context) ([]remote.Entry, error)
	GetEntry(ctx context.Context, id int64) (*remote.Entry, error)
	CreateEntry(ctx context.Context, req remote.CreateEntryRequest) (*remote.CreateEntryResponse, error)
	UpdateEntryKeywords(ctx context.Context, entryID int64, keywords []string) error
	ListTags(ctx context.Context) ([]remote.Tag, error)
	CreateTag(ctx context.Context, req remote.CreateTagRequest) (*remote.CreateTagResponse, error)
	ListKeywords(ctx context.Context) ([]remote.Keyword, error)
}

// Saver persists a store to a mode slot.
type Saver interface {
	Save(st *store.Store, serverMode bool) error
}

// Options tunes a Synchronizer.
type Options struct {
	// ReconcileIDs re-keys a pushed local entry to the id the remote assigned.
	ReconcileIDs bool
}

// Synchronizer runs sync passes against one remote.
type Synchronizer struct {
	remote Remote
	saver  Saver
	opts   Options
}

func New(r Remote, saver Saver, opts Options) *Synchronizer {
	return &Synchronizer{remote: r, saver: saver, opts: opts}
}

// IDMapping records the remote id assigned to a pushed local entry.
type IDMapping struct {
	LocalID  int64 `json:"local_id"`
	RemoteID int64 `json:"remote_id"`
	Rekeyed  bool  `json:"rekeyed"`
}

// Report summarizes one pass.
type Report struct {
	EntriesChecked int           `json:"entries_checked"`
	EntriesPushed  int           `json:"entries_pushed"`
	PushFailures   int           `json:"push_failures"`
	KeywordUpdates int           `json:"keyword_updates"`
	TagsPushed     int           `json:"tags_pushed"`
	IDMappings     []IDMapping   `json:"id_mappings,omitempty"`
	TagsPulled     int           `json:"tags_pulled"`
	KeywordsPulled int           `json:"keywords_pulled"`
	OrphansSkipped int           `json:"orphans_skipped"`
	Duration       time.Duration `json:"duration"`
}

// Summary renders the report as a single status line.
func (r *Report) Summary() string {
	return fmt.Sprintf("checked %d, pushed %d, failed %d, keyword updates %d, tags pulled %d, keywords pulled %d",
		r.EntriesChecked, r.EntriesPushed, r.PushFailures, r.KeywordUpdates, r.TagsPulled, r.KeywordsPulled)
}

// Sync runs one full pass over st. On error the returned report covers the
// work done before the failure.
func (s *Synchronizer) Sync(ctx context.Context, st *store.Store) (*Report, error) {
	start := time.Now()
	report := &Report{}
	defer func() {
		report.Duration = time.Since(start)
	}()

	if err := s.pushEntries(ctx, st, report); err != nil {
		return report, err
	}

	if err := s.pullTags(ctx, st, report); err != nil {
		return report, err
	}

	if err := s.pullKeywords(ctx, st, report); err != nil {
		return report, err
	}

	if err := s.saver.Save(st, true); err != nil {
		return report, fmt.Errorf("failed to persist synced store: %w", err)
	}

	log.WithFields(log.Fields{
		"checked":         report.EntriesChecked,
		"pushed":          report.EntriesPushed,
		"push_failures":   report.PushFailures,
		"keyword_updates": report.KeywordUpdates,
		"tags_pulled":     report.TagsPulled,
		"keywords_pulled": report.KeywordsPulled,
		"orphans_skipped": report.OrphansSkipped,
	}).Info("Sync pass completed")

	return report, nil
}

func (s *Synchronizer) pushEntries(ctx context.Context, st *store.Store, report *Report) error {
	entries, err := st.ListEntriesWithKeywords()
	if err != nil {
		return fmt.Errorf("failed to list local entries: %w", err)
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.EntriesChecked++

		existing, err := s.remote.GetEntry(ctx, entry.ID)
		switch {
		case errors.Is(err, remote.ErrEntryNotFound):
			if err := s.pushEntry(ctx, st, entry, report); err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("failed to look up entry %d: %w", entry.ID, err)
		default:
			if err := s.reconcileKeywords(ctx, entry, existing, report); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Synchronizer) pushEntry(ctx context.Context, st *store.Store, entry entities.EntryWithKeywords, report *Report) error {
	logger := log.WithField("local_id", entry.ID)

	req := remote.CreateEntryRequest{
		Content:  entry.Content,
		Keywords: entry.Keywords,
	}
	if !entry.CreatedAt.IsZero() {
		req.CreatedAt = &remote.Timestamp{Time: entry.CreatedAt}
	}

	resp, err := s.remote.CreateEntry(ctx, req)
	if err != nil {
		return s.pushFailed(logger, "push entry", err, report)
	}
	report.EntriesPushed++

	mapping := IDMapping{LocalID: entry.ID, RemoteID: resp.EntryID}
	logger.WithField("remote_id", resp.EntryID).Info("Pushed entry to remote")

	tags, err := st.GetTagsForEntry(entry.ID)
	if err != nil {
		return fmt.Errorf("failed to read tags of entry %d: %w", entry.ID, err)
	}
	for _, tag := range tags {
		_, err := s.remote.CreateTag(ctx, remote.CreateTagRequest{
			EntryID:       resp.EntryID,
			SentenceIndex: tag.SentenceIndex,
			Tag:           tag.Tag,
		})
		if err != nil {
			if err := s.pushFailed(logger.WithField("tag_id", tag.ID), "push tag", err, report); err != nil {
				return err
			}
			continue
		}
		report.TagsPushed++
	}

	if s.opts.ReconcileIDs && resp.EntryID != entry.ID {
		err := st.RekeyEntry(entry.ID, resp.EntryID)
		switch {
		case errors.Is(err, store.ErrIDConflict):
			logger.WithField("remote_id", resp.EntryID).Warn("Remote id already used locally, keeping local id")
		case err != nil:
			return fmt.Errorf("failed to rekey entry %d: %w", entry.ID, err)
		default:
			mapping.Rekeyed = true
		}
	}

	report.IDMappings = append(report.IDMappings, mapping)
	return nil
}

func (s *Synchronizer) reconcileKeywords(ctx context.Context, entry entities.EntryWithKeywords, existing *remote.Entry, report *Report) error {
	if SameKeywords(entry.Keywords, existing.Keywords) {
		return nil
	}

	logger := log.WithField("entry_id", entry.ID)
	if err := s.remote.UpdateEntryKeywords(ctx, entry.ID, entry.Keywords); err != nil {
		return s.pushFailed(logger, "update keywords", err, report)
	}
	report.KeywordUpdates++
	logger.WithField("keywords", entry.Keywords).Info("Pushed keyword update")
	return nil
}

// pushFailed logs a rejected push and lets the pass continue. Transport
// failures stop the pass.
func (s *Synchronizer) pushFailed(logger log.FieldLogger, op string, err error, report *Report) error {
	if errors.Is(err, remote.ErrRemoteUnavailable) {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	report.PushFailures++
	logger.WithError(err).Warnf("Remote rejected %s", op)
	return nil
}

func (s *Synchronizer) pullTags(ctx context.Context, st *store.Store, report *Report) error {
	remoteTags, err := s.remote.ListTags(ctx)
	if err != nil {
		return fmt.Errorf("failed to pull tags: %w", err)
	}
	tags := make([]entities.Tag, 0, len(remoteTags))
	for _, t := range remoteTags {
		tags = append(tags, entities.Tag{
			ID:            t.ID,
			EntryID:       t.EntryID,
			SentenceIndex: t.SentenceIndex,
			Tag:           t.Tag,
		})
	}

	skipped, err := st.ReplaceTags(tags)
	if err != nil {
		return fmt.Errorf("failed to replace local tags: %w", err)
	}
	report.TagsPulled = len(tags) - skipped
	report.OrphansSkipped += skipped
	if skipped > 0 {
		log.WithField("skipped", skipped).Warn("Skipped remote tags for entries missing locally")
	}
	return nil
}

func (s *Synchronizer) pullKeywords(ctx context.Context, st *store.Store, report *Report) error {
	remoteKeywords, err := s.remote.ListKeywords(ctx)
	if err != nil {
		return fmt.Errorf("failed to pull keywords: %w", err)
	}
	keywords := make([]entities.Keyword, 0, len(remoteKeywords))
	for _, k := range remoteKeywords {
		keywords = append(keywords, entities.Keyword{
			ID:      k.ID,
			EntryID: k.EntryID,
			Keyword: k.Keyword,
		})
	}

	skipped, err := st.ReplaceKeywords(keywords)
	if err != nil {
		return fmt.Errorf("failed to replace local keywords: %w", err)
	}
	report.KeywordsPulled = len(keywords) - skipped
	report.OrphansSkipped += skipped
	if skipped > 0 {
		log.WithField("skipped", skipped).Warn("Skipped remote keywords for entries missing locally")
	}
	return nil
}

// Bootstrap builds a fresh store from the remote's entries, tags and keywords
// and saves it to the server-mode slot.
func (s *Synchronizer) Bootstrap(ctx context.Context) (*store.Store, error) {
	remoteEntries, err := s.remote.ListEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entries: %w", err)
	}
	remoteTags, err := s.remote.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tags: %w", err)
	}
	remoteKeywords, err := s.remote.ListKeywords(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch keywords: %w", err)
	}

	st, err := store.New()
	if err != nil {
		return nil, err
	}

	entries := make([]entities.Entry, 0, len(remoteEntries))
	for _, e := range remoteEntries {
		entries = append(entries, entities.Entry{
			ID:        e.ID,
			Content:   e.Content,
			CreatedAt: e.CreatedAt.Time,
		})
	}
	if err := st.InsertEntries(entries); err != nil {
		st.Close()
		return nil, err
	}

	tags := make([]entities.Tag, 0, len(remoteTags))
	for _, t := range remoteTags {
		tags = append(tags, entities.Tag{ID: t.ID, EntryID: t.EntryID, SentenceIndex: t.SentenceIndex, Tag: t.Tag})
	}
	tagsSkipped, err := st.ReplaceTags(tags)
	if err != nil {
		st.Close()
		return nil, err
	}

	keywords := make([]entities.Keyword, 0, len(remoteKeywords))
	for _, k := range remoteKeywords {
		keywords = append(keywords, entities.Keyword{ID: k.ID, EntryID: k.EntryID, Keyword: k.Keyword})
	}
	keywordsSkipped, err := st.ReplaceKeywords(keywords)
	if err != nil {
		st.Close()
		return nil, err
	}

	if err := s.saver.Save(st, true); err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to persist bootstrapped store: %w", err)
	}

	log.WithFields(log.Fields{
		"entries":         len(entries),
		"tags":            len(tags) - tagsSkipped,
		"keywords":        len(keywords) - keywordsSkipped,
		"orphans_skipped": tagsSkipped + keywordsSkipped,
	}).Info("Bootstrapped store from remote")

	return st, nil
}

// SameKeywords compares two keyword lists as sets, ignoring order, blanks
// and repeats. A nil list equals an empty one.
func SameKeywords(a, b []string) bool {
	left := store.NormalizeKeywords(a)
	right := store.NormalizeKeywords(b)
	if len(left) != len(right) {
		return false
	}
	sort.Strings(left)
	sort.Strings(right)
	return strings.Join(left, "\x00") == strings.Join(right, "\x00")
}
