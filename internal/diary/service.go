// Package diary is the application facade: every operation the UI layer
// calls goes through a Service.
//
// A Service owns the single active store. Initialize and ImportDatabase
// replace it wholesale; every other operation works on whatever store is
// active at the time of the call. Before the first successful Initialize,
// reads return empty results and writes are logged and ignored.
package diary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mrlokans/diary/internal/audit"
	"github.com/mrlokans/diary/internal/entities"
	"github.com/mrlokans/diary/internal/persistence"
	"github.com/mrlokans/diary/internal/remote"
	"github.com/mrlokans/diary/internal/store"
	"github.com/mrlokans/diary/internal/syncer"
	"github.com/mrlokans/diary/internal/utils"
)

var (
	// ErrValidation wraps every input validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrStoreUninitialized is returned by operations that cannot be a silent no-op.
	ErrStoreUninitialized = errors.New("store is not initialized")

	// ErrOriginRequired is returned when a remote operation runs outside server mode.
	ErrOriginRequired = errors.New("server mode with an origin is required")
)

// Remote is the remote surface the facade uses.
type Remote interface {
	syncer.Remote
	DeleteTag(ctx context.Context, tagID int64) error
}

// RemoteFactory builds a Remote for an origin.
type RemoteFactory func(origin string) (Remote, error)

// Options configures a Service.
type Options struct {
	// RemoteTimeout bounds each remote call. Zero means no timeout.
	RemoteTimeout time.Duration

	// ReconcileIDs re-keys pushed entries to their remote ids.
	ReconcileIDs bool

	// Archive keeps the store replaced by each import. Nil disables it.
	Archive *audit.Auditor

	// NewRemote overrides how remote clients are built.
	NewRemote RemoteFactory
}

// Mode describes the effective operating mode.
type Mode struct {
	Initialized bool   `json:"initialized"`
	ServerMode  bool   `json:"server_mode"`
	Origin      string `json:"origin,omitempty"`

	// Fallback is set when server mode was requested but local mode is in effect.
	Fallback bool `json:"fallback"`
}

// Service is the facade over the store, persistence and remote sync.
type Service struct {
	persistence *persistence.Adapter
	newRemote   RemoteFactory
	opts        Options

	mu     sync.RWMutex
	store  *store.Store
	mode   Mode
	remote Remote
}

func NewService(adapter *persistence.Adapter, opts Options) *Service {
	newRemote := opts.NewRemote
	if newRemote == nil {
		timeout := opts.RemoteTimeout
		newRemote = func(origin string) (Remote, error) {
			return remote.NewClient(origin, timeout)
		}
	}
	return &Service{
		persistence: adapter,
		newRemote:   newRemote,
		opts:        opts,
	}
}

// Initialize (re)builds the active store. In server mode with an origin the
// store is bootstrapped from the remote; if that fails the local-mode store
// is loaded instead. Only a failure of the local path is returned.
func (s *Service) Initialize(ctx context.Context, serverMode bool, origin string) (Mode, error) {
	origin = strings.TrimSpace(origin)

	if serverMode && origin != "" {
		st, client, err := s.bootstrap(ctx, origin)
		if err == nil {
			mode := Mode{Initialized: true, ServerMode: true, Origin: origin}
			s.swap(st, mode, client)
			log.WithField("origin", origin).Info("Initialized in server mode")
			return mode, nil
		}
		log.WithError(err).WithField("origin", origin).Warn("Server bootstrap failed, falling back to local mode")
	}

	st, err := s.persistence.LoadOrCreate(false)
	if err != nil {
		return s.Mode(), fmt.Errorf("initialization failed: %w", err)
	}
	mode := Mode{Initialized: true, Origin: origin, Fallback: serverMode}
	s.swap(st, mode, nil)
	log.WithField("fallback", mode.Fallback).Info("Initialized in local mode")
	return mode, nil
}

func (s *Service) bootstrap(ctx context.Context, origin string) (*store.Store, Remote, error) {
	client, err := s.newRemote(origin)
	if err != nil {
		return nil, nil, err
	}
	st, err := s.syncerFor(client).Bootstrap(ctx)
	if err != nil {
		return nil, nil, err
	}
	return st, client, nil
}

func (s *Service) syncerFor(client Remote) *syncer.Synchronizer {
	return syncer.New(client, s.persistence, syncer.Options{ReconcileIDs: s.opts.ReconcileIDs})
}

// swap installs a new active store and closes the previous one.
func (s *Service) swap(st *store.Store, mode Mode, client Remote) {
	s.mu.Lock()
	previous := s.store
	s.store = st
	s.mode = mode
	s.remote = client
	s.mu.Unlock()

	if previous != nil && previous != st {
		if err := previous.Close(); err != nil {
			log.WithError(err).Warn("Failed to close previous store")
		}
	}
}

func (s *Service) current() (*store.Store, Mode, Remote) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.store, s.mode, s.remote
}

// Mode reports the effective mode.
func (s *Service) Mode() Mode {
	_, mode, _ := s.current()
	return mode
}

// Close releases the active store.
func (s *Service) Close() error {
	s.mu.Lock()
	st := s.store
	s.store = nil
	s.remote = nil
	s.mode = Mode{}
	s.mu.Unlock()

	if st == nil {
		return nil
	}
	return st.Close()
}

func (s *Service) persist(st *store.Store, mode Mode) error {
	if err := s.persistence.Save(st, mode.ServerMode); err != nil {
		return fmt.Errorf("failed to persist store: %w", err)
	}
	return nil
}

// AddEntry stores a new entry and, in server mode, pushes it. A failed push
// is returned together with the locally committed entry.
func (s *Service) AddEntry(ctx context.Context, content string, keywords []string) (*entities.EntryWithKeywords, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: entry content is empty", ErrValidation)
	}

	st, mode, client := s.current()
	if st == nil {
		log.Warn("AddEntry ignored: store is not initialized")
		return nil, nil
	}

	entry, err := st.AddEntry(content, time.Time{}, keywords)
	if err != nil {
		return nil, err
	}
	result := &entities.EntryWithKeywords{Entry: *entry, Keywords: store.NormalizeKeywords(keywords)}

	if err := s.persist(st, mode); err != nil {
		return result, err
	}

	if client == nil {
		return result, nil
	}

	resp, err := client.CreateEntry(ctx, remote.CreateEntryRequest{
		Content:   entry.Content,
		CreatedAt: &remote.Timestamp{Time: entry.CreatedAt},
		Keywords:  result.Keywords,
	})
	if err != nil {
		return result, fmt.Errorf("entry saved locally but remote push failed: %w", err)
	}
	log.WithFields(log.Fields{
		"local_id":  entry.ID,
		"remote_id": resp.EntryID,
	}).Info("Pushed new entry to remote")

	if s.opts.ReconcileIDs && resp.EntryID != entry.ID {
		if err := st.RekeyEntry(entry.ID, resp.EntryID); err != nil {
			log.WithError(err).WithField("remote_id", resp.EntryID).Warn("Could not adopt remote id")
			return result, nil
		}
		result.ID = resp.EntryID
		if err := s.persist(st, mode); err != nil {
			return result, err
		}
	}
	return result, nil
}

// ListEntries returns entries newest first with their keywords.
func (s *Service) ListEntries() ([]entities.EntryWithKeywords, error) {
	st, _, _ := s.current()
	if st == nil {
		return []entities.EntryWithKeywords{}, nil
	}
	return st.ListEntriesWithKeywords()
}

// GetEntry returns one entry with its keywords.
func (s *Service) GetEntry(entryID int64) (*entities.EntryWithKeywords, error) {
	st, _, _ := s.current()
	if st == nil {
		return nil, ErrStoreUninitialized
	}
	entry, err := st.GetEntry(entryID)
	if err != nil {
		return nil, err
	}
	keywords, err := st.KeywordsForEntry(entryID)
	if err != nil {
		return nil, err
	}
	return &entities.EntryWithKeywords{Entry: *entry, Keywords: keywords}, nil
}

// Sentences splits an entry's content the way sentence indexes are counted.
func (s *Service) Sentences(entryID int64) ([]string, error) {
	entry, err := s.GetEntry(entryID)
	if err != nil {
		return nil, err
	}
	return utils.SplitSentences(entry.Content), nil
}

// TagsForEntry lists the tags attached to one entry.
func (s *Service) TagsForEntry(entryID int64) ([]entities.Tag, error) {
	st, _, _ := s.current()
	if st == nil {
		return []entities.Tag{}, nil
	}
	tags, err := st.GetTagsForEntry(entryID)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []entities.Tag{}
	}
	return tags, nil
}

// AddTag attaches a tag to a sentence, mirroring it to the remote in server mode.
func (s *Service) AddTag(ctx context.Context, entryID int64, sentenceIndex int, tag string) (*entities.Tag, error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, fmt.Errorf("%w: tag is empty", ErrValidation)
	}
	if sentenceIndex < 0 {
		return nil, fmt.Errorf("%w: sentence index must be non-negative", ErrValidation)
	}

	st, mode, client := s.current()
	if st == nil {
		log.Warn("AddTag ignored: store is not initialized")
		return nil, nil
	}

	created, err := st.AddTag(entryID, sentenceIndex, tag)
	if err != nil {
		return nil, err
	}
	if err := s.persist(st, mode); err != nil {
		return created, err
	}

	if client == nil {
		return created, nil
	}

	resp, err := client.CreateTag(ctx, remote.CreateTagRequest{
		EntryID:       entryID,
		SentenceIndex: sentenceIndex,
		Tag:           tag,
	})
	if err != nil {
		return created, fmt.Errorf("tag saved locally but remote push failed: %w", err)
	}

	// Deletes are mirrored by id, so the local tag takes the remote id.
	if resp.TagID > 0 && resp.TagID != created.ID {
		if err := st.RekeyTag(created.ID, resp.TagID); err != nil {
			log.WithError(err).WithFields(log.Fields{
				"local_id":  created.ID,
				"remote_id": resp.TagID,
			}).Warn("Could not adopt remote tag id")
			return created, nil
		}
		created.ID = resp.TagID
		if err := s.persist(st, mode); err != nil {
			return created, err
		}
	}
	return created, nil
}

// DeleteTag removes a tag locally and, in server mode, remotely.
func (s *Service) DeleteTag(ctx context.Context, tagID int64) error {
	st, mode, client := s.current()
	if st == nil {
		log.Warn("DeleteTag ignored: store is not initialized")
		return nil
	}

	if err := st.DeleteTag(tagID); err != nil {
		return err
	}
	if err := s.persist(st, mode); err != nil {
		return err
	}

	if client != nil {
		if err := client.DeleteTag(ctx, tagID); err != nil {
			return fmt.Errorf("tag deleted locally but remote delete failed: %w", err)
		}
	}
	return nil
}

// UpdateEntryKeywords replaces an entry's keyword set.
func (s *Service) UpdateEntryKeywords(ctx context.Context, entryID int64, keywords []string) error {
	st, mode, client := s.current()
	if st == nil {
		log.Warn("UpdateEntryKeywords ignored: store is not initialized")
		return nil
	}

	normalized := store.NormalizeKeywords(keywords)
	if err := st.ReplaceEntryKeywords(entryID, normalized); err != nil {
		return err
	}
	if err := s.persist(st, mode); err != nil {
		return err
	}

	if client != nil {
		if err := client.UpdateEntryKeywords(ctx, entryID, normalized); err != nil {
			return fmt.Errorf("keywords saved locally but remote update failed: %w", err)
		}
	}
	return nil
}

// ExportDatabase returns the downloadable snapshot of the active store, or
// nil when nothing is initialized.
func (s *Service) ExportDatabase() (*persistence.ExportFile, error) {
	st, mode, _ := s.current()
	return s.persistence.Export(st, mode.ServerMode)
}

// ExportToDir writes the snapshot of the active store into dir.
func (s *Service) ExportToDir(dir string) (string, error) {
	st, mode, _ := s.current()
	return s.persistence.ExportToDir(st, mode.ServerMode, dir)
}

// ImportDatabase replaces the active store with the snapshot read from r.
// The previous store stays active if the file is rejected. In server mode
// the imported data is synced right away and the sync report returned.
func (s *Service) ImportDatabase(ctx context.Context, r io.Reader) (*syncer.Report, error) {
	imported, err := s.persistence.Import(r)
	if err != nil {
		return nil, err
	}

	previous, mode, client := s.current()
	if !mode.Initialized {
		mode = Mode{Initialized: true}
	}

	archiveID, snapshot, err := s.archive(previous, mode)
	if err != nil {
		imported.Close()
		return nil, err
	}

	if err := s.persist(imported, mode); err != nil {
		imported.Close()
		return nil, err
	}
	s.swap(imported, mode, client)
	log.WithField("server_mode", mode.ServerMode).Info("Database imported")

	var report *syncer.Report
	if client != nil {
		report, err = s.SyncWithServer(ctx)
	}
	s.recordImport(archiveID, snapshot, mode, report)
	return report, err
}

// archive saves the store about to be replaced. It returns an empty id when
// archiving is disabled.
func (s *Service) archive(previous *store.Store, mode Mode) (string, string, error) {
	if s.opts.Archive == nil {
		return "", "", nil
	}
	id := audit.NewID()
	if previous == nil {
		return id, "", nil
	}
	data, err := previous.Export()
	if err != nil {
		return "", "", fmt.Errorf("failed to archive current store: %w", err)
	}
	name, err := s.opts.Archive.SaveSnapshot(id, persistence.FileName(mode.ServerMode), data)
	if err != nil {
		return "", "", fmt.Errorf("failed to archive current store: %w", err)
	}
	return id, name, nil
}

func (s *Service) recordImport(id, snapshot string, mode Mode, report *syncer.Report) {
	if id == "" {
		return
	}
	record := audit.Record{
		ID:         id,
		ImportedAt: time.Now().UTC(),
		ServerMode: mode.ServerMode,
		Snapshot:   snapshot,
	}
	if report != nil {
		record.Report = report
	}
	if _, err := s.opts.Archive.SaveRecord(record); err != nil {
		log.WithError(err).Warn("Failed to write import record")
	}
}

// SyncWithServer runs one sync pass in server mode.
func (s *Service) SyncWithServer(ctx context.Context) (*syncer.Report, error) {
	st, mode, client := s.current()
	if st == nil {
		return nil, ErrStoreUninitialized
	}
	if !mode.ServerMode || client == nil {
		return nil, ErrOriginRequired
	}
	return s.syncerFor(client).Sync(ctx, st)
}
