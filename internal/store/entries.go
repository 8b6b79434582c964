package store

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/diary/internal/entities"
)

// AddEntry inserts a new entry with a store-generated id together with its
// keywords. A zero createdAt means "now".
func (s *Store) AddEntry(content string, createdAt time.Time, keywords []string) (*entities.Entry, error) {
	entry := &entities.Entry{
		Content:   content,
		CreatedAt: createdAt.UTC(),
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to insert entry: %w", err)
		}
		return insertKeywords(tx, entry.ID, NormalizeKeywords(keywords))
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// InsertEntries bulk-inserts entries keeping their ids.
func (s *Store) InsertEntries(entries []entities.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		for i := range entries {
			e := entries[i]
			e.CreatedAt = e.CreatedAt.UTC()
			if err := tx.Create(&e).Error; err != nil {
				return fmt.Errorf("failed to insert entry %d: %w", e.ID, err)
			}
		}
		return nil
	})
}

// GetEntry retrieves a single entry by id.
func (s *Store) GetEntry(id int64) (*entities.Entry, error) {
	var entry entities.Entry
	err := s.db.Where("id = ?", id).Take(&entry).Error
	if err == gorm.ErrRecordNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListEntries returns all entries newest first. Entries sharing a timestamp
// come back in insertion (id) order.
func (s *Store) ListEntries() ([]entities.Entry, error) {
	var entries []entities.Entry
	err := s.db.Order("created_at DESC").Order("id ASC").Find(&entries).Error
	return entries, err
}

// ListEntriesWithKeywords returns ListEntries annotated with each entry's keywords.
func (s *Store) ListEntriesWithKeywords() ([]entities.EntryWithKeywords, error) {
	entries, err := s.ListEntries()
	if err != nil {
		return nil, err
	}
	keywords, err := s.ListKeywords()
	if err != nil {
		return nil, err
	}

	byEntry := make(map[int64][]string)
	for _, k := range keywords {
		byEntry[k.EntryID] = append(byEntry[k.EntryID], k.Keyword)
	}

	result := make([]entities.EntryWithKeywords, 0, len(entries))
	for _, e := range entries {
		kws := byEntry[e.ID]
		if kws == nil {
			kws = []string{}
		}
		result = append(result, entities.EntryWithKeywords{Entry: e, Keywords: kws})
	}
	return result, nil
}

// DeleteEntry removes an entry. Its tags and keywords go with it.
func (s *Store) DeleteEntry(id int64) error {
	result := s.db.Delete(&entities.Entry{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RekeyEntry changes an entry's id and moves its tags and keywords along.
func (s *Store) RekeyEntry(oldID, newID int64) error {
	if oldID == newID {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		exists, err := s.entryExists(tx, oldID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		taken, err := s.entryExists(tx, newID)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: %d", ErrIDConflict, newID)
		}

		// Children are moved after the parent; checks run at commit.
		if err := tx.Exec("PRAGMA defer_foreign_keys = ON").Error; err != nil {
			return err
		}
		if err := tx.Exec("UPDATE entries SET id = ? WHERE id = ?", newID, oldID).Error; err != nil {
			return fmt.Errorf("failed to rekey entry: %w", err)
		}
		if err := tx.Exec("UPDATE tags SET entry_id = ? WHERE entry_id = ?", newID, oldID).Error; err != nil {
			return fmt.Errorf("failed to rekey tags: %w", err)
		}
		if err := tx.Exec("UPDATE keywords SET entry_id = ? WHERE entry_id = ?", newID, oldID).Error; err != nil {
			return fmt.Errorf("failed to rekey keywords: %w", err)
		}
		return nil
	})
}
