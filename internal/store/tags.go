package store

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/diary/internal/entities"
)

// AddTag attaches a tag to one sentence of an existing entry.
func (s *Store) AddTag(entryID int64, sentenceIndex int, tag string) (*entities.Tag, error) {
	if sentenceIndex < 0 {
		return nil, ErrInvalidSentenceIndex
	}

	exists, err := s.entryExists(s.db, entryID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	t := &entities.Tag{
		EntryID:       entryID,
		SentenceIndex: sentenceIndex,
		Tag:           tag,
	}
	if err := s.db.Create(t).Error; err != nil {
		return nil, fmt.Errorf("failed to insert tag: %w", err)
	}
	return t, nil
}

// GetTagsForEntry returns the tags of one entry in id order.
func (s *Store) GetTagsForEntry(entryID int64) ([]entities.Tag, error) {
	var tags []entities.Tag
	err := s.db.Where("entry_id = ?", entryID).Order("id ASC").Find(&tags).Error
	return tags, err
}

// ListTags returns every tag in id order.
func (s *Store) ListTags() ([]entities.Tag, error) {
	var tags []entities.Tag
	err := s.db.Order("id ASC").Find(&tags).Error
	return tags, err
}

// DeleteTag removes a single tag.
func (s *Store) DeleteTag(id int64) error {
	result := s.db.Delete(&entities.Tag{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RekeyTag moves a tag to a new id.
func (s *Store) RekeyTag(oldID, newID int64) error {
	if oldID == newID {
		return nil
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.Tag{}).Where("id = ?", newID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return fmt.Errorf("%w: tag %d", ErrIDConflict, newID)
		}
		result := tx.Exec("UPDATE tags SET id = ? WHERE id = ?", newID, oldID)
		if result.Error != nil {
			return fmt.Errorf("failed to rekey tag: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// ReplaceTags swaps the whole tags table for the given rows in one
// transaction, keeping their ids. Tags whose entry does not exist are skipped
// and counted.
func (s *Store) ReplaceTags(tags []entities.Tag) (int, error) {
	skipped := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM tags").Error; err != nil {
			return fmt.Errorf("failed to clear tags: %w", err)
		}
		entryIDs, err := s.entryIDSet(tx)
		if err != nil {
			return err
		}
		for i := range tags {
			t := tags[i]
			if _, ok := entryIDs[t.EntryID]; !ok {
				skipped++
				continue
			}
			if err := tx.Create(&t).Error; err != nil {
				return fmt.Errorf("failed to insert tag %d: %w", t.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return skipped, nil
}
