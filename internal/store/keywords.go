package store

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/diary/internal/entities"
)

// NormalizeKeywords trims each keyword, drops blanks and repeats, and keeps
// the first-seen order.
func NormalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}

// ParseKeywords splits a comma separated keyword list.
func ParseKeywords(raw string) []string {
	return NormalizeKeywords(strings.Split(raw, ","))
}

func insertKeywords(tx *gorm.DB, entryID int64, keywords []string) error {
	for _, k := range keywords {
		row := &entities.Keyword{EntryID: entryID, Keyword: k}
		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("failed to insert keyword %q: %w", k, err)
		}
	}
	return nil
}

// KeywordsForEntry returns an entry's keywords in insertion order.
func (s *Store) KeywordsForEntry(entryID int64) ([]string, error) {
	var words []string
	err := s.db.Model(&entities.Keyword{}).
		Where("entry_id = ?", entryID).
		Order("id ASC").
		Pluck("keyword", &words).Error
	if err != nil {
		return nil, err
	}
	if words == nil {
		words = []string{}
	}
	return words, nil
}

// ListKeywords returns every keyword row in id order.
func (s *Store) ListKeywords() ([]entities.Keyword, error) {
	var keywords []entities.Keyword
	err := s.db.Order("id ASC").Find(&keywords).Error
	return keywords, err
}

// ReplaceEntryKeywords sets an entry's keyword list.
func (s *Store) ReplaceEntryKeywords(entryID int64, keywords []string) error {
	exists, err := s.entryExists(s.db, entryID)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("entry_id = ?", entryID).Delete(&entities.Keyword{}).Error; err != nil {
			return fmt.Errorf("failed to clear keywords: %w", err)
		}
		return insertKeywords(tx, entryID, NormalizeKeywords(keywords))
	})
}

// ReplaceKeywords swaps the whole keywords table for the given rows, keeping
// their ids. Keywords of unknown entries are skipped and counted.
func (s *Store) ReplaceKeywords(keywords []entities.Keyword) (int, error) {
	skipped := 0
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM keywords").Error; err != nil {
			return fmt.Errorf("failed to clear keywords: %w", err)
		}
		entryIDs, err := s.entryIDSet(tx)
		if err != nil {
			return err
		}
		for i := range keywords {
			k := keywords[i]
			if _, ok := entryIDs[k.EntryID]; !ok {
				skipped++
				continue
			}
			if err := tx.Create(&k).Error; err != nil {
				return fmt.Errorf("failed to insert keyword %d: %w", k.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return skipped, nil
}
