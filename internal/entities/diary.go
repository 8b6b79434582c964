package entities

import "time"

// Entry is a single journal record.
type Entry struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Content   string    `gorm:"column:content;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// Tag labels one sentence of an entry. SentenceIndex is 0-based and relative
// to the sentence segmentation of the entry's content at tagging time.
type Tag struct {
	ID            int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EntryID       int64  `gorm:"column:entry_id;not null" json:"entry_id"`
	SentenceIndex int    `gorm:"column:sentence_index;not null" json:"sentence_index"`
	Tag           string `gorm:"column:tag;not null" json:"tag"`
}

// Keyword labels a whole entry. The UI presents keywords as emotions.
type Keyword struct {
	ID      int64  `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EntryID int64  `gorm:"column:entry_id;not null" json:"entry_id"`
	Keyword string `gorm:"column:keyword;not null" json:"keyword"`
}

// EntryWithKeywords is the listing shape handed to the UI layer.
type EntryWithKeywords struct {
	Entry
	Keywords []string `json:"keywords"`
}

func (Entry) TableName() string {
	return "entries"
}

func (Tag) TableName() string {
	return "tags"
}

func (Keyword) TableName() string {
	return "keywords"
}
