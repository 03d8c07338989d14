package model

// DocumentCounter holds the last number issued for a (prefix, year) pair.
type DocumentCounter struct {
	Prefix string `gorm:"type:varchar(10);primaryKey"`
	Year   int    `gorm:"primaryKey"`
	Value  int    `gorm:"not null;default:0"`
}
