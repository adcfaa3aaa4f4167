package models

// Product is a catalog entry managed by agents. The slug is derived from
// the title by replacing spaces with hyphens and is recomputed on update.
type Product struct {
	BaseModel
	Title       string  `gorm:"uniqueIndex" json:"title"`
	Slug        string  `gorm:"uniqueIndex" json:"slug"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Featured    bool    `json:"featured"`
}
