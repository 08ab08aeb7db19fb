package blocklist

import "context"

// Severity controls what a blocklist match does to the request.
type Severity string

const (
	SeverityBlock Severity = "block"
	SeverityWarn  Severity = "warn"
)

// Entry is one operator-managed phrase. Phrase is stored normalized.
type Entry struct {
	Phrase   string   `json:"phrase" mapstructure:"phrase" gorm:"column:phrase"`
	Language string   `json:"language,omitempty" mapstructure:"language" gorm:"column:language"`
	Severity Severity `json:"severity" mapstructure:"severity" gorm:"column:severity"`
}

// Store is the backing source of blocklist entries. Load returns the full
// current entry set; the checker swaps its snapshot wholesale.
type Store interface {
	Load(ctx context.Context) ([]Entry, error)
}
