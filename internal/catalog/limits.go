package catalog

// Limits bounds listing sizes and text input.
type Limits struct {
	PageSize    int `yaml:"page_size" envconfig:"CATALOG_PAGE_SIZE"`
	SearchLimit int `yaml:"search_limit" envconfig:"CATALOG_SEARCH_LIMIT"`
	NameMax     int `yaml:"name_max" envconfig:"CATALOG_NAME_MAX"`
	CaptionMax  int `yaml:"caption_max" envconfig:"CATALOG_CAPTION_MAX"`
	KeywordMax  int `yaml:"keyword_max" envconfig:"CATALOG_KEYWORD_MAX"`
}

// DefaultLimits returns the stock limits.
func DefaultLimits() Limits {
	return Limits{PageSize: 6, SearchLimit: 25, NameMax: 128, CaptionMax: 1024, KeywordMax: 64}
}

// WithDefaults fills zero or negative fields from DefaultLimits.
func (l Limits) WithDefaults() Limits {
	d := DefaultLimits()
	if l.PageSize <= 0 {
		l.PageSize = d.PageSize
	}
	if l.SearchLimit <= 0 {
		l.SearchLimit = d.SearchLimit
	}
	if l.NameMax <= 0 {
		l.NameMax = d.NameMax
	}
	if l.CaptionMax <= 0 {
		l.CaptionMax = d.CaptionMax
	}
	if l.KeywordMax <= 0 {
		l.KeywordMax = d.KeywordMax
	}
	return l
}
