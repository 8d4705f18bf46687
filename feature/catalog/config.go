package catalog

// Config locates the catalog documents.
type Config struct {
	// Files are local document paths.
	Files []string `mapstructure:"files"`
	// Objects are document keys in the storage bucket.
	Objects []string `mapstructure:"objects"`
	// ObjectPrefix, when set, adds every .json/.yaml/.yml object under it.
	ObjectPrefix string `mapstructure:"object_prefix"`
	// DefaultCurrency applies to documents that declare none.
	DefaultCurrency string `mapstructure:"default_currency" default:"usd"`
}

// HasStorageSources reports whether documents must be read from the bucket.
func (c Config) HasStorageSources() bool {
	return len(c.Objects) > 0 || c.ObjectPrefix != ""
}
