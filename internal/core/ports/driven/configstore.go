package driven

// ConfigStore holds flat dot-notation settings such as "llm.model".
// Typed getters return the zero value for missing keys and for values of
// another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat64(key string) float64

	// Set stores a value. File-backed stores persist it immediately.
	Set(key string, value any) error

	Save() error
	Load() error

	// Path locates the backing file, for display.
	Path() string
}
