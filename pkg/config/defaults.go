package config

const (
	defaultBackendTarget  = "http://localhost:8000"
	defaultFeedbackTarget = "http://localhost:8000"

	defaultStorageDriver = "sqlite"

	defaultEventStreamProvider = "nop"
	defaultEventStreamTopic    = "willaiam.turns"

	defaultServeListen = ":8000"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Backend: BackendConfig{
			Target: defaultBackendTarget,
		},
		Feedback: FeedbackConfig{
			Target: defaultFeedbackTarget,
		},
		Storage: StorageConfig{
			Driver: defaultStorageDriver,
		},
		Chat: ChatConfig{
			RenderMarkdown: true,
		},
		EventStream: EventStreamConfig{
			Provider: defaultEventStreamProvider,
			Topic:    defaultEventStreamTopic,
		},
		Serve: ServeConfig{
			Listen: defaultServeListen,
		},
	}
}
