package config

// DefaultExtensions is the supported media set scanned when none is configured.
var DefaultExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".webp",
	".pdf", ".docx", ".odt", ".rtf", ".xlsx", ".pptx", ".odp", ".ods",
	".txt", ".md",
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "./.sense/index.db"
	}
	if cfg.Storage.LabelIndexPath == "" {
		cfg.Storage.LabelIndexPath = "./.sense/labels.bleve"
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "remote"
	}
	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "https://api.siliconflow.cn/v1"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "BAAI/bge-large-zh-v1.5"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "SENSE_API_KEY"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 1024
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 30
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 1024
	}
	if cfg.Indexer.Concurrency == 0 {
		cfg.Indexer.Concurrency = 4
	}
	if cfg.Indexer.MaxRetries == 0 {
		cfg.Indexer.MaxRetries = 3
	}
	if cfg.Indexer.BaseDelayMs == 0 {
		cfg.Indexer.BaseDelayMs = 200
	}
	if cfg.Indexer.MaxDelayMs == 0 {
		cfg.Indexer.MaxDelayMs = 5000
	}
	if cfg.Indexer.Extensions == nil {
		cfg.Indexer.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if cfg.Labels.Mode == "" {
		cfg.Labels.Mode = "sheet"
	}
	if cfg.Labels.SheetPath == "" {
		cfg.Labels.SheetPath = "./.sense/labels.csv"
	}
	if cfg.Search.DefaultLimit == 0 {
		cfg.Search.DefaultLimit = 8
	}
	if cfg.Search.MaxLimit == 0 {
		cfg.Search.MaxLimit = 100
	}
	// Recursive defaults to true when unset (nil).
	if len(cfg.Watch.Directories) > 0 && cfg.Watch.Recursive == nil {
		t := true
		cfg.Watch.Recursive = &t
	}
}
