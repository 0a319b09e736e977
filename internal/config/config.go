// Package config provides configuration types and loading for signaldesk.
package config

// Config is the root configuration struct.
type Config struct {
	Paths     PathsConfig     `json:"paths"`
	Model     ModelConfig     `json:"model"`
	Brand     BrandConfig     `json:"brand"`
	Providers ProvidersConfig `json:"providers"`
	Ingest    IngestConfig    `json:"ingest"`
	Loop      LoopConfig      `json:"loop"`
	Semantic  SemanticConfig  `json:"semantic"`
	Tools     ToolsConfig     `json:"tools"`
	Slack     SlackConfig     `json:"slack"`
}

// PathsConfig groups filesystem path settings.
type PathsConfig struct {
	DataDir string `json:"dataDir" envconfig:"DATA_DIR"`
	DBPath  string `json:"dbPath" envconfig:"DB_PATH"`
}

// ModelConfig groups LLM model settings for per-signal reasoning.
type ModelConfig struct {
	Name        string  `json:"name" envconfig:"MODEL"`
	MaxTokens   int     `json:"maxTokens" envconfig:"MAX_TOKENS"`
	Temperature float64 `json:"temperature" envconfig:"TEMPERATURE"`
}

// BrandConfig carries the brand/domain context injected into every
// reasoning call.
type BrandConfig struct {
	Context     string   `json:"context" envconfig:"BRAND_CONTEXT"`
	Constraints []string `json:"constraints"`
}

// ProvidersConfig holds LLM provider credentials.
type ProvidersConfig struct {
	Gemini GeminiConfig `json:"gemini"`
	OpenAI OpenAIConfig `json:"openai"`
	// Default selects which provider the resolver prefers: "gemini" or "openai".
	Default string `json:"default" envconfig:"PROVIDER"`
}

// GeminiConfig configures the Gemini provider.
type GeminiConfig struct {
	APIKey string `json:"apiKey" envconfig:"GEMINI_API_KEY"`
	Model  string `json:"model" envconfig:"GEMINI_MODEL"`
}

// OpenAIConfig configures the OpenAI-compatible provider.
type OpenAIConfig struct {
	APIKey  string `json:"apiKey" envconfig:"OPENAI_API_KEY"`
	APIBase string `json:"apiBase" envconfig:"OPENAI_API_BASE"`
	Model   string `json:"model" envconfig:"OPENAI_MODEL"`
}

// IngestConfig configures signal ingestion sources.
type IngestConfig struct {
	PollInterval string      `json:"pollInterval" envconfig:"INGEST_POLL_INTERVAL"`
	NewsAPIKey   string      `json:"newsApiKey" envconfig:"NEWS_API_KEY"`
	NewsQuery    string      `json:"newsQuery" envconfig:"NEWS_QUERY"`
	Kafka        KafkaConfig `json:"kafka"`
}

// KafkaConfig configures the Kafka signal intake.
type KafkaConfig struct {
	Enabled       bool   `json:"enabled" envconfig:"KAFKA_ENABLED"`
	Brokers       string `json:"brokers" envconfig:"KAFKA_BROKERS"`
	Topic         string `json:"topic" envconfig:"KAFKA_TOPIC"`
	ConsumerGroup string `json:"consumerGroup" envconfig:"KAFKA_CONSUMER_GROUP"`
}

// LoopConfig bounds the autonomous reasoning loop.
type LoopConfig struct {
	MaxSteps       int    `json:"maxSteps" envconfig:"LOOP_MAX_STEPS"`
	StepTimeout    string `json:"stepTimeout" envconfig:"LOOP_STEP_TIMEOUT"`
	AgentName      string `json:"agentName" envconfig:"LOOP_AGENT_NAME"`
	DialogueWindow int    `json:"dialogueWindow" envconfig:"LOOP_DIALOGUE_WINDOW"`
}

// SemanticConfig configures the external semantic memory service.
type SemanticConfig struct {
	BaseURL string `json:"baseUrl" envconfig:"SEMANTIC_URL"`
}

// ToolsConfig configures external tool back-ends.
type ToolsConfig struct {
	SandboxURL     string `json:"sandboxUrl" envconfig:"SANDBOX_URL"`
	BrowseMaxBytes int    `json:"browseMaxBytes" envconfig:"BROWSE_MAX_BYTES"`
}

// SlackConfig configures the Slack channel and the post_to_slack tool.
type SlackConfig struct {
	Enabled   bool   `json:"enabled" envconfig:"SLACK_ENABLED"`
	BotToken  string `json:"botToken" envconfig:"SLACK_BOT_TOKEN"`
	AppToken  string `json:"appToken" envconfig:"SLACK_APP_TOKEN"`
	BotUserID string `json:"botUserId" envconfig:"SLACK_BOT_USER_ID"`
}
