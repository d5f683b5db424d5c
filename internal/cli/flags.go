package cli

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile      string
	OutputDir    string
	SourceLabel  string
	ForceRestart bool
	Archive      bool
	ListModels   bool

	// Chunking flags
	ChunkSize     int
	NoDedup       bool
	FuzzyMatching bool // reserved, currently a no-op

	// Translation flags
	Provider     string
	Model        string
	BaseURL      string
	CustomPrompt string
	RequestDelay float64
	TimeoutSecs  int
	BatchSize    int
	FlushEvery   int
	Concurrency  int

	// Retry flags
	Retries           int
	BackoffBase       float64
	BackoffMultiplier float64
	BackoffMax        float64

	// QA flags
	QASampleRate        float64
	QAMinSamples        int
	DevanagariThreshold float64
	MinLengthRatio      float64
	MaxLengthRatio      float64

	// State and cost flags
	StateBackend string
	MaxCostINR   float64
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		OutputDir:           "outputs",
		ChunkSize:           100,
		Provider:            "openrouter",
		Model:               "google/gemini-2.0-flash-thinking-exp:free",
		BaseURL:             "https://openrouter.ai/api/v1",
		TimeoutSecs:         30,
		BatchSize:           20,
		FlushEvery:          5,
		Concurrency:         1,
		Retries:             3,
		BackoffBase:         2.0,
		BackoffMultiplier:   2.0,
		BackoffMax:          60.0,
		QASampleRate:        0.01,
		QAMinSamples:        50,
		DevanagariThreshold: 0.7,
		MinLengthRatio:      0.5,
		MaxLengthRatio:      2.0,
		StateBackend:        "file",
	}
}
