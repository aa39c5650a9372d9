package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	Port               string
	APIAccessKey       string
	CostTablePath      string
	MonitorInterval    int
	RelevanceThreshold int
	HTTPTimeout        int
	AIMaxTokens        int

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
