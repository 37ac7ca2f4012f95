package config

type Config struct {
	RedisConfig      RedisStorageConfig
	HttpPort         int
	WhatsApp         WhatsAppConfig
	Engine           EngineConfig
	Commerce         CommerceConfig
	SchedulerTickSec int
	ReaperTickSec    int
	DispatchCapacity int
}

type RedisStorageConfig struct {
	Addrs     []string
	Namespace string
}

type WhatsAppConfig struct {
	BaseURL        string
	TimeoutSeconds int
	VerifyToken    string
}

type EngineConfig struct {
	// MaxSteps is the step ceiling per run; graphs with cycles unbroken
	// by a waiting node hit it and the run ends in the error state.
	MaxSteps int
	// MaxWaitMs caps the in-step delay of a wait node.
	MaxWaitMs int
	// CaptureExpiryMinutes is how long a capture node waits for a text
	// reply before the reaper may fail the run.
	CaptureExpiryMinutes int
}

type CommerceConfig struct {
	FrontendURL string
	Currency    string
}
