package config

type AppConfig struct {
	APIPort   string `env:"PORT,required" envDefault:"11444"`
	APIKey    string `env:"API_KEY,required"`
	AppSource string `env:"APP_SOURCE" envDefault:"mailguard"`
}

type DatabaseConfig struct {
	Host            string `env:"MAILGUARD_POSTGRES_HOST,required"`
	Port            string `env:"MAILGUARD_POSTGRES_PORT,required"`
	User            string `env:"MAILGUARD_POSTGRES_USER,required"`
	DBName          string `env:"MAILGUARD_POSTGRES_DB_NAME,required"`
	Password        string `env:"MAILGUARD_POSTGRES_PASSWORD,required"`
	MaxConn         int    `env:"MAILGUARD_POSTGRES_DB_MAX_CONN"`
	MaxIdleConn     int    `env:"MAILGUARD_POSTGRES_DB_MAX_IDLE_CONN"`
	ConnMaxLifetime int    `env:"MAILGUARD_POSTGRES_DB_CONN_MAX_LIFETIME"`
	LogLevel        string `env:"MAILGUARD_POSTGRES_LOG_LEVEL" envDefault:"WARN"`
	SSLMode         string `env:"MAILGUARD_POSTGRES_SSL_MODE" envDefault:"require"`
}

type RedisConfig struct {
	Enabled         bool   `env:"REDIS_ENABLED" envDefault:"false"`
	Host            string `env:"REDIS_HOST" envDefault:"localhost"`
	Port            int    `env:"REDIS_PORT" envDefault:"6379"`
	Password        string `env:"REDIS_PASSWORD"`
	DB              int    `env:"REDIS_DB" envDefault:"0"`
	CacheTTLSeconds int    `env:"REDIS_CACHE_TTL_SECONDS" envDefault:"300"`
}

// DNSConfig carries the sending-provider identity published in generated records.
// SPF include host and DMARC report address have no sane defaults, startup fails without them.
type DNSConfig struct {
	SPFIncludeHost     string `env:"DNS_SPF_INCLUDE_HOST,required"`
	DMARCReportAddress string `env:"DNS_DMARC_REPORT_ADDRESS,required"`
	DKIMSelector       string `env:"DNS_DKIM_SELECTOR" envDefault:"mail"`
	VerificationPrefix string `env:"DNS_VERIFICATION_PREFIX" envDefault:"mailguard"`
	ResolverAddress    string `env:"DNS_RESOLVER_ADDRESS" envDefault:"1.1.1.1:53"`
	QueryTimeoutSec    int    `env:"DNS_QUERY_TIMEOUT_SECONDS" envDefault:"5"`
}

type MonitorConfig struct {
	CheckIntervalMinutes int `env:"MONITOR_CHECK_INTERVAL_MINUTES" envDefault:"60"`

	// alert thresholds
	ReputationScoreThreshold float64 `env:"MONITOR_REPUTATION_SCORE_THRESHOLD" envDefault:"70"`
	DeliveryRateThreshold    float64 `env:"MONITOR_DELIVERY_RATE_THRESHOLD" envDefault:"95"`
	BounceRateThreshold      float64 `env:"MONITOR_BOUNCE_RATE_THRESHOLD" envDefault:"5"`

	// enabled checks
	CheckDNSRecords     bool `env:"MONITOR_CHECK_DNS_RECORDS" envDefault:"true"`
	CheckReputation     bool `env:"MONITOR_CHECK_REPUTATION" envDefault:"true"`
	CheckDeliverability bool `env:"MONITOR_CHECK_DELIVERABILITY" envDefault:"true"`
}

type EventsConfig struct {
	RabbitMQURL string `env:"RABBITMQ_URL"`
	Exchange    string `env:"EVENTS_EXCHANGE" envDefault:"mailguard.alerts"`
}
