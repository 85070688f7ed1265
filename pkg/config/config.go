package config

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	Addr              string  // host:port of the broadcasting endpoint
	DisplayName       string  // name announced when registering
	Password          string  // connection password
	CommandPassword   string  // password for read-write access
	UpdateInterval    string  // requested realtime update interval
	EntryListRefresh  string  // min duration between entry list refreshes (0 disables)
	DB                string  // connection string for the database (optional)
	NatsURL           string  // URL of the NATS server (optional)
	Record            string  // path of the recording file (optional)
	Output            string  // renderer for events (log, json, none)
	Speed             float64 // replay speed factor (0 = as fast as possible)
	WaitForServices   string  // duration to wait for other services to be ready
	LogLevel          string  // sets the log level (zap log level values)
	SQLLogLevel       string  // sets the log level for sql subsystem
	LogFormat         string  // text vs json
	LogConfig         string  // path to log config file
	EnableTelemetry   bool    // enable telemetry
	TelemetryEndpoint string  // endpoint for telemetry (host:port or stdout)
)
