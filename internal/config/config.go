package config

import (
	"errors"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Gas      PortalConfig   `yaml:"gas" mapstructure:"gas"`
	Water    PortalConfig   `yaml:"water" mapstructure:"water"`
	Browser  BrowserConfig  `yaml:"browser" mapstructure:"browser"`
	Download DownloadConfig `yaml:"download" mapstructure:"download"`
	Mail     MailConfig     `yaml:"mail" mapstructure:"mail"`
	Tenant   TenantConfig   `yaml:"tenant" mapstructure:"tenant"`
	Rent     RentConfig     `yaml:"rent" mapstructure:"rent"`
	Tracker  TrackerConfig  `yaml:"tracker" mapstructure:"tracker"`
	Notify   NotifyConfig   `yaml:"notify" mapstructure:"notify"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// PortalConfig holds the login of one utility portal.
type PortalConfig struct {
	Username string `yaml:"username" mapstructure:"username"`
	Password string `yaml:"password" mapstructure:"password"`
}

// BrowserConfig configures the Chrome process used for the portals and
// the printed statement.
type BrowserConfig struct {
	ChromePath   string `yaml:"chrome_path" mapstructure:"chrome_path"`
	Headless     bool   `yaml:"headless" mapstructure:"headless"`
	NoSandbox    bool   `yaml:"no_sandbox" mapstructure:"no_sandbox"`
	AutoDownload bool   `yaml:"auto_download" mapstructure:"auto_download"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	// ProfileDir is the persistent profile of the water/trash portal.
	ProfileDir string `yaml:"profile_dir" mapstructure:"profile_dir"`
}

// DownloadConfig configures where bills are saved.
type DownloadConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// MailConfig holds the SMTP submission settings and sender identity.
type MailConfig struct {
	Host       string `yaml:"host" mapstructure:"host"`
	Port       int    `yaml:"port" mapstructure:"port"`
	Sender     string `yaml:"sender" mapstructure:"sender"`
	Password   string `yaml:"password" mapstructure:"password"`
	SenderName string `yaml:"sender_name" mapstructure:"sender_name"`
}

// TenantConfig identifies the recipient.
type TenantConfig struct {
	Name  string `yaml:"name" mapstructure:"name"`
	Email string `yaml:"email" mapstructure:"email"`
}

// RentConfig holds the fixed monthly charge.
type RentConfig struct {
	Amount string `yaml:"amount" mapstructure:"amount"`
	Notes  string `yaml:"notes" mapstructure:"notes"`
}

// TrackerConfig selects the send history backend.
type TrackerConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"`
	Path   string `yaml:"path" mapstructure:"path"`
}

// NotifyConfig controls the outbound statement.
type NotifyConfig struct {
	AttachStatement bool   `yaml:"attach_statement" mapstructure:"attach_statement"`
	StatementDir    string `yaml:"statement_dir" mapstructure:"statement_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// legacyEnv maps config keys to the plain environment names also accepted
// for them.
var legacyEnv = map[string]string{
	"gas.username":     "ATMOS_USERNAME",
	"gas.password":     "ATMOS_PASSWORD",
	"water.username":   "DALLAS_WATER_USERNAME",
	"water.password":   "DALLAS_WATER_PASSWORD",
	"mail.sender":      "SENDER_EMAIL",
	"mail.password":    "SENDER_PASSWORD",
	"mail.sender_name": "LANDLORD_NAME",
	"tenant.email":     "TENANT_EMAIL",
	"tenant.name":      "TENANT_NAME",
	"rent.amount":      "RENT_AMOUNT",
}

const (
	envPrefix         = "BILLRELAY"
	defaultCSVPath    = "sent_emails.csv"
	defaultSQLitePath = "sent_emails.db"
)

// Load reads configuration from file and environment. A .env file in the
// working directory is loaded first; its values never override variables
// that are already set.
func Load() (*Config, error) {
	if err := LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, eris.Wrapf(err, "config: bind %s", key)
		}
	}

	// Defaults
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.timeout_secs", 30)
	v.SetDefault("browser.profile_dir", "chrome_profile")
	v.SetDefault("browser.chrome_path", "")
	v.SetDefault("browser.no_sandbox", false)
	v.SetDefault("browser.auto_download", false)
	v.SetDefault("download.dir", "downloaded_bills")
	v.SetDefault("download.timeout_secs", 30)
	v.SetDefault("mail.host", "smtp.gmail.com")
	v.SetDefault("mail.port", 587)
	v.SetDefault("rent.notes", "For the upcoming month")
	v.SetDefault("tracker.driver", "csv")
	v.SetDefault("tracker.path", defaultCSVPath)
	v.SetDefault("notify.attach_statement", false)
	v.SetDefault("notify.statement_dir", "statements")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	if cfg.Tracker.Driver == "sqlite" && cfg.Tracker.Path == defaultCSVPath {
		cfg.Tracker.Path = defaultSQLitePath
	}

	return &cfg, nil
}

// LoadDotEnv exports the variables of a dotenv file at path. Variables
// already present in the environment are kept. A missing file is not an
// error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return eris.Wrapf(err, "config: read %s", path)
	}
	for _, key := range v.AllKeys() {
		name := strings.ToUpper(key)
		if _, ok := os.LookupEnv(name); ok {
			continue
		}
		if err := os.Setenv(name, v.GetString(key)); err != nil {
			return eris.Wrapf(err, "config: export %s", name)
		}
	}
	return nil
}

// Validate checks that the settings needed by the given command are
// present. Commands are "run", "fetch-gas" and "fetch-trash".
func (c *Config) Validate(command string) error {
	var missing []string
	require := func(val, name string) {
		if strings.TrimSpace(val) == "" {
			missing = append(missing, name+" is required")
		}
	}

	if command == "run" || command == "fetch-gas" {
		require(c.Gas.Username, "gas.username")
		require(c.Gas.Password, "gas.password")
	}
	if command == "run" || command == "fetch-trash" {
		require(c.Water.Username, "water.username")
		require(c.Water.Password, "water.password")
	}
	if command == "run" {
		require(c.Mail.Sender, "mail.sender")
		require(c.Mail.Password, "mail.password")
		require(c.Tenant.Email, "tenant.email")
		require(c.Rent.Amount, "rent.amount")
		if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
			missing = append(missing, "mail.port must be between 1 and 65535")
		}
	}
	switch c.Tracker.Driver {
	case "csv", "sqlite":
	default:
		missing = append(missing, "tracker.driver must be csv or sqlite")
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
