package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	App       AppConfig
	Cache     CacheConfig
	Storage   StorageConfig
	Drive     DriveConfig
	Sales     SalesConfig
	Forecast  ForecastConfig
	Inventory InventoryConfig
	ESG       ESGConfig
	Pricing   PricingConfig
	Calendar  CalendarConfig
}

type ServerConfig struct {
	Port               string
	Mode               string
	ReadTimeout        int
	WriteTimeout       int
	AllowedOrigins     []string
	PrewarmModels      bool
	PrewarmConcurrency int
	MetricsEnabled     bool
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN renders the lib/pq keyword connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type AppConfig struct {
	DataDir string
}

type CacheConfig struct {
	Enabled         bool
	RedisURL        string
	RedisHost       string
	RedisPort       string
	RedisPassword   string
	RedisDB         int
	SalesTTLSeconds int
}

// StorageConfig points at the S3-compatible bucket holding sales exports.
type StorageConfig struct {
	Endpoint       string
	AccessKey      string
	SecretKey      string
	Bucket         string
	Region         string
	UseSSL         bool
	SalesObjectKey string
}

type DriveConfig struct {
	CredentialsFile string
	FolderPath      string
	FileName        string
}

// SalesConfig selects where historical sales come from: csv, postgres or s3.
type SalesConfig struct {
	Source  string
	CSVPath string
}

type ForecastConfig struct {
	MinTrainingSamples         int
	SeasonalityMode            string
	IntervalWidth              float64
	DefaultHorizonDays         int
	MaxHorizonDays             int
	TrendIncreaseThreshold     float64
	TrendDecreaseThreshold     float64
	WeeklyFourierOrder         int
	YearlyFourierOrder         int
	RidgePenalty               float64
	FallbackBaseDemandFactor   float64
	FallbackWeekendMultiplier  float64
	FallbackPaydayMultiplier   float64
	FallbackConfidenceInterval float64
	FallbackNoiseFraction      float64
}

type InventoryConfig struct {
	ExpiryCriticalDays        int
	ExpiryWarningDays         int
	ExpiryAlertDays           int
	LowStockCriticalFactor    float64
	OverstockFactor           float64
	OverstockExpiryWindowDays int
	DemandSpikeFactor         float64
	MinCoverageDays           float64
	ShelfLifeBufferDays       int
	NonKgUnitWeight           float64
}

type ESGConfig struct {
	MethaneFactor          float64
	BaselineMonthlyWasteKg float64
	InitialWasteSavedKg    float64
	InitialItemsRescued    int
	InitialCostSaved       float64
	ComplianceBase         float64
	CompliancePerItem      float64
	ComplianceMax          float64
}

type PricingConfig struct {
	CriticalMarkdownPercent float64
	WarningDiscountPercent  float64
	ImmediateReorderDays    int
}

// DayRange is an inclusive day-of-month range.
type DayRange struct {
	From int
	To   int
}

func (r DayRange) Contains(day int) bool {
	return day >= r.From && day <= r.To
}

type CalendarConfig struct {
	PaydayRanges []DayRange
	Timezone     string
}

const defaultPaydayRanges = "25-31,1-5"

var (
	once     sync.Once
	instance *Config
)

// Load reads .env and the environment once and returns the shared config.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		instance = New()
		ensureDir(instance.App.DataDir)
	})

	return instance
}

// New builds a config from defaults and the current environment.
func New() *Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	return &Config{
		Server: ServerConfig{
			Port:               v.GetString("SERVER_PORT"),
			Mode:               v.GetString("SERVER_MODE"),
			ReadTimeout:        v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:       v.GetInt("SERVER_WRITE_TIMEOUT"),
			AllowedOrigins:     v.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			PrewarmModels:      v.GetBool("PREWARM_MODELS"),
			PrewarmConcurrency: v.GetInt("PREWARM_CONCURRENCY"),
			MetricsEnabled:     v.GetBool("METRICS_ENABLED"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		App: AppConfig{
			DataDir: v.GetString("APP_DATA_DIR"),
		},
		Cache: CacheConfig{
			Enabled:         v.GetBool("CACHE_ENABLED"),
			RedisURL:        v.GetString("REDIS_URL"),
			RedisHost:       v.GetString("REDIS_HOST"),
			RedisPort:       v.GetString("REDIS_PORT"),
			RedisPassword:   v.GetString("REDIS_PASSWORD"),
			RedisDB:         v.GetInt("REDIS_DB"),
			SalesTTLSeconds: v.GetInt("CACHE_SALES_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Endpoint:       v.GetString("S3_ENDPOINT"),
			AccessKey:      v.GetString("S3_ACCESS_KEY"),
			SecretKey:      v.GetString("S3_SECRET_KEY"),
			Bucket:         v.GetString("S3_BUCKET"),
			Region:         v.GetString("S3_REGION"),
			UseSSL:         v.GetBool("S3_USE_SSL"),
			SalesObjectKey: v.GetString("S3_SALES_OBJECT_KEY"),
		},
		Drive: DriveConfig{
			CredentialsFile: v.GetString("GOOGLE_CREDENTIALS_FILE"),
			FolderPath:      v.GetString("DRIVE_FOLDER_PATH"),
			FileName:        v.GetString("DRIVE_SALES_FILE"),
		},
		Sales: SalesConfig{
			Source:  strings.ToLower(v.GetString("SALES_SOURCE")),
			CSVPath: v.GetString("SALES_CSV_PATH"),
		},
		Forecast: ForecastConfig{
			MinTrainingSamples:         v.GetInt("MIN_TRAINING_SAMPLES"),
			SeasonalityMode:            strings.ToLower(v.GetString("SEASONALITY_MODE")),
			IntervalWidth:              v.GetFloat64("INTERVAL_WIDTH"),
			DefaultHorizonDays:         v.GetInt("DEFAULT_FORECAST_DAYS"),
			MaxHorizonDays:             v.GetInt("MAX_FORECAST_DAYS"),
			TrendIncreaseThreshold:     v.GetFloat64("TREND_INCREASE_THRESHOLD"),
			TrendDecreaseThreshold:     v.GetFloat64("TREND_DECREASE_THRESHOLD"),
			WeeklyFourierOrder:         v.GetInt("WEEKLY_FOURIER_ORDER"),
			YearlyFourierOrder:         v.GetInt("YEARLY_FOURIER_ORDER"),
			RidgePenalty:               v.GetFloat64("RIDGE_PENALTY"),
			FallbackBaseDemandFactor:   v.GetFloat64("FALLBACK_BASE_DEMAND_FACTOR"),
			FallbackWeekendMultiplier:  v.GetFloat64("FALLBACK_WEEKEND_MULTIPLIER"),
			FallbackPaydayMultiplier:   v.GetFloat64("FALLBACK_PAYDAY_MULTIPLIER"),
			FallbackConfidenceInterval: v.GetFloat64("FALLBACK_CONFIDENCE_INTERVAL"),
			FallbackNoiseFraction:      v.GetFloat64("FALLBACK_NOISE_FRACTION"),
		},
		Inventory: InventoryConfig{
			ExpiryCriticalDays:        v.GetInt("EXPIRY_CRITICAL_DAYS"),
			ExpiryWarningDays:         v.GetInt("EXPIRY_WARNING_DAYS"),
			ExpiryAlertDays:           v.GetInt("EXPIRY_ALERT_DAYS"),
			LowStockCriticalFactor:    v.GetFloat64("LOW_STOCK_CRITICAL_FACTOR"),
			OverstockFactor:           v.GetFloat64("OVERSTOCK_FACTOR"),
			OverstockExpiryWindowDays: v.GetInt("OVERSTOCK_EXPIRY_WINDOW_DAYS"),
			DemandSpikeFactor:         v.GetFloat64("DEMAND_SPIKE_FACTOR"),
			MinCoverageDays:           v.GetFloat64("MIN_COVERAGE_DAYS"),
			ShelfLifeBufferDays:       v.GetInt("SHELF_LIFE_BUFFER_DAYS"),
			NonKgUnitWeight:           v.GetFloat64("NON_KG_UNIT_WEIGHT"),
		},
		ESG: ESGConfig{
			MethaneFactor:          v.GetFloat64("METHANE_FACTOR"),
			BaselineMonthlyWasteKg: v.GetFloat64("BASELINE_MONTHLY_WASTE_KG"),
			InitialWasteSavedKg:    v.GetFloat64("INITIAL_WASTE_SAVED_KG"),
			InitialItemsRescued:    v.GetInt("INITIAL_ITEMS_RESCUED"),
			InitialCostSaved:       v.GetFloat64("INITIAL_COST_SAVED"),
			ComplianceBase:         v.GetFloat64("COMPLIANCE_BASE_SCORE"),
			CompliancePerItem:      v.GetFloat64("COMPLIANCE_PER_ITEM"),
			ComplianceMax:          v.GetFloat64("COMPLIANCE_MAX_SCORE"),
		},
		Pricing: PricingConfig{
			CriticalMarkdownPercent: v.GetFloat64("CRITICAL_MARKDOWN_PERCENT"),
			WarningDiscountPercent:  v.GetFloat64("WARNING_DISCOUNT_PERCENT"),
			ImmediateReorderDays:    v.GetInt("IMMEDIATE_REORDER_DAYS"),
		},
		Calendar: CalendarConfig{
			PaydayRanges: parsePaydayRanges(v.GetString("PAYDAY_RANGES")),
			Timezone:     v.GetString("TIMEZONE"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_MODE", "debug")
	v.SetDefault("SERVER_READ_TIMEOUT", 15)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 30)
	v.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
	v.SetDefault("PREWARM_MODELS", true)
	v.SetDefault("PREWARM_CONCURRENCY", 4)
	v.SetDefault("METRICS_ENABLED", true)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "freshpredict")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("APP_DATA_DIR", "./data")

	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_SALES_TTL_SECONDS", 3600)

	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "freshpredict")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("S3_SALES_OBJECT_KEY", "sales/sales_history.csv")

	v.SetDefault("GOOGLE_CREDENTIALS_FILE", "")
	v.SetDefault("DRIVE_FOLDER_PATH", "")
	v.SetDefault("DRIVE_SALES_FILE", "sales_history")

	v.SetDefault("SALES_SOURCE", "csv")
	v.SetDefault("SALES_CSV_PATH", "./data/sales_history.csv")

	v.SetDefault("MIN_TRAINING_SAMPLES", 30)
	v.SetDefault("SEASONALITY_MODE", "multiplicative")
	v.SetDefault("INTERVAL_WIDTH", 0.8)
	v.SetDefault("DEFAULT_FORECAST_DAYS", 14)
	v.SetDefault("MAX_FORECAST_DAYS", 365)
	v.SetDefault("TREND_INCREASE_THRESHOLD", 0.10)
	v.SetDefault("TREND_DECREASE_THRESHOLD", 0.10)
	v.SetDefault("WEEKLY_FOURIER_ORDER", 3)
	v.SetDefault("YEARLY_FOURIER_ORDER", 6)
	v.SetDefault("RIDGE_PENALTY", 0.1)
	v.SetDefault("FALLBACK_BASE_DEMAND_FACTOR", 0.15)
	v.SetDefault("FALLBACK_WEEKEND_MULTIPLIER", 1.2)
	v.SetDefault("FALLBACK_PAYDAY_MULTIPLIER", 1.3)
	v.SetDefault("FALLBACK_CONFIDENCE_INTERVAL", 0.2)
	v.SetDefault("FALLBACK_NOISE_FRACTION", 0.1)

	v.SetDefault("EXPIRY_CRITICAL_DAYS", 2)
	v.SetDefault("EXPIRY_WARNING_DAYS", 4)
	v.SetDefault("EXPIRY_ALERT_DAYS", 5)
	v.SetDefault("LOW_STOCK_CRITICAL_FACTOR", 0.5)
	v.SetDefault("OVERSTOCK_FACTOR", 3.0)
	v.SetDefault("OVERSTOCK_EXPIRY_WINDOW_DAYS", 10)
	v.SetDefault("DEMAND_SPIKE_FACTOR", 1.5)
	v.SetDefault("MIN_COVERAGE_DAYS", 5)
	v.SetDefault("SHELF_LIFE_BUFFER_DAYS", 3)
	v.SetDefault("NON_KG_UNIT_WEIGHT", 0.06)

	v.SetDefault("METHANE_FACTOR", 0.918)
	v.SetDefault("BASELINE_MONTHLY_WASTE_KG", 180.0)
	v.SetDefault("INITIAL_WASTE_SAVED_KG", 150.0)
	v.SetDefault("INITIAL_ITEMS_RESCUED", 42)
	v.SetDefault("INITIAL_COST_SAVED", 2250.0)
	v.SetDefault("COMPLIANCE_BASE_SCORE", 85.0)
	v.SetDefault("COMPLIANCE_PER_ITEM", 0.5)
	v.SetDefault("COMPLIANCE_MAX_SCORE", 100.0)

	v.SetDefault("CRITICAL_MARKDOWN_PERCENT", 50.0)
	v.SetDefault("WARNING_DISCOUNT_PERCENT", 30.0)
	v.SetDefault("IMMEDIATE_REORDER_DAYS", 3)

	v.SetDefault("PAYDAY_RANGES", defaultPaydayRanges)
	v.SetDefault("TIMEZONE", "Asia/Kuala_Lumpur")
}

// parsePaydayRanges reads "25-31,1-5". Malformed input falls back to the
// default ranges.
func parsePaydayRanges(raw string) []DayRange {
	ranges, err := ParseDayRanges(raw)
	if err != nil || len(ranges) == 0 {
		if err != nil {
			log.Warn().Err(err).Str("value", raw).Msg("config: invalid PAYDAY_RANGES, using default")
		}
		ranges, _ = ParseDayRanges(defaultPaydayRanges)
	}
	return ranges
}

func ParseDayRanges(raw string) ([]DayRange, error) {
	var ranges []DayRange
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		bounds := strings.SplitN(part, "-", 2)
		if len(bounds) != 2 {
			return nil, fmt.Errorf("range %q must look like from-to", part)
		}
		from, err := strconv.Atoi(strings.TrimSpace(bounds[0]))
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", part, err)
		}
		to, err := strconv.Atoi(strings.TrimSpace(bounds[1]))
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", part, err)
		}
		if from < 1 || to > 31 || from > to {
			return nil, fmt.Errorf("range %q must satisfy 1 <= from <= to <= 31", part)
		}
		ranges = append(ranges, DayRange{From: from, To: to})
	}
	return ranges, nil
}

func ensureDir(dir string) {
	if dir == "" {
		return
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal().Err(err).Str("dir", dir).Msg("failed to create directory")
		}
	}
}
