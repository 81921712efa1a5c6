// Package config provides configuration loading, validation, and management
// for the helper bot. It reads an optional YAML file and BOT_* environment
// variables on top of built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrConfiguration wraps every load or validation failure.
var ErrConfiguration = errors.New("configuration error")

// Config defines the application configuration parameters for all components.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Bot       BotConfig       `mapstructure:"bot"`
	Messages  MessagesConfig  `mapstructure:"messages"`
	Keywords  KeywordsConfig  `mapstructure:"keywords"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls slog output.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot credentials and the admin identity.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
	// AdminID is compared as a string against the sender's numeric ID.
	AdminID string `mapstructure:"admin_id" validate:"required,numeric"`
}

// IsAdmin reports whether userID is the configured admin account.
func (t TelegramConfig) IsAdmin(userID int64) bool {
	return strconv.FormatInt(userID, 10) == t.AdminID
}

// DatabaseConfig points at the SQLite file.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// BotConfig holds per-operation timeouts and the command menu.
type BotConfig struct {
	DBOperationTimeout time.Duration   `mapstructure:"db_operation_timeout" validate:"min=1s,max=5m"`
	SendTimeout        time.Duration   `mapstructure:"send_timeout"         validate:"min=1s,max=5m"`
	Commands           []CommandConfig `mapstructure:"commands"             validate:"dive"`
}

// CommandConfig is one entry of the bot command menu.
type CommandConfig struct {
	Command     string `mapstructure:"command"     validate:"required"`
	Description string `mapstructure:"description" validate:"required"`
}

// MessagesConfig holds every user-visible text.
type MessagesConfig struct {
	Welcome    []string `mapstructure:"welcome"     validate:"min=1"`
	MenuPrompt string   `mapstructure:"menu_prompt" validate:"required"`

	ChooseAction string `mapstructure:"choose_action" validate:"required"`
	ChooseSocial string `mapstructure:"choose_social" validate:"required"`
	ChoosePromo  string `mapstructure:"choose_promo"  validate:"required"`

	SuggestionPrompt     string `mapstructure:"suggestion_prompt"      validate:"required"`
	SuggestionSent       string `mapstructure:"suggestion_sent"        validate:"required"`
	PressSuggestionFirst string `mapstructure:"press_suggestion_first" validate:"required"`
	UnsupportedContent   string `mapstructure:"unsupported_content"    validate:"required"`

	// AdminNotify and UnreadReminder are format strings taking the unread count.
	AdminNotify     string `mapstructure:"admin_notify"      validate:"required"`
	UnreadReminder  string `mapstructure:"unread_reminder"   validate:"required"`
	ReplyNotice     string `mapstructure:"reply_notice"      validate:"required"`
	ReplySent       string `mapstructure:"reply_sent"        validate:"required"`
	ReplyPrompt     string `mapstructure:"reply_prompt"      validate:"required"`
	ReplyButton     string `mapstructure:"reply_button"      validate:"required"`
	MessageNotFound string `mapstructure:"message_not_found" validate:"required"`
	NoMessages      string `mapstructure:"no_messages"       validate:"required"`
	NoUnreplied     string `mapstructure:"no_unreplied"      validate:"required"`

	// SenderInfo is a format string taking first name, username and user ID.
	SenderInfo string `mapstructure:"sender_info" validate:"required"`

	NotAuthorized string `mapstructure:"not_authorized" validate:"required"`
	GeneralError  string `mapstructure:"general_error"  validate:"required"`

	Stats StatsMessages `mapstructure:"stats"`
}

// StatsMessages are the labels of the /admin report. The count lines are
// format strings taking one integer; CategoryLine takes the button name and
// the total and today counts.
type StatsMessages struct {
	Title             string `mapstructure:"title"              validate:"required"`
	TotalStarts       string `mapstructure:"total_starts"       validate:"required"`
	TodayStarts       string `mapstructure:"today_starts"       validate:"required"`
	TotalInteractions string `mapstructure:"total_interactions" validate:"required"`
	TodayInteractions string `mapstructure:"today_interactions" validate:"required"`
	SocialHeader      string `mapstructure:"social_header"      validate:"required"`
	PromoHeader       string `mapstructure:"promo_header"       validate:"required"`
	CategoryLine      string `mapstructure:"category_line"      validate:"required"`
	Unread            string `mapstructure:"unread"             validate:"required"`
}

// KeywordsConfig holds the exact button texts the menu router matches on.
type KeywordsConfig struct {
	Suggestion  string `mapstructure:"suggestion"   validate:"required"`
	Social      string `mapstructure:"social"       validate:"required"`
	Promo       string `mapstructure:"promo"        validate:"required"`
	Back        string `mapstructure:"back"         validate:"required"`
	AllMessages string `mapstructure:"all_messages" validate:"required"`
	Unanswered  string `mapstructure:"unanswered"   validate:"required"`
}

// CatalogConfig lists the menu entries rendered as buttons.
type CatalogConfig struct {
	Social []CatalogEntry `mapstructure:"social" validate:"dive"`
	Promo  []CatalogEntry `mapstructure:"promo"  validate:"dive"`
}

// CatalogEntry is a social network link or a book/promo description.
// Author, Description and Pages are only rendered for promo entries.
type CatalogEntry struct {
	Name        string `mapstructure:"name"        validate:"required"`
	URL         string `mapstructure:"url"         validate:"required,url"`
	Author      string `mapstructure:"author"`
	Description string `mapstructure:"description"`
	Pages       string `mapstructure:"pages"`
}

// SchedulerConfig maps task names to their schedule.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig enables a scheduled task on a cron schedule (seconds field allowed).
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// Load loads and validates configuration from:
// 1. Default values
// 2. .env in the working directory, if present
// 3. the YAML file at path, if present
// 4. BOT_* environment variables (plus BOT_API_KEY and ADMIN_ID)
func Load(path string) (*Config, error) {
	startTime := time.Now()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: failed to load .env: %v", ErrConfiguration, err)
	}

	v := newViper()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: failed to read config file: %v", ErrConfiguration, err)
			}
			slog.Info("configuration file not found, using defaults", "path", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	slog.Info("configuration loaded successfully",
		"log_level", cfg.Logger.Level,
		"db_path", cfg.Database.Path,
		"social_entries", len(cfg.Catalog.Social),
		"promo_entries", len(cfg.Catalog.Promo),
		"duration_ms", time.Since(startTime).Milliseconds())

	return cfg, nil
}

// Default returns the built-in configuration without reading any file or
// validating credentials.
func Default() *Config {
	cfg := &Config{}
	// Defaults always decode; a failure here is a programming error.
	if err := newViper().Unmarshal(cfg); err != nil {
		panic(fmt.Sprintf("config: invalid defaults: %v", err))
	}
	return cfg
}

// Validate checks struct tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	// Every trigger text must be unique, otherwise one handler shadows another.
	seen := make(map[string]string)
	check := func(kind, text string) error {
		if prev, ok := seen[text]; ok {
			return fmt.Errorf("%w: %s %q clashes with %s", ErrConfiguration, kind, text, prev)
		}
		seen[text] = kind
		return nil
	}
	k := c.Keywords
	for kind, text := range map[string]string{
		"keyword suggestion":   k.Suggestion,
		"keyword social":       k.Social,
		"keyword promo":        k.Promo,
		"keyword back":         k.Back,
		"keyword all_messages": k.AllMessages,
		"keyword unanswered":   k.Unanswered,
	} {
		if err := check(kind, text); err != nil {
			return err
		}
	}
	for _, e := range c.Catalog.Social {
		if err := check("social entry", e.Name); err != nil {
			return err
		}
	}
	for _, e := range c.Catalog.Promo {
		if err := check("promo entry", e.Name); err != nil {
			return err
		}
	}

	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Names used by earlier deployments of the bot.
	_ = v.BindEnv("telegram.token", "BOT_TELEGRAM_TOKEN", "BOT_API_KEY")
	_ = v.BindEnv("telegram.admin_id", "BOT_TELEGRAM_ADMIN_ID", "ADMIN_ID")

	return v
}
