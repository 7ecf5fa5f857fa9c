package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Default word lists. IGNORED_WORDS / COMMAND_WORDS env vars override them
// wholesale (comma separated).
var (
	DefaultIgnoredWords = []string{
		"uh", "um", "umm", "hmm", "hm", "haan", "huh",
		"eh", "ah", "er", "mm", "mhm", "uh-huh", "mm-hmm",
	}
	DefaultCommandWords = []string{
		"wait", "stop", "hold", "pause", "no", "listen",
		"excuse me", "hang on", "one second", "actually",
	}
)

type Config struct {
	Server struct {
		Port     string
		LogLevel string
	}
	Engine struct {
		IgnoredWords        []string
		CommandWords        []string
		ConfidenceThreshold float64
	}
	Log struct {
		File        string
		Enabled     bool
		HistorySize int
	}
	Stream struct {
		TokenSecret   string
		TokenExpMin   int
		TokenSkewSecs int
	}
}

func Load() Config {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("engine.ignored_words", strings.Join(DefaultIgnoredWords, ","))
	v.SetDefault("engine.command_words", strings.Join(DefaultCommandWords, ","))
	v.SetDefault("engine.confidence_threshold", 0.3)

	v.SetDefault("log.file", "logs/interrupts.jsonl")
	v.SetDefault("log.enabled", true)
	v.SetDefault("log.history_size", 200)

	v.SetDefault("stream.token_exp_min", 60)
	v.SetDefault("stream.token_skew_secs", 60)

	// Map envs
	v.BindEnv("server.port", "PORT")
	v.BindEnv("server.log_level", "LOG_LEVEL")

	v.BindEnv("engine.ignored_words", "IGNORED_WORDS")
	v.BindEnv("engine.command_words", "COMMAND_WORDS")
	v.BindEnv("engine.confidence_threshold", "CONFIDENCE_THRESHOLD")

	v.BindEnv("log.file", "LOG_FILE")
	v.BindEnv("log.enabled", "ENABLE_LOGGING")
	v.BindEnv("log.history_size", "DECISION_HISTORY_SIZE")

	v.BindEnv("stream.token_secret", "STREAM_TOKEN_SECRET")
	v.BindEnv("stream.token_exp_min", "STREAM_TOKEN_EXP_MIN")
	v.BindEnv("stream.token_skew_secs", "STREAM_TOKEN_SKEW_SECS")

	var c Config
	c.Server.Port = fmt.Sprint(v.Get("server.port"))
	c.Server.LogLevel = v.GetString("server.log_level")

	c.Engine.IgnoredWords = splitWords(v.GetString("engine.ignored_words"))
	c.Engine.CommandWords = splitWords(v.GetString("engine.command_words"))
	c.Engine.ConfidenceThreshold = v.GetFloat64("engine.confidence_threshold")

	c.Log.File = v.GetString("log.file")
	c.Log.Enabled = v.GetBool("log.enabled")
	c.Log.HistorySize = v.GetInt("log.history_size")

	c.Stream.TokenSecret = v.GetString("stream.token_secret")
	c.Stream.TokenExpMin = v.GetInt("stream.token_exp_min")
	c.Stream.TokenSkewSecs = v.GetInt("stream.token_skew_secs")

	return c
}

// Validate rejects malformed configuration at startup rather than at first use.
func (c Config) Validate() error {
	if len(c.Engine.IgnoredWords) == 0 {
		return fmt.Errorf("config: IGNORED_WORDS is empty")
	}
	if len(c.Engine.CommandWords) == 0 {
		return fmt.Errorf("config: COMMAND_WORDS is empty")
	}
	if t := c.Engine.ConfidenceThreshold; t < 0 || t > 1 {
		return fmt.Errorf("config: CONFIDENCE_THRESHOLD %v outside [0,1]", t)
	}
	if c.Log.Enabled && c.Log.File == "" {
		return fmt.Errorf("config: LOG_FILE is empty with logging enabled")
	}
	return nil
}

func splitWords(csv string) []string {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if w := strings.TrimSpace(p); w != "" {
			out = append(out, w)
		}
	}
	return out
}
