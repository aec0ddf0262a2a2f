package internal

import (
	"fmt"
	"strings"
	"time"
)

// Config is read from the environment by the server binary.
type Config struct {
	Host     string `env:"HOST,default=0.0.0.0"`
	Port     int    `env:"PORT,required=true"`
	LogLevel string `env:"LOG_LEVEL,default=INFO"`

	BadgerFilepath  string `env:"BADGER_FILEPATH,required=true"`
	BlugeFilepath   string `env:"BLUGE_FILEPATH,required=true"`
	CoinCatalogFile string `env:"COIN_CATALOG_FILE"`

	SocketWriteTimeout time.Duration `env:"SOCKET_WRITE_TIMEOUT,default=5s"`
	SocketReadLimit    int64         `env:"SOCKET_READ_LIMIT,default=65536"`
	CheckOrigin        bool          `env:"CHECK_ORIGIN,default=false"`
	ShutdownTimeout    time.Duration `env:"SHUTDOWN_TIMEOUT,default=10s"`

	CensoredWords   string `env:"CENSORED_WORDS"`
	CharReplacement string `env:"CHARACTER_REPLACEMENT,default=*"`

	MetricInterval  time.Duration `env:"METRIC_INTERVAL,default=5s"`
	GCInterval      time.Duration `env:"GC_INTERVAL,default=10m"`
	RestartInterval time.Duration `env:"RESTART_INTERVAL,default=1s"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}

// CensoredWordList splits CENSORED_WORDS on commas. Empty means moderation is off.
func (c Config) CensoredWordList() []string {
	var words []string
	for _, w := range strings.Split(c.CensoredWords, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}
