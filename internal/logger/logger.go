package logger

import (
	"io"
	stdlog "log"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const serviceName = "avocado-server"

// Init initializes the global zerolog logger on stdout.
func Init(logLevelStr string, appEnv string) {
	InitWithWriter(os.Stdout, logLevelStr, appEnv)
}

// InitWithWriter is Init with an explicit output. Development environments
// get the human-readable console writer, everything else JSON lines.
func InitWithWriter(out io.Writer, logLevelStr string, appEnv string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs
	parsedLevel, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(logLevelStr)))
	if err != nil || logLevelStr == "" {
		parsedLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(parsedLevel)

	output := out
	if isDevelopment(appEnv) {
		output = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	log.Logger = zerolog.New(output).With().Timestamp().Str("service", serviceName).Logger()
	if err != nil {
		log.Warn().Err(err).Msgf("Invalid log level '%s', defaulting to 'info'", logLevelStr)
	}

	stdlog.SetFlags(0)
	stdlog.SetOutput(log.Logger)
}

func isDevelopment(appEnv string) bool {
	switch strings.ToLower(appEnv) {
	case "development", "dev":
		return true
	}
	return false
}
