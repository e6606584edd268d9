package sentryutil

import (
	"log"
	"time"

	"github.com/getsentry/sentry-go"

	"contotermico/internal/config"
)

func Init() {
	dsn := config.Cfg.SentryDSN
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: config.Cfg.SentryEnvironment,
		Release:     config.Cfg.SentryRelease,
	})
	if err != nil {
		log.Printf("Sentry init (non-blocking): %s", err)
	}
	if dsn == "" {
		log.Println("SENTRY_DSN vuoto — error tracking disabilitato")
	} else {
		log.Println("Sentry inizializzato")
	}
}

func Flush() { sentry.Flush(2 * time.Second) }

// CaptureError reports internal defects (missing reference data, violated
// computation invariants). Validation outcomes never go through here:
// they are data, not errors.
func CaptureError(err error, tags map[string]string) {
	if err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}
