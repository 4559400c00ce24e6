package environment_variables

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

type EnvironmentVariable struct {
	LOG_LEVEL          string
	HTTP_PORT          int
	ALLOWED_CORS_HOSTS []string

	DB_POSTGRESQL_WRITE_DSN string
	DB_POSTGRESQL_READ1_DSN string
	DB_AUTO_MIGRATE         bool

	CACHE_TYPE     string
	CACHE_URL      string
	CACHE_PASSWORD string
	CACHE_DB       string
	CACHE_TTL      time.Duration

	// Outbound calls whose response status is not listed here are never cached.
	CACHE_ALLOWED_STATUS []string

	AUTH_VERIFY_SIGNATURE bool
	// Exact issuer URLs, or scheme://host/path/ prefixes ending in "/".
	AUTH_TRUSTED_ISSUERS  []string

	TASK_QUEUE_NAME  string
	TASK_RESULT_TTL  time.Duration
	TASK_BRPOP_WAIT  time.Duration
	WORKER_NAME      string
	SKILL_NAMESPACE  string
	SKILL_PORT       int
	SKILL_DEPLOY_TTL time.Duration

	OPENAI_API_KEY  string
	OPENAI_BASE_URL string

	SKILL_HEALTH_CRON string
}

// LoadFromEnv fills every exported field from the environment variable of the
// same name. Unset variables leave the current value untouched.
func (ev *EnvironmentVariable) LoadFromEnv() {
	v := reflect.ValueOf(ev).Elem()
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		envKey := field.Name
		envValue, ok := os.LookupEnv(envKey)
		if !ok || envValue == "" {
			continue
		}
		if err := setField(v.Field(i), envValue); err != nil {
			fmt.Printf("Invalid SYSENV %s: %v\n", envKey, err)
		}
	}
	ev.applyDefaults()
}

func setField(f reflect.Value, raw string) error {
	if f.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		f.SetInt(int64(d))
		return nil
	}
	switch f.Kind() {
	case reflect.String:
		f.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		f.SetBool(b)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return err
		}
		f.SetInt(n)
	case reflect.Slice:
		if f.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s", f.Type())
		}
		parts := strings.Split(raw, ",")
		values := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				values = append(values, p)
			}
		}
		f.Set(reflect.ValueOf(values))
	default:
		return fmt.Errorf("unsupported kind %s", f.Kind())
	}
	return nil
}

func (ev *EnvironmentVariable) applyDefaults() {
	if ev.HTTP_PORT == 0 {
		ev.HTTP_PORT = 8080
	}
	if ev.LOG_LEVEL == "" {
		ev.LOG_LEVEL = "info"
	}
	if ev.CACHE_TTL == 0 {
		ev.CACHE_TTL = 10 * time.Minute
	}
	if len(ev.CACHE_ALLOWED_STATUS) == 0 {
		ev.CACHE_ALLOWED_STATUS = []string{"200"}
	}
	if ev.TASK_QUEUE_NAME == "" {
		ev.TASK_QUEUE_NAME = "skill-tasks"
	}
	if ev.TASK_RESULT_TTL == 0 {
		ev.TASK_RESULT_TTL = 24 * time.Hour
	}
	if ev.TASK_BRPOP_WAIT == 0 {
		ev.TASK_BRPOP_WAIT = 5 * time.Second
	}
	if ev.WORKER_NAME == "" {
		host, _ := os.Hostname()
		ev.WORKER_NAME = host
	}
	if ev.SKILL_NAMESPACE == "" {
		ev.SKILL_NAMESPACE = "skills"
	}
	if ev.SKILL_PORT == 0 {
		ev.SKILL_PORT = 80
	}
	if ev.SKILL_DEPLOY_TTL == 0 {
		ev.SKILL_DEPLOY_TTL = 2 * time.Minute
	}
	if ev.SKILL_HEALTH_CRON == "" {
		ev.SKILL_HEALTH_CRON = "*/2 * * * *"
	}
}

// Singleton
var EnvironmentVariables = EnvironmentVariable{}
