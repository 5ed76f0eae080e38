package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	DriverOracle   = "oracle"
	DriverPostgres = "postgres"

	SinkHTTP  = "http"
	SinkKafka = "kafka"
)

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"debug"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

type HTTP struct {
	Port            string        `env:"PORT"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

type DB struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"oracle"`
	URL             string        `env:"DATABASE_URL,required,notEmpty"`
	MigrationsPath  string        `env:"DB_MIGRATIONS_PATH"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"16"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"8"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"1h"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"15m"`
}

type Mongo struct {
	URI            string        `env:"MONGO_URI,required,notEmpty"`
	Database       string        `env:"MONGO_DATABASE" envDefault:"auditoria_db"`
	Collection     string        `env:"MONGO_COLLECTION" envDefault:"eventos"`
	ConnectTimeout time.Duration `env:"MONGO_CONNECT_TIMEOUT" envDefault:"10s"`
}

type Kafka struct {
	Brokers    string `env:"KAFKA_BROKERS"`
	AuditTopic string `env:"KAFKA_AUDIT_TOPIC" envDefault:"auditoria.eventos"`
	GroupID    string `env:"KAFKA_GROUP_ID" envDefault:"auditoria-service"`
}

// AuditSink selects where Clientes and Facturas send their audit notifications.
type AuditSink struct {
	Mode    string        `env:"AUDIT_SINK" envDefault:"http"`
	URL     string        `env:"AUDITORIA_SERVICE_URL"`
	Timeout time.Duration `env:"AUDIT_TIMEOUT" envDefault:"5s"`
	Kafka   Kafka
}

type Clientes struct {
	Log   Log
	HTTP  HTTP
	DB    DB
	Audit AuditSink
}

type Facturas struct {
	Log         Log
	HTTP        HTTP
	DB          DB
	Audit       AuditSink
	ClientesURL string        `env:"CLIENTES_SERVICE_URL,required,notEmpty"`
	PeerTimeout time.Duration `env:"PEER_TIMEOUT" envDefault:"5s"`
}

type Auditoria struct {
	Log   Log
	HTTP  HTTP
	Mongo Mongo
	Kafka Kafka
}

// LoadDotEnv reads an optional .env file into the process environment.
func LoadDotEnv() {
	if err := godotenv.Load(); err != nil {
		log.Warn("Could not load .env file.")
	}
}

func LoadClientes() (*Clientes, error) {
	cfg := &Clientes{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.HTTP.defaultPort("5001")
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Audit.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadFacturas() (*Facturas, error) {
	cfg := &Facturas{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.HTTP.defaultPort("5002")
	if err := cfg.DB.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Audit.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func LoadAuditoria() (*Auditoria, error) {
	cfg := &Auditoria{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	cfg.HTTP.defaultPort("5003")
	return cfg, nil
}

func (h *HTTP) defaultPort(port string) {
	if h.Port == "" {
		h.Port = port
	}
}

func (d DB) validate() error {
	switch d.Driver {
	case DriverOracle, DriverPostgres:
		return nil
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", d.Driver)
	}
}

func (a AuditSink) validate() error {
	switch a.Mode {
	case SinkHTTP:
		if a.URL == "" {
			return errors.New("AUDITORIA_SERVICE_URL is required when AUDIT_SINK=http")
		}
	case SinkKafka:
		if a.Kafka.Brokers == "" {
			return errors.New("KAFKA_BROKERS is required when AUDIT_SINK=kafka")
		}
	default:
		return fmt.Errorf("unsupported AUDIT_SINK %q", a.Mode)
	}
	return nil
}
