package publisher

import (
	"crypto/tls"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/LavaJover/shvark-slot-service/internal/config"
	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
	"github.com/segmentio/kafka-go/sasl/scram"
)

// Brokers returns the broker list of the config, "host:port".
func Brokers(cfg config.KafkaService) []string {
	return []string{net.JoinHostPort(cfg.Host, cfg.Port)}
}

// Mechanism builds the SASL mechanism named in the config. Empty mechanism
// means no authentication.
func Mechanism(cfg config.KafkaService) (sasl.Mechanism, error) {
	switch strings.ToLower(cfg.Mechanism) {
	case "":
		return nil, nil
	case "plain":
		return plain.Mechanism{Username: cfg.Username, Password: cfg.Password}, nil
	case "scram-sha-256":
		return scram.Mechanism(scram.SHA256, cfg.Username, cfg.Password)
	case "scram-sha-512":
		return scram.Mechanism(scram.SHA512, cfg.Username, cfg.Password)
	default:
		return nil, fmt.Errorf("unsupported kafka sasl mechanism %q", cfg.Mechanism)
	}
}

func tlsConfig(cfg config.KafkaService) *tls.Config {
	if !cfg.TLSEnabled {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

// NewTransport is used by writers.
func NewTransport(cfg config.KafkaService) (*kafka.Transport, error) {
	mechanism, err := Mechanism(cfg)
	if err != nil {
		return nil, err
	}
	return &kafka.Transport{
		SASL:        mechanism,
		TLS:         tlsConfig(cfg),
		DialTimeout: 10 * time.Second,
	}, nil
}

// NewDialer is used by readers.
func NewDialer(cfg config.KafkaService) (*kafka.Dialer, error) {
	mechanism, err := Mechanism(cfg)
	if err != nil {
		return nil, err
	}
	return &kafka.Dialer{
		Timeout:       10 * time.Second,
		DualStack:     true,
		SASLMechanism: mechanism,
		TLS:           tlsConfig(cfg),
	}, nil
}
