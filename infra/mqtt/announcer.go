package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/plugsmart/chargeplan/core/model"
	"github.com/plugsmart/chargeplan/infra/logger"
)

// Config defines the connection parameters for the plan announcer.
type Config struct {
	Enabled    bool   `json:"enabled"`
	Broker     string `json:"broker"`
	ClientID   string `json:"client_id"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Topic      string `json:"topic"`
	QoS        byte   `json:"qos"`
	Retain     bool   `json:"retain"`
	UseTLS     bool   `json:"use_tls"`
	ClientCert string `json:"client_cert"`
	ClientKey  string `json:"client_key"`
	CABundle   string `json:"ca_bundle"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "chargeplan"
	}
	if c.Topic == "" {
		c.Topic = "chargeplan/plans"
	}
}

// Validate checks mandatory fields when the announcer is enabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Broker == "" {
		return fmt.Errorf("%w: mqtt broker is required when the announcer is enabled", model.ErrInvalidConfig)
	}
	return nil
}

// planMessage is the wire format published for each computed plan.
type planMessage struct {
	PlanID             string  `json:"plan_id"`
	StartTime          string  `json:"start_time"`
	EndTime            string  `json:"end_time"`
	Hours              float64 `json:"hours"`
	FinalBattery       float64 `json:"final_battery"`
	CostOptimized      float64 `json:"cost_optimized"`
	Savings            float64 `json:"savings"`
	MeetsDeparture     bool    `json:"meets_departure"`
	NightTariffApplied bool    `json:"night_tariff_applied"`
}

// PlanAnnouncer publishes computed charging plans so home-automation
// consumers can react to them.
type PlanAnnouncer struct {
	cli    paho.Client
	topic  string
	qos    byte
	retain bool
	log    logger.Logger
}

// NewPlanAnnouncer connects to the MQTT broker.
func NewPlanAnnouncer(cfg Config) (*PlanAnnouncer, error) {
	log := logger.New("plan-announcer")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := newTLSConfig(cfg)
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	cli := paho.NewClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &PlanAnnouncer{cli: cli, topic: cfg.Topic, qos: cfg.QoS, retain: cfg.Retain, log: log}, nil
}

// Announce publishes the plan summary as JSON.
func (a *PlanAnnouncer) Announce(plan model.ChargingPlan) error {
	payload, err := json.Marshal(newPlanMessage(plan))
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	token := a.cli.Publish(a.topic, a.qos, a.retain, payload)
	if token.WaitTimeout(5*time.Second) && token.Error() != nil {
		return token.Error()
	}
	a.log.Debugf("announced plan %s", plan.ID)
	return nil
}

// Close disconnects from the broker.
func (a *PlanAnnouncer) Close() {
	a.cli.Disconnect(250)
}

func newPlanMessage(plan model.ChargingPlan) planMessage {
	return planMessage{
		PlanID:             plan.ID,
		StartTime:          plan.StartTime.Format("15:04"),
		EndTime:            plan.EndTime.Format("15:04"),
		Hours:              plan.HoursNeeded,
		FinalBattery:       plan.FinalBattery,
		CostOptimized:      plan.CostOptimized,
		Savings:            plan.Savings,
		MeetsDeparture:     plan.MeetsDeparture,
		NightTariffApplied: plan.NightTariffApplied,
	}
}

func newTLSConfig(cfg Config) (*tls.Config, error) {
	tlsCfg := &tls.Config{MinVersion: tls.VersionTLS12}
	if cfg.CABundle != "" {
		ca, err := os.ReadFile(cfg.CABundle)
		if err != nil {
			return nil, fmt.Errorf("read ca bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(ca) {
			return nil, fmt.Errorf("invalid ca bundle %s", cfg.CABundle)
		}
		tlsCfg.RootCAs = pool
	}
	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}
	return tlsCfg, nil
}
