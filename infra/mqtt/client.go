package mqtt

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kianlev/gridflex/core/model"
	"github.com/kianlev/gridflex/infra/logger"
)

// Config defines the connection parameters for the Paho MQTT client.
type Config struct {
	Broker      string          `json:"broker"`
	ClientID    string          `json:"client_id"`
	Username    string          `json:"username"`
	Password    string          `json:"password"`
	DemandTopic string          `json:"demand_topic"`
	StatusTopic string          `json:"status_topic"`
	UseTLS      bool            `json:"use_tls"`
	ClientCert  string          `json:"client_cert"`
	ClientKey   string          `json:"client_key"`
	CABundle    string          `json:"ca_bundle"`
	AuthMethod  string          `json:"auth_method"`
	QoS         map[string]byte `json:"qos"`
	MaxRetries  int             `json:"max_retries"`
	BackoffMS   int             `json:"backoff_ms"`
	TLSConfig   *tls.Config     `json:"-"`
}

// DemandMessage is the wire format of a consumer demand report.
type DemandMessage struct {
	ConsumerID string  `json:"consumer_id"`
	Class      string  `json:"class"`
	MegaWatts  float64 `json:"mw"`
	Timestamp  int64   `json:"timestamp,omitempty"`
}

// Submitter accepts validated demand requests. The grid scheduler
// satisfies this interface.
type Submitter interface {
	SubmitRequest(consumerID string, class model.PriorityClass, megawatts float64) (model.Request, error)
}

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
	Subscribe(topic string, qos byte, callback paho.MessageHandler) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Connector bridges MQTT demand reports into the scheduler and pushes
// pass results back out on the status topic.
type Connector struct {
	cli         pahoClient
	submitter   Submitter
	statusTopic string
	qos         map[string]byte
	maxRetries  int
	backoff     time.Duration
	log         logger.Logger
}

// NewConnector connects to the broker and subscribes to the demand
// topic on behalf of the given submitter.
func NewConnector(cfg Config, sub Submitter) (*Connector, error) {
	if sub == nil {
		return nil, fmt.Errorf("mqtt: nil submitter")
	}
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}

	log := logger.New("mqtt-connector")
	c := &Connector{
		submitter:   sub,
		statusTopic: cfg.StatusTopic,
		qos:         cfg.QoS,
		maxRetries:  cfg.MaxRetries,
		backoff:     time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:         log,
	}

	opts.OnConnect = func(cli paho.Client) {
		log.Infof("MQTT connected")
		qos := byte(0)
		if q, ok := c.qos["demand"]; ok {
			qos = q
		}
		if token := cli.Subscribe(cfg.DemandTopic, qos, c.onDemand); token.Wait() && token.Error() != nil {
			log.Errorf("subscribe error: %v", token.Error())
		}
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	cli := newMQTTClient(opts)
	if token := cli.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	c.cli = cli
	return c, nil
}

// NewClientOptions builds mqtt client options from Config.
func NewClientOptions(cfg Config) (*paho.ClientOptions, error) {
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.AuthMethod == "username_password" || cfg.AuthMethod == "both" || cfg.AuthMethod == "" {
		if cfg.Username != "" {
			opts.SetUsername(cfg.Username)
		}
		if cfg.Password != "" {
			opts.SetPassword(cfg.Password)
		}
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	return opts, nil
}

// LoadTLSConfig loads the TLS configuration from the file paths in the config.
func (c Config) LoadTLSConfig() (*tls.Config, error) {
	if c.TLSConfig != nil {
		return c.TLSConfig, nil
	}
	if c.ClientCert == "" || c.ClientKey == "" || c.CABundle == "" {
		return nil, fmt.Errorf("tls config requires client_cert, client_key and ca_bundle")
	}
	cert, err := tls.LoadX509KeyPair(c.ClientCert, c.ClientKey)
	if err != nil {
		return nil, fmt.Errorf("load cert: %w", err)
	}
	caBytes, err := os.ReadFile(c.CABundle)
	if err != nil {
		return nil, fmt.Errorf("read ca: %w", err)
	}
	pool := x509.NewCertPool()
	pool.AppendCertsFromPEM(caBytes)
	return &tls.Config{Certificates: []tls.Certificate{cert}, RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// onDemand decodes and submits one demand report. Malformed or invalid
// reports are logged and dropped; the broker is not the place to bounce
// validation errors.
func (c *Connector) onDemand(_ paho.Client, msg paho.Message) {
	var m DemandMessage
	if err := json.Unmarshal(msg.Payload(), &m); err != nil {
		c.log.Errorf("failed to decode demand message: %v", err)
		return
	}
	class, err := model.ParseClass(m.Class)
	if err != nil {
		c.log.Errorf("demand from %s rejected: %v", m.ConsumerID, err)
		return
	}
	req, err := c.submitter.SubmitRequest(m.ConsumerID, class, m.MegaWatts)
	if err != nil {
		c.log.Errorf("demand from %s rejected: %v", m.ConsumerID, err)
		return
	}
	c.log.Infof("queued demand %s: %.1f MW (%s)", req.ID, req.MegaWatts, req.Class)
}

// passReport is the wire format of a published scheduling pass.
type passReport struct {
	ReportID    string    `json:"report_id"`
	Time        time.Time `json:"time"`
	Allocated   int       `json:"allocated"`
	Shed        int       `json:"shed"`
	AllocatedMW float64   `json:"allocated_mw"`
	ShedMW      float64   `json:"shed_mw"`
	Offline     int       `json:"offline"`
}

// PublishPass publishes a pass summary on the status topic, retrying
// with backoff on transient publish failures.
func (c *Connector) PublishPass(t time.Time, allocated, shed int, allocatedMW, shedMW float64, offline int) error {
	if c.statusTopic == "" {
		return nil
	}
	report := passReport{
		ReportID:    uuid.NewString(),
		Time:        t,
		Allocated:   allocated,
		Shed:        shed,
		AllocatedMW: allocatedMW,
		ShedMW:      shedMW,
		Offline:     offline,
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return err
	}
	qos := byte(0)
	if q, ok := c.qos["status"]; ok {
		qos = q
	}
	retries := c.maxRetries
	if retries <= 0 {
		retries = 3
	}
	backoff := c.backoff
	if backoff <= 0 {
		backoff = 100 * time.Millisecond
	}
	var publishErr error
	for attempt := 0; attempt <= retries; attempt++ {
		token := c.cli.Publish(c.statusTopic, qos, false, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			c.log.Debugf("published pass report %s", report.ReportID)
			return nil
		}
		time.Sleep(backoff)
	}
	return fmt.Errorf("publish pass report: %w", publishErr)
}

// Close disconnects from the broker.
func (c *Connector) Close() {
	if c.cli != nil && c.cli.IsConnected() {
		c.cli.Disconnect(250)
	}
}
