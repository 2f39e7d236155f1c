package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/benmeehan/location-agent/internal/constants"
	"github.com/benmeehan/location-agent/pkg/file"
)

// Config represents the structure of the configuration file.
type Config struct {
	Logging struct {
		Level string `yaml:"level"` // zerolog level name, e.g. "debug", "info"
	} `yaml:"logging"`

	MQTT struct {
		Enabled        bool          `yaml:"enabled"`         // Connect to a broker at startup
		Broker         string        `yaml:"broker"`          // MQTT broker address
		ClientID       string        `yaml:"client_id"`       // MQTT client ID prefix; a UUID is appended
		CACertificate  string        `yaml:"ca_certificate"`  // Optional path to the CA certificate
		Username       string        `yaml:"username"`        // Optional broker username
		Password       string        `yaml:"password"`        // Optional broker password
		ConnectTimeout time.Duration `yaml:"connect_timeout"` // Timeout for the initial connection
	} `yaml:"mqtt"`

	Identity struct {
		DeviceFile string `yaml:"device_file"` // Path to the device identity file
	} `yaml:"identity"`

	Location struct {
		Provider          string        `yaml:"provider"`        // sensor, google or replay
		GPSDevicePort     string        `yaml:"gps_device_port"` // UNIX port where the GPS sensor is mounted
		GPSDeviceBaudRate int           `yaml:"gps_baud_rate"`   // The baud rate for the GPS sensor
		MapsAPIKey        string        `yaml:"maps_api_key"`    // Google maps API key
		ModemIndex        int           `yaml:"modem_index"`     // ModemManager index used for cell lookups
		ReplayFile        string        `yaml:"replay_file"`     // Recorded NMEA log for the replay provider
		ReplayPace        time.Duration `yaml:"replay_pace"`     // Delay between replayed fixes
	} `yaml:"location"`

	Permission struct {
		Host         string `yaml:"host"`          // static or mqtt
		PreGranted   bool   `yaml:"pre_granted"`   // static: fine location granted at startup
		PromptAnswer bool   `yaml:"prompt_answer"` // static: answer given to every prompt
		Topic        string `yaml:"topic"`         // mqtt: consent request topic
		QOS          int    `yaml:"qos"`           // mqtt: QoS level for consent messages
	} `yaml:"permission"`

	Controls struct {
		Console struct {
			Enabled bool `yaml:"enabled"` // Read start/stop lines from stdin
		} `yaml:"console"`
		MQTT struct {
			Enabled bool   `yaml:"enabled"` // Accept start/stop commands over MQTT
			Topic   string `yaml:"topic"`   // Topic prefix; the device ID is appended
			QOS     int    `yaml:"qos"`     // QoS level for control messages
		} `yaml:"mqtt"`
	} `yaml:"controls"`

	Dispatch struct {
		QueueDepth int `yaml:"queue_depth"` // Pending tasks buffered by the main loop
	} `yaml:"dispatch"`
}

// LoadConfig loads the YAML configuration from the specified file, fills in
// defaults and validates it.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", filename, err)
	}

	config.applyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filename, err)
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "location-agent"
	}
	if c.MQTT.ConnectTimeout == 0 {
		c.MQTT.ConnectTimeout = 30 * time.Second
	}
	if c.Location.Provider == "" {
		c.Location.Provider = constants.ProviderSensor
	}
	if c.Location.GPSDeviceBaudRate == 0 {
		c.Location.GPSDeviceBaudRate = constants.DefaultGPSBaudRate
	}
	if c.Location.ReplayPace == 0 {
		c.Location.ReplayPace = constants.DefaultReplayPace
	}
	if c.Permission.Host == "" {
		c.Permission.Host = constants.PermissionHostStatic
	}
	if c.Permission.Topic == "" {
		c.Permission.Topic = "location-agent/consent"
	}
	if c.Controls.MQTT.Topic == "" {
		c.Controls.MQTT.Topic = "location-agent/controls"
	}
	if c.Dispatch.QueueDepth == 0 {
		c.Dispatch.QueueDepth = constants.DefaultQueueDepth
	}
}

// Validate checks that the selected components have what they need.
func (c *Config) Validate() error {
	var errs []error

	switch c.Location.Provider {
	case constants.ProviderSensor:
		if c.Location.GPSDevicePort == "" {
			errs = append(errs, errors.New("location.gps_device_port is required for the sensor provider"))
		}
	case constants.ProviderGoogle:
		if c.Location.MapsAPIKey == "" {
			errs = append(errs, errors.New("location.maps_api_key is required for the google provider"))
		}
	case constants.ProviderReplay:
		if c.Location.ReplayFile == "" {
			errs = append(errs, errors.New("location.replay_file is required for the replay provider"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown location.provider %q", c.Location.Provider))
	}

	switch c.Permission.Host {
	case constants.PermissionHostStatic:
	case constants.PermissionHostMQTT:
		if !c.MQTT.Enabled {
			errs = append(errs, errors.New("permission.host mqtt requires mqtt.enabled"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown permission.host %q", c.Permission.Host))
	}

	if c.Controls.MQTT.Enabled && !c.MQTT.Enabled {
		errs = append(errs, errors.New("controls.mqtt requires mqtt.enabled"))
	}
	if c.MQTT.Enabled && c.Identity.DeviceFile == "" {
		errs = append(errs, errors.New("identity.device_file is required when mqtt is enabled"))
	}
	if c.MQTT.Enabled && c.MQTT.Broker == "" {
		errs = append(errs, errors.New("mqtt.broker is required when mqtt is enabled"))
	}
	for _, qos := range []int{c.Permission.QOS, c.Controls.MQTT.QOS} {
		if qos < 0 || qos > 2 {
			errs = append(errs, fmt.Errorf("qos %d out of range", qos))
		}
	}

	return errors.Join(errs...)
}
