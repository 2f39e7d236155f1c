package location

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/tarm/serial"
)

// NewDeviceSensorProvider reads fixes from a GPS receiver attached to a serial port.
// The port is opened on Subscribe and closed on Unsubscribe.
func NewDeviceSensorProvider(port string, baudRate int, logger zerolog.Logger) *NMEAProvider {
	return NewNMEAProvider(func() (io.ReadCloser, error) {
		s, err := serial.OpenPort(&serial.Config{Name: port, Baud: baudRate})
		if err != nil {
			return nil, err
		}
		return s, nil
	}, logger.With().Str("gps_port", port).Int("baud_rate", baudRate).Logger())
}
