// Package display renders the latest fix as three text labels.
package display

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"sync"
)

// Label prefixes, in render order.
const (
	LatitudeLabel  = "Latitude: "
	LongitudeLabel = "Longitude: "
	PrecisionLabel = "Precision: "
)

// Console writes the labels to an io.Writer and remembers the last frame.
type Console struct {
	out io.Writer

	mu     sync.Mutex
	labels [3]string
}

// NewConsole creates a console display writing to out. Until the first Render
// the labels show zero values.
func NewConsole(out io.Writer) *Console {
	return &Console{
		out:    out,
		labels: FormatLabels(0, 0, 0),
	}
}

// Render writes one frame with the given fix.
func (c *Console) Render(latitude float64, longitude float64, accuracy float32) {
	labels := FormatLabels(latitude, longitude, accuracy)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.labels = labels
	fmt.Fprintf(c.out, "%s\n%s\n%s\n", labels[0], labels[1], labels[2])
}

// Notice writes a one-line message.
func (c *Console) Notice(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "! %s\n", msg)
}

// Labels returns the labels of the last rendered frame.
func (c *Console) Labels() [3]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.labels
}

// FormatLabels builds the latitude, longitude and precision labels.
func FormatLabels(latitude float64, longitude float64, accuracy float32) [3]string {
	return [3]string{
		LatitudeLabel + formatDecimal(latitude, 64),
		LongitudeLabel + formatDecimal(longitude, 64),
		PrecisionLabel + formatDecimal(float64(accuracy), 32),
	}
}

// formatDecimal prints the shortest text that round-trips at the given
// precision, keeping at least one fractional digit ("0.0", "127.0").
func formatDecimal(v float64, bitSize int) string {
	s := strconv.FormatFloat(v, 'f', -1, bitSize)
	if math.IsInf(v, 0) || math.IsNaN(v) || strings.Contains(s, ".") {
		return s
	}
	return s + ".0"
}
