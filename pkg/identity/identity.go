package identity

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/benmeehan/location-agent/pkg/file"
	"github.com/google/uuid"
)

// Identity holds the device's unique identifier and other metadata.
type Identity struct {
	ID       string          `json:"device_id,omitempty"`
	Name     string          `json:"device_name,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

// DeviceInfoInterface defines methods for managing device identity.
type DeviceInfoInterface interface {
	LoadDeviceInfo() error
	SaveDeviceID(deviceID string) error
	GetDeviceID() string
	EnsureDeviceID() (string, error)
}

// DeviceInfo manages the device identity and its associated file operations.
type DeviceInfo struct {
	DeviceInfoFile string
	Identity       Identity
	fileOps        file.FileOperations
}

// NewDeviceInfo initializes a new DeviceInfo instance.
func NewDeviceInfo(filePath string, fileOps file.FileOperations) *DeviceInfo {
	return &DeviceInfo{
		DeviceInfoFile: filePath,
		fileOps:        fileOps,
	}
}

// LoadDeviceInfo reads the identity file. A missing file leaves an empty identity.
func (d *DeviceInfo) LoadDeviceInfo() error {
	err := d.fileOps.ReadJsonFile(d.DeviceInfoFile, &d.Identity)
	if err != nil {
		if os.IsNotExist(err) {
			d.Identity = Identity{}
			return nil
		}
		return err
	}
	return nil
}

// GetDeviceID returns the current device ID.
func (d *DeviceInfo) GetDeviceID() string {
	return d.Identity.ID
}

// SaveDeviceID updates the device ID and writes the identity back to the file.
func (d *DeviceInfo) SaveDeviceID(deviceID string) error {
	d.Identity.ID = deviceID
	return d.fileOps.WriteJsonFile(d.DeviceInfoFile, d.Identity)
}

// EnsureDeviceID returns the device ID, generating and saving a new one when
// the identity has none yet.
func (d *DeviceInfo) EnsureDeviceID() (string, error) {
	if id := d.GetDeviceID(); id != "" {
		return id, nil
	}
	id := uuid.New().String()
	if err := d.SaveDeviceID(id); err != nil {
		d.Identity.ID = ""
		return "", fmt.Errorf("failed to save device id to %s: %w", d.DeviceInfoFile, err)
	}
	return id, nil
}
