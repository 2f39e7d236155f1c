package location

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNmcliWiFi(t *testing.T) {
	output := "AA\\:BB\\:CC\\:DD\\:EE\\:FF:70\n" +
		"11\\:22\\:33\\:44\\:55\\:66:42\n" +
		"not-a-mac:10\n" +
		"00\\:14\\:22\\:01\\:23\\:45:weak\n"

	aps, err := parseNmcliWiFi(output)
	require.NoError(t, err)
	require.Len(t, aps, 2)
	assert.Equal(t, "AA:BB:CC:DD:EE:FF", aps[0].MACAddress)
	assert.Equal(t, 70.0, aps[0].SignalStrength)
	assert.Equal(t, "11:22:33:44:55:66", aps[1].MACAddress)
}

func TestParseMmcliLocation(t *testing.T) {
	output := "modem.location.3gpp.mcc                 : 450\n" +
		"modem.location.3gpp.mnc                 : 05\n" +
		"modem.location.3gpp.lac                 : 1A2B\n" +
		"modem.location.3gpp.cid                 : 00C0FFEE\n" +
		"modem.location.gps.utc                  : --\n"

	towers, err := parseMmcliLocation(output)
	require.NoError(t, err)
	require.Len(t, towers, 1)
	assert.Equal(t, 450, towers[0].MobileCountryCode)
	assert.Equal(t, 5, towers[0].MobileNetworkCode)
	assert.Equal(t, 0x1A2B, towers[0].LocationAreaCode)
	assert.Equal(t, 0xC0FFEE, towers[0].CellID)
}

func TestParseMmcliLocation_Incomplete(t *testing.T) {
	_, err := parseMmcliLocation("modem.location.3gpp.lac : 1A2B\n")
	assert.Error(t, err)
}

func TestIsValidMAC(t *testing.T) {
	assert.True(t, isValidMAC("00:14:22:01:23:45"))
	assert.True(t, isValidMAC("FF:FF:FF:FF:FF:FF"))
	assert.False(t, isValidMAC("00:14:22:01:23"))
	assert.False(t, isValidMAC("00:14:22:01:23:GG"))
	assert.False(t, isValidMAC("001:4:22:01:23:45"))
}
