package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treetalker/ttcloud/internal/historical"
	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

func TestPacketFilterEnvCarriesAirTemperatureForDataPackets(t *testing.T) {
	p := &ttpacket.DataRev31{
		Header:         ttpacket.Header{Sender: 7, Receiver: 1},
		AirTemperature: 234,
	}
	env := packetFilterEnv(p)
	assert.Equal(t, ttpacket.Address(7).String(), env["sender"])
	assert.Equal(t, ttpacket.Address(1).String(), env["receiver"])
	assert.Equal(t, "DataRev31", env["kind"])
	assert.Equal(t, float64(234), env["air_temperature"])
}

func TestPacketFilterEnvDefaultsAirTemperatureForNonDataPackets(t *testing.T) {
	p := &ttpacket.Helo{Header: ttpacket.Header{Sender: 3, Receiver: 0}}
	env := packetFilterEnv(p)
	assert.Equal(t, float64(0), env["air_temperature"])
}

func TestFindingsWriterTruncatesByDefaultAndAppendsWhenAsked(t *testing.T) {
	dir := t.TempDir()

	w, err := newFindingsWriter(dir, "anomalies.jsonl", false)
	require.NoError(t, err)
	require.NoError(t, w.Write(&historical.Finding{Timestamp: 1, Kind: "DataRev31", Events: []string{"movement"}}))
	require.NoError(t, w.Flush())
	require.NoError(t, w.Close())

	w2, err := newFindingsWriter(dir, "anomalies.jsonl", true)
	require.NoError(t, err)
	require.NoError(t, w2.Write(&historical.Finding{Timestamp: 2, Kind: "DataRev32", Events: []string{"position"}}))
	require.NoError(t, w2.Flush())
	require.NoError(t, w2.Close())

	raw, err := os.ReadFile(filepath.Join(dir, "anomalies.jsonl"))
	require.NoError(t, err)

	var lines []historical.Finding
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	for scanner.Scan() {
		var f historical.Finding
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &f))
		lines = append(lines, f)
	}
	require.NoError(t, scanner.Err())
	require.Len(t, lines, 2)
	assert.Equal(t, int64(1), lines[0].Timestamp)
	assert.Equal(t, int64(2), lines[1].Timestamp)
}

func TestFindingsWriterTruncateDropsPriorContent(t *testing.T) {
	dir := t.TempDir()

	w, err := newFindingsWriter(dir, "critical.jsonl", false)
	require.NoError(t, err)
	require.NoError(t, w.Write(&historical.Finding{Timestamp: 1, Kind: "DataRev31"}))
	require.NoError(t, w.Flush())
	require.NoError(t, w.Close())

	w2, err := newFindingsWriter(dir, "critical.jsonl", false)
	require.NoError(t, err)
	require.NoError(t, w2.Close())

	raw, err := os.ReadFile(filepath.Join(dir, "critical.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, raw)
}
