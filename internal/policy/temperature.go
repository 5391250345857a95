package policy

import "math"

// ComputeTemperature converts a raw thermistor ADC reading into degrees
// Celsius, per original_source/ttcloud/ttt/util.py's compute_temperature.
func ComputeTemperature(measurement float64) float64 {
	t := 127.6 -
		(0.006045 * measurement) +
		(1.26e-07 * measurement * measurement) -
		(1.15e-12 * measurement * measurement * measurement)
	return math.Round(t*100) / 100
}

// ComputeBatteryVoltageRev32 returns the battery voltage in millivolts for
// the Rev 3.2 (adc_volt_bat, adc_bandgap) pair.
func ComputeBatteryVoltageRev32(adcVoltBat, adcBandgap uint32) float64 {
	const mvBandgap = 1100.0
	return 2 * mvBandgap * (float64(adcVoltBat) / float64(adcBandgap))
}

// ComputeBatteryVoltageRev31 returns the battery voltage in millivolts for
// the Rev 3.1 single-voltage encoding.
func ComputeBatteryVoltageRev31(voltage uint32) float64 {
	return 650 + (131072 * (1100 / float64(voltage)))
}
