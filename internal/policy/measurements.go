package policy

// Measurement and field names match the tag/field vocabulary
// original_source/eval/policy.py queries against InfluxDB, carried over
// unchanged so a historical capture taken against the Python system
// remains queryable against this one.
const (
	MeasurementPower           = "power"
	MeasurementGravity         = "gravity"
	MeasurementStemTemperature = "stem_temperature"
	MeasurementAir             = "air"
	MeasurementAS7263          = "AS7263"
	MeasurementAS7262          = "AS7262"
)

const (
	FieldVoltage = "voltage"

	FieldGravityXMean       = "x_mean"
	FieldGravityYMean       = "y_mean"
	FieldGravityZMean       = "z_mean"
	FieldGravityXDerivation = "x_derivation"
	FieldGravityYDerivation = "y_derivation"
	FieldGravityZDerivation = "z_derivation"

	FieldReferenceProbeCold = "ttt_reference_probe_cold"
	FieldReferenceProbeHot  = "ttt_reference_probe_hot"
	FieldHeatProbeCold      = "ttt_heat_probe_cold"
	FieldHeatProbeHot       = "ttt_heat_probe_hot"

	FieldAirTemperature = "air_temperature"
)

// AS7263Fields and AS7262Fields are the per-band field names queried and
// written for the red (AS7263) and blue (AS7262) spectrometer banks, in
// wavelength order, matching LightPolicy's Influx queries.
var (
	AS7263Fields = [6]string{"610", "680", "730", "760", "810", "860"}
	AS7262Fields = [6]string{"450", "500", "550", "570", "600", "650"}
)
