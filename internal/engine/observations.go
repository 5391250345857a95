package engine

import (
	"time"

	"github.com/treetalker/ttcloud/internal/policy"
	"github.com/treetalker/ttcloud/internal/ttstore"
	"github.com/treetalker/ttcloud/pkg/ttpacket"
)

// Ancillary field names for rows that no anomaly check queries back, kept
// local to the engine since policy never reads them.
const (
	fieldGrowth   = "growth"
	fieldMoisture = "moisture"
	fieldHumidity = "air_humidity"
	fieldBandgap  = "adc_bandgap"
	fieldVoltBat  = "adc_volt_bat"
)

// ObservationsForDataRev31 maps a decoded revision-3.1 data packet to its
// tagged observation rows. Exported so historical replay (internal/
// historical) writes and later queries the exact same measurement/field
// shape as the live decision engine.
func ObservationsForDataRev31(p *ttpacket.DataRev31) []ttstore.Observation {
	t := time.Unix(int64(p.Time), 0).UTC()
	talker := p.Sender

	return []ttstore.Observation{
		{
			Measurement: policy.MeasurementStemTemperature,
			Talker:      talker,
			Time:        t,
			Fields: map[string]float64{
				policy.FieldReferenceProbeCold: float64(p.ReferenceProbeCold),
				policy.FieldReferenceProbeHot:  float64(p.ReferenceProbeHot),
				policy.FieldHeatProbeCold:      float64(p.HeatProbeCold),
				policy.FieldHeatProbeHot:       float64(p.HeatProbeHot),
			},
		},
		{
			Measurement: "growth",
			Talker:      talker,
			Time:        t,
			Fields:      map[string]float64{fieldGrowth: float64(p.GrowthSensor)},
		},
		{
			Measurement: policy.MeasurementPower,
			Talker:      talker,
			Time:        t,
			Fields:      map[string]float64{policy.FieldVoltage: policy.ComputeBatteryVoltageRev31(p.Voltage)},
		},
		{
			Measurement: "stem_water",
			Talker:      talker,
			Time:        t,
			Fields:      map[string]float64{fieldMoisture: float64(p.Moisture)},
		},
		{
			Measurement: policy.MeasurementAir,
			Talker:      talker,
			Time:        t,
			Fields: map[string]float64{
				policy.FieldAirTemperature: float64(p.AirTemperature),
				fieldHumidity:              float64(p.AirHumidity),
			},
		},
		{
			Measurement: policy.MeasurementGravity,
			Talker:      talker,
			Time:        t,
			Fields: map[string]float64{
				policy.FieldGravityXMean:       float64(p.GravityXMean),
				policy.FieldGravityYMean:       float64(p.GravityYMean),
				policy.FieldGravityZMean:       float64(p.GravityZMean),
				policy.FieldGravityXDerivation: float64(p.GravityXDerivation),
				policy.FieldGravityYDerivation: float64(p.GravityYDerivation),
				policy.FieldGravityZDerivation: float64(p.GravityZDerivation),
			},
		},
	}
}

// ObservationsForDataRev32 is ObservationsForDataRev31's revision-3.2
// counterpart.
func ObservationsForDataRev32(p *ttpacket.DataRev32) []ttstore.Observation {
	t := time.Unix(int64(p.Time), 0).UTC()
	talker := p.Sender

	return []ttstore.Observation{
		{
			Measurement: policy.MeasurementStemTemperature,
			Talker:      talker,
			Time:        t,
			Fields: map[string]float64{
				policy.FieldReferenceProbeCold: float64(p.ReferenceProbeCold),
				policy.FieldReferenceProbeHot:  float64(p.ReferenceProbeHot),
				policy.FieldHeatProbeCold:      float64(p.HeatProbeCold),
				policy.FieldHeatProbeHot:       float64(p.HeatProbeHot),
			},
		},
		{
			Measurement: "growth",
			Talker:      talker,
			Time:        t,
			Fields:      map[string]float64{fieldGrowth: float64(p.GrowthSensor)},
		},
		{
			Measurement: policy.MeasurementPower,
			Talker:      talker,
			Time:        t,
			Fields: map[string]float64{
				policy.FieldVoltage: policy.ComputeBatteryVoltageRev32(p.AdcVoltBat, p.AdcBandgap),
				fieldBandgap:        float64(p.AdcBandgap),
				fieldVoltBat:        float64(p.AdcVoltBat),
			},
		},
		{
			Measurement: "stem_water",
			Talker:      talker,
			Time:        t,
			Fields:      map[string]float64{fieldMoisture: float64(p.StWC)},
		},
		{
			Measurement: policy.MeasurementAir,
			Talker:      talker,
			Time:        t,
			Fields: map[string]float64{
				policy.FieldAirTemperature: float64(p.AirTemperature),
				fieldHumidity:              float64(p.AirHumidity),
			},
		},
		{
			Measurement: policy.MeasurementGravity,
			Talker:      talker,
			Time:        t,
			Fields: map[string]float64{
				policy.FieldGravityXMean:       float64(p.GravityXMean),
				policy.FieldGravityYMean:       float64(p.GravityYMean),
				policy.FieldGravityZMean:       float64(p.GravityZMean),
				policy.FieldGravityXDerivation: float64(p.GravityXDerivation),
				policy.FieldGravityYDerivation: float64(p.GravityYDerivation),
				policy.FieldGravityZDerivation: float64(p.GravityZDerivation),
			},
		},
	}
}

// ObservationsForLight maps a decoded light-sensor packet to its tagged
// AS7263/AS7262 spectrometer band rows.
func ObservationsForLight(p *ttpacket.Light) []ttstore.Observation {
	t := time.Unix(int64(p.Time), 0).UTC()
	talker := p.Sender

	redFields := make(map[string]float64, 6)
	for i, band := range policy.AS7263Fields {
		redFields[band] = float64(p.AS7263[i])
	}
	blueFields := make(map[string]float64, 6)
	for i, band := range policy.AS7262Fields {
		blueFields[band] = float64(p.AS7262[i])
	}

	return []ttstore.Observation{
		{Measurement: policy.MeasurementAS7263, Talker: talker, Time: t, Fields: redFields},
		{Measurement: policy.MeasurementAS7262, Talker: talker, Time: t, Fields: blueFields},
	}
}
