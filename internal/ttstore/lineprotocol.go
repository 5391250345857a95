package ttstore

import (
	"time"

	lp "github.com/influxdata/line-protocol/v2/lineprotocol"
)

// DecodeLine decodes a single InfluxDB line-protocol message into an
// Observation, keeping every tag in Tags; Talker is left zero. Nothing in
// this module calls it.
func DecodeLine(d *lp.Decoder) (Observation, error) {
	measurement, err := d.Measurement()
	if err != nil {
		return Observation{}, err
	}

	tags := make(map[string]string)
	for {
		key, value, err := d.NextTag()
		if err != nil {
			return Observation{}, err
		}
		if key == nil {
			break
		}
		tags[string(key)] = string(value)
	}

	fields := make(map[string]float64)
	for {
		key, value, err := d.NextField()
		if err != nil {
			return Observation{}, err
		}
		if key == nil {
			break
		}
		switch v := value.Interface().(type) {
		case float64:
			fields[string(key)] = v
		case int64:
			fields[string(key)] = float64(v)
		case uint64:
			fields[string(key)] = float64(v)
		case bool:
			if v {
				fields[string(key)] = 1
			} else {
				fields[string(key)] = 0
			}
		}
	}

	t, err := d.Time(lp.Nanosecond, time.Time{})
	if err != nil {
		return Observation{}, err
	}

	return Observation{
		Measurement: string(measurement),
		Tags:        tags,
		Fields:      fields,
		Time:        t,
	}, nil
}
