package metrics

import "errors"

var (
	// ErrDisabled is returned by Connect when metrics are disabled in config.
	ErrDisabled = errors.New("metrics disabled in configuration")

	// ErrConnectionFailed is returned when InfluxDB cannot be reached.
	ErrConnectionFailed = errors.New("influxdb connection failed")

	// ErrNotConnected is returned when an operation requires a live connection.
	ErrNotConnected = errors.New("influxdb not connected")
)
