package config

import (
	"fmt"
)

func (c *Config) validate() error {
	if c.Node.ReportPeriodMs < 100 {
		return fmt.Errorf("config: report_period_ms %d below minimum 100 (one cycle needs ~91ms of sensor waits)", c.Node.ReportPeriodMs)
	}
	if c.Node.QueueDepth < 1 || c.Node.QueueDepth > 1024 {
		return fmt.Errorf("config: queue_depth %d out of range [1,1024]", c.Node.QueueDepth)
	}
	switch c.Sensor.Bus {
	case "i2c0", "i2c1":
	default:
		return fmt.Errorf("config: unknown sensor bus %q", c.Sensor.Bus)
	}
	return nil
}
