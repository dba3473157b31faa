package config

// Defaults applied to zero-valued fields.
const (
	defaultName         = "miner-safety-node"
	defaultReportPeriod = 3000
	defaultQueueDepth   = 16
	defaultBus          = "i2c0"
)

func (c *Config) normalize() {
	if c.Node.Name == "" {
		c.Node.Name = defaultName
	}
	if c.Node.ReportPeriodMs == 0 {
		c.Node.ReportPeriodMs = defaultReportPeriod
	}
	if c.Node.QueueDepth == 0 {
		c.Node.QueueDepth = defaultQueueDepth
	}
	if c.Sensor.Bus == "" {
		c.Sensor.Bus = defaultBus
	}
}
