package excel

import "time"

// Config holds settings for the workbook adapter
type Config struct {
	// LockSuffix is appended to an artifact path to form its sidecar lock file
	LockSuffix string
	// LockStaleAfter is the age past which a lock file counts as abandoned
	LockStaleAfter time.Duration
	// ChartWidth and ChartHeight size pie charts in pixels
	ChartWidth  uint
	ChartHeight uint
}

// DefaultConfig returns sensible defaults for report workbooks
func DefaultConfig() Config {
	return Config{
		LockSuffix:     ".lock",
		LockStaleAfter: 15 * time.Minute,
		ChartWidth:     480,
		ChartHeight:    290,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.LockSuffix == "" {
		c.LockSuffix = d.LockSuffix
	}
	if c.LockStaleAfter <= 0 {
		c.LockStaleAfter = d.LockStaleAfter
	}
	if c.ChartWidth == 0 {
		c.ChartWidth = d.ChartWidth
	}
	if c.ChartHeight == 0 {
		c.ChartHeight = d.ChartHeight
	}
	return c
}
