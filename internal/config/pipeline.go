package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	EnvPipelineMaxChars        = "CONCALL_PIPELINE_MAX_CHARS"
	EnvPipelineJobCapacity     = "CONCALL_PIPELINE_JOB_CAPACITY"
	EnvPipelineSummaryCapacity = "CONCALL_PIPELINE_SUMMARY_CAPACITY"
	EnvPipelineGuidance        = "CONCALL_PIPELINE_GUIDANCE_KEYWORDS"
)

// PipelineConfig holds transcript budget, in-memory retention limits, and the
// keywords that mark guidance as a strong positive signal. An empty keyword
// list selects the built-in set.
type PipelineConfig struct {
	MaxChars         int      `toml:"max_chars"`
	JobCapacity      int      `toml:"job_capacity"`
	SummaryCapacity  int      `toml:"summary_capacity"`
	GuidanceKeywords []string `toml:"guidance_keywords"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.MaxChars != 0 {
		c.MaxChars = overlay.MaxChars
	}
	if overlay.JobCapacity != 0 {
		c.JobCapacity = overlay.JobCapacity
	}
	if overlay.SummaryCapacity != 0 {
		c.SummaryCapacity = overlay.SummaryCapacity
	}
	if len(overlay.GuidanceKeywords) > 0 {
		c.GuidanceKeywords = overlay.GuidanceKeywords
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.MaxChars == 0 {
		c.MaxChars = 12000
	}
	if c.JobCapacity == 0 {
		c.JobCapacity = 500
	}
	if c.SummaryCapacity == 0 {
		c.SummaryCapacity = 200
	}
}

func (c *PipelineConfig) loadEnv() {
	setInt := func(name string, dst *int) {
		if v := os.Getenv(name); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	setInt(EnvPipelineMaxChars, &c.MaxChars)
	setInt(EnvPipelineJobCapacity, &c.JobCapacity)
	setInt(EnvPipelineSummaryCapacity, &c.SummaryCapacity)

	if v := os.Getenv(EnvPipelineGuidance); v != "" {
		var keywords []string
		for k := range strings.SplitSeq(v, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
		c.GuidanceKeywords = keywords
	}
}

func (c *PipelineConfig) validate() error {
	if c.MaxChars < 1 {
		return fmt.Errorf("invalid max_chars: %d", c.MaxChars)
	}
	if c.JobCapacity < 1 {
		return fmt.Errorf("invalid job_capacity: %d", c.JobCapacity)
	}
	if c.SummaryCapacity < 1 {
		return fmt.Errorf("invalid summary_capacity: %d", c.SummaryCapacity)
	}
	return nil
}
