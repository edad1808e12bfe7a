package config

import (
	"fmt"
	"os"
	"time"
)

// Config is the top-level configuration for capturefit.
type Config struct {
	Cluster  ClusterConfig  `mapstructure:"cluster" yaml:"cluster"`
	Capacity CapacityConfig `mapstructure:"capacity" yaml:"capacity"`
	S3       S3Config       `mapstructure:"s3" yaml:"s3"`
	Traffic  TrafficConfig  `mapstructure:"traffic" yaml:"traffic"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

type ClusterConfig struct {
	Name   string `mapstructure:"name" yaml:"name"`
	Region string `mapstructure:"region" yaml:"region"`
}

// CapacityConfig holds the planning inputs. ExpectedTraffic is in Gbps.
type CapacityConfig struct {
	ExpectedTraffic float64 `mapstructure:"expected_traffic" yaml:"expected_traffic"`
	SPIDays         int     `mapstructure:"spi_days" yaml:"spi_days"`
	Replicas        int     `mapstructure:"replicas" yaml:"replicas"`
	NumAZs          int     `mapstructure:"num_azs" yaml:"num_azs"`
	HistoryDays     int     `mapstructure:"history_days" yaml:"history_days"`
}

type S3Config struct {
	PcapStorageClass string `mapstructure:"pcap_storage_class" yaml:"pcap_storage_class"`
	PcapStorageDays  int    `mapstructure:"pcap_storage_days" yaml:"pcap_storage_days"`
}

// TrafficConfig selects where the expected traffic comes from.
type TrafficConfig struct {
	Source        string        `mapstructure:"source" yaml:"source"` // static or prometheus
	PrometheusURL string        `mapstructure:"prometheus_url" yaml:"prometheus_url"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	Window        time.Duration `mapstructure:"window" yaml:"window"`
	Step          time.Duration `mapstructure:"step" yaml:"step"`
	Percentile    float64       `mapstructure:"percentile" yaml:"percentile"`
	Counter       string        `mapstructure:"counter" yaml:"counter"` // bytes-received counter, e.g. node_network_receive_bytes_total
}

type StoreConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"` // none, file or s3
	Dir     string `mapstructure:"dir" yaml:"dir"`
	Bucket  string `mapstructure:"bucket" yaml:"bucket"` // empty = derived from account and region
	Prefix  string `mapstructure:"prefix" yaml:"prefix"`
}

type OutputConfig struct {
	Format string `mapstructure:"format" yaml:"format"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr" yaml:"addr"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MaxAZs is the most availability zones a capture VPC may span.
const MaxAZs = 6

var validStorageClasses = map[string]bool{
	"STANDARD":            true,
	"STANDARD_IA":         true,
	"ONEZONE_IA":          true,
	"INTELLIGENT_TIERING": true,
	"GLACIER":             true,
	"GLACIER_IR":          true,
	"DEEP_ARCHIVE":        true,
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Cluster: ClusterConfig{
			Region: detectRegion(),
		},
		Capacity: CapacityConfig{
			ExpectedTraffic: 0.01,
			SPIDays:         30,
			Replicas:        1,
			NumAZs:          2,
			HistoryDays:     365,
		},
		S3: S3Config{
			PcapStorageClass: "STANDARD",
			PcapStorageDays:  30,
		},
		Traffic: TrafficConfig{
			Source:     "static",
			Timeout:    60 * time.Second,
			Window:     7 * 24 * time.Hour,
			Step:       5 * time.Minute,
			Percentile: 0.95,
			Counter:    "node_network_receive_bytes_total",
		},
		Store: StoreConfig{
			Backend: "none",
			Dir:     ".capturefit/plans",
			Prefix:  "clusters",
		},
		Output: OutputConfig{
			Format: "table",
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Settings flattens the config into dotted keys matching its mapstructure tags.
// Every key has to be known to viper for environment overrides to apply.
func (c Config) Settings() map[string]any {
	return map[string]any{
		"cluster.name":              c.Cluster.Name,
		"cluster.region":            c.Cluster.Region,
		"capacity.expected_traffic": c.Capacity.ExpectedTraffic,
		"capacity.spi_days":         c.Capacity.SPIDays,
		"capacity.replicas":         c.Capacity.Replicas,
		"capacity.num_azs":          c.Capacity.NumAZs,
		"capacity.history_days":     c.Capacity.HistoryDays,
		"s3.pcap_storage_class":     c.S3.PcapStorageClass,
		"s3.pcap_storage_days":      c.S3.PcapStorageDays,
		"traffic.source":            c.Traffic.Source,
		"traffic.prometheus_url":    c.Traffic.PrometheusURL,
		"traffic.timeout":           c.Traffic.Timeout,
		"traffic.window":            c.Traffic.Window,
		"traffic.step":              c.Traffic.Step,
		"traffic.percentile":        c.Traffic.Percentile,
		"traffic.counter":           c.Traffic.Counter,
		"store.backend":             c.Store.Backend,
		"store.dir":                 c.Store.Dir,
		"store.bucket":              c.Store.Bucket,
		"store.prefix":              c.Store.Prefix,
		"output.format":             c.Output.Format,
		"server.addr":               c.Server.Addr,
		"log.level":                 c.Log.Level,
		"log.format":                c.Log.Format,
	}
}

// Validate checks the config for consistency. Traffic above what a single cluster can
// capture is left to the planner, which reports it with its own error.
func (c *Config) Validate() error {
	if c.Capacity.ExpectedTraffic < 0 {
		return fmt.Errorf("expected_traffic must be non-negative, got %v", c.Capacity.ExpectedTraffic)
	}
	if c.Capacity.SPIDays < 1 {
		return fmt.Errorf("spi_days must be at least 1, got %d", c.Capacity.SPIDays)
	}
	if c.Capacity.Replicas < 0 {
		return fmt.Errorf("replicas must be non-negative, got %d", c.Capacity.Replicas)
	}
	if c.Capacity.NumAZs < 1 || c.Capacity.NumAZs > MaxAZs {
		return fmt.Errorf("num_azs must be between 1 and %d, got %d", MaxAZs, c.Capacity.NumAZs)
	}
	if c.Capacity.HistoryDays < 1 {
		return fmt.Errorf("history_days must be at least 1, got %d", c.Capacity.HistoryDays)
	}
	if c.S3.PcapStorageDays < 1 {
		return fmt.Errorf("pcap_storage_days must be at least 1, got %d", c.S3.PcapStorageDays)
	}
	if !validStorageClasses[c.S3.PcapStorageClass] {
		return fmt.Errorf("pcap_storage_class %q is not an S3 storage class", c.S3.PcapStorageClass)
	}
	if c.Traffic.Percentile <= 0 || c.Traffic.Percentile > 1.0 {
		return fmt.Errorf("percentile must be in (0, 1.0], got %v", c.Traffic.Percentile)
	}
	switch c.Traffic.Source {
	case "static":
	case "prometheus":
		if c.Traffic.PrometheusURL == "" {
			return fmt.Errorf("traffic source prometheus requires prometheus_url")
		}
		if c.Traffic.Window <= 0 {
			return fmt.Errorf("traffic window must be positive, got %v", c.Traffic.Window)
		}
	default:
		return fmt.Errorf("traffic source must be static or prometheus, got %q", c.Traffic.Source)
	}
	validBackends := map[string]bool{"none": true, "file": true, "s3": true}
	if !validBackends[c.Store.Backend] {
		return fmt.Errorf("store backend must be none, file, or s3, got %q", c.Store.Backend)
	}
	if c.Store.Backend == "file" && c.Store.Dir == "" {
		return fmt.Errorf("store backend file requires dir")
	}
	validFormats := map[string]bool{"table": true, "json": true, "yaml": true}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("output format must be table, json, or yaml, got %q", c.Output.Format)
	}
	validLogFormats := map[string]bool{"console": true, "json": true}
	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("log format must be console or json, got %q", c.Log.Format)
	}
	return nil
}

// detectRegion checks environment variables for the AWS region.
func detectRegion() string {
	if r := os.Getenv("AWS_REGION"); r != "" {
		return r
	}
	if r := os.Getenv("AWS_DEFAULT_REGION"); r != "" {
		return r
	}
	return "us-east-1"
}
