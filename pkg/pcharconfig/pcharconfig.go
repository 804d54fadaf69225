package pcharconfig

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/Parth-83919/ELDD-ASSIGNMENT/pkg/circbuff"
	"github.com/Parth-83919/ELDD-ASSIGNMENT/pkg/pchar"
	"github.com/pkg/errors"
)

/*
 * A config file is a list of directives, one per line:
 *
 *   # comment
 *   devices 3
 *   capacity 32
 *   maxcapacity 4096
 *   device 1 capacity 64
 *   loglevel debug
 *
 * Directives may appear in any order; later ones override earlier ones.
 */
type Config struct {
	Devices     int
	Capacity    int
	MaxCapacity int // 0 means unlimited

	// Per-device initial capacities, keyed by minor number
	DeviceCapacities map[int]int

	LogLevel slog.Level
}

// Default returns the geometry the driver uses with no configuration.
func Default() *Config {
	return &Config{
		Devices:          pchar.DefaultDevices,
		Capacity:         pchar.DefaultCapacity,
		DeviceCapacities: make(map[int]int),
		LogLevel:         slog.LevelInfo,
	}
}

// Validate checks the config without building anything.
func (c *Config) Validate() error {
	if c.Devices <= 0 {
		return errors.Wrapf(pchar.ErrConfig, "devices must be positive, got %d", c.Devices)
	}
	if c.Capacity <= 0 {
		return errors.Wrapf(pchar.ErrConfig, "capacity must be positive, got %d", c.Capacity)
	}
	if c.Capacity > circbuff.MaxCapacity {
		return errors.Wrapf(pchar.ErrConfig, "capacity %d over %d", c.Capacity, circbuff.MaxCapacity)
	}
	if c.MaxCapacity < 0 || c.MaxCapacity > circbuff.MaxCapacity {
		return errors.Wrapf(pchar.ErrConfig, "maxcapacity must be within 0..%d, got %d", circbuff.MaxCapacity, c.MaxCapacity)
	}
	for minor, capacity := range c.DeviceCapacities {
		if minor >= c.Devices {
			return errors.Wrapf(pchar.ErrConfig, "device %d configured but only %d devices", minor, c.Devices)
		}
		if capacity > circbuff.MaxCapacity {
			return errors.Wrapf(pchar.ErrConfig, "device %d capacity %d over %d", minor, capacity, circbuff.MaxCapacity)
		}
	}
	return nil
}

// Options converts the per-device settings into registry options.
func (c *Config) Options() []pchar.Option {
	opts := []pchar.Option{pchar.WithMaxCapacity(c.MaxCapacity)}
	for minor, capacity := range c.DeviceCapacities {
		opts = append(opts, pchar.WithDeviceCapacity(minor, capacity))
	}
	return opts
}

// NewRegistry validates the config and builds a registry from it.
func (c *Config) NewRegistry() (*pchar.Registry, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return pchar.New(c.Devices, c.Capacity, c.Options()...)
}

// ******************** END PUBLIC INTERFACE *********************************************

type ParseFunc func(int, string, *Config) error

var parseCommands = map[string]ParseFunc{
	"devices":     parseDevices,
	"capacity":    parseCapacity,
	"maxcapacity": parseMaxCapacity,
	"device":      parseDevice,
	"loglevel":    parseLogLevel,
}

func parsePositive(ln int, token string) (int, error) {
	v, err := strconv.Atoi(token)
	if err != nil {
		return 0, newErr(ln, err)
	}
	if v <= 0 {
		return 0, newErrString(ln, "%d is not a positive number", v)
	}
	return v, nil
}

func parseDevices(ln int, line string, config *Config) error {
	tokens := strings.Fields(line)
	if len(tokens) != 2 {
		return newErrString(ln, "Usage:  devices <count>")
	}
	v, err := parsePositive(ln, tokens[1])
	if err != nil {
		return err
	}
	config.Devices = v
	return nil
}

func parseCapacity(ln int, line string, config *Config) error {
	tokens := strings.Fields(line)
	if len(tokens) != 2 {
		return newErrString(ln, "Usage:  capacity <bytes>")
	}
	v, err := parsePositive(ln, tokens[1])
	if err != nil {
		return err
	}
	config.Capacity = v
	return nil
}

func parseMaxCapacity(ln int, line string, config *Config) error {
	tokens := strings.Fields(line)
	if len(tokens) != 2 {
		return newErrString(ln, "Usage:  maxcapacity <bytes>")
	}
	v, err := parsePositive(ln, tokens[1])
	if err != nil {
		return err
	}
	config.MaxCapacity = v
	return nil
}

func parseDevice(ln int, line string, config *Config) error {
	tokens := strings.Fields(line)
	if len(tokens) != 4 || tokens[2] != "capacity" {
		return newErrString(ln, "Usage:  device <minor> capacity <bytes>")
	}
	minor, err := strconv.Atoi(tokens[1])
	if err != nil {
		return newErr(ln, err)
	}
	if minor < 0 {
		return newErrString(ln, "minor %d is negative", minor)
	}
	v, err := parsePositive(ln, tokens[3])
	if err != nil {
		return err
	}
	config.DeviceCapacities[minor] = v
	return nil
}

func parseLogLevel(ln int, line string, config *Config) error {
	tokens := strings.Fields(line)
	if len(tokens) != 2 {
		return newErrString(ln, "Usage:  loglevel <debug|info|warn|error>")
	}
	if err := config.LogLevel.UnmarshalText([]byte(tokens[1])); err != nil {
		return newErr(ln, err)
	}
	return nil
}

func newErrString(line int, msg string, args ...any) error {
	_msg := fmt.Sprintf(msg, args...)
	return errors.Wrapf(pchar.ErrConfig, "Parse error on line %d:  %s", line, _msg)
}

func newErr(line int, err error) error {
	return errors.Wrapf(pchar.ErrConfig, "Parse error on line %d:  %s", line, err.Error())
}

// Parse reads directives from r on top of the defaults.
func Parse(r io.Reader) (*Config, error) {
	config := Default()

	scanner := bufio.NewScanner(r)
	ln := 0
	for scanner.Scan() {
		ln++

		line := strings.TrimSpace(scanner.Text())
		tokens := strings.Fields(line)

		if len(tokens) == 0 {
			continue
		}

		// Skip comments
		head := tokens[0]
		if head[0] == '#' {
			continue
		}

		pf, found := parseCommands[head]
		if !found {
			return nil, newErrString(ln, "Unrecognized token %s", head)
		}
		if err := pf(ln, line, config); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "reading config")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Parse a configuration file
func ParseConfig(configFile string) (*Config, error) {
	fd, err := os.Open(configFile)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to open file")
	}
	defer fd.Close()

	return Parse(fd)
}
