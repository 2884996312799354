package icefile

import (
	"fmt"
	"strings"
)

// DefaultBatchSize is the number of rows a reader produces per batch unless
// configured otherwise.
const DefaultBatchSize = 4096

// The ReaderConfig type carries configuration options for file readers.
//
// ReaderConfig implements the ReaderOption interface so it can be used
// directly as argument to the Open function when needed, for example:
//
//	reader, err := icefile.Open(file, size, &icefile.ReaderConfig{
//		BatchSize: 1024,
//	})
type ReaderConfig struct {
	BatchSize int
}

// DefaultReaderConfig returns a new ReaderConfig value initialized with the
// default configuration.
func DefaultReaderConfig() *ReaderConfig {
	return &ReaderConfig{
		BatchSize: DefaultBatchSize,
	}
}

// NewReaderConfig constructs a new reader configuration applying the options
// passed as arguments, and returns an error if any of them is invalid.
func NewReaderConfig(options ...ReaderOption) (*ReaderConfig, error) {
	config := DefaultReaderConfig()
	config.Apply(options...)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Apply applies the given list of options to c.
func (c *ReaderConfig) Apply(options ...ReaderOption) {
	for _, opt := range options {
		opt.ConfigureReader(c)
	}
}

// ConfigureReader applies configuration options from c to config.
func (c *ReaderConfig) ConfigureReader(config *ReaderConfig) {
	*config = ReaderConfig{
		BatchSize: coalesceInt(c.BatchSize, config.BatchSize),
	}
}

// Validate returns a non-nil error if the configuration of c is invalid.
func (c *ReaderConfig) Validate() error {
	const baseName = "icefile.(*ReaderConfig)."
	return errorInvalidConfiguration(
		validatePositiveInt(baseName+"BatchSize", c.BatchSize),
	)
}

// ReaderOption is an interface implemented by types that carry configuration
// options for file readers.
type ReaderOption interface {
	ConfigureReader(*ReaderConfig)
}

// BatchSize creates a configuration option which limits the number of rows
// produced per batch.
//
// Defaults to DefaultBatchSize.
func BatchSize(size int) ReaderOption {
	return readerOption(func(config *ReaderConfig) { config.BatchSize = size })
}

type readerOption func(*ReaderConfig)

func (opt readerOption) ConfigureReader(config *ReaderConfig) { opt(config) }

func coalesceInt(i1, i2 int) int {
	if i1 != 0 {
		return i1
	}
	return i2
}

func validatePositiveInt(optionName string, optionValue int) error {
	if optionValue > 0 {
		return nil
	}
	return errorInvalidOptionValue(optionName, optionValue)
}

func errorInvalidOptionValue(optionName string, optionValue interface{}) error {
	return fmt.Errorf("invalid option value: %s: %v", optionName, optionValue)
}

func errorInvalidConfiguration(reasons ...error) error {
	var err *invalidConfiguration

	for _, reason := range reasons {
		if reason != nil {
			if err == nil {
				err = new(invalidConfiguration)
			}
			err.reasons = append(err.reasons, reason)
		}
	}

	if err != nil {
		return err
	}

	return nil
}

type invalidConfiguration struct {
	reasons []error
}

func (err *invalidConfiguration) Error() string {
	errorMessage := new(strings.Builder)
	for _, reason := range err.reasons {
		errorMessage.WriteString(reason.Error())
		errorMessage.WriteString("\n")
	}
	errorString := errorMessage.String()
	if errorString != "" {
		errorString = errorString[:len(errorString)-1]
	}
	return errorString
}
