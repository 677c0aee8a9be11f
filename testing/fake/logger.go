// Package fake provides helpers shared by the tests of the module.
package fake

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// CheckLog returns a logger and a check function. When called, the function
// will verify if the logger has seen the message printed.
func CheckLog(msg string) (zerolog.Logger, func(t *testing.T)) {
	buffer := new(bytes.Buffer)

	check := func(t *testing.T) {
		require.Contains(t, buffer.String(), fmt.Sprintf(`"%s"`, msg))
	}

	return zerolog.New(buffer), check
}

// CheckNoLog returns a logger and a check function. When called, the function
// verifies that the logger has never printed the message.
func CheckNoLog(msg string) (zerolog.Logger, func(t *testing.T)) {
	buffer := new(bytes.Buffer)

	check := func(t *testing.T) {
		require.NotContains(t, buffer.String(), fmt.Sprintf(`"%s"`, msg))
	}

	return zerolog.New(buffer), check
}
