// Package output provides output formatting for sesskeep-cli.
package output

import (
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats data as YAML.
type YAMLFormatter struct{}

// Format formats data as YAML.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(data)
}
