package toolutils

import (
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-yaml"
)

// ReadYaml decodes a YAML file into dest. Unknown keys are errors.
func ReadYaml(dest any, file string) error {
	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("unable to open configuration file: %w", err)
	}
	defer f.Close()
	return DecodeYaml(dest, f)
}

// DecodeYaml decodes a YAML document from r into dest. Unknown keys are errors.
func DecodeYaml(dest any, r io.Reader) error {
	dec := yaml.NewDecoder(r, yaml.Strict())
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("unable to parse configuration: %w", err)
	}
	return nil
}

// WriteYaml encodes v as a YAML document.
func WriteYaml(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w, yaml.Indent(2))
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}
