package cmd

import (
	"io"

	jsoniter "github.com/json-iterator/go"
	"gopkg.in/yaml.v2"
)

const (
	formatList = "list"
	formatJSON = "json"
	formatYAML = "yaml"
)

// Formatter renders the result of a command
type Formatter interface {
	Format(io.Writer, interface{}) error
}

// FormatterFunc is a function usable as a Formatter
type FormatterFunc func(io.Writer, interface{}) error

// Format some data
func (f FormatterFunc) Format(w io.Writer, data interface{}) error {
	return f(w, data)
}

var formatters = map[string]Formatter{
	formatJSON: FormatterFunc(func(w io.Writer, data interface{}) error {
		enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	}),
	formatYAML: FormatterFunc(func(w io.Writer, data interface{}) error {
		b, err := yaml.Marshal(data)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	}),
}

// printData renders data to the standard output, using the list formatter unless another format is requested
func printData(data interface{}, list FormatterFunc) error {
	if f, ok := formatters[params.root.format]; ok {
		return f.Format(infoLogger.Writer(), data)
	}
	return list.Format(infoLogger.Writer(), data)
}
