package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ryanuber/columnize"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/input-output-hk/catalyst-forge-libs/fileaccess"
)

const (
	outputText outputFormat = "text"
	outputJSON outputFormat = "json"
	outputYAML outputFormat = "yaml"
)

// outputFormat is a flag value restricted to the supported formats.
type outputFormat string

var _ pflag.Value = (*outputFormat)(nil)

func (f *outputFormat) String() string {
	return string(*f)
}

func (f *outputFormat) Set(s string) error {
	switch v := outputFormat(strings.ToLower(s)); v {
	case outputText, outputJSON, outputYAML:
		*f = v
		return nil
	}
	return fmt.Errorf("unsupported output format %q", s)
}

func (f *outputFormat) Type() string {
	return "format"
}

// pathState is the rendered result of exists.
type pathState struct {
	Path string `json:"path" yaml:"path"`
	Kind string `json:"kind" yaml:"kind"`
}

// writeResult is the rendered result of write.
type writeResult struct {
	Path    string `json:"path" yaml:"path"`
	Written int64  `json:"written" yaml:"written"`
}

// printer renders command results in the selected output format. Text
// output is columnized; json and yaml emit the value as is.
type printer struct {
	format outputFormat
	w      io.Writer
}

func (p *printer) structured(v any) (bool, error) {
	switch p.format {
	case outputJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	}
	return false, nil
}

func (p *printer) fileInfos(infos []fileaccess.FileInfo) error {
	if done, err := p.structured(infos); done {
		return err
	}

	lines := []string{"Path | Type | Length"}
	for _, info := range infos {
		lines = append(lines, fmt.Sprintf("%s | %s | %d", info.Path, kindOf(info), info.Length))
	}
	_, err := fmt.Fprintln(p.w, columnize.SimpleFormat(lines))
	return err
}

func (p *printer) pathStates(states []pathState) error {
	if done, err := p.structured(states); done {
		return err
	}

	lines := make([]string, 0, len(states))
	for _, s := range states {
		lines = append(lines, fmt.Sprintf("%s | %s", s.Path, s.Kind))
	}
	_, err := fmt.Fprintln(p.w, columnize.SimpleFormat(lines))
	return err
}

func (p *printer) names(names []string) error {
	if done, err := p.structured(names); done {
		return err
	}

	for _, name := range names {
		if _, err := fmt.Fprintln(p.w, name); err != nil {
			return err
		}
	}
	return nil
}

// listing renders a long directory listing. Entries are shown by name
// rather than canonical path.
func (p *printer) listing(infos []fileaccess.FileInfo) error {
	if done, err := p.structured(infos); done {
		return err
	}

	lines := []string{"Name | Type | Length"}
	for _, info := range infos {
		lines = append(lines, fmt.Sprintf("%s | %s | %d", info.Name(), kindOf(info), info.Length))
	}
	_, err := fmt.Fprintln(p.w, columnize.SimpleFormat(lines))
	return err
}

func (p *printer) written(res writeResult) error {
	if done, err := p.structured(res); done {
		return err
	}

	_, err := fmt.Fprintf(p.w, "wrote %d bytes to %s\n", res.Written, res.Path)
	return err
}

func kindOf(info fileaccess.FileInfo) fileaccess.PathKind {
	if info.IsDir {
		return fileaccess.Directory
	}
	return fileaccess.File
}
