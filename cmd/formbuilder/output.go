package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"gopkg.in/yaml.v3"
)

func writeEncoded(w io.Writer, v any, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "json":
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml", "yml":
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		_, err := w.Write(buf.Bytes())
		return err
	default:
		return fmt.Errorf("unknown format %q (must be json or yaml)", format)
	}
}

// readValues decodes a JSON or YAML record of form values. The extension
// picks the decoder; YAML is a superset of JSON so other files go to YAML.
func readValues(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	values := map[string]any{}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &values)
	} else {
		err = yaml.Unmarshal(data, &values)
	}
	if err != nil {
		return nil, fmt.Errorf("decode values %s: %w", path, err)
	}
	return values, nil
}

// parseBindings splits field=reference pairs. The reference may itself
// contain '='.
func parseBindings(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, ref, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.TrimSpace(ref) == "" {
			return nil, fmt.Errorf("invalid template binding %q (expected field=template)", pair)
		}
		out[key] = ref
	}
	return out, nil
}

func reportValidity(w io.Writer, valid bool, invalid int) {
	if valid {
		fmt.Fprintln(w, color.GreenString("✓ form is valid"))
		return
	}
	fmt.Fprintln(w, color.YellowString("✗ form is invalid (%d controls with errors)", invalid))
}

func warnf(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, color.YellowString("warning: "+format, args...))
}
