package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	gerrors "github.com/matzehuels/graphem/pkg/errors"
)

// LoadOptions reads a parameter file on top of DefaultOptions. The format
// follows the extension: .toml, .yaml/.yml or .json. Unknown keys are
// rejected so a misspelt parameter never silently keeps its default.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return opts, gerrors.Wrap(gerrors.ErrCodeFileNotFound, err, "read %s", path)
		}
		return opts, gerrors.Wrap(gerrors.ErrCodeInvalidInput, err, "read %s", path)
	}
	if err := DecodeOptions(data, filepath.Ext(path), &opts); err != nil {
		return opts, gerrors.Wrap(gerrors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return opts, nil
}

// DecodeOptions decodes data in the format named by ext into opts. Fields
// absent from data keep their current values.
func DecodeOptions(data []byte, ext string, opts *Options) error {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "toml":
		md, err := toml.Decode(string(data), opts)
		if err != nil {
			return err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return gerrors.New(gerrors.ErrCodeInvalidConfig, "unknown key %q", undecoded[0].String())
		}
		return nil
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(opts); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		return nil
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(opts)
	default:
		return gerrors.New(gerrors.ErrCodeUnsupported, "unsupported parameter file type %q (want .toml, .yaml or .json)", ext)
	}
}
