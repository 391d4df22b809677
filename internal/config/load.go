package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaSource string

// Error codes for configuration loading.
const (
	ErrCodeNotFound     = "E005" // File missing or unreadable
	ErrCodeUnsupported  = "E201" // Unknown file extension
	ErrCodeDecodeFailed = "E202" // YAML syntax or unknown field
	ErrCodeBuildFailed  = "E006" // CUE compile failed
	ErrCodeSchema       = "E203" // Schema constraint violated
)

// LoadError is a configuration loading failure, with a source position
// when one is known.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Load reads a configuration file, choosing the format by extension
// (.yaml, .yml or .cue). The result has defaults applied and has passed
// the schema, but not Validate.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("reading config: %v", err)}
	}

	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".cue":
		return ParseCUE(data, path)
	default:
		return Config{}, &LoadError{Code: ErrCodeUnsupported, Message: fmt.Sprintf("unsupported config format %q", ext)}
	}
}

// ParseYAML decodes YAML over the defaults and checks the result against
// the schema. Unknown keys are rejected.
func ParseYAML(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, &LoadError{Code: ErrCodeDecodeFailed, Message: fmt.Sprintf("decoding YAML: %v", err)}
	}

	ctx := cuecontext.New()
	schema, err := configSchema(ctx)
	if err != nil {
		return Config{}, err
	}
	value := schema.Unify(ctx.Encode(cfg))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return Config{}, schemaError(err)
	}
	return cfg, nil
}

// ParseCUE compiles CUE source, unifies it with the schema and decodes
// it. filename is used in error positions.
func ParseCUE(data []byte, filename string) (Config, error) {
	ctx := cuecontext.New()
	schema, err := configSchema(ctx)
	if err != nil {
		return Config{}, err
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return Config{}, &LoadError{Code: ErrCodeBuildFailed, Message: err.Error(), Pos: firstPos(err)}
	}

	value = schema.Unify(value)
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return Config{}, schemaError(err)
	}

	cfg := Default()
	if err := value.Decode(&cfg); err != nil {
		return Config{}, &LoadError{Code: ErrCodeSchema, Message: fmt.Sprintf("decoding config: %v", err), Pos: firstPos(err)}
	}
	return cfg, nil
}

func configSchema(ctx *cue.Context) (cue.Value, error) {
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building schema: %v", err)}
	}
	return schema.LookupPath(cue.ParsePath("#Config")), nil
}

func schemaError(err error) *LoadError {
	return &LoadError{Code: ErrCodeSchema, Message: err.Error(), Pos: firstPos(err)}
}

func firstPos(err error) token.Pos {
	for _, e := range cueerrors.Errors(err) {
		if pos := e.Position(); pos.IsValid() {
			return pos
		}
	}
	return token.NoPos
}
