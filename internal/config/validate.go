// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"fmt"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/pdiddy/adn/internal/fsutil"
	"github.com/pdiddy/adn/internal/templates"
)

// Validation is the result of Store.Validate.
type Validation struct {
	Valid    bool     `json:"valid" yaml:"valid"`
	Errors   []string `json:"errors" yaml:"errors"`
	Warnings []string `json:"warnings" yaml:"warnings"`
}

// Validate checks the persisted configuration. log_level and encoding
// problems are errors; a missing output directory or default template file
// are warnings.
func (s *Store) Validate() Validation {
	var res Validation

	cfg, err := s.Effective()
	if err != nil {
		res.Errors = append(res.Errors, err.Error())
		return res
	}

	level := cfg.String(KeyLogLevel)
	if err := validation.Validate(level, validation.Required, validation.In(anySlice(LogLevels)...)); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("log_level %q is invalid: %v", level, err))
	}

	enc := cfg.String(KeyEncoding)
	if _, err := ResolveEncoding(enc); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("encoding %q is invalid: %v", enc, err))
	}

	outDir := cfg.String(KeyDefaultOutputDir)
	if !fsutil.IsDir(outDir) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("output directory %s does not exist", outDir))
	}

	tmpl := filepath.Join(s.paths.TemplatesDir, cfg.String(KeyDefaultTemplate)+templates.Ext)
	if !fsutil.Exists(tmpl) {
		res.Warnings = append(res.Warnings, fmt.Sprintf("default template %s does not exist", tmpl))
	}

	res.Valid = len(res.Errors) == 0
	return res
}
