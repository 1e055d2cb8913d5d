// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package templates

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/pdiddy/adn/internal/apperr"
)

const maxNameLength = 50

var forbiddenNameChars = regexp.MustCompile(`^[^<>:"/\\|?*]*$`)

// ValidateName checks a template name: non-empty, at most 50 characters,
// none of <>:"/\|?*, and no leading or trailing dot.
func ValidateName(name string) error {
	err := validation.Validate(name,
		validation.Required.Error("template name cannot be empty"),
		validation.RuneLength(1, maxNameLength).Error("template name is longer than 50 characters"),
		validation.Match(forbiddenNameChars).Error(`template name cannot contain any of <>:"/\|?*`),
		validation.By(func(any) error {
			if strings.HasPrefix(name, ".") || strings.HasSuffix(name, ".") {
				return validation.NewError("template_name_dot", "template name cannot start or end with a dot")
			}
			return nil
		}),
	)
	if err != nil {
		return apperr.Wrapf(err, apperr.InvalidInput, "invalid template name %q", name)
	}
	return nil
}
