package steps

import (
	"errors"
	"fmt"

	validator "github.com/go-playground/validator/v10"
)

// ErrInvalidSpec is returned before any browser interaction when a
// parameter bag fails validation.
var ErrInvalidSpec = errors.New("invalid step parameters")

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("epinio_source", func(fl validator.FieldLevel) bool {
		switch SourceType(fl.Field().String()) {
		case SourceArchive, SourceContainer, SourceGitURL, SourceGitHub, SourceGitLab, SourceFolder:
			return true
		}
		return false
	})
	_ = v.RegisterValidation("epinio_export", func(fl validator.FieldLevel) bool {
		switch ExportType(fl.Field().String()) {
		case ExportManifest, ExportChartAndImages:
			return true
		}
		return false
	})
	v.RegisterStructValidation(appSpecRules, AppSpec{})
	return v
}

// appSpecRules holds the cross-field requirements of the create wizard.
func appSpecRules(sl validator.StructLevel) {
	s := sl.Current().Interface().(AppSpec)
	if s.Name == "" && s.ManifestName == "" {
		sl.ReportError(s.Name, "Name", "Name", "required_without", "ManifestName")
	}
	switch s.SourceType {
	case SourceArchive, SourceContainer, SourceGitURL, SourceFolder:
		if s.Archive == "" {
			sl.ReportError(s.Archive, "Archive", "Archive", "required_for_source", string(s.SourceType))
		}
	case SourceGitHub, SourceGitLab:
		for field, value := range map[string]string{
			"GitUsername": s.GitUsername,
			"GitRepo":     s.GitRepo,
			"GitBranch":   s.GitBranch,
			"GitCommit":   s.GitCommit,
		} {
			if value == "" {
				sl.ReportError(value, field, field, "required_for_source", string(s.SourceType))
			}
		}
	}
}

// check validates v, or only the named fields when given.
func (e *Epinio) check(v any, fields ...string) error {
	var err error
	if len(fields) > 0 {
		err = e.validate.StructPartial(v, fields...)
	} else {
		err = e.validate.Struct(v)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}
	return nil
}

func (e *Epinio) checkVar(value any, tag, name string) error {
	if err := e.validate.Var(value, tag); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidSpec, name, err)
	}
	return nil
}
