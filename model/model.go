// Package model holds the inputs handed to the emitter by upstream mapping code:
// the per-entity data model and the per-run mapping context.
package model

import (
	"fmt"
	"strings"

	"github.com/cpcf/weftgen/lang"
)

// Reserved data model keys read by path resolution.
const (
	FieldClassName = "className"
	FieldPackage   = "package"
)

// DataModel is the template input for one entity. Apart from the reserved
// keys it is opaque to the emitter.
type DataModel map[string]any

// ClassName returns the class name field, or "" when it is absent.
func (dm DataModel) ClassName() string {
	return dm.str(FieldClassName)
}

// Package returns the package field, or "" when it is absent.
func (dm DataModel) Package() string {
	return dm.str(FieldPackage)
}

// HasPackage reports whether the package field is present and not blank.
func (dm DataModel) HasPackage() bool {
	return strings.TrimSpace(dm.Package()) != ""
}

func (dm DataModel) str(key string) string {
	v, ok := dm[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// MappingContext is the per-run configuration supplied by the driver.
type MappingContext struct {
	GeneratedLanguage lang.Language
}

// NewMappingContext returns a context targeting l.
func NewMappingContext(l lang.Language) MappingContext {
	return MappingContext{GeneratedLanguage: l}
}
