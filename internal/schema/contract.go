// internal/schema/contract.go
package schema

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"querygate/internal/domain"
	"querygate/internal/logger"
)

var customLog = logger.NewLogger()

// ContractValidator checks mappings and result rows against the
// integration schema. All defects for a subject are collected, not
// short-circuited, so callers see the complete list.
type ContractValidator struct {
	schema *IntegrationSchema
}

// NewContractValidator creates a validator over the given schema.
func NewContractValidator(schema *IntegrationSchema) *ContractValidator {
	return &ContractValidator{schema: schema}
}

// ValidateMapping verifies that every target array referenced by the
// mapping exists in the integration schema.
func (v *ContractValidator) ValidateMapping(mapping *MappingConfig) []string {
	var errs []string

	for _, route := range mapping.Routes {
		for _, qm := range route.Queries {
			if _, ok := v.schema.Arrays[qm.TargetArray]; !ok {
				errs = append(errs, fmt.Sprintf(
					"route '%s' maps to undefined array '%s' in the integration schema",
					route.Endpoint, qm.TargetArray))
			}
		}
	}

	if len(errs) > 0 {
		customLog.Warnf("Contract: mapping validation failed with %d errors", len(errs))
	}
	return errs
}

// ValidateRow checks a single row against the declared fields of a target
// array: unexpected fields, missing non-nullable fields, nulls in
// non-nullable fields, and coarse type mismatches.
func (v *ContractValidator) ValidateRow(targetArray string, row domain.Row) []string {
	var errs []string

	arraySchema, ok := v.schema.Arrays[targetArray]
	if !ok {
		return []string{fmt.Sprintf("array '%s' not defined in schema", targetArray)}
	}

	declared := make(map[string]FieldSchema, len(arraySchema.Fields))
	for _, f := range arraySchema.Fields {
		declared[f.Name] = f
	}

	for _, col := range row.Columns {
		if _, ok := declared[col]; !ok {
			errs = append(errs, fmt.Sprintf(
				"field '%s' not defined in schema for array '%s'", col, targetArray))
		}
	}

	for _, field := range arraySchema.Fields {
		value, present := row.Get(field.Name)
		if !present {
			if !field.Nullable {
				errs = append(errs, fmt.Sprintf(
					"required field '%s' missing in array '%s'", field.Name, targetArray))
			}
			continue
		}

		if value == nil {
			if !field.Nullable {
				errs = append(errs, fmt.Sprintf(
					"field '%s' in array '%s' cannot be null", field.Name, targetArray))
			}
			continue
		}

		if !isCompatibleType(value, field.Type) {
			errs = append(errs, fmt.Sprintf(
				"field '%s' in array '%s' has incompatible type: expected %s, got %T",
				field.Name, targetArray, field.Type, value))
		}
	}

	return errs
}

// isCompatibleType performs a coarse runtime type check against a declared
// type tag. Unknown tags pass permissively.
func isCompatibleType(value any, declaredType string) bool {
	switch strings.ToLower(declaredType) {
	case "string":
		_, ok := value.(string)
		return ok
	case "int", "integer":
		switch v := value.(type) {
		case int, int32, int64:
			return true
		case json.Number:
			_, err := v.Int64()
			return err == nil
		default:
			return false
		}
	case "decimal", "number":
		switch value.(type) {
		case int, int32, int64, float32, float64, json.Number:
			return true
		default:
			return false
		}
	case "bool", "boolean":
		_, ok := value.(bool)
		return ok
	case "datetime", "date":
		// Timestamps are normalized to ISO-8601 strings by the executor.
		switch value.(type) {
		case string, time.Time:
			return true
		default:
			return false
		}
	case "guid":
		_, ok := value.(string)
		return ok
	default:
		return true
	}
}
