// internal/schema/contract_test.go
package schema

import (
	"strings"
	"testing"

	"querygate/internal/domain"
)

func testSchema() *IntegrationSchema {
	return &IntegrationSchema{Arrays: map[string]ArraySchema{
		"warehouses": {Fields: []FieldSchema{
			{Name: "whs_Code", Type: "string", Nullable: false},
			{Name: "whs_Name", Type: "string", Nullable: true},
			{Name: "whs_Capacity", Type: "int", Nullable: false},
			{Name: "whs_Active", Type: "bool", Nullable: false},
			{Name: "whs_Updated", Type: "datetime", Nullable: true},
		}},
	}}
}

func row(pairs ...any) domain.Row {
	r := domain.Row{Values: map[string]any{}}
	for i := 0; i < len(pairs); i += 2 {
		col := pairs[i].(string)
		r.Columns = append(r.Columns, col)
		r.Values[col] = pairs[i+1]
	}
	return r
}

func TestValidateMappingAllArraysExist(t *testing.T) {
	v := NewContractValidator(testSchema())
	mapping := &MappingConfig{Routes: []RouteMapping{
		{Endpoint: "sync", Queries: []QueryMapping{
			{QueryName: "GetWarehouses", TargetArray: "warehouses"},
		}},
	}}
	if errs := v.ValidateMapping(mapping); len(errs) != 0 {
		t.Errorf("ValidateMapping() = %v; want no errors", errs)
	}
}

func TestValidateMappingMissingArray(t *testing.T) {
	v := NewContractValidator(testSchema())
	mapping := &MappingConfig{Routes: []RouteMapping{
		{Endpoint: "sync", Queries: []QueryMapping{
			{QueryName: "GetCustomers", TargetArray: "customers"},
		}},
	}}
	errs := v.ValidateMapping(mapping)
	if len(errs) != 1 {
		t.Fatalf("ValidateMapping() = %v; want exactly one error", errs)
	}
	if !strings.Contains(errs[0], "customers") || !strings.Contains(errs[0], "sync") {
		t.Errorf("error should name the route and array, got: %s", errs[0])
	}
}

func TestValidateRowValid(t *testing.T) {
	v := NewContractValidator(testSchema())
	errs := v.ValidateRow("warehouses", row(
		"whs_Code", "W01",
		"whs_Name", "Main",
		"whs_Capacity", int64(1200),
		"whs_Active", true,
		"whs_Updated", "2024-01-01T00:00:00Z",
	))
	if len(errs) != 0 {
		t.Errorf("ValidateRow() = %v; want no errors", errs)
	}
}

func TestValidateRowCollectsAllDefects(t *testing.T) {
	v := NewContractValidator(testSchema())
	// Missing whs_Code, extra field, and a null in a non-nullable field
	// must all be reported in one pass.
	errs := v.ValidateRow("warehouses", row(
		"whs_Name", "Main",
		"whs_Capacity", int64(10),
		"whs_Active", nil,
		"extra_field", "surprise",
	))
	if len(errs) != 3 {
		t.Fatalf("ValidateRow() = %v; want 3 errors", errs)
	}
	joined := strings.Join(errs, "\n")
	if !strings.Contains(joined, "whs_Code") {
		t.Error("missing required field whs_Code not reported")
	}
	if !strings.Contains(joined, "extra_field") {
		t.Error("undeclared field extra_field not reported")
	}
	if !strings.Contains(joined, "cannot be null") {
		t.Error("nullability violation not reported with 'cannot be null'")
	}
}

func TestValidateRowNullableFieldMayBeMissing(t *testing.T) {
	v := NewContractValidator(testSchema())
	errs := v.ValidateRow("warehouses", row(
		"whs_Code", "W01",
		"whs_Capacity", int64(10),
		"whs_Active", false,
	))
	if len(errs) != 0 {
		t.Errorf("ValidateRow() = %v; nullable fields may be absent", errs)
	}
}

func TestValidateRowUnknownArray(t *testing.T) {
	v := NewContractValidator(testSchema())
	errs := v.ValidateRow("ghosts", row("x", 1))
	if len(errs) != 1 || !strings.Contains(errs[0], "ghosts") {
		t.Errorf("ValidateRow() = %v; want single error naming the array", errs)
	}
}

func TestValidateRowTypeMismatch(t *testing.T) {
	v := NewContractValidator(testSchema())
	errs := v.ValidateRow("warehouses", row(
		"whs_Code", int64(42), // declared string
		"whs_Capacity", "lots", // declared int
		"whs_Active", true,
	))
	if len(errs) != 2 {
		t.Fatalf("ValidateRow() = %v; want 2 type errors", errs)
	}
}

func TestIsCompatibleType(t *testing.T) {
	testCases := []struct {
		name     string
		value    any
		declared string
		want     bool
	}{
		{"string ok", "x", "string", true},
		{"int64 as int", int64(3), "integer", true},
		{"float as int", 3.5, "int", false},
		{"float as number", 3.5, "decimal", true},
		{"int as number", int64(3), "number", true},
		{"bool ok", true, "boolean", true},
		{"iso string as datetime", "2024-01-01T00:00:00Z", "datetime", true},
		{"number as datetime", int64(5), "date", false},
		{"string as guid", "9f0c2a9e-1111-2222-3333-444455556666", "guid", true},
		{"unknown tag passes", 3.14, "money", true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isCompatibleType(tc.value, tc.declared); got != tc.want {
				t.Errorf("isCompatibleType(%v, %q) = %v; want %v", tc.value, tc.declared, got, tc.want)
			}
		})
	}
}
