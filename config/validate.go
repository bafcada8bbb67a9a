// config/validate.go
package config

import (
	"fmt"

	"querygate/internal/schema"
)

// ValidateStartup fails fast on configuration that cannot serve requests
// safely. Any schema mismatch here is fatal to process start; the same
// class of error at request time aborts only that request.
func ValidateStartup(settings *Settings, snapshot *Snapshot) error {
	var errs []string

	for i := range snapshot.Queries.Queries {
		if err := snapshot.Queries.Queries[i].Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}

	validator := schema.NewContractValidator(snapshot.Integration)
	errs = append(errs, validator.ValidateMapping(snapshot.Mapping)...)

	for _, route := range snapshot.Mapping.Routes {
		for _, qm := range route.Queries {
			if snapshot.Queries.Find(qm.QueryName) == nil {
				// Non-fatal at request time (the sub-query is skipped),
				// but worth a loud warning at startup.
				customLog.Warnf("Validate: route '%s' references unknown query '%s'",
					route.Endpoint, qm.QueryName)
			}
		}
	}

	if !IsLoopbackListen(settings.Service.ListenAddr) && len(settings.Security.IPAllowList) == 0 {
		errs = append(errs, "IP allow-list cannot be empty when binding to a non-loopback address")
	}

	if settings.Security.RequireAPIKey && snapshot.APIKey == "" {
		errs = append(errs, "API key is required when requireApiKey is enabled")
	}

	if settings.Database.DSN == "" {
		errs = append(errs, "database DSN is required")
	}

	if len(errs) > 0 {
		for _, e := range errs {
			customLog.Errorf("Validate: %s", e)
		}
		return fmt.Errorf("startup validation failed with %d error(s)", len(errs))
	}

	customLog.Println("Startup validation passed")
	return nil
}
