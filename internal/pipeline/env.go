package pipeline

import (
	"os"
	"strings"
)

const (
	envKey        = "SITEPIPE_ENV"
	productionVal = "production"
)

// GetIsProductionEnv reports whether SITEPIPE_ENV asks for a production
// build. The CLI folds this into Config.Production once at startup.
func GetIsProductionEnv() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv(envKey)), productionVal)
}
