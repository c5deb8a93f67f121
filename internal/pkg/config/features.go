package config

const (
	// Expose the purge commands on the HTTP API
	ApiPurge = "api-purge"
	// Publish the document count of each collection
	CollectionStats = "stats"
)

// Checks if a feature is enabled from the list of available features.
// The default return value is false.
func (c *AppConfig) IsFeatureEnabled(feature string) bool {
	if enabled, found := c.FeaturesEnabled[feature]; found {
		return enabled
	}
	return false
}
