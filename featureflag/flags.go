package featureflag

type Flag string

const (
	// Verifies octree aggregate counts after every mutation. Costly, meant
	// for debugging.
	FlagTreeValidation Flag = "TREE_VALIDATION"

	FlagDisableQueryMetrics  Flag = "DISABLE_QUERY_METRICS"
	FlagDisableSyncBroadcast Flag = "DISABLE_SYNC_BROADCAST"
)
