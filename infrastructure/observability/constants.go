package observability

// Metric name prefixes
const (
	MetricPrefix = "jackpot"
)

// Metric names
const (
	// Settlement metrics
	WagersSettledTotal     = MetricPrefix + ".wagers.settled_total"
	WagerPayoutTotal       = MetricPrefix + ".wagers.payout_total"
	SettlementDuration     = MetricPrefix + ".settlement.duration"
	SettlementRetriesTotal = MetricPrefix + ".settlement.retries_total"
	JackpotHitsTotal       = MetricPrefix + ".jackpot.hits_total"
	PoolAmount             = MetricPrefix + ".pool.amount"

	// Account metrics
	AllowanceClaimsTotal = MetricPrefix + ".allowance.claims_total"
	AccountsCreatedTotal = MetricPrefix + ".accounts.created_total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"

	// Database metrics
	DatabaseQueriesTotal  = MetricPrefix + ".database.queries_total"
	DatabaseQueryDuration = MetricPrefix + ".database.query_duration"
)

// Label keys
const (
	LabelBand       = "band"
	LabelMode       = "mode"
	LabelResult     = "result"
	LabelEventType  = "event_type"
	LabelRepository = "repository"
	LabelMethod     = "method"
)
