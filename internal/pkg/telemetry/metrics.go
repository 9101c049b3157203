package telemetry

// Span and attribute names used for instrumentation.
const (
	SpanEstimateInline = "demand.estimate_inline"
	SpanEstimateStudy  = "demand.estimate_study"
	SpanLoadStudy      = "demand.load_study"
	SpanSaveEstimate   = "demand.save_estimate"

	AttrStudyID      = "study.id"
	AttrFacilities   = "model.facilities"
	AttrPopulations  = "model.populations"
	AttrCompetitors  = "model.competitors"
	AttrMetric       = "model.metric"
	AttrZeroDistance = "model.zero_distance"
	AttrTotalDemand  = "model.total_demand"
	AttrCacheHit     = "cache.hit"

	AttrHTTPMethod = "http.method"
	AttrHTTPPath   = "http.target"
	AttrHTTPStatus = "http.status_code"
	AttrRequestID  = "http.request_id"
)
