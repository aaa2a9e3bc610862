package observability

const (
	MHTTPRequests        MetricKey = "http_requests_total"
	MHTTPRequestDuration MetricKey = "http_request_duration_seconds"
	MOrdersPlaced        MetricKey = "orders_placed_total"
	MOrdersDispatched    MetricKey = "orders_dispatched_total"
	MDispatchConflicts   MetricKey = "order_dispatch_conflicts_total"
	MLowStockAlerts      MetricKey = "inventory_low_stock_alerts_total"
	MNotificationsSent   MetricKey = "notifications_sent_total"
)
