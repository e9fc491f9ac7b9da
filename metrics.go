package authcore

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

// metrics holds the service's OpenTelemetry counters. With no meter
// configured the counters come from a no-op provider and cost nothing.
type metrics struct {
	loginSuccess    metric.Int64Counter
	loginFailure    metric.Int64Counter
	refreshSuccess  metric.Int64Counter
	refreshRejected metric.Int64Counter
	accessVerified  metric.Int64Counter
	accessRejected  metric.Int64Counter
	sessionCreated  metric.Int64Counter
	sessionRotated  metric.Int64Counter
	sessionDeleted  metric.Int64Counter
}

func newMetrics(meter metric.Meter) (*metrics, error) {
	m := &metrics{}

	var err error
	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.loginSuccess, "authcore.login.success", "Successful logins"},
		{&m.loginFailure, "authcore.login.failure", "Rejected logins"},
		{&m.refreshSuccess, "authcore.refresh.success", "Successful token refreshes"},
		{&m.refreshRejected, "authcore.refresh.rejected", "Rejected token refreshes, including replayed refresh tokens"},
		{&m.accessVerified, "authcore.access.verified", "Access tokens accepted"},
		{&m.accessRejected, "authcore.access.rejected", "Access tokens rejected"},
		{&m.sessionCreated, "authcore.session.created", "Sessions created at login"},
		{&m.sessionRotated, "authcore.session.rotated", "Session identities rotated on refresh"},
		{&m.sessionDeleted, "authcore.session.deleted", "Sessions deleted on logout"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *metrics) inc(ctx context.Context, c metric.Int64Counter) {
	if m == nil || c == nil {
		return
	}
	c.Add(ctx, 1)
}
