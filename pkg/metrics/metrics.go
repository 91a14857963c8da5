package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "linglong", Name: "login_attempts_total", Help: "Number of login attempts by result (success, failure, locked)."},
		[]string{"result"},
	)
	AccountLockouts = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "linglong", Name: "account_lockouts_total", Help: "Number of times an account entered the locked state."},
	)
	SiteBuilds = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "linglong", Name: "site_builds_total", Help: "Number of static site rebuilds by result (success, failure, timeout, skipped)."},
		[]string{"result"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "linglong", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "linglong", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(LoginAttempts)
	reg.MustRegister(AccountLockouts)
	reg.MustRegister(SiteBuilds)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
