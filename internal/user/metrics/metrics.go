package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for user-management operations.
type Metrics struct {
	UsersRegistered prometheus.Counter
	Logins          prometheus.Counter
	AuthFailures    prometheus.Counter
	ProfileUpdates  prometheus.Counter
	ImageUploads    prometheus.Counter
	UploadFailures  prometheus.Counter
	AdminActions    *prometheus.CounterVec
	LoginDurationMs prometheus.Histogram
}

// New registers and returns the collectors.
func New() *Metrics {
	return &Metrics{
		UsersRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "userhub_users_registered_total",
			Help: "Total number of users registered",
		}),
		Logins: promauto.NewCounter(prometheus.CounterOpts{
			Name: "userhub_logins_total",
			Help: "Total number of successful logins",
		}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "userhub_auth_failures_total",
			Help: "Total number of failed authentication attempts",
		}),
		ProfileUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "userhub_profile_updates_total",
			Help: "Total number of profile updates",
		}),
		ImageUploads: promauto.NewCounter(prometheus.CounterOpts{
			Name: "userhub_image_uploads_total",
			Help: "Total number of profile image uploads",
		}),
		UploadFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "userhub_upload_failures_total",
			Help: "Total number of failed profile image uploads",
		}),
		AdminActions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "userhub_admin_actions_total",
			Help: "Total number of admin actions by operation",
		}, []string{"operation"}),
		LoginDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "userhub_login_duration_ms",
			Help:    "Duration of login operations in milliseconds",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000},
		}),
	}
}

// NewNop returns collectors that are not registered with the default registry,
// for tests that construct multiple services in one process.
func NewNop() *Metrics {
	return &Metrics{
		UsersRegistered: prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_users_registered_total"}),
		Logins:          prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_logins_total"}),
		AuthFailures:    prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_auth_failures_total"}),
		ProfileUpdates:  prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_profile_updates_total"}),
		ImageUploads:    prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_image_uploads_total"}),
		UploadFailures:  prometheus.NewCounter(prometheus.CounterOpts{Name: "nop_upload_failures_total"}),
		AdminActions:    prometheus.NewCounterVec(prometheus.CounterOpts{Name: "nop_admin_actions_total"}, []string{"operation"}),
		LoginDurationMs: prometheus.NewHistogram(prometheus.HistogramOpts{Name: "nop_login_duration_ms"}),
	}
}
