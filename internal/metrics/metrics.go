package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuthFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capsportal_auth_failures_total",
		Help: "Bearer authentication failures by reason (missing, invalid).",
	}, []string{"reason"})

	AdminActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "capsportal_admin_actions_total",
		Help: "Privileged operations performed by admins, by action.",
	}, []string{"action"})

	AdminForbiddenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capsportal_admin_forbidden_total",
		Help: "Authenticated requests rejected by the admin gate.",
	})

	InvitationsClearedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "capsportal_invitations_cleared_total",
		Help: "Invitation rows removed by batch clears.",
	})
)
