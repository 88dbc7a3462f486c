package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "peertrade_requests_created_total",
		Help: "Total number of requests successfully posted.",
	})

	RequestsExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "peertrade_requests_expired_total",
		Help: "Total number of requests lazily closed after their expire date.",
	})

	ResponsesCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "peertrade_responses_created_total",
		Help: "Total number of offers successfully created.",
	})

	TransactionsOpenedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "peertrade_transactions_opened_total",
		Help: "Total number of transactions opened after mutual acceptance.",
	})

	TransactionsCanceledTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "peertrade_transactions_canceled_total",
		Help: "Total number of transactions canceled before completion.",
	})

	ExchangesRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "peertrade_exchanges_recorded_total",
		Help: "Total number of exchange handoffs recorded via code or override.",
	})

	ReturnsRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "peertrade_returns_recorded_total",
		Help: "Total number of rental returns recorded via code or override.",
	})

	PaymentsCapturedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "peertrade_payments_captured_total",
		Help: "Total number of payment captures that succeeded.",
	})

	OperationErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "peertrade_operation_errors_total",
		Help: "Total number of errors encountered during specific operations.",
	},
		[]string{"operation"},
	)

	RequestCacheItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "peertrade_request_cache_items",
		Help: "Current number of items in the open-request cache.",
	})
)
