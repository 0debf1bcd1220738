package kafka

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	producerPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "kafka_producer_messages_published_total",
			Help:      "Events successfully written to Kafka.",
		},
		[]string{"topic", "event_type"},
	)

	producerFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "kafka_producer_messages_failed_total",
			Help:      "Events that could not be written to Kafka.",
		},
		[]string{"topic", "event_type"},
	)
)
