package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// Define a custom registry
	Registry *prometheus.Registry

	PurgeFoundCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "site_purge_documents_found_total",
		Help: "The total number of documents listed for deletion",
	}, []string{"collection"})

	PurgeDeletedCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "site_purge_documents_deleted_total",
		Help: "The total number of documents deleted by committed batches",
	}, []string{"collection"})

	PurgeBatchCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "site_purge_batches_committed_total",
		Help: "The total number of committed delete batches",
	}, []string{"collection"})

	PurgeErrorTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "site_purge_errors_total",
		Help: "The total number of collection failures during a purge",
	}, []string{"collection", "op"})

	PurgeProgressGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "site_purge_progress",
		Help: "The progress of the purge of a collection, between 0 and 1",
	}, []string{"collection"})

	CollectionDocumentsGauge = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "site_purge_collection_documents",
		Help: "The number of documents currently stored in a collection",
	}, []string{"collection"})

	PurgeRunCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "site_purge_runs_total",
		Help: "The total number of purge runs by final status",
	}, []string{"status"})
)

func init() {
	Registry = prometheus.NewRegistry()
	Registry.MustRegister(PurgeFoundCounter)
	Registry.MustRegister(PurgeDeletedCounter)
	Registry.MustRegister(PurgeBatchCounter)
	Registry.MustRegister(PurgeErrorTotal)
	Registry.MustRegister(PurgeProgressGauge)
	Registry.MustRegister(CollectionDocumentsGauge)
	Registry.MustRegister(PurgeRunCounter)
}
