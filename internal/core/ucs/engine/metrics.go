// Package engine 提供执行引擎的监控指标
package engine

import "github.com/prometheus/client_golang/prometheus"

// ============================================================================
//                          Prometheus 监控指标
// ============================================================================

var (
	// callsTotal 外部调用总数（按结果分类）
	callsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ucs",
			Subsystem: "engine",
			Name:      "calls_total",
			Help:      "Total number of external calls by result",
		},
		[]string{"result"}, // success, failed
	)

	// budgetConsumedTotal 累计消耗的计算预算
	budgetConsumedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ucs",
		Subsystem: "engine",
		Name:      "budget_consumed_total",
		Help:      "Total compute budget consumed across all external calls",
	})

	// storageReadsTotal 存储槽读取总数
	storageReadsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ucs",
		Subsystem: "engine",
		Name:      "storage_reads_total",
		Help:      "Total number of storage slot reads",
	})

	// storageWritesTotal 存储槽写入总数
	storageWritesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ucs",
		Subsystem: "engine",
		Name:      "storage_writes_total",
		Help:      "Total number of storage slot writes",
	})

	// executablesCreatedTotal 部署的可执行体总数
	executablesCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ucs",
		Subsystem: "engine",
		Name:      "executables_created_total",
		Help:      "Total number of executables deployed via Create",
	})
)

// ============================================================================
//                          指标注册
// ============================================================================

func init() {
	prometheus.MustRegister(
		callsTotal,
		budgetConsumedTotal,
		storageReadsTotal,
		storageWritesTotal,
		executablesCreatedTotal,
	)
}
