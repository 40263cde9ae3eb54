package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cricledger/auction-backend/internal/domain"
)

// Recorder captures auction engine metrics. A nil Recorder is valid and
// records nothing, so wiring it up stays optional in tests.
type Recorder struct {
	operations   *prometheus.CounterVec
	bidsRejected *prometheus.CounterVec
	active       prometheus.Gauge
}

// NewRecorder registers the engine's instruments on the given registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_operations_total",
			Help: "Engine lifecycle operations by name and outcome kind.",
		}, []string{"op", "outcome"}),
		bidsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "auction_bids_rejected_total",
			Help: "Rejected bids by rejection reason.",
		}, []string{"reason"}),
		active: factory.NewGauge(prometheus.GaugeOpts{
			Name: "auctions_active",
			Help: "Auctions that have started and are not yet finalized.",
		}),
	}
}

// OperationHandled counts one engine operation with its outcome kind.
func (r *Recorder) OperationHandled(op string, err error) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(op, domain.ErrorKind(err)).Inc()
}

// BidRejected counts a rejected bid by reason.
func (r *Recorder) BidRejected(err error) {
	if r == nil {
		return
	}
	r.bidsRejected.WithLabelValues(domain.ErrorKind(err)).Inc()
}

// AuctionStarted bumps the active-auction gauge.
func (r *Recorder) AuctionStarted() {
	if r == nil {
		return
	}
	r.active.Inc()
}

// AuctionFinalized drops the active-auction gauge.
func (r *Recorder) AuctionFinalized() {
	if r == nil {
		return
	}
	r.active.Dec()
}
