package cmd

import (
	"expvar"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"
)

// monitor publishes fit progress over HTTP via the expvar package, so
// a long-running chain can be watched with nothing but curl.
type monitor struct {
	info    *expvar.Map
	stopped chan struct{}
	server  *http.Server

	Model    *expvar.String
	Obs      *expvar.Int
	Preds    *expvar.Int
	Samples  *expvar.Int
	BurnIn   *expvar.Int
	Thinning *expvar.Int

	Kept        *expvar.Int
	TotalSweeps *expvar.Int
	RunTime     *expvar.Float

	LastTau2    *expvar.Float
	LastSigma2  *expvar.Float
	SplitTau2   *expvar.Float
	SplitSigma2 *expvar.Float
}

// Start begins the monitor
func (m *monitor) Start(addr string) error {
	if m.info != nil {
		return errors.Errorf("BUG: You may only start the process monitor once")
	}

	m.info = expvar.NewMap("fastbayes-progress")
	m.stopped = make(chan struct{})
	m.server = &http.Server{
		Addr: addr,
	}

	// Help the user and redirect to the only thing currently available:
	// the handler from the expvar package
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/debug/vars", http.StatusTemporaryRedirect)
	})

	m.Model = expvar.NewString("Model")
	m.Obs = expvar.NewInt("Observations")
	m.Preds = expvar.NewInt("Predictors")
	m.Samples = expvar.NewInt("Samples")
	m.BurnIn = expvar.NewInt("Burn-In")
	m.Thinning = expvar.NewInt("Thinning")

	m.Kept = expvar.NewInt("Kept-Samples")
	m.TotalSweeps = expvar.NewInt("Total-Sweeps")
	m.RunTime = expvar.NewFloat("Run-Time")

	m.LastTau2 = expvar.NewFloat("Last-Tau2")
	m.LastSigma2 = expvar.NewFloat("Last-Sigma2")
	m.SplitTau2 = expvar.NewFloat("Split-Tau2")
	m.SplitSigma2 = expvar.NewFloat("Split-Sigma2")

	// Actual server that will close the stopped channel on exit
	started := make(chan struct{})
	go func() {
		defer close(m.stopped)
		fmt.Fprintf(os.Stderr, "HTTP now available at %v (see debug/vars/)\n", m.server.Addr)
		close(started)
		m.server.ListenAndServe()
	}()

	<-started
	return nil
}

func (m *monitor) Stop() {
	if m.info == nil {
		return
	}

	m.server.Close()

	select {
	case <-m.stopped:
		fmt.Fprintf(os.Stderr, "HTTP Info Stopped\n")
	case <-time.After(2 * time.Second):
		fmt.Fprintf(os.Stderr, "HTTP would NOT stop: just continuing on\n")
	}
}
