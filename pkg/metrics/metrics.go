//
// Copyright (c) 2021 The redant Authors
//
// This file is licensed to you under your choice of the GNU Lesser
// General Public License, version 3 or any later version (LGPLv3 or
// later), or the GNU General Public License, version 2 (GPLv2), in all
// cases as published by the Free Software Foundation.
//

package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gluster/redant/brickdata"
	rex "github.com/gluster/redant/pkg/remoteexec"
)

const (
	namespace = "redant"
)

var (
	// CommandsTotal counts the administrative commands sent to the
	// cluster by operation and outcome.
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Number of gluster commands run, by operation and result.",
		},
		[]string{"op", "result"},
	)

	up = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "up"),
		"Was the last query of the brick store successful.",
		nil, nil,
	)
	volumeCount = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "volume_count"),
		"Number of volumes with bricks recorded.",
		nil, nil,
	)
	brickCount = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "brick_count"),
		"Number of bricks recorded per volume and server.",
		[]string{"volume", "server"}, nil,
	)
	cleanDirCount = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "", "clean_dir_count"),
		"Number of brick directories waiting to be cleaned per server.",
		[]string{"server"}, nil,
	)
)

// CommandDone accounts for one command.
func CommandDone(op string, r *rex.Result, err error) {
	var result string
	switch {
	case err != nil:
		result = "error"
	case r.Ok():
		result = "success"
	default:
		result = "failed"
	}
	CommandsTotal.WithLabelValues(op, result).Inc()
}

type Metrics struct {
	store brickdata.Store
}

func NewMetrics(store brickdata.Store) *Metrics {
	return &Metrics{store: store}
}

// Describe all the metrics exported. It implements prometheus.Collector.
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	ch <- up
	ch <- volumeCount
	ch <- brickCount
	ch <- cleanDirCount
}

// Collect metrics from the brick store
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	volumes, err := m.store.Volumes()
	if err != nil {
		ch <- prometheus.MustNewConstMetric(up, prometheus.GaugeValue, 0.0)
		return
	}

	bricks := make(map[string]brickdata.ServerBricks, len(volumes))
	for _, volume := range volumes {
		b, err := m.store.Bricks(volume)
		if err != nil {
			ch <- prometheus.MustNewConstMetric(up, prometheus.GaugeValue, 0.0)
			return
		}
		bricks[volume] = b
	}
	dirs, err := m.store.CleanDirs()
	if err != nil {
		ch <- prometheus.MustNewConstMetric(up, prometheus.GaugeValue, 0.0)
		return
	}

	ch <- prometheus.MustNewConstMetric(up, prometheus.GaugeValue, 1.0)
	ch <- prometheus.MustNewConstMetric(
		volumeCount, prometheus.GaugeValue, float64(len(volumes)),
	)
	for volume, servers := range bricks {
		for server, paths := range servers {
			ch <- prometheus.MustNewConstMetric(
				brickCount, prometheus.GaugeValue, float64(len(paths)), volume, server,
			)
		}
	}
	for server, paths := range dirs {
		ch <- prometheus.MustNewConstMetric(
			cleanDirCount, prometheus.GaugeValue, float64(len(paths)), server,
		)
	}
}

// NewMetricsHandler returns a handler exposing the store metrics and
// the command counters on a registry of its own.
func NewMetricsHandler(store brickdata.Store) http.HandlerFunc {
	registry := prometheus.NewRegistry()
	registry.MustRegister(NewMetrics(store))
	registry.MustRegister(CommandsTotal)

	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r)
	})
}
