// Package metrics exposes the scheduler's get_stats()/get_channel_stats()
// surface as Prometheus gauges, collected on scrape rather than pushed on
// every mutation, so the hot path never pays for a metrics update.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/prxssh/playsetsched/internal/scheduler"
)

// StatsSource is the subset of *scheduler.Scheduler the collector reads on
// each scrape.
type StatsSource interface {
	GetStats() scheduler.Stats
	GetActiveChannelIDs(max int) []string
	GetChannelStats(id string) (scheduler.ChannelStats, error)
}

const namespace = "playsetsched"

// maxLabeledChannels caps the per-channel gauge cardinality; channels beyond
// this rank are still counted in the aggregate gauges, just not broken out
// by id.
const maxLabeledChannels = 64

// Collector implements prometheus.Collector, pulling a fresh snapshot from
// src every scrape.
type Collector struct {
	src StatsSource

	epochID        *prometheus.Desc
	totalAvailable *prometheus.Desc
	channelCount   *prometheus.Desc
	naeCount       *prometheus.Desc
	pickMode       *prometheus.Desc
	exposureMode   *prometheus.Desc
	channelTotal   *prometheus.Desc
	channelCached  *prometheus.Desc
}

// New builds a collector reading from src. Register it with a
// *prometheus.Registry via MustRegister; it holds no internal state between
// scrapes.
func New(src StatsSource) *Collector {
	return &Collector{
		src: src,
		epochID: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "epoch_id"),
			"Current playset execution epoch.", nil, nil),
		totalAvailable: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "total_available"),
			"Sum of every channel's locally-available index size.", nil, nil),
		channelCount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "channel_count"),
			"Number of channels in the active playset.", nil, nil),
		naeCount: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "nae_pool_size"),
			"Number of entries currently pending in the new-artwork-event pool.", nil, nil),
		pickMode: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "pick_mode"),
			"Active pick mode (0=recency, 1=random).", nil, nil),
		exposureMode: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "exposure_mode"),
			"Active exposure mode (0=equal, 1=manual, 2=proportional).", nil, nil),
		channelTotal: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "channel", "catalogue_size"),
			"Total catalogue entries known for the channel.", []string{"channel_id"}, nil),
		channelCached: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "channel", "available_size"),
			"Locally-available entries for the channel.", []string{"channel_id"}, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.epochID
	ch <- c.totalAvailable
	ch <- c.channelCount
	ch <- c.naeCount
	ch <- c.pickMode
	ch <- c.exposureMode
	ch <- c.channelTotal
	ch <- c.channelCached
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.src.GetStats()

	ch <- prometheus.MustNewConstMetric(c.epochID, prometheus.GaugeValue, float64(stats.EpochID))
	ch <- prometheus.MustNewConstMetric(c.totalAvailable, prometheus.GaugeValue, float64(stats.TotalAvailable))
	ch <- prometheus.MustNewConstMetric(c.channelCount, prometheus.GaugeValue, float64(stats.ChannelCount))
	ch <- prometheus.MustNewConstMetric(c.naeCount, prometheus.GaugeValue, float64(stats.NAECount))
	ch <- prometheus.MustNewConstMetric(c.pickMode, prometheus.GaugeValue, float64(stats.PickMode))
	ch <- prometheus.MustNewConstMetric(c.exposureMode, prometheus.GaugeValue, float64(stats.ExposureMode))

	for _, id := range c.src.GetActiveChannelIDs(maxLabeledChannels) {
		cs, err := c.src.GetChannelStats(id)
		if err != nil {
			continue
		}
		ch <- prometheus.MustNewConstMetric(c.channelTotal, prometheus.GaugeValue, float64(cs.Total), id)
		ch <- prometheus.MustNewConstMetric(c.channelCached, prometheus.GaugeValue, float64(cs.Cached), id)
	}
}
