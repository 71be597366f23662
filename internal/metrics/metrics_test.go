package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/prxssh/playsetsched/internal/errs"
	"github.com/prxssh/playsetsched/internal/picker"
	"github.com/prxssh/playsetsched/internal/scheduler"
	"github.com/prxssh/playsetsched/internal/swrr"
)

type fakeSource struct {
	stats    scheduler.Stats
	channels map[string]scheduler.ChannelStats
	// activeIDs overrides the ids Collect iterates, independent of
	// `channels`, so a test can name an id with no matching entry.
	activeIDs []string
}

func (f *fakeSource) GetStats() scheduler.Stats { return f.stats }

func (f *fakeSource) GetActiveChannelIDs(max int) []string {
	if f.activeIDs != nil {
		return f.activeIDs
	}
	ids := make([]string, 0, len(f.channels))
	for id := range f.channels {
		ids = append(ids, id)
		if max > 0 && len(ids) >= max {
			break
		}
	}
	return ids
}

func (f *fakeSource) GetChannelStats(id string) (scheduler.ChannelStats, error) {
	cs, ok := f.channels[id]
	if !ok {
		return scheduler.ChannelStats{}, errs.New(errs.KindNotFound, "fakeSource.GetChannelStats")
	}
	return cs, nil
}

func gatherMetricNames(t *testing.T, reg *prometheus.Registry) map[string]*dto.MetricFamily {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	out := make(map[string]*dto.MetricFamily, len(families))
	for _, f := range families {
		out[f.GetName()] = f
	}
	return out
}

func TestCollector_ReportsScalarStats(t *testing.T) {
	src := &fakeSource{
		stats: scheduler.Stats{
			EpochID:        3,
			TotalAvailable: 10,
			PickMode:       picker.ModeRandom,
			ExposureMode:   swrr.ExposureProportional,
			ChannelCount:   2,
			NAECount:       1,
		},
		channels: map[string]scheduler.ChannelStats{
			"sunsets": {Total: 40, Cached: 10},
		},
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(New(src))

	families := gatherMetricNames(t, reg)
	want := []string{
		"playsetsched_epoch_id",
		"playsetsched_total_available",
		"playsetsched_channel_count",
		"playsetsched_nae_pool_size",
		"playsetsched_pick_mode",
		"playsetsched_exposure_mode",
		"playsetsched_channel_catalogue_size",
		"playsetsched_channel_available_size",
	}
	for _, name := range want {
		if _, ok := families[name]; !ok {
			t.Errorf("missing metric family %q", name)
		}
	}

	epoch := families["playsetsched_epoch_id"].GetMetric()[0].GetGauge().GetValue()
	if epoch != 3 {
		t.Errorf("epoch_id = %v, want 3", epoch)
	}

	catalogue := families["playsetsched_channel_catalogue_size"].GetMetric()[0]
	if catalogue.GetGauge().GetValue() != 40 {
		t.Errorf("catalogue_size = %v, want 40", catalogue.GetGauge().GetValue())
	}
	if len(catalogue.GetLabel()) != 1 || catalogue.GetLabel()[0].GetValue() != "sunsets" {
		t.Errorf("catalogue_size labels = %+v, want channel_id=sunsets", catalogue.GetLabel())
	}
}

func TestCollector_SkipsChannelsThatErrorOnLookup(t *testing.T) {
	src := &fakeSource{
		stats:     scheduler.Stats{},
		channels:  map[string]scheduler.ChannelStats{"real": {Total: 5, Cached: 5}},
		activeIDs: []string{"real", "ghost"}, // "ghost" has no matching channels entry
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(New(src))

	families := gatherMetricNames(t, reg)
	metrics := families["playsetsched_channel_catalogue_size"].GetMetric()
	if len(metrics) != 1 {
		t.Fatalf("got %d catalogue_size series, want exactly 1 (ghost should be skipped)", len(metrics))
	}
	if metrics[0].GetLabel()[0].GetValue() != "real" {
		t.Fatalf("unexpected channel label: %+v", metrics[0].GetLabel())
	}
}
