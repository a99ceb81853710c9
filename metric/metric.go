// Package metric publishes expvar counters per plugin type.
package metric

import (
	"expvar"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"time"
)

const pluginsLabel = "lv2.plugins"

const (
	// CycleCounter measures number of processing cycles.
	CycleCounter = "Cycles"
	// FrameCounter measures number of processed frames.
	FrameCounter = "Frames"
	// EventCounter measures number of control events delivered to plugins.
	EventCounter = "Events"
	// LatencyCounter measures latency between processing calls.
	LatencyCounter = "Latency"
	// DurationCounter counts what's the duration of processed signal.
	DurationCounter = "Duration"
	// InstanceCounter counts number of metered instances.
	InstanceCounter = "Instances"
)

var (
	plugins = metrics{
		m: make(map[string]metric),
	}

	counters = []string{
		CycleCounter,
		FrameCounter,
		EventCounter,
		LatencyCounter,
		DurationCounter,
		InstanceCounter,
	}
)

// Get metrics values for provided plugin type.
func Get(plugin interface{}) map[string]string {
	return getCounters(getType(plugin))
}

// GetAll returns counters for all measured plugins.
func GetAll() map[string]map[string]string {
	m := make(map[string]map[string]string)
	plugins.Lock()
	defer plugins.Unlock()
	for plugin := range plugins.m {
		m[plugin] = getCounters(plugin)
	}
	return m
}

func getCounters(pluginType string) map[string]string {
	m := make(map[string]string)
	for _, counter := range counters {
		v := expvar.Get(key(pluginType, counter))
		if v != nil {
			m[counter] = v.String()
		}
	}
	return m
}

// ResetFunc returns new Measure closure. This closure is needed to postpone metrics
// capture until plugin is actually running.
type ResetFunc func() MeasureFunc

// MeasureFunc captures metrics when cycle is processed.
type MeasureFunc func(frames, events int64)

// Meter creates new meter closure to capture plugin counters.
func Meter(plugin interface{}, sampleRate float64) ResetFunc {
	t := getType(plugin)
	metric := plugins.get(t)
	metric.instances.Add(1)
	return func() MeasureFunc {
		calledAt := time.Now()
		var (
			cycleFrames   int64
			cycleDuration time.Duration
		)
		return func(frames, events int64) {
			metric.latency.set(time.Since(calledAt))
			metric.cycles.Add(1)
			metric.frames.Add(frames)
			metric.events.Add(events)
			// recalculate cycle duration only when cycle size has changed
			if cycleFrames != frames {
				cycleFrames = frames
				cycleDuration = DurationOf(sampleRate, frames)
			}
			metric.duration.add(cycleDuration)
			calledAt = time.Now()
		}
	}
}

// DurationOf returns duration of frames at provided sample rate.
func DurationOf(sampleRate float64, frames int64) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(frames) / sampleRate * float64(time.Second))
}

type metrics struct {
	sync.Mutex
	m map[string]metric
}

func (m *metrics) get(pluginType string) metric {
	m.Lock()
	defer m.Unlock()
	if metric, ok := m.m[pluginType]; ok {
		// return existing metric if available
		return metric
	}
	// create new metric
	metric := newMetric(pluginType)
	m.m[pluginType] = metric
	return metric
}

type metric struct {
	key       string
	instances *expvar.Int
	cycles    *expvar.Int
	frames    *expvar.Int
	events    *expvar.Int
	latency   *duration
	duration  *duration
}

func newMetric(pluginType string) metric {
	m := metric{
		key:       pluginType,
		instances: expvar.NewInt(key(pluginType, InstanceCounter)),
		cycles:    expvar.NewInt(key(pluginType, CycleCounter)),
		frames:    expvar.NewInt(key(pluginType, FrameCounter)),
		events:    expvar.NewInt(key(pluginType, EventCounter)),
		latency:   &duration{},
		duration:  &duration{},
	}
	expvar.Publish(key(pluginType, LatencyCounter), m.latency)
	expvar.Publish(key(pluginType, DurationCounter), m.duration)
	return m
}

func key(pluginType, counter string) string {
	return fmt.Sprintf("%s.%s.%s", pluginsLabel, pluginType, counter)
}

func getType(plugin interface{}) string {
	rv := reflect.ValueOf(plugin)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		rv = rv.Elem()
	}
	return rv.Type().String()
}

// duration allows to format time.Duration metric values.
type duration struct {
	d int64
}

func (v *duration) String() string {
	return fmt.Sprintf("%q", time.Duration(atomic.LoadInt64(&v.d)))
}

func (v *duration) add(delta time.Duration) {
	atomic.AddInt64(&v.d, int64(delta))
}

func (v *duration) set(value time.Duration) {
	atomic.StoreInt64(&v.d, int64(value))
}
