package metricskey

import "github.com/effective-security/metrics"

// Perf
var (
	// PerfDeviceOperation is perf metric
	PerfDeviceOperation = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_device",
		Help:         "perf_device provides the sample metrics of secure element operations",
		RequiredTags: []string{"device", "command"},
	}

	// PerfTransportWake is perf metric
	PerfTransportWake = metrics.Describe{
		Type:         metrics.TypeSample,
		Name:         "perf_transport_wake",
		Help:         "perf_transport_wake provides the sample metrics of the wake sequence",
		RequiredTags: []string{"device"},
	}
)

// Metrics returns slice of metrics from this repo
var Metrics = []*metrics.Describe{
	&PerfDeviceOperation,
	&PerfTransportWake,
}
