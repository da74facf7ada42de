package engine

import (
	"github.com/liamcoop/quorum/body"
	"github.com/liamcoop/quorum/internal/logger"
)

// ResolveThreshold turns a declarative threshold spec into a concrete
// number for the metric under evaluation. It is total: any spec
// resolves to some number.
//
//   - absolute: value + offset.
//   - percentage: value + offset. No normalization happens here; the
//     compared quantity is assumed to already be on a percentage scale.
//     Documented limitation.
//   - fractionOfTotal: value * Total(metric override or metricID) +
//     offset. Value is conventionally in [0,1] but not enforced.
//
// Unknown kinds are reported and resolve with absolute semantics.
func ResolveThreshold(spec body.ThresholdSpec, metricID string, b *body.GoverningBody) float64 {
	switch spec.Kind {
	case body.ThresholdAbsolute, body.ThresholdPercentage:
		return spec.Value + spec.Offset
	case body.ThresholdFractionOfTotal:
		metric := metricID
		if spec.Metric != "" {
			metric = spec.Metric
		}
		return spec.Value*b.Total(metric) + spec.Offset
	default:
		logger.UnknownThresholdKinds.Add(1)
		logger.Warn("unknown threshold kind, using absolute semantics", "kind", spec.Kind)
		return spec.Value + spec.Offset
	}
}
