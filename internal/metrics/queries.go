package metrics

import "fmt"

// PromQL query templates for traffic volume.
//
// These queries expect a monotonically increasing bytes counter, such as
// node_exporter's node_network_receive_bytes_total on the mirror target, or
// aws_ec2_network_in_sum from the CloudWatch exporter. They work against
// Prometheus, Thanos and Cortex alike.

// queryTrafficPercentile returns PromQL for the aggregate traffic at a given
// percentile over the window, in Gbps.
func queryTrafficPercentile(counter string, percentile float64, window, step string) string {
	return fmt.Sprintf(`quantile_over_time(%g,
  (
    sum(rate(%s[5m]))
  )[%s:%s]
) * 8 / 1e9`, percentile, counter, window, step)
}

// queryTrafficNow returns PromQL for the current aggregate traffic in Gbps.
func queryTrafficNow(counter string) string {
	return fmt.Sprintf(`sum(rate(%s[5m])) * 8 / 1e9`, counter)
}
