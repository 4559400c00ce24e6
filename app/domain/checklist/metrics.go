package checklist

import (
	"fmt"
	"strings"
)

type Metric string

const (
	MetricExactMatch Metric = "exact_match"
	MetricContains   Metric = "contains"
	MetricInvariance Metric = "invariance"
)

type Outcome struct {
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// Formatter scores the predictions of one test case. predictions[0] answers
// the original query; any further entries answer its perturbations.
type Formatter func(tc TestCase, predictions []string) Outcome

var metricFormatters = map[Metric]Formatter{
	MetricExactMatch: exactMatch,
	MetricContains:   contains,
	MetricInvariance: invariance,
}

func Score(tc TestCase, predictions []string) (Outcome, error) {
	formatter, ok := metricFormatters[tc.EffectiveMetric()]
	if !ok {
		return Outcome{}, fmt.Errorf("unknown metric %q", tc.EffectiveMetric())
	}
	if len(predictions) == 0 {
		return Outcome{Detail: "no predictions"}, nil
	}
	return formatter(tc, predictions), nil
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func exactMatch(tc TestCase, predictions []string) Outcome {
	if normalize(predictions[0]) == normalize(tc.Expected) {
		return Outcome{Passed: true}
	}
	return Outcome{Detail: fmt.Sprintf("expected %q, got %q", tc.Expected, predictions[0])}
}

func contains(tc TestCase, predictions []string) Outcome {
	if strings.Contains(normalize(predictions[0]), normalize(tc.Expected)) {
		return Outcome{Passed: true}
	}
	return Outcome{Detail: fmt.Sprintf("%q does not contain %q", predictions[0], tc.Expected)}
}

func invariance(tc TestCase, predictions []string) Outcome {
	original := normalize(predictions[0])
	for i, p := range predictions[1:] {
		if normalize(p) != original {
			return Outcome{Detail: fmt.Sprintf("perturbation %d changed %q to %q", i, predictions[0], p)}
		}
	}
	return Outcome{Passed: true}
}
