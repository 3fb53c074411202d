// File: internal/infra/logging/logging_test.go
package logging

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestWithAttachesContextFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := WithPhase(WithJobID(context.Background(), "job-1"), "searching")
	log := With(ctx, &base)
	log.Info().Msg("stage started")

	out := buf.String()
	if !strings.Contains(out, `"job_id":"job-1"`) {
		t.Errorf("log line misses job_id: %s", out)
	}
	if !strings.Contains(out, `"phase":"searching"`) {
		t.Errorf("log line misses phase: %s", out)
	}
}

func TestWithSkipsAbsentFields(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	log := With(context.Background(), &base)
	log.Info().Msg("no context")

	out := buf.String()
	if strings.Contains(out, "job_id") || strings.Contains(out, "phase") {
		t.Errorf("fields attached without context values: %s", out)
	}
}

func TestWithPhaseOverridesEarlierPhase(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	ctx := WithPhase(context.Background(), "planning")
	ctx = WithPhase(ctx, "searching")
	With(ctx, &base).Info().Msg("x")

	out := buf.String()
	if !strings.Contains(out, `"phase":"searching"`) || strings.Contains(out, "planning") {
		t.Errorf("stale phase survived: %s", out)
	}
}
