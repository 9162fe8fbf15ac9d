package enrich

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mugline/roster-cli/internal/model"
	"github.com/mugline/roster-cli/internal/resilience"
	"github.com/mugline/roster-cli/pkg/textgen"
)

func fastRetry() resilience.Config {
	return resilience.Config{MaxAttempts: 3, BackoffUnit: time.Microsecond}
}

func rawRecord(id, desc string) model.RawRecord {
	rec := model.RawRecord{BookingID: id, Name: "DOE, JOHN"}
	if desc != "" {
		rec.Charges = []model.ChargeEntry{{Description: desc}}
	}
	return rec
}

// echoStub answers the summary pass with a rewording of the charge and
// the severity pass with a fixed label.
func echoStub(severity string) *textgen.Stub {
	return &textgen.Stub{Reply: func(req textgen.Request, _ int) (string, error) {
		if req.MaxTokens == severityMaxTokens {
			return severity, nil
		}
		return "Reworded: " + req.Prompt, nil
	}}
}

func TestProcess_OneOutputRowPerInputInOrder(t *testing.T) {
	records := []model.RawRecord{
		rawRecord("1", "BATTERY"),
		rawRecord("2", ""), // no charges: skipped, never sent upstream
		rawRecord("3", "GRAND THEFT"),
	}

	stub := echoStub("high")
	res, err := New(stub, fastRetry(), Options{}).Process(context.Background(), records, nil)

	require.NoError(t, err)
	require.Len(t, res.Records, 3)
	assert.Equal(t, "1", res.Records[0].BookingID)
	assert.Equal(t, "2", res.Records[1].BookingID)
	assert.Equal(t, "3", res.Records[2].BookingID)

	assert.Contains(t, res.Records[0].Summary, "BATTERY")
	assert.Equal(t, model.SeverityHigh, res.Records[0].Severity)
	assert.Equal(t, noChargesSummary, res.Records[1].Summary)
	assert.Equal(t, model.SeverityUnknown, res.Records[1].Severity)

	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 0, res.Failed)
	// Two records enriched, two calls each; the chargeless row made none.
	assert.Equal(t, 4, stub.Calls())
}

func TestProcess_RetriesTransientFailures(t *testing.T) {
	stub := &textgen.Stub{Reply: func(req textgen.Request, call int) (string, error) {
		if call <= 2 {
			return "", resilience.NewCallError(resilience.CategoryRateLimited, errors.New("429"))
		}
		if req.MaxTokens == severityMaxTokens {
			return "Low", nil
		}
		return "Trespassing", nil
	}}

	res, err := New(stub, fastRetry(), Options{}).Process(context.Background(),
		[]model.RawRecord{rawRecord("1", "TRESPASS")}, nil)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Succeeded)
	assert.Equal(t, "Trespassing", res.Records[0].Summary)
	assert.Equal(t, model.SeverityLow, res.Records[0].Severity)
	// Two failed summary attempts, one success, one severity call.
	assert.Equal(t, 4, stub.Calls())
}

func TestProcess_FatalFailureMarksRowAndContinues(t *testing.T) {
	stub := &textgen.Stub{Reply: func(req textgen.Request, _ int) (string, error) {
		if strings.Contains(req.Prompt, "BADROW") {
			return "", resilience.NewCallError(resilience.CategoryAuth, errors.New("401"))
		}
		if req.MaxTokens == severityMaxTokens {
			return "Medium", nil
		}
		return "Petty Theft", nil
	}}

	records := []model.RawRecord{rawRecord("1", "BADROW"), rawRecord("2", "THEFT")}
	res, err := New(stub, fastRetry(), Options{}).Process(context.Background(), records, nil)

	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, model.ErrorMarker("auth"), res.Records[0].Summary)
	assert.Equal(t, model.SeverityError, res.Records[0].Severity)
	assert.Equal(t, "Petty Theft", res.Records[1].Summary)
	assert.Equal(t, 1, res.Failed)
	assert.Equal(t, 1, res.Succeeded)
}

func TestProcess_SeverityFailureKeepsSummary(t *testing.T) {
	stub := &textgen.Stub{Reply: func(req textgen.Request, _ int) (string, error) {
		if req.MaxTokens == severityMaxTokens {
			return "", resilience.NewCallError(resilience.CategoryInvalidRequest, errors.New("400"))
		}
		return "Armed Robbery", nil
	}}

	res, err := New(stub, fastRetry(), Options{}).Process(context.Background(),
		[]model.RawRecord{rawRecord("1", "ROBBERY")}, nil)

	require.NoError(t, err)
	assert.Equal(t, "Armed Robbery", res.Records[0].Summary)
	assert.Equal(t, model.SeverityError, res.Records[0].Severity)
}

func TestProcess_CheckpointsPerBatch(t *testing.T) {
	out := filepath.Join(t.TempDir(), "enriched.csv")
	ckpt := NewCheckpointer(out)

	records := []model.RawRecord{
		rawRecord("1", "BATTERY"),
		rawRecord("2", "THEFT"),
		rawRecord("3", "TRESPASS"),
	}
	res, err := New(echoStub("Medium"), fastRetry(), Options{BatchSize: 2, InputPath: "in.csv"}).
		Process(context.Background(), records, ckpt)

	require.NoError(t, err)
	assert.Equal(t, 3, res.Succeeded)

	m, rows, err := ckpt.Load()
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 3, m.Rows)
	assert.Equal(t, "in.csv", m.InputPath)
	require.Len(t, rows, 3)
	assert.Equal(t, "1", rows[0].BookingID)
}

func TestProcess_ResumeSkipsCompletedRows(t *testing.T) {
	out := filepath.Join(t.TempDir(), "enriched.csv")
	records := []model.RawRecord{rawRecord("1", "BATTERY"), rawRecord("2", "THEFT")}
	opts := Options{BatchSize: 1, InputPath: "in.csv"}

	_, err := New(echoStub("Low"), fastRetry(), opts).
		Process(context.Background(), records, NewCheckpointer(out))
	require.NoError(t, err)

	// Second run must restore everything from the checkpoint and make no
	// upstream calls.
	stub := &textgen.Stub{Reply: func(textgen.Request, int) (string, error) {
		return "", resilience.NewCallError(resilience.CategoryUpstream, errors.New("should not be called"))
	}}
	res, err := New(stub, fastRetry(), opts).
		Process(context.Background(), records, NewCheckpointer(out))

	require.NoError(t, err)
	assert.Equal(t, 2, res.Resumed)
	assert.Equal(t, 0, stub.Calls())
	require.Len(t, res.Records, 2)
	assert.Contains(t, res.Records[1].Summary, "THEFT")
}

func TestProcess_MismatchedCheckpointIgnored(t *testing.T) {
	out := filepath.Join(t.TempDir(), "enriched.csv")
	records := []model.RawRecord{rawRecord("1", "BATTERY")}

	_, err := New(echoStub("Low"), fastRetry(), Options{InputPath: "old.csv"}).
		Process(context.Background(), records, NewCheckpointer(out))
	require.NoError(t, err)

	stub := echoStub("Low")
	res, err := New(stub, fastRetry(), Options{InputPath: "new.csv"}).
		Process(context.Background(), records, NewCheckpointer(out))

	require.NoError(t, err)
	assert.Equal(t, 0, res.Resumed)
	assert.Equal(t, 2, stub.Calls())
}

func TestProcess_InterruptionCheckpointsPartialResult(t *testing.T) {
	out := filepath.Join(t.TempDir(), "enriched.csv")
	ctx, cancel := context.WithCancel(context.Background())

	stub := &textgen.Stub{Reply: func(req textgen.Request, call int) (string, error) {
		if req.MaxTokens == severityMaxTokens {
			cancel() // stop after the first record completes
			return "High", nil
		}
		return "Aggravated Battery", nil
	}}

	records := []model.RawRecord{rawRecord("1", "AGG BATTERY"), rawRecord("2", "THEFT")}
	res, err := New(stub, fastRetry(), Options{InputPath: "in.csv"}).
		Process(ctx, records, NewCheckpointer(out))

	require.Error(t, err)
	assert.True(t, res.Interrupted)
	require.Len(t, res.Records, 1)

	m, rows, loadErr := NewCheckpointer(out).Load()
	require.NoError(t, loadErr)
	require.NotNil(t, m)
	assert.Equal(t, 1, m.Rows)
	assert.Equal(t, "Aggravated Battery", rows[0].Summary)
}
