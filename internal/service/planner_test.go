package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/veranemoloko/mdk-downloader/internal/domain"
)

func TestPlan_KeepsEnumerationOrder(t *testing.T) {
	discoveries := []domain.Discovery{
		{Coarse: "1.20.1", Fines: []string{"47.2.0", "47.1.0"}},
		{Coarse: "1.20", Err: errors.New("listing unavailable")},
		{Coarse: "1.19.4"},
		{Coarse: "1.19.2", Fines: []string{"43.2.0"}},
	}

	got := Plan(discoveries)

	want := []domain.Task{
		{Coarse: "1.20.1", Fine: "47.2.0"},
		{Coarse: "1.20.1", Fine: "47.1.0"},
		{Coarse: "1.19.2", Fine: "43.2.0"},
	}
	assert.Equal(t, want, got)
}

func TestPlan_Empty(t *testing.T) {
	assert.Empty(t, Plan(nil))
	assert.Empty(t, Plan([]domain.Discovery{{Coarse: "1.0"}}))
}

func TestPending(t *testing.T) {
	tasks := []domain.Task{
		{Coarse: "1.20.1", Fine: "47.2.0"},
		{Coarse: "1.20.1", Fine: "47.1.0"},
		{Coarse: "1.19.2", Fine: "43.2.0"},
	}
	record := domain.ProgressRecord{
		"1.20.1-47.2.0": domain.OutcomeCompleted,
		"1.20.1-47.1.0": domain.OutcomeFailed,
	}

	assert.Equal(t, 2, Pending(tasks, record))
	assert.Equal(t, 3, Pending(tasks, domain.NewProgressRecord()))
}
