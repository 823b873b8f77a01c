package util

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestBestEffortReturnsValue(t *testing.T) {
	got := BestEffort(nil, "probe", -1, func() (int, error) {
		return 42, nil
	})
	assert.Equal(t, 42, got)
}

func TestBestEffortFallsBack(t *testing.T) {
	got := BestEffort(nil, "probe", -1, func() (int, error) {
		return 0, errors.New("read failed")
	})
	assert.Equal(t, -1, got)
}
